package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xela07ax/logdash/internal/console/handler"
	"github.com/xela07ax/logdash/internal/infra"
	"go.uber.org/zap"
)

type ConsoleServer struct {
	router *chi.Mux
	logger *zap.Logger
	cfg    *infra.Config

	// Сбор метрик для /metrics
	gatherer prometheus.Gatherer

	// Обработчики
	pageHandler   *handler.PageHandler   // / и /ui/regions
	actionHandler *handler.ActionHandler // /ui/upload, /ui/refresh
	chartHandler  *handler.ChartHandler  // /ui/charts
}

// NewConsoleServer инициализирует сервер дашборда со всеми зависимостями
func NewConsoleServer(
	cfg *infra.Config,
	logger *zap.Logger,
	gatherer prometheus.Gatherer,
	pageH *handler.PageHandler,
	actionH *handler.ActionHandler,
	chartH *handler.ChartHandler,
) *ConsoleServer {
	s := &ConsoleServer{
		router:        chi.NewRouter(),
		logger:        logger.Named("console-ui"),
		cfg:           cfg,
		gatherer:      gatherer,
		pageHandler:   pageH,
		actionHandler: actionH,
		chartHandler:  chartH,
	}

	s.routes()
	return s
}

func (s *ConsoleServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(infra.TracingMiddleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- 2. Служебные роуты ---
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if s.gatherer != nil {
		r.Handle(s.metricsPath(), promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	// --- 3. Страница и частичные обновления ---
	r.Get("/", s.pageHandler.Page)
	r.Route("/ui", func(r chi.Router) {
		r.Get("/regions/{id}", s.pageHandler.Region)
		r.Get("/charts/{file}", s.chartHandler.Get)

		// Действия пользователя: загрузка файла и кнопки обновления
		r.Post("/upload", s.actionHandler.Upload)
		r.Post("/refresh", s.actionHandler.RefreshAll)
		r.Post("/refresh/{card}", s.actionHandler.RefreshCard)
	})
}

func (s *ConsoleServer) metricsPath() string {
	if s.cfg != nil && s.cfg.Server.MetricsPath != "" {
		return s.cfg.Server.MetricsPath
	}
	return "/metrics"
}

// ServeHTTP позволяет использовать ConsoleServer как стандартный http.Handler
func (s *ConsoleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
