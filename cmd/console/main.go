package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/logdash/internal/chart"
	"github.com/xela07ax/logdash/internal/connectors"
	"github.com/xela07ax/logdash/internal/console/handler"
	"github.com/xela07ax/logdash/internal/console/server"
	"github.com/xela07ax/logdash/internal/console/web"
	"github.com/xela07ax/logdash/internal/engine"
	"github.com/xela07ax/logdash/internal/infra"
)

func main() {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// Контекст жизни процесса: SIGINT/SIGTERM останавливает таймер, подписку и сетевые вызовы
	appCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Метрики
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := engine.NewMetrics(reg)

	// 3. Клиент сервиса анализа (лимитер + Circuit Breaker, без повторов)
	client := connectors.NewAnalysisClient(cfg.Upstream, logger,
		connectors.WithDurationObserver(metrics.UpstreamDuration))

	// 4. Страница и UI-цикл
	doc, err := web.LoadPage(cfg.Dashboard.TemplatePath)
	if err != nil {
		logger.Fatal("failed to load page template", zap.Error(err))
	}

	loop := engine.NewLoop(cfg.Dashboard.LoopBuffer, logger, metrics)
	dash, err := engine.NewDashboard(doc, engine.DashboardDeps{
		Loop:       loop,
		Analysis:   client,
		Stats:      client,
		Events:     connectors.NewStaticEventSource(), // лента событий пока из заглушки
		Charts:     chart.NewSVGFactory(cfg.Dashboard.ChartWidth, cfg.Dashboard.ChartHeight, logger),
		Metrics:    metrics,
		HasResults: cfg.Dashboard.HasResults,
	}, logger)
	if err != nil {
		logger.Fatal("failed to wire dashboard", zap.Error(err))
	}

	loop.Start()
	if err := dash.Start(appCtx); err != nil {
		logger.Fatal("failed to start dashboard", zap.Error(err))
	}
	go dash.RunTicker(appCtx, cfg.Dashboard.RefreshInterval)

	// 5. Внешний триггер обновления через Redis (опционально)
	if cfg.Redis.Enabled {
		rdb, err := infra.NewRedisClient(appCtx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("redis unavailable", zap.Error(err))
		}
		defer rdb.Close()
		go listenRefreshSignals(appCtx, rdb, cfg.Redis.RefreshChannel, dash, logger)
	}

	// 6. HTTP Server
	consoleSrv := server.NewConsoleServer(cfg, logger, reg,
		handler.NewPageHandler(dash, logger),
		handler.NewActionHandler(dash, cfg.Upstream.MaxUploadBytes, logger),
		handler.NewChartHandler(dash, logger),
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      consoleSrv,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("dashboard console started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 7. Graceful Shutdown
	<-appCtx.Done()
	logger.Info("dashboard console stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	loop.Stop()
	logger.Info("dashboard console exited properly")
}

// listenRefreshSignals: пустой payload или "all" обновляет все графики, иначе это id карточки.
func listenRefreshSignals(ctx context.Context, rdb *redis.Client, channel string, dash *engine.Dashboard, logger *zap.Logger) {
	logger = logger.Named("refresh-signal")
	logger.Info("refresh listener started", zap.String("chan", channel))

	engine.ListenSignals(ctx, rdb, logger, channel,
		// После переподключения могли пропустить сигналы: догоняем одним обновлением
		func() error { return dash.RefreshAll(ctx, engine.ReasonSignal) },
		func(payload string) {
			var err error
			switch payload {
			case "", "all":
				err = dash.RefreshAll(ctx, engine.ReasonSignal)
			default:
				err = dash.RefreshCard(ctx, payload)
			}
			if err != nil {
				logger.Warn("refresh signal ignored", zap.String("payload", payload), zap.Error(err))
			}
		},
	)
}
