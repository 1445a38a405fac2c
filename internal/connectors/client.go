package connectors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"github.com/xela07ax/logdash/internal/domain"
	"github.com/xela07ax/logdash/internal/infra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	maxResponseBytes = 16 << 20
	maxErrorSnippet  = 256
)

// Метки эндпоинтов для метрик и логов.
const (
	endpointAnalyze   = "analyze"
	endpointDashboard = "dashboard"
)

// AnalysisClient: HTTP-клиент сервиса анализа логов.
// Лимитер и Circuit Breaker как в шлюзе, но без повторов: пользователь повторяет действие сам.
type AnalysisClient struct {
	baseURL       string
	analyzePath   string
	dashboardPath string
	httpClient    *http.Client
	limiter       *rate.Limiter
	cb            *gobreaker.CircuitBreaker
	duration      *prometheus.HistogramVec
	logger        *zap.Logger
}

type Option func(*AnalysisClient)

// WithHTTPClient подменяет транспорт (тесты, кастомный TLS).
func WithHTTPClient(c *http.Client) Option {
	return func(a *AnalysisClient) { a.httpClient = c }
}

// WithDurationObserver подключает гистограмму длительности запросов (labels: endpoint, outcome).
func WithDurationObserver(h *prometheus.HistogramVec) Option {
	return func(a *AnalysisClient) { a.duration = h }
}

func NewAnalysisClient(cfg infra.UpstreamConfig, logger *zap.Logger, opts ...Option) *AnalysisClient {
	logger = logger.Named("analysis-client")

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	threshold := cfg.CBConsecutiveFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "analysis-service",
		MaxRequests: cfg.CBMaxRequests,
		Interval:    cfg.CBInterval,
		Timeout:     cfg.CBTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return threshold > 0 && counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	c := &AnalysisClient{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		analyzePath:   cfg.AnalyzePath,
		dashboardPath: cfg.DashboardPath,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		limiter:       rate.NewLimiter(limit, max(1, cfg.RateBurst)),
		cb:            cb,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AnalyzeLog отправляет файл полем multipart "file".
func (c *AnalysisClient) AnalyzeLog(ctx context.Context, upload domain.LogUpload) (*domain.AnalyzeResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", upload.Filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(upload.Content); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.analyzePath, &body)
	if err != nil {
		return nil, fmt.Errorf("build analyze request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	data, err := c.do(req, endpointAnalyze)
	if err != nil {
		return nil, err
	}

	resp, warnings, err := DecodeAnalyzeResponse(data)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		c.logger.Warn("skipping malformed analysis record",
			zap.String("file", upload.Filename),
			zap.Error(w))
	}
	return resp, nil
}

// FetchDashboardData читает агрегированную статистику целиком.
func (c *AnalysisClient) FetchDashboardData(ctx context.Context) (*domain.DashboardStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.dashboardPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build dashboard request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	data, err := c.do(req, endpointDashboard)
	if err != nil {
		return nil, err
	}

	stats, warnings, err := domain.ParseDashboardStats(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	for _, w := range warnings {
		c.logger.Warn("dashboard slice rendered empty", zap.Error(w))
	}
	return stats, nil
}

func (c *AnalysisClient) do(req *http.Request, endpoint string) ([]byte, error) {
	// 1. Rate Limiter
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	// 2. Trace-ID для сквозного поиска по логам обеих сторон: берем из действия пользователя или создаем
	traceID, ok := infra.TraceID(req.Context())
	if !ok {
		traceID = uuid.New().String()
	}
	req.Header.Set(infra.TraceHeader, traceID)

	start := time.Now()

	// 3. Circuit Breaker, одна попытка
	res, err := c.cb.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &StatusError{Code: resp.StatusCode, Body: snippet(body)}
		}
		return body, nil
	})

	outcome := "ok"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "breaker_open"
	case err != nil:
		outcome = "error"
	}
	if c.duration != nil {
		c.duration.WithLabelValues(endpoint, outcome).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		c.logger.Debug("upstream request failed",
			zap.String("endpoint", endpoint),
			zap.String("trace_id", traceID),
			zap.Error(err))
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}

	c.logger.Debug("upstream request completed",
		zap.String("endpoint", endpoint),
		zap.String("trace_id", traceID),
		zap.Duration("took", time.Since(start)))
	return res.([]byte), nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorSnippet {
		s = s[:maxErrorSnippet] + "..."
	}
	return s
}
