package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Uploads: исход каждой загрузки (rendered, app_error, transport_error)
	UploadsTotal *prometheus.CounterVec

	// Refresh: исход обновления графиков по причине запуска
	RefreshTotal *prometheus.CounterVec

	// Stale: ответы, которые пришли позже более нового запроса и были отброшены
	StaleResponses *prometheus.CounterVec

	// Charts: перепривязки слотов и число живых графиков
	ChartBinds *prometheus.CounterVec
	LiveCharts prometheus.Gauge

	// Latency: запросы к сервису анализа
	UpstreamDuration *prometheus.HistogramVec

	// Saturation: заполненность очереди UI-цикла (backpressure)
	LoopQueueDepth prometheus.Gauge
	LoopPanics     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		UploadsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "logdash_uploads_total",
			Help: "Total number of completed log uploads by outcome.",
		}, []string{"outcome"}),

		RefreshTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "logdash_refresh_total",
			Help: "Total number of completed dashboard refreshes.",
		}, []string{"reason", "outcome"}),

		StaleResponses: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "logdash_stale_responses_total",
			Help: "Responses dropped because a newer request was already issued or applied.",
		}, []string{"kind"}), // типы: upload, refresh

		ChartBinds: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "logdash_chart_binds_total",
			Help: "Total number of chart (re)bindings per slot.",
		}, []string{"slot"}),

		LiveCharts: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "logdash_live_charts",
			Help: "Current number of live chart handles.",
		}),

		UpstreamDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "logdash_upstream_request_duration_seconds",
			Help:    "Histogram of analysis service request latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint", "outcome"}),

		LoopQueueDepth: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "logdash_ui_loop_queue_depth",
			Help: "Current number of tasks waiting in the UI loop.",
		}),

		LoopPanics: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "logdash_ui_loop_panics_total",
			Help: "Total number of recovered panics in UI loop tasks.",
		}),
	}
}
