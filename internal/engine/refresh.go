package engine

import (
	"context"
	"fmt"

	"github.com/xela07ax/logdash/internal/chart"
	"github.com/xela07ax/logdash/internal/dom"
	"github.com/xela07ax/logdash/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// StatsAPI: часть клиента сервиса анализа, нужная обновлению графиков.
type StatsAPI interface {
	FetchDashboardData(ctx context.Context) (*domain.DashboardStats, error)
}

// ChartFactory строит фабрику живого графика под конкретную спецификацию.
type ChartFactory interface {
	For(spec chart.RenderSpec) chart.Factory
}

// Причины обновления (метка reason в метриках).
const (
	ReasonInitial  = "initial"
	ReasonPeriodic = "periodic"
	ReasonManual   = "manual"
	ReasonSignal   = "signal"
	ReasonAPI      = "api"
)

// Стили приглушения карточки на время обновления.
const (
	dimmedOpacity   = "0.5"
	restoredOpacity = "1"
)

// DefaultChartsPath: префикс, под которым консоль отдает превью графиков.
const DefaultChartsPath = "/ui/charts"

// RefreshController перезапрашивает статистику и перепривязывает все четыре графика за одну задачу цикла.
// Методы вызываются только из UI-цикла.
type RefreshController struct {
	api        StatsAPI
	sched      Scheduler
	registry   *chart.Registry
	factory    ChartFactory
	slots      map[chart.Slot]*dom.Region
	chartsPath string
	metrics    *Metrics
	logger     *zap.Logger

	// issued растет при каждом запуске, applied: последний примененный ответ.
	// Ответ с seq <= applied устарел: его данные старше уже показанных.
	issued  uint64
	applied uint64
	// cardSeq: последний запуск, приглушивший карточку; восстанавливает только он.
	cardSeq map[string]uint64
}

func NewRefreshController(
	api StatsAPI,
	sched Scheduler,
	registry *chart.Registry,
	factory ChartFactory,
	slots map[chart.Slot]*dom.Region,
	metrics *Metrics,
	logger *zap.Logger,
) *RefreshController {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &RefreshController{
		api:        api,
		sched:      sched,
		registry:   registry,
		factory:    factory,
		slots:      slots,
		chartsPath: DefaultChartsPath,
		metrics:    metrics,
		logger:     logger.Named("refresh"),
		cardSeq:    make(map[string]uint64),
	}
}

// Trigger запускает обновление. card != nil: ручное нажатие .refresh-btn:
// тело карточки приглушается до завершения именно этого запроса.
func (c *RefreshController) Trigger(ctx context.Context, reason string, card *dom.Card) {
	c.issued++
	seq := c.issued

	if card != nil {
		card.Body.SetStyle("opacity", dimmedOpacity)
		c.cardSeq[card.ID] = seq
	}

	c.logger.Debug("dashboard refresh started", zap.String("reason", reason), zap.Uint64("seq", seq))

	c.sched.Go(func() {
		stats, err := c.api.FetchDashboardData(ctx)
		if !c.sched.Post(func() { c.complete(seq, reason, card, stats, err) }) {
			c.logger.Warn("refresh completion dropped", zap.String("reason", reason))
		}
	})
}

func (c *RefreshController) complete(seq uint64, reason string, card *dom.Card, stats *domain.DashboardStats, err error) {
	// Восстанавливаем карточку при любом исходе, но только для ее последнего запроса
	if card != nil && c.cardSeq[card.ID] == seq {
		card.Body.SetStyle("opacity", restoredOpacity)
		delete(c.cardSeq, card.ID)
	}

	if err != nil || stats == nil {
		// Графики не трогаем: слоты остаются с прежними данными
		c.metrics.RefreshTotal.WithLabelValues(reason, "error").Inc()
		c.logger.Error("dashboard refresh failed",
			zap.String("reason", reason),
			zap.Uint64("seq", seq),
			zap.Error(err))
		return
	}

	if seq <= c.applied {
		c.metrics.StaleResponses.WithLabelValues("refresh").Inc()
		c.logger.Debug("stale dashboard response ignored",
			zap.Uint64("seq", seq),
			zap.Uint64("applied", c.applied))
		return
	}
	c.applied = seq

	c.apply(stats)
	c.metrics.RefreshTotal.WithLabelValues(reason, "ok").Inc()
}

// apply: все четыре слота в одной задаче цикла, промежуточного состояния никто не видит.
func (c *RefreshController) apply(stats *domain.DashboardStats) {
	specs := chart.AdaptAll(*stats)

	for _, slot := range chart.Slots {
		region := c.slots[slot]
		if _, err := c.registry.Bind(slot, c.factory.For(specs[slot])); err != nil {
			c.logger.Error("chart bind failed", zap.String("slot", string(slot)), zap.Error(err))
			if region != nil {
				region.Clear()
			}
			continue
		}
		c.metrics.ChartBinds.WithLabelValues(string(slot)).Inc()

		if region != nil {
			region.Replace(c.preview(slot))
		}
	}

	c.metrics.LiveCharts.Set(float64(c.registry.Live()))
}

// preview: <img> на SVG живого графика; версия в query сбрасывает кэш браузера.
func (c *RefreshController) preview(slot chart.Slot) *html.Node {
	img := dom.Element("img", "chart-preview")
	dom.SetAttr(img, "src", fmt.Sprintf("%s/%s.svg?v=%d", c.chartsPath, slot, c.applied))
	dom.SetAttr(img, "alt", string(slot))
	return img
}

// Applied возвращает номер последнего примененного ответа (0, если графиков еще не было).
func (c *RefreshController) Applied() uint64 {
	return c.applied
}

// Pending: сколько карточек сейчас приглушено.
func (c *RefreshController) Pending() int {
	return len(c.cardSeq)
}
