package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xela07ax/logdash/internal/chart"
	"github.com/xela07ax/logdash/internal/dom"
	"github.com/xela07ax/logdash/internal/domain"
	"github.com/xela07ax/logdash/internal/infra"
	"github.com/xela07ax/logdash/internal/render"
	"go.uber.org/zap"
)

var (
	ErrUnknownCard   = errors.New("unknown dashboard card")
	ErrEmptyUpload   = errors.New("no file selected")
	ErrSlotNotBound  = errors.New("chart slot is empty")
	ErrNotRenderable = errors.New("chart handle has no svg preview")
)

// EventSource: поставщик ленты событий безопасности.
type EventSource interface {
	Events(ctx context.Context) ([]domain.SecurityEvent, error)
}

// DashboardDeps: зависимости, которые собирает main.
type DashboardDeps struct {
	Loop     *Loop
	Analysis AnalysisAPI
	Stats    StatsAPI
	Events   EventSource
	Charts   ChartFactory
	Metrics  *Metrics
	// HasResults принудительно включает флаг серверного рендера результатов,
	// даже если шаблон страницы его не выставил.
	HasResults bool
}

// svgSource: способность handle отдать SVG-превью.
type svgSource interface {
	SVG() ([]byte, error)
}

// Dashboard связывает документ, UI-цикл и контроллеры.
// Методы безопасны для вызова из любых горутин: доступ к состоянию идет через цикл.
type Dashboard struct {
	doc        *dom.Document
	loop       *Loop
	registry   *chart.Registry
	upload     *UploadController
	refresh    *RefreshController
	events     EventSource
	feed       *dom.Region
	lastUpdate *dom.Region
	cards      map[string]*dom.Card
	hasResults bool
	metrics    *Metrics
	logger     *zap.Logger

	ctx context.Context
}

// NewDashboard резолвит все области страницы один раз; отсутствие обязательного id: ошибка сборки.
func NewDashboard(doc *dom.Document, deps DashboardDeps, logger *zap.Logger) (*Dashboard, error) {
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics(nil)
	}

	ids := []string{dom.IDResults, dom.IDLastUpdated, dom.IDThreatsCount, dom.IDSecurityEvents}
	for _, slot := range chart.Slots {
		ids = append(ids, string(slot))
	}
	regions, err := doc.Regions(ids...)
	if err != nil {
		return nil, fmt.Errorf("resolve dashboard regions: %w", err)
	}

	slots := make(map[chart.Slot]*dom.Region, len(chart.Slots))
	for _, slot := range chart.Slots {
		slots[slot] = regions[string(slot)]
	}

	cards := make(map[string]*dom.Card)
	for _, card := range doc.RefreshCards() {
		cards[card.ID] = &card
	}

	registry := chart.NewRegistry()
	d := &Dashboard{
		doc:        doc,
		loop:       deps.Loop,
		registry:   registry,
		events:     deps.Events,
		feed:       regions[dom.IDSecurityEvents],
		lastUpdate: regions[dom.IDLastUpdated],
		cards:      cards,
		hasResults: deps.HasResults || doc.HasResults(),
		metrics:    deps.Metrics,
		logger:     logger.Named("dashboard"),
		ctx:        context.Background(),
	}

	d.upload = NewUploadController(deps.Analysis, deps.Loop, UploadRegions{
		Results:     regions[dom.IDResults],
		LastUpdated: regions[dom.IDLastUpdated],
		Threats:     regions[dom.IDThreatsCount],
	}, deps.Metrics, logger)
	d.refresh = NewRefreshController(deps.Stats, deps.Loop, registry, deps.Charts, slots, deps.Metrics, logger)

	d.logger.Info("dashboard wired",
		zap.Int("cards", len(cards)),
		zap.Bool("has_results", d.hasResults))
	return d, nil
}

// Start повторяет загрузку страницы в браузере: первая выборка статистики и лента событий.
// ctx живет столько же, сколько процесс; из него выводятся все сетевые вызовы.
func (d *Dashboard) Start(ctx context.Context) error {
	d.ctx = ctx
	if !d.loop.Post(func() {
		if d.hasResults {
			// Результаты уже в разметке, не трогаем их
			d.lastUpdate.SetText(LastUpdatedNow)
		}
		d.refresh.Trigger(ctx, ReasonInitial, nil)
		d.loadEvents(ctx)
	}) {
		return ErrLoopStopped
	}
	return nil
}

func (d *Dashboard) loadEvents(ctx context.Context) {
	if d.events == nil {
		return
	}
	d.loop.Go(func() {
		events, err := d.events.Events(ctx)
		if err != nil {
			d.logger.Error("security events unavailable", zap.Error(err))
			return
		}
		d.loop.Post(func() { render.ReplaceEvents(d.feed, events) })
	})
}

// actionCtx строит контекст сетевого вызова для действия пользователя. Он живет с процессом,
// а не с HTTP-запросом, но несет его Trace-ID.
func (d *Dashboard) actionCtx(reqCtx context.Context) context.Context {
	if id, ok := infra.TraceID(reqCtx); ok {
		return infra.WithTraceID(d.ctx, id)
	}
	return d.ctx
}

// SelectFile: пользователь выбрал файл. Пустой выбор игнорируется, как в браузере.
func (d *Dashboard) SelectFile(ctx context.Context, upload domain.LogUpload) error {
	if upload.Filename == "" {
		return ErrEmptyUpload
	}
	if !d.loop.Post(func() { d.upload.Select(d.actionCtx(ctx), upload) }) {
		return ErrLoopStopped
	}
	return nil
}

// RefreshCard: нажатие .refresh-btn в карточке cardID.
func (d *Dashboard) RefreshCard(ctx context.Context, cardID string) error {
	card, ok := d.cards[cardID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}
	if !d.loop.Post(func() { d.refresh.Trigger(d.actionCtx(ctx), ReasonManual, card) }) {
		return ErrLoopStopped
	}
	return nil
}

// RefreshAll: обновление без приглушения карточек (таймер, сигнал, API).
func (d *Dashboard) RefreshAll(ctx context.Context, reason string) error {
	if !d.loop.Post(func() { d.refresh.Trigger(d.actionCtx(ctx), reason, nil) }) {
		return ErrLoopStopped
	}
	return nil
}

// RunTicker периодически обновляет графики до отмены ctx.
func (d *Dashboard) RunTicker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		d.logger.Info("periodic refresh disabled")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.RefreshAll(ctx, ReasonPeriodic); err != nil {
				return
			}
		}
	}
}

// HasCard: есть ли на странице карточка с таким id.
func (d *Dashboard) HasCard(cardID string) bool {
	_, ok := d.cards[cardID]
	return ok
}

// PendingReloadSeconds: через сколько браузер перезапросит страницу, пока анализ
// или обновление графиков еще не завершились.
const PendingReloadSeconds = 1

// RenderPage пишет страницу целиком. Рендер идет внутри цикла, чтобы не поймать полузаписанный DOM.
func (d *Dashboard) RenderPage(ctx context.Context, w io.Writer) error {
	var renderErr error
	if err := d.loop.Do(ctx, func() {
		if d.busy() {
			d.doc.SetAutoReload(PendingReloadSeconds)
		} else {
			d.doc.SetAutoReload(0)
		}
		renderErr = d.doc.Render(w)
	}); err != nil {
		return err
	}
	return renderErr
}

// busy: есть незавершенная загрузка или приглушенная карточка. Только из цикла.
func (d *Dashboard) busy() bool {
	return d.upload.State() == UploadSubmitting || d.refresh.Pending() > 0
}

// RenderRegion пишет внутренний HTML одной области.
func (d *Dashboard) RenderRegion(ctx context.Context, id string, w io.Writer) error {
	region, err := d.doc.Region(id)
	if err != nil {
		return err
	}
	var renderErr error
	if err := d.loop.Do(ctx, func() { renderErr = region.RenderInner(w) }); err != nil {
		return err
	}
	return renderErr
}

// ChartSpec: спецификация живого графика слота.
func (d *Dashboard) ChartSpec(ctx context.Context, slot chart.Slot) (chart.RenderSpec, error) {
	var (
		spec  chart.RenderSpec
		bound bool
	)
	if err := d.loop.Do(ctx, func() {
		var h chart.Handle
		if h, bound = d.registry.Get(slot); bound {
			spec = h.Spec()
		}
	}); err != nil {
		return chart.RenderSpec{}, err
	}
	if !bound {
		return chart.RenderSpec{}, fmt.Errorf("%w: %s", ErrSlotNotBound, slot)
	}
	return spec, nil
}

// ChartSVG: SVG-превью живого графика слота.
func (d *Dashboard) ChartSVG(ctx context.Context, slot chart.Slot) ([]byte, error) {
	var (
		svg []byte
		err error
	)
	if doErr := d.loop.Do(ctx, func() {
		h, ok := d.registry.Get(slot)
		if !ok {
			err = fmt.Errorf("%w: %s", ErrSlotNotBound, slot)
			return
		}
		src, ok := h.(svgSource)
		if !ok {
			err = fmt.Errorf("%w: %s", ErrNotRenderable, slot)
			return
		}
		svg, err = src.SVG()
	}); doErr != nil {
		return nil, doErr
	}
	return svg, err
}

// UploadState: текущее состояние загрузки (для health/отладки).
func (d *Dashboard) UploadState(ctx context.Context) (UploadState, error) {
	var state UploadState
	err := d.loop.Do(ctx, func() { state = d.upload.State() })
	return state, err
}
