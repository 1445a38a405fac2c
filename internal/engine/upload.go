package engine

import (
	"context"
	"strconv"

	"github.com/xela07ax/logdash/internal/dom"
	"github.com/xela07ax/logdash/internal/domain"
	"github.com/xela07ax/logdash/internal/render"
	"go.uber.org/zap"
)

// AnalysisAPI: часть клиента сервиса анализа, нужная загрузке.
type AnalysisAPI interface {
	AnalyzeLog(ctx context.Context, upload domain.LogUpload) (*domain.AnalyzeResponse, error)
}

type UploadState int

const (
	UploadIdle UploadState = iota
	UploadSubmitting
	UploadRendered
	UploadErrored
)

func (s UploadState) String() string {
	switch s {
	case UploadIdle:
		return "idle"
	case UploadSubmitting:
		return "submitting"
	case UploadRendered:
		return "rendered"
	case UploadErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Исходы загрузки для метрик.
const (
	outcomeRendered       = "rendered"
	outcomeAppError       = "app_error"
	outcomeTransportError = "transport_error"
)

// LastUpdatedNow: метка, которую получает last-updated при выборе файла и первой загрузке.
const LastUpdatedNow = "Just Now"

type UploadRegions struct {
	Results     *dom.Region
	LastUpdated *dom.Region
	Threats     *dom.Region
}

// UploadController ведет цикл Idle → Submitting → Rendered|Errored.
// Все методы, кроме конструктора, вызываются только из UI-цикла.
type UploadController struct {
	api     AnalysisAPI
	sched   Scheduler
	regions UploadRegions
	metrics *Metrics
	logger  *zap.Logger

	state   UploadState
	seq     uint64
	current string
}

func NewUploadController(api AnalysisAPI, sched Scheduler, regions UploadRegions, metrics *Metrics, logger *zap.Logger) *UploadController {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &UploadController{
		api:     api,
		sched:   sched,
		regions: regions,
		metrics: metrics,
		logger:  logger.Named("upload"),
	}
}

// Select: пользователь выбрал файл. Показываем заглушку и отправляем файл вне цикла.
// Ответ предыдущей загрузки, пришедший после нового выбора, будет отброшен.
func (c *UploadController) Select(ctx context.Context, upload domain.LogUpload) {
	c.seq++
	seq := c.seq
	c.state = UploadSubmitting
	c.current = upload.Filename

	c.regions.Results.Replace(render.Placeholder("Analyzing " + upload.Filename + "..."))
	c.regions.LastUpdated.SetText(LastUpdatedNow)

	c.logger.Info("log file submitted",
		zap.String("file", upload.Filename),
		zap.Int("bytes", len(upload.Content)),
		zap.Uint64("seq", seq))

	c.sched.Go(func() {
		resp, err := c.api.AnalyzeLog(ctx, upload)
		if !c.sched.Post(func() { c.complete(seq, upload.Filename, resp, err) }) {
			c.logger.Warn("upload completion dropped", zap.String("file", upload.Filename))
		}
	})
}

func (c *UploadController) complete(seq uint64, filename string, resp *domain.AnalyzeResponse, err error) {
	if seq != c.seq {
		c.metrics.StaleResponses.WithLabelValues("upload").Inc()
		c.logger.Debug("stale upload response ignored",
			zap.String("file", filename),
			zap.Uint64("seq", seq),
			zap.Uint64("latest", c.seq))
		return
	}

	switch {
	case err != nil || resp == nil:
		// Причина только в лог, пользователю общий текст
		c.state = UploadErrored
		c.regions.Results.Replace(render.ErrorText(render.GenericUploadError))
		c.metrics.UploadsTotal.WithLabelValues(outcomeTransportError).Inc()
		c.logger.Error("log analysis failed", zap.String("file", filename), zap.Error(err))

	case resp.Failed():
		c.state = UploadErrored
		c.regions.Results.Replace(render.ErrorText(resp.Error))
		c.metrics.UploadsTotal.WithLabelValues(outcomeAppError).Inc()
		c.logger.Warn("analysis service rejected file",
			zap.String("file", filename),
			zap.String("error", resp.Error))

	default:
		threats := render.ReplaceResults(c.regions.Results, resp.Records)
		c.regions.Threats.SetText(strconv.Itoa(threats))
		c.state = UploadRendered
		c.metrics.UploadsTotal.WithLabelValues(outcomeRendered).Inc()
		c.logger.Info("analysis rendered",
			zap.String("file", filename),
			zap.Int("records", len(resp.Records)),
			zap.Int("threats", threats))
	}
}

func (c *UploadController) State() UploadState {
	return c.state
}

// Current: имя последнего выбранного файла.
func (c *UploadController) Current() string {
	return c.current
}
