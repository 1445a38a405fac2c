package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/logdash/internal/chart"
	"github.com/xela07ax/logdash/internal/engine"
	"go.uber.org/zap"
)

// ChartSource отдает живые графики слотов
type ChartSource interface {
	ChartSpec(ctx context.Context, slot chart.Slot) (chart.RenderSpec, error)
	ChartSVG(ctx context.Context, slot chart.Slot) ([]byte, error)
}

type ChartHandler struct {
	charts ChartSource
	logger *zap.Logger
}

func NewChartHandler(c ChartSource, logger *zap.Logger) *ChartHandler {
	return &ChartHandler{charts: c, logger: logger.Named("charts")}
}

// Get отдает график слота: .json для Chart.js, .svg как статичное превью
// GET /ui/charts/{file}
func (h *ChartHandler) Get(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	ext := path.Ext(file)

	slot, ok := chart.ParseSlot(strings.TrimSuffix(file, ext))
	if !ok {
		http.Error(w, "chart not found", http.StatusNotFound)
		return
	}

	switch ext {
	case ".json":
		spec, err := h.charts.ChartSpec(r.Context(), slot)
		if err != nil {
			h.fail(w, slot, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(spec)

	case ".svg":
		svg, err := h.charts.ChartSVG(r.Context(), slot)
		if err != nil {
			h.fail(w, slot, err)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(svg)

	default:
		http.Error(w, "chart not found", http.StatusNotFound)
	}
}

func (h *ChartHandler) fail(w http.ResponseWriter, slot chart.Slot, err error) {
	switch {
	case errors.Is(err, engine.ErrSlotNotBound):
		http.Error(w, "chart not rendered yet", http.StatusNotFound)
	case errors.Is(err, engine.ErrLoopStopped):
		http.Error(w, "dashboard is shutting down", http.StatusServiceUnavailable)
	default:
		h.logger.Error("chart render failed", zap.String("slot", string(slot)), zap.Error(err))
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
	}
}
