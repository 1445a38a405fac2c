package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/logdash/internal/dom"
	"github.com/xela07ax/logdash/internal/engine"
	"go.uber.org/zap"
)

// PageRenderer Описываем, что нам нужно от дашборда для отдачи разметки
type PageRenderer interface {
	RenderPage(ctx context.Context, w io.Writer) error
	RenderRegion(ctx context.Context, id string, w io.Writer) error
}

type PageHandler struct {
	dash   PageRenderer
	logger *zap.Logger
}

func NewPageHandler(d PageRenderer, logger *zap.Logger) *PageHandler {
	return &PageHandler{dash: d, logger: logger.Named("page")}
}

// Page отдает страницу целиком в текущем состоянии
// GET /
func (h *PageHandler) Page(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.dash.RenderPage(r.Context(), &buf); err != nil {
		h.fail(w, "render page", err)
		return
	}
	writeHTML(w, buf.Bytes())
}

// Region отдает innerHTML одной области для частичного обновления
// GET /ui/regions/{id}
func (h *PageHandler) Region(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var buf bytes.Buffer
	err := h.dash.RenderRegion(r.Context(), id, &buf)
	if errors.Is(err, dom.ErrRegionNotFound) {
		http.Error(w, "region not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.fail(w, "render region", err)
		return
	}
	writeHTML(w, buf.Bytes())
}

func (h *PageHandler) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, engine.ErrLoopStopped) {
		http.Error(w, "dashboard is shutting down", http.StatusServiceUnavailable)
		return
	}
	h.logger.Error(op+" failed", zap.Error(err))
	http.Error(w, "Failed to render dashboard", http.StatusInternalServerError)
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(body)
}
