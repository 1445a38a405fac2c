package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/logdash/internal/domain"
	"github.com/xela07ax/logdash/internal/engine"
	"go.uber.org/zap"
)

// Сколько multipart-данных держим в памяти, остальное уходит во временные файлы.
const multipartMemory = 8 << 20

// ActionDispatcher превращает действия пользователя в события UI-цикла
type ActionDispatcher interface {
	SelectFile(ctx context.Context, upload domain.LogUpload) error
	RefreshCard(ctx context.Context, cardID string) error
	RefreshAll(ctx context.Context, reason string) error
}

type ActionHandler struct {
	dash           ActionDispatcher
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewActionHandler(d ActionDispatcher, maxUploadBytes int64, logger *zap.Logger) *ActionHandler {
	return &ActionHandler{dash: d, maxUploadBytes: maxUploadBytes, logger: logger.Named("actions")}
}

// Upload: выбор файла в форме. Ответ анализа придет асинхронно, браузер возвращается на страницу.
// POST /ui/upload (multipart, поле file)
func (h *ActionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		if r.ContentLength > h.maxUploadBytes {
			http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		// файл не выбран: как и в браузере, ничего не происходит
		redirectHome(w, r)
		return
	}
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed to read uploaded file", zap.String("file", header.Filename), zap.Error(err))
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}

	err = h.dash.SelectFile(r.Context(), domain.LogUpload{Filename: header.Filename, Content: content})
	if err != nil && !errors.Is(err, engine.ErrEmptyUpload) {
		h.dispatchFailed(w, err)
		return
	}
	redirectHome(w, r)
}

// RefreshCard: нажатие кнопки обновления карточки
// POST /ui/refresh/{card}
func (h *ActionHandler) RefreshCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "card")

	err := h.dash.RefreshCard(r.Context(), cardID)
	if errors.Is(err, engine.ErrUnknownCard) {
		http.Error(w, "card not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.dispatchFailed(w, err)
		return
	}
	redirectHome(w, r)
}

// RefreshAll: обновление всех графиков без приглушения
// POST /ui/refresh
func (h *ActionHandler) RefreshAll(w http.ResponseWriter, r *http.Request) {
	if err := h.dash.RefreshAll(r.Context(), engine.ReasonAPI); err != nil {
		h.dispatchFailed(w, err)
		return
	}
	redirectHome(w, r)
}

func (h *ActionHandler) dispatchFailed(w http.ResponseWriter, err error) {
	if errors.Is(err, engine.ErrLoopStopped) {
		http.Error(w, "dashboard is shutting down", http.StatusServiceUnavailable)
		return
	}
	h.logger.Error("failed to dispatch ui action", zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// redirectHome (Post/Redirect/Get): повторная загрузка страницы не отправит форму снова.
func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
