package statistics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"gurukul-backend/internal/httpx"
	"gurukul-backend/internal/middleware"
	"gurukul-backend/internal/store"
	"gurukul-backend/internal/transport"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
	log     *slog.Logger
}

func NewHandler(service *Service, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

func (h *Handler) Register(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Get("/statistics", h.List)
	r.With(admin).Post("/statistics", h.Update)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.List(ctx)
	if err != nil {
		log.Error("statistics list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to fetch statistics", transport.Details(err))
		return
	}
	transport.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req UpdateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("statistics update: invalid json", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "Invalid input", transport.Details(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stat, err := h.service.SetCount(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			log.Warn("statistics update: invalid input", slog.String("name", req.Name))
			transport.WriteError(w, http.StatusBadRequest, "Invalid input", nil)
		case errors.Is(err, store.ErrNotFound):
			log.Warn("statistics update: not found", slog.String("name", req.Name))
			transport.WriteError(w, http.StatusNotFound, "Statistic not found", nil)
		default:
			log.Error("statistics update: database error", slog.String("name", req.Name), slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "Failed to update statistic", transport.Details(err))
		}
		return
	}

	log.Info("statistics update: ok", slog.String("name", stat.Name), slog.Int64("count", stat.Count))
	transport.WriteJSON(w, http.StatusOK, stat)
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
