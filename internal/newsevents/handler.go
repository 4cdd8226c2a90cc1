package newsevents

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gurukul-backend/internal/httpx"
	"gurukul-backend/internal/middleware"
	"gurukul-backend/internal/store"
	"gurukul-backend/internal/transport"
	"gurukul-backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		val:     val,
		log:     log,
	}
}

func (h *Handler) Register(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Get("/news-events", h.List)
	r.Get("/news-events/{id}", h.Get)
	r.With(admin).Post("/news-events", h.Create)
	r.With(admin).Put("/news-events/{id}", h.Update)
	r.With(admin).Delete("/news-events/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	query := r.URL.Query()
	limit, offset := httpx.LimitOffset(query, store.DefaultLimit, store.MaxLimit)
	featured, _ := strconv.ParseBool(query.Get("featured"))
	filter := ListFilter{
		Type:         query.Get("type"),
		Status:       query.Get("status"),
		FeaturedOnly: featured,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page, err := h.service.List(ctx, filter, store.Page{Limit: limit, Offset: offset})
	if err != nil {
		if errors.Is(err, ErrInvalidFilter) {
			log.Warn("news events list: invalid filter", slog.String("type", filter.Type), slog.String("status", filter.Status))
			transport.WriteError(w, http.StatusBadRequest, "invalid filter", nil)
			return
		}
		log.Error("news events list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to fetch news and events", transport.Details(err))
		return
	}

	log.Info("news events list: ok", slog.Int("count", len(page.Items)))
	transport.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Get(ctx, id)
	if err != nil {
		log.Error("news events get: database error", slog.String("news_event_id", id), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to fetch news event", transport.Details(err))
		return
	}
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("news events create: invalid json", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "invalid json", transport.Details(err))
		return
	}
	req.normalize()

	if err := h.val.Struct(req); err != nil {
		details := httpx.ValidationDetails(h.val.ValidationErrors(err))
		log.Warn("news events create: validation failed", slog.Any("fields", details))
		transport.WriteError(w, http.StatusBadRequest, "validation failed", transport.Fields{"fields": details})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Create(ctx, req)
	if err != nil {
		var invalid FieldErrors
		if errors.As(err, &invalid) {
			log.Warn("news events create: validation failed", slog.Any("fields", invalid))
			transport.WriteError(w, http.StatusBadRequest, "validation failed", transport.Fields{"fields": invalid})
			return
		}
		log.Error("news events create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to create news event", transport.Details(err))
		return
	}

	log.Info("news events create: ok", slog.String("news_event_id", item.ID), slog.String("type", item.Type))
	transport.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	var req UpdateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("news events update: invalid json", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "invalid json", transport.Details(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Update(ctx, id, req)
	if err != nil {
		var invalid FieldErrors
		if errors.As(err, &invalid) {
			log.Warn("news events update: validation failed", slog.String("news_event_id", id), slog.Any("fields", invalid))
			transport.WriteError(w, http.StatusBadRequest, "validation failed", transport.Fields{"fields": invalid})
			return
		}
		log.Error("news events update: database error", slog.String("news_event_id", id), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to update news event", transport.Details(err))
		return
	}

	log.Info("news events update: ok", slog.String("news_event_id", id))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		log.Error("news events delete: database error", slog.String("news_event_id", id), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to delete news event",
			transport.Details(err).With("newsEventId", id))
		return
	}

	log.Info("news events delete: ok", slog.String("news_event_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
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
