package countries

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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	limit, offset := httpx.LimitOffset(r.URL.Query(), store.DefaultLimit, store.MaxLimit)
	popular, _ := strconv.ParseBool(r.URL.Query().Get("popular"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page, err := h.service.List(ctx, ListFilter{PopularOnly: popular}, store.Page{Limit: limit, Offset: offset})
	if err != nil {
		log.Error("countries list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to fetch countries", transport.Details(err))
		return
	}

	log.Info("countries list: ok", slog.Int("count", len(page.Items)))
	transport.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Get(ctx, id)
	if err != nil {
		log.Error("countries get: database error", slog.String("country_id", id), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to fetch country", transport.Details(err))
		return
	}
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("countries get by slug: not found", slog.String("slug", slug))
			transport.WriteError(w, http.StatusNotFound, "Country not found", transport.Fields{"slug": slug})
			return
		}
		log.Error("countries get by slug: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to fetch country", transport.Details(err))
		return
	}
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("countries create: invalid json", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "invalid json", transport.Details(err))
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("countries create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error",
			transport.Fields{"fields": httpx.ValidationDetails(h.val.ValidationErrors(err))})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Create(ctx, req)
	if err != nil {
		h.writeServiceError(w, log, "countries create", "Failed to create country", err)
		return
	}

	log.Info("countries create: ok", slog.String("country_id", item.ID), slog.String("slug", item.Slug))
	transport.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	var req UpdateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("countries update: invalid json", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "invalid json", transport.Details(err))
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("countries update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error",
			transport.Fields{"fields": httpx.ValidationDetails(h.val.ValidationErrors(err))})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Update(ctx, id, req)
	if err != nil {
		h.writeServiceError(w, log.With(slog.String("country_id", id)), "countries update", "Failed to update country", err)
		return
	}

	log.Info("countries update: ok", slog.String("country_id", id))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		log.Error("countries delete: database error", slog.String("country_id", id), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to delete country",
			transport.Details(err).With("countryId", id))
		return
	}

	log.Info("countries delete: ok", slog.String("country_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, log *slog.Logger, area, message string, err error) {
	switch {
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidSlug):
		log.Warn(area + ": validation error")
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ErrSlugExists):
		log.Warn(area + ": slug exists")
		transport.WriteError(w, http.StatusConflict, err.Error(), nil)
	default:
		log.Error(area+": database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, message, transport.Details(err))
	}
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

// Register mounts the country routes; admin guards the mutating ones.
func (h *Handler) Register(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Get("/countries", h.List)
	r.Get("/countries/slug/{slug}", h.GetBySlug)
	r.Get("/countries/{id}", h.Get)
	r.With(admin).Post("/countries", h.Create)
	r.With(admin).Put("/countries/{id}", h.Update)
	r.With(admin).Delete("/countries/{id}", h.Delete)
}
