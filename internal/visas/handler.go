package visas

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
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
	r.Get("/visa-requirements", h.List)
	r.Get("/visa-requirements/{id}", h.Get)
	r.With(admin).Post("/visa-requirements", h.Create)
	r.With(admin).Put("/visa-requirements/{id}", h.Update)
	r.With(admin).Delete("/visa-requirements/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	limit, offset := httpx.LimitOffset(r.URL.Query(), store.DefaultLimit, store.MaxLimit)
	countryName := r.URL.Query().Get("countryName")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page, err := h.service.List(ctx, countryName, store.Page{Limit: limit, Offset: offset})
	if err != nil {
		log.Error("visa requirements list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to fetch visa requirements", transport.Details(err))
		return
	}

	log.Info("visa requirements list: ok", slog.String("country_name", countryName), slog.Int("count", len(page.Items)))
	transport.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Get(ctx, id)
	if err != nil {
		log.Error("visa requirements get: database error", slog.String("visa_id", id), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to fetch visa requirement", transport.Details(err))
		return
	}
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		h.writeDecodeError(w, log, "visa requirements create", err)
		return
	}
	req.normalize()

	if err := h.val.Struct(req); err != nil {
		missing := h.val.MissingFields(err)
		log.Warn("visa requirements create: missing fields", slog.Any("fields", missing))
		transport.WriteError(w, http.StatusBadRequest, "Missing required fields", transport.Fields{"missingFields": missing})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Create(ctx, req)
	if err != nil {
		var invalid *InvalidFieldsError
		if errors.As(err, &invalid) {
			log.Warn("visa requirements create: invalid fields", slog.Any("fields", invalid.Fields))
			transport.WriteError(w, http.StatusBadRequest, "Invalid fields", transport.Fields{"invalidFields": invalid.Fields})
			return
		}
		log.Error("visa requirements create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to create visa requirement", transport.Details(err))
		return
	}

	log.Info("visa requirements create: ok", slog.String("visa_id", item.ID), slog.String("country_name", item.CountryName))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	var req UpdateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		h.writeDecodeError(w, log, "visa requirements update", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Update(ctx, id, req)
	if err != nil {
		var invalid *InvalidFieldsError
		if errors.As(err, &invalid) {
			log.Warn("visa requirements update: invalid fields", slog.Any("fields", invalid.Fields))
			transport.WriteError(w, http.StatusBadRequest, "Invalid fields", transport.Fields{"invalidFields": invalid.Fields})
			return
		}
		log.Error("visa requirements update: database error", slog.String("visa_id", id), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to update visa requirement", transport.Details(err))
		return
	}

	log.Info("visa requirements update: ok", slog.String("visa_id", id))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		log.Error("visa requirements delete: database error", slog.String("visa_id", id), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to delete visa requirement",
			transport.Details(err).With("visaRequirementId", id))
		return
	}

	log.Info("visa requirements delete: ok", slog.String("visa_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) writeDecodeError(w http.ResponseWriter, log *slog.Logger, area string, err error) {
	var fieldErr *httpx.FieldTypeError
	if errors.As(err, &fieldErr) && fieldErr.Field == "requirements" {
		log.Warn(area + ": requirements not an array")
		transport.WriteError(w, http.StatusBadRequest, "requirements must be an array", nil)
		return
	}
	log.Warn(area+": invalid json", slog.String("error", err.Error()))
	transport.WriteError(w, http.StatusBadRequest, "invalid json", transport.Details(err))
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
