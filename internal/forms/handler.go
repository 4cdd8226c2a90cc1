package forms

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
	r.Post("/forms", h.Create)
	r.With(admin).Get("/forms", h.List)
	r.With(admin).Get("/forms/{id}", h.Get)
	r.With(admin).Put("/forms/{id}", h.Update)
	r.With(admin).Delete("/forms/{id}", h.Delete)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	if err := httpx.RequireJSON(r); err != nil {
		log.Warn("forms create: unsupported media type", slog.String("content_type", r.Header.Get("Content-Type")))
		transport.WriteError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
		return
	}

	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("forms create: invalid json", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "invalid json", transport.Details(err))
		return
	}
	if req.empty() {
		log.Warn("forms create: empty submission")
		transport.WriteError(w, http.StatusBadRequest, "Form data must be a non-empty object", nil)
		return
	}

	if err := h.val.Struct(req); err != nil {
		details := httpx.ValidationDetails(h.val.ValidationErrors(err))
		log.Warn("forms create: validation error", slog.Any("fields", details))
		transport.WriteError(w, http.StatusBadRequest, "validation error", transport.Fields{"fields": details})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sub, err := h.service.Create(ctx, req)
	if err != nil {
		log.Error("forms create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to submit form", transport.Details(err))
		return
	}

	go func(created Submission) {
		notifyCtx, notifyCancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer notifyCancel()
		if err := h.service.NotifyNewSubmission(notifyCtx, created); err != nil {
			h.log.Warn("forms create: notification failed",
				slog.String("submission_id", created.ID),
				slog.String("error", err.Error()),
			)
		}
		if err := h.service.NotifySubmitter(notifyCtx, created); err != nil {
			h.log.Warn("forms create: submitter confirmation failed",
				slog.String("submission_id", created.ID),
				slog.String("email", created.Email),
				slog.String("error", err.Error()),
			)
		}
	}(sub)

	log.Info("forms create: ok", slog.String("submission_id", sub.ID))
	transport.WriteJSON(w, http.StatusCreated, sub)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), store.DefaultLimit, store.MaxLimit)
	if err != nil {
		log.Warn("forms list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	filter := ListFilter{Status: r.URL.Query().Get("status")}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page, err := h.service.List(ctx, filter, store.Page{Limit: limit, Offset: offset})
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			log.Warn("forms list: invalid status", slog.String("status", filter.Status))
			transport.WriteError(w, http.StatusBadRequest, "invalid query", transport.Fields{"fields": map[string]string{"status": "oneof"}})
			return
		}
		log.Error("forms list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to fetch submissions", transport.Details(err))
		return
	}

	log.Info("forms list: ok", slog.Int("count", len(page.Items)))
	transport.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sub, err := h.service.Get(ctx, id)
	if err != nil {
		log.Error("forms get: database error", slog.String("submission_id", id), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to fetch submission", transport.Details(err))
		return
	}
	transport.WriteJSON(w, http.StatusOK, sub)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	var req UpdateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("forms update: invalid json", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "invalid json", transport.Details(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sub, err := h.service.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			log.Warn("forms update: invalid status", slog.String("submission_id", id))
			transport.WriteError(w, http.StatusBadRequest, "validation error", transport.Fields{"fields": map[string]string{"status": "oneof"}})
			return
		}
		log.Error("forms update: database error", slog.String("submission_id", id), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to update submission",
			transport.Details(err).With("submissionId", id))
		return
	}

	log.Info("forms update: ok", slog.String("submission_id", id), slog.String("status", sub.Status))
	transport.WriteJSON(w, http.StatusOK, sub)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		log.Error("forms delete: database error", slog.String("submission_id", id), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to delete submission",
			transport.Details(err).With("submissionId", id))
		return
	}

	log.Info("forms delete: ok", slog.String("submission_id", id))
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
