package admin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"gurukul-backend/internal/auth"
	"gurukul-backend/internal/httpx"
	"gurukul-backend/internal/middleware"
	"gurukul-backend/internal/transport"
	"gurukul-backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service      *Service
	manager      *auth.Manager
	adminKey     string
	cookieSecure bool
	val          *validation.Validator
	log          *slog.Logger
}

func NewHandler(service *Service, manager *auth.Manager, adminKey string, cookieSecure bool, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		service:      service,
		manager:      manager,
		adminKey:     adminKey,
		cookieSecure: cookieSecure,
		val:          val,
		log:          log,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/login", h.Login)
	r.Post("/admin/refresh", h.Refresh)
	r.Post("/admin/logout", h.Logout)
	r.Get("/admin/session", h.Session)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req LoginRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin login: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin login: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error",
			transport.Fields{"fields": httpx.ValidationDetails(h.val.ValidationErrors(err))})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, session, err := h.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotConfigured):
			log.Warn("admin login: not configured")
			transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
		case errors.Is(err, ErrInvalidCredentials):
			log.Warn("admin login: invalid credentials", slog.String("username", req.Username))
			transport.WriteError(w, http.StatusUnauthorized, "invalid credentials", nil)
		default:
			log.Error("admin login: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "login failed", transport.Details(err))
		}
		return
	}

	h.setAuthCookies(w, session)
	log.Info("admin login: ok", slog.String("user_id", user.ID), slog.String("username", user.Username))
	transport.WriteJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	cookie, err := r.Cookie(auth.RefreshCookie)
	if err != nil || cookie.Value == "" {
		log.Warn("admin refresh: missing refresh token")
		transport.WriteError(w, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	session, err := h.service.Refresh(ctx, cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotConfigured):
			log.Warn("admin refresh: not configured")
			transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
		case errors.Is(err, ErrInvalidToken):
			log.Warn("admin refresh: invalid refresh token")
			h.clearAuthCookies(w)
			transport.WriteError(w, http.StatusUnauthorized, "invalid refresh token", nil)
		default:
			log.Error("admin refresh: cache error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "refresh failed", transport.Details(err))
		}
		return
	}

	h.setAuthCookies(w, session)
	log.Info("admin refresh: ok")
	transport.WriteJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	if cookie, err := r.Cookie(auth.RefreshCookie); err == nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := h.service.Logout(ctx, cookie.Value); err != nil {
			log.Warn("admin logout: revoke failed", slog.String("error", err.Error()))
		}
	}

	h.clearAuthCookies(w)
	log.Info("admin logout: ok")
	transport.WriteJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// Session answers whether the caller is signed in as an admin. Admin pages
// use it to decide whether to render.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, SessionResponse{
		Authenticated: middleware.IsAdminRequest(r, h.adminKey, h.manager),
	})
}

func (h *Handler) setAuthCookies(w http.ResponseWriter, session Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessCookie,
		Value:    session.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.manager.AccessTTL.Seconds()),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     auth.RefreshCookie,
		Value:    session.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.manager.RefreshTTL.Seconds()),
	})
}

func (h *Handler) clearAuthCookies(w http.ResponseWriter) {
	expire := time.Now().Add(-1 * time.Hour)
	for _, name := range []string{auth.AccessCookie, auth.RefreshCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   h.cookieSecure,
			SameSite: http.SameSiteLaxMode,
			Expires:  expire,
			MaxAge:   -1,
		})
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
