// Package server assembles the HTTP surface: middleware, feature routes,
// health and metrics.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gurukul-backend/internal/admin"
	"gurukul-backend/internal/auth"
	"gurukul-backend/internal/blob"
	"gurukul-backend/internal/cache"
	"gurukul-backend/internal/countries"
	"gurukul-backend/internal/forms"
	"gurukul-backend/internal/middleware"
	"gurukul-backend/internal/newsevents"
	"gurukul-backend/internal/resources"
	"gurukul-backend/internal/statistics"
	"gurukul-backend/internal/transport"
	"gurukul-backend/internal/validation"
	"gurukul-backend/internal/visas"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports backend health for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Options struct {
	Logger          *slog.Logger
	Location        *time.Location
	FrontendOrigins []string
	AdminAPIKey     string
	CookieSecure    bool
	MaxUploadBytes  int64
	RequestTimeout  time.Duration
	// DownloadTimeout bounds resource downloads, which are exempt from
	// RequestTimeout.
	DownloadTimeout time.Duration

	Repos    Repositories
	Blobs    blob.Store
	Cache    cache.Cache
	Manager  *auth.Manager
	Notifier forms.Notifier
	Health   Pinger

	// Registry enables /metrics when set.
	Registry *prometheus.Registry
}

// NewRouter mounts every feature under /api and /api/v1.
func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	val := validation.New()

	countriesHandler := countries.NewHandler(countries.NewService(opts.Repos.Countries, loc), val, log)
	visasHandler := visas.NewHandler(visas.NewService(opts.Repos.VisaRequirements, loc), val, log)
	resourcesHandler := resources.NewHandler(resources.NewService(opts.Repos.Resources, opts.Blobs, loc), opts.MaxUploadBytes, opts.DownloadTimeout, log)
	newsHandler := newsevents.NewHandler(newsevents.NewService(opts.Repos.NewsEvents, loc), val, log)
	formsHandler := forms.NewHandler(forms.NewService(opts.Repos.FormSubmissions, loc, opts.Notifier), val, log)
	statsHandler := statistics.NewHandler(statistics.NewService(opts.Repos.Statistics, loc), log)
	adminHandler := admin.NewHandler(
		admin.NewService(opts.Repos.AdminUsers, opts.Manager, opts.Cache, loc),
		opts.Manager, opts.AdminAPIKey, opts.CookieSecure, val, log,
	)

	requireAdmin := middleware.AdminAuth(opts.AdminAPIKey, opts.Manager)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(opts.FrontendOrigins))
	if opts.Registry != nil {
		r.Use(middleware.MustNewMetrics(opts.Registry).Middleware)
	}
	r.Use(timeoutExcept(timeout, isDownload))

	r.Get("/healthz", healthHandler(opts.Health, log))
	if opts.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}

	registerRoutes := func(api chi.Router) {
		countriesHandler.Register(api, requireAdmin)
		visasHandler.Register(api, requireAdmin)
		resourcesHandler.Register(api, requireAdmin)
		newsHandler.Register(api, requireAdmin)
		formsHandler.Register(api, requireAdmin)
		statsHandler.Register(api, requireAdmin)
		adminHandler.Register(api)
	}

	r.Route("/api", registerRoutes)
	r.Route("/api/v1", registerRoutes)

	return r
}

// timeoutExcept applies chi's Timeout to every request that skip rejects.
func timeoutExcept(d time.Duration, skip func(*http.Request) bool) func(http.Handler) http.Handler {
	timeout := chiMiddleware.Timeout(d)
	return func(next http.Handler) http.Handler {
		timed := timeout(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip(r) {
				next.ServeHTTP(w, r)
				return
			}
			timed.ServeHTTP(w, r)
		})
	}
}

// isDownload matches streamed resource downloads, which carry their own
// deadline.
func isDownload(r *http.Request) bool {
	return r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/resources/download/")
}

func healthHandler(p Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				log.Warn("healthz: backend unavailable", slog.String("error", err.Error()))
				transport.WriteError(w, http.StatusServiceUnavailable, "backend unavailable", transport.Details(err))
				return
			}
		}
		transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
