package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gurukul-backend/internal/auth"
	"gurukul-backend/internal/blob"
	"gurukul-backend/internal/cache"
	"gurukul-backend/internal/config"
	"gurukul-backend/internal/db"
	"gurukul-backend/internal/forms"
	"gurukul-backend/internal/notifications"
	"gurukul-backend/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("mongo connected", slog.String("database", cfg.MongoDB))
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		logger.Error("index creation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var blobs blob.Store
	switch cfg.BlobBackend {
	case config.BlobBackendS3:
		s3Store, err := blob.NewS3Store(ctx, blob.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			logger.Error("s3 setup failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		blobs = s3Store
		logger.Info("blob storage: s3", slog.String("bucket", cfg.S3Bucket))
	default:
		blobs = blob.NewGridFSStore(cols.Database, cfg.GridFSBucket)
		logger.Info("blob storage: gridfs", slog.String("bucket", cfg.GridFSBucket))
	}

	var cacheStore cache.Cache = cache.NewMemory()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisCache.Close()
		logger.Info("redis connected")
		cacheStore = redisCache
	} else {
		logger.Info("redis disabled, session revocations kept in memory")
	}

	var jwtManager *auth.Manager
	if cfg.JWTSecret != "" {
		jwtManager = &auth.Manager{
			Secret:     []byte(cfg.JWTSecret),
			AccessTTL:  time.Duration(cfg.AccessTTLMinutes) * time.Minute,
			RefreshTTL: time.Duration(cfg.RefreshTTLMinutes) * time.Minute,
			Issuer:     "gurukul-backend",
		}
	} else {
		logger.Warn("JWT_SECRET not set, admin login disabled")
	}

	var notifier forms.Notifier
	mailer := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.BrevoSandbox)
	if mailer == nil {
		logger.Info("brevo mailer disabled")
	} else {
		notifier = notifications.NewFormNotifier(mailer, cfg.NotifyEmail)
		logger.Info("brevo mailer enabled",
			slog.String("sender", cfg.BrevoSenderEmail),
			slog.String("notify", cfg.NotifyEmail),
			slog.Bool("sandbox", cfg.BrevoSandbox),
		)
	}

	var registry *prometheus.Registry
	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	handler := server.NewRouter(server.Options{
		Logger:          logger,
		Location:        cfg.Timezone,
		FrontendOrigins: cfg.FrontendOrigins,
		AdminAPIKey:     cfg.AdminAPIKey,
		CookieSecure:    cfg.CookieSecure,
		MaxUploadBytes:  cfg.MaxUploadBytes(),
		Repos:           server.MongoRepositories(cols),
		Blobs:           blobs,
		Cache:           cacheStore,
		Manager:         jwtManager,
		Notifier:        notifier,
		Health: server.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}),
		Registry: registry,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}
