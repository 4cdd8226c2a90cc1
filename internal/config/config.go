package config

import (
	"errors"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BlobBackendGridFS = "gridfs"
	BlobBackendS3     = "s3"
)

type Config struct {
	Env               string
	ServerAddr        string
	LogLevel          slog.Level
	MongoURI          string
	MongoDB           string
	FrontendOrigins   []string
	RedisURL          string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	AdminAPIKey       string
	AdminUser         string
	AdminPassword     string
	JWTSecret         string
	AccessTTLMinutes  int
	RefreshTTLMinutes int
	CookieSecure      bool
	Timezone          *time.Location

	BlobBackend  string
	GridFSBucket string
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string
	MaxUploadMB  int

	BrevoAPIKey      string
	BrevoSenderEmail string
	BrevoSenderName  string
	BrevoSandbox     bool
	NotifyEmail      string

	MetricsEnabled bool
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// Load reads the process environment. Values from a local .env file are
// applied first but never override variables that are already set.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	loc, err := time.LoadLocation(getEnv("TZ", "Asia/Kathmandu"))
	if err != nil {
		return nil, err
	}

	mongoURI := getEnv("MONGO_URI", "mongodb://localhost:27017/gurukul")
	mongoDB := getEnv("MONGO_DB", "")
	if mongoDB == "" {
		mongoDB = mongoDBFromURI(mongoURI)
	}
	if mongoDB == "" {
		mongoDB = "gurukul"
	}

	cfg := &Config{
		Env:               getEnv("APP_ENV", "development"),
		ServerAddr:        getEnv("SERVER_ADDR", ":8080"),
		LogLevel:          parseLevel(getEnv("LOG_LEVEL", "info")),
		MongoURI:          mongoURI,
		MongoDB:           mongoDB,
		FrontendOrigins:   splitList(getEnv("FRONTEND_ORIGINS", "http://localhost:3000")),
		RedisURL:          getEnv("REDIS_URL", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		AdminAPIKey:       getEnv("ADMIN_API_KEY", ""),
		AdminUser:         getEnv("ADMIN_USER", "admin"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		AccessTTLMinutes:  getEnvInt("ACCESS_TTL_MINUTES", 15),
		RefreshTTLMinutes: getEnvInt("REFRESH_TTL_MINUTES", 43200),
		CookieSecure:      getEnvBool("COOKIE_SECURE", false),
		Timezone:          loc,

		BlobBackend:  strings.ToLower(getEnv("BLOB_BACKEND", BlobBackendGridFS)),
		GridFSBucket: getEnv("GRIDFS_BUCKET", "resources"),
		S3Bucket:     getEnv("S3_BUCKET", ""),
		S3Region:     getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:   getEnv("S3_ENDPOINT", ""),
		S3AccessKey:  getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:  getEnv("S3_SECRET_KEY", ""),
		MaxUploadMB:  getEnvInt("MAX_UPLOAD_MB", 50),

		BrevoAPIKey:      getEnv("BREVO_API_KEY", ""),
		BrevoSenderEmail: getEnv("BREVO_SENDER_EMAIL", ""),
		BrevoSenderName:  getEnv("BREVO_SENDER_NAME", "Gurukul Education Foundation"),
		BrevoSandbox:     getEnvBool("BREVO_SANDBOX", false),
		NotifyEmail:      getEnv("NOTIFY_EMAIL", ""),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.BlobBackend {
	case BlobBackendGridFS:
		if strings.TrimSpace(c.GridFSBucket) == "" {
			return errors.New("GRIDFS_BUCKET must not be empty")
		}
	case BlobBackendS3:
		if strings.TrimSpace(c.S3Bucket) == "" {
			return errors.New("S3_BUCKET is required when BLOB_BACKEND=s3")
		}
	default:
		return errors.New("BLOB_BACKEND must be one of gridfs, s3")
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// MaxUploadBytes is the request body cap applied to resource uploads.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func mongoDBFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	db := strings.Trim(u.Path, "/")
	if db == "" {
		return ""
	}
	// mongodb URIs sometimes include extra path segments; we only support the first one as db name.
	if idx := strings.Index(db, "/"); idx >= 0 {
		db = db[:idx]
	}
	return db
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.TrimRight(p, "/"))
		}
	}
	return out
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
