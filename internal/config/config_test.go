package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db.internal:27017/gurukul_prod?retryWrites=true")
	t.Setenv("MONGO_DB", "")
	t.Setenv("BLOB_BACKEND", "")
	t.Setenv("TZ", "UTC")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gurukul_prod", cfg.MongoDB)
	assert.Equal(t, BlobBackendGridFS, cfg.BlobBackend)
	assert.Equal(t, int64(50)<<20, cfg.MaxUploadBytes())
}

func TestLoadRejectsS3WithoutBucket(t *testing.T) {
	t.Setenv("TZ", "UTC")
	t.Setenv("BLOB_BACKEND", "s3")
	t.Setenv("S3_BUCKET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("TZ", "UTC")
	t.Setenv("BLOB_BACKEND", "ftp")

	_, err := Load()
	require.Error(t, err)
}

func TestSplitList(t *testing.T) {
	got := splitList(" https://a.example/ ,, https://b.example")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, got)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}
