package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gurukul-backend/internal/admin"
	"gurukul-backend/internal/auth"
	"gurukul-backend/internal/blob"
	"gurukul-backend/internal/cache"
	"gurukul-backend/internal/resources"
	"gurukul-backend/internal/statistics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminKey = "ops-key"

func newTestServer(t *testing.T, health Pinger) (http.Handler, Repositories, *prometheus.Registry) {
	t.Helper()
	repos := MemoryRepositories()
	reg := prometheus.NewRegistry()
	manager := &auth.Manager{
		Secret:     []byte("router-secret"),
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
		Issuer:     "gurukul-backend",
	}
	cacheStore := cache.NewMemory()

	users := admin.NewService(repos.AdminUsers, manager, cacheStore, time.UTC)
	_, err := users.EnsureUser(context.Background(), "admin", "correct horse")
	require.NoError(t, err)

	h := NewRouter(Options{
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		Location:        time.UTC,
		FrontendOrigins: []string{"http://localhost:3000"},
		AdminAPIKey:     adminKey,
		MaxUploadBytes:  1 << 20,
		Repos:           repos,
		Blobs:           blob.NewMemoryStore(),
		Cache:           cacheStore,
		Manager:         manager,
		Health:          health,
		Registry:        reg,
	})
	return h, repos, reg
}

type request struct {
	method, path, body string
	header             map[string]string
	cookies            []*http.Cookie
}

func send(h http.Handler, rq request) *httptest.ResponseRecorder {
	var rdr io.Reader
	if rq.body != "" {
		rdr = strings.NewReader(rq.body)
	}
	req := httptest.NewRequest(rq.method, rq.path, rdr)
	if rq.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range rq.header {
		req.Header.Set(k, v)
	}
	for _, c := range rq.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h, _, _ := newTestServer(t, PingFunc(func(ctx context.Context) error { return nil }))
	rec := send(h, request{method: http.MethodGet, path: "/healthz"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	h, _, _ = newTestServer(t, PingFunc(func(ctx context.Context) error { return errors.New("no primary") }))
	rec = send(h, request{method: http.MethodGet, path: "/healthz"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWritesRequireAdmin(t *testing.T) {
	h, _, _ := newTestServer(t, nil)
	body := `{"name":"New Zealand"}`

	rec := send(h, request{method: http.MethodPost, path: "/api/countries", body: body})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = send(h, request{method: http.MethodPost, path: "/api/countries", body: body, header: map[string]string{"X-Admin-Key": adminKey}})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = send(h, request{method: http.MethodGet, path: "/api/v1/countries"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slug":"new-zealand"`)
}

func TestFormsArePublicToSubmitAndPrivateToRead(t *testing.T) {
	h, repos, _ := newTestServer(t, nil)

	rec := send(h, request{method: http.MethodPost, path: "/api/forms", body: `{"name":"Hari","email":"hari@example.com","message":"Scholarships?"}`})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = send(h, request{method: http.MethodGet, path: "/api/forms"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = send(h, request{method: http.MethodGet, path: "/api/forms", header: map[string]string{"X-Admin-Key": adminKey}})
	assert.Equal(t, http.StatusOK, rec.Code)

	items, err := repos.FormSubmissions.Find(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestLoginCookieAuthorizesWrites(t *testing.T) {
	h, repos, _ := newTestServer(t, nil)
	require.NoError(t, repos.Statistics.Create(context.Background(), statistics.Statistic{ID: "s1", Name: "students", Count: 10}))

	rec := send(h, request{method: http.MethodPost, path: "/api/admin/login", body: `{"username":"admin","password":"correct horse"}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()

	rec = send(h, request{method: http.MethodGet, path: "/api/admin/session", cookies: cookies})
	assert.JSONEq(t, `{"authenticated":true}`, rec.Body.String())

	rec = send(h, request{method: http.MethodPost, path: "/api/statistics", body: `{"name":"students","count":25}`, cookies: cookies})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = send(h, request{method: http.MethodPost, path: "/api/statistics", body: `{"name":"students","count":30}`})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestIDAndMetrics(t *testing.T) {
	h, _, reg := newTestServer(t, nil)

	rec := send(h, request{method: http.MethodGet, path: "/api/statistics", header: map[string]string{"X-Request-ID": "req-42"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if mf.GetName() != "gurukul_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "route" && l.GetValue() == "/api/statistics" {
					found = true
				}
			}
		}
	}
	assert.True(t, found, "expected request counter for /api/statistics")

	rec = send(h, request{method: http.MethodGet, path: "/metrics"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gurukul_http_requests_total")
}

// deadlineBlobs records the deadline each download reaches the blob store with.
type deadlineBlobs struct {
	*blob.MemoryStore
	deadlines chan time.Time
}

func (d deadlineBlobs) Open(ctx context.Context, id string) (blob.Info, io.ReadCloser, error) {
	deadline, _ := ctx.Deadline()
	d.deadlines <- deadline
	return d.MemoryStore.Open(ctx, id)
}

func TestDownloadsOutliveRequestTimeout(t *testing.T) {
	repos := MemoryRepositories()
	blobs := deadlineBlobs{MemoryStore: blob.NewMemoryStore(), deadlines: make(chan time.Time, 1)}
	h := NewRouter(Options{
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		RequestTimeout:  time.Second,
		DownloadTimeout: time.Hour,
		Repos:           repos,
		Blobs:           blobs,
		Cache:           cache.NewMemory(),
	})

	ctx := context.Background()
	info, err := blobs.Put(ctx, "guide.pdf", "application/pdf", 5, strings.NewReader("%PDF-"))
	require.NoError(t, err)
	require.NoError(t, repos.Resources.Create(ctx, resources.Resource{
		ID:     "r1",
		FileID: info.ID,
		Name:   "Visa guide",
		Type:   "application/pdf",
		Size:   5,
	}))

	rec := send(h, request{method: http.MethodGet, path: "/api/resources/download/" + info.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "%PDF-", rec.Body.String())

	deadline := <-blobs.deadlines
	require.False(t, deadline.IsZero())
	assert.Greater(t, time.Until(deadline), 30*time.Minute)
}
