package admin

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"gurukul-backend/internal/auth"
	"gurukul-backend/internal/cache"
	"gurukul-backend/internal/store"
	"gurukul-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *auth.Manager {
	return &auth.Manager{
		Secret:     []byte("test-secret"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		Issuer:     "gurukul-backend",
	}
}

func newTestRouter(t *testing.T, manager *auth.Manager) (http.Handler, *Service) {
	t.Helper()
	svc := NewService(store.NewMemoryRepository[User](), manager, cache.NewMemory(), time.UTC)
	created, err := svc.EnsureUser(context.Background(), " Admin ", "s3cret-pass")
	require.NoError(t, err)
	require.True(t, created)

	h := NewHandler(svc, manager, "ops-key", false, validation.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	return r, svc
}

func do(h http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func cookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func login(t *testing.T, h http.Handler) (*http.Cookie, *http.Cookie) {
	t.Helper()
	rec := do(h, http.MethodPost, "/admin/login", `{"username":"admin","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return cookie(t, rec, auth.AccessCookie), cookie(t, rec, auth.RefreshCookie)
}

func TestLoginSetsCookiesAndSession(t *testing.T) {
	h, _ := newTestRouter(t, testManager())
	access, refresh := login(t, h)

	assert.True(t, access.HttpOnly)
	assert.Equal(t, 900, access.MaxAge)
	assert.NotEmpty(t, refresh.Value)

	rec := do(h, http.MethodGet, "/admin/session", "", access)
	assert.JSONEq(t, `{"authenticated":true}`, rec.Body.String())

	rec = do(h, http.MethodGet, "/admin/session", "")
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())

	rec = do(h, http.MethodGet, "/admin/session", "", &http.Cookie{Name: auth.AccessCookie, Value: refresh.Value})
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())
}

func TestSessionAcceptsAdminKey(t *testing.T) {
	h, _ := newTestRouter(t, testManager())
	req := httptest.NewRequest(http.MethodGet, "/admin/session", nil)
	req.Header.Set("X-Admin-Key", "ops-key")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.JSONEq(t, `{"authenticated":true}`, rec.Body.String())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h, _ := newTestRouter(t, testManager())

	rec := do(h, http.MethodPost, "/admin/login", `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodPost, "/admin/login", `{"username":"nobody","password":"s3cret-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodPost, "/admin/login", `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshRotatesAndRevokes(t *testing.T) {
	h, _ := newTestRouter(t, testManager())
	_, refresh := login(t, h)

	rec := do(h, http.MethodPost, "/admin/refresh", "", refresh)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rotated := cookie(t, rec, auth.RefreshCookie)
	assert.NotEqual(t, refresh.Value, rotated.Value)

	rec = do(h, http.MethodPost, "/admin/refresh", "", refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodPost, "/admin/logout", "", rotated)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, -1, cookie(t, rec, auth.AccessCookie).MaxAge)

	rec = do(h, http.MethodPost, "/admin/refresh", "", rotated)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConcurrentRefreshRotatesOnce(t *testing.T) {
	_, svc := newTestRouter(t, testManager())
	ctx := context.Background()
	_, session, err := svc.Login(ctx, "admin", "s3cret-pass")
	require.NoError(t, err)

	const attempts = 16
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Refresh(ctx, session.RefreshToken)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
	assert.Equal(t, 1, succeeded)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	h, _ := newTestRouter(t, testManager())
	access, _ := login(t, h)

	rec := do(h, http.MethodPost, "/admin/refresh", "", &http.Cookie{Name: auth.RefreshCookie, Value: access.Value})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodPost, "/admin/refresh", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginWithoutSecret(t *testing.T) {
	svc := NewService(store.NewMemoryRepository[User](), nil, cache.NewMemory(), time.UTC)
	h := NewHandler(svc, nil, "", false, validation.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)

	rec := do(r, http.MethodPost, "/admin/login", `{"username":"admin","password":"x"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	_, svc := newTestRouter(t, testManager())
	created, err := svc.EnsureUser(context.Background(), "admin", "other")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = svc.EnsureUser(context.Background(), "", "x")
	assert.Error(t, err)
}
