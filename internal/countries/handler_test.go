package countries

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gurukul-backend/internal/store"
	"gurukul-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passThrough(next http.Handler) http.Handler { return next }

func newTestRouter(t *testing.T) (http.Handler, *store.MemoryRepository[Country]) {
	t.Helper()
	repo := store.NewMemoryRepository[Country]()
	h := NewHandler(NewService(repo, time.UTC), validation.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r, passThrough)
	return r, repo
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndList(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/countries", `{"name":" New Zealand ","highlights":["Post-study work visa"," "],"isPopular":true}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created Country
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "New Zealand", created.Name)
	assert.Equal(t, "new-zealand", created.Slug)
	assert.Equal(t, []string{"Post-study work visa"}, created.Highlights)
	assert.NotEmpty(t, created.ID)

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/countries", `{"name":"Japan"}`).Code)

	rec = do(t, h, http.MethodGet, "/countries?popular=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page store.List[Country]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, int64(50), page.Limit)

	rec = do(t, h, http.MethodGet, "/countries/slug/new-zealand", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/countries/slug/atlantis", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListIgnoresNegativePaging(t *testing.T) {
	h, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/countries", `{"name":"Canada"}`).Code)

	rec := do(t, h, http.MethodGet, "/countries?limit=-3&offset=-1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page store.List[Country]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(50), page.Limit)
	assert.Equal(t, int64(0), page.Offset)
	assert.Len(t, page.Items, 1)
}

func TestCreateRequiresName(t *testing.T) {
	h, repo := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/countries", `{"description":"no name"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/countries", `{"name":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, repo.Len())
}

func TestUpdatePartialAndDelete(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/countries", `{"name":"Australia","description":"Sunny"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Country
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = do(t, h, http.MethodPut, "/countries/"+created.ID, `{"isPopular":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated Country
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.IsPopular)
	assert.Equal(t, "Sunny", updated.Description)

	rec = do(t, h, http.MethodPut, "/countries/"+created.ID, `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodDelete, "/countries/"+created.ID, "").Code)
	rec = do(t, h, http.MethodDelete, "/countries/"+created.ID, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), created.ID)
}
