package visas

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

func newTestRouter(t *testing.T) (http.Handler, *store.MemoryRepository[VisaRequirement]) {
	t.Helper()
	repo := store.NewMemoryRepository[VisaRequirement]()
	h := NewHandler(NewService(repo, time.UTC), validation.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r, func(next http.Handler) http.Handler { return next })
	return r, repo
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
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

const validBody = `{
	"countryName": "Australia",
	"title": "Student visa (subclass 500)",
	"requirements": ["Confirmation of Enrolment", "GTE statement", "OSHC", "English test"],
	"ctaText": "Book a consultation",
	"ctaLink": "/contact"
}`

func TestCreateMissingCtaLink(t *testing.T) {
	h, repo := newTestRouter(t)
	body := `{"countryName":"Australia","title":"Student visa","requirements":["Passport"],"ctaText":"Apply"}`

	rec := do(h, http.MethodPost, "/visa-requirements", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error         string   `json:"error"`
		MissingFields []string `json:"missingFields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Missing required fields", resp.Error)
	assert.Equal(t, []string{"ctaLink"}, resp.MissingFields)
	assert.Equal(t, 0, repo.Len())
}

func TestCreateRejectsScalarRequirements(t *testing.T) {
	h, repo := newTestRouter(t)
	body := `{"countryName":"Canada","title":"Study permit","requirements":"Passport","ctaText":"Apply","ctaLink":"/apply"}`

	rec := do(h, http.MethodPost, "/visa-requirements", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"requirements must be an array"}`, rec.Body.String())
	assert.Equal(t, 0, repo.Len())
}

func TestCreateTreatsBlankValuesAsMissing(t *testing.T) {
	h, _ := newTestRouter(t)
	body := `{"countryName":"  ","title":"T","requirements":["Passport"],"ctaText":"A","ctaLink":"/a"}`

	rec := do(h, http.MethodPost, "/visa-requirements", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"missingFields":["countryName"]`)
}

func TestCreateRejectsBlankOrEmptyRequirements(t *testing.T) {
	h, repo := newTestRouter(t)

	for _, requirements := range []string{`[]`, `["Passport",""]`, `["Passport","   ","Offer letter"]`} {
		body := `{"countryName":"UK","title":"Student route","requirements":` + requirements + `,"ctaText":"Apply","ctaLink":"/apply"}`
		rec := do(h, http.MethodPost, "/visa-requirements", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, requirements)
		assert.JSONEq(t, `{"error":"Invalid fields","invalidFields":["requirements"]}`, rec.Body.String(), requirements)
	}
	assert.Equal(t, 0, repo.Len())
}

func TestRequirementsStoredExactlyAsSent(t *testing.T) {
	h, _ := newTestRouter(t)
	body := `{"countryName":"UK","title":"Student route","requirements":["  Passport  ","CAS number\t","Bank statement"],"ctaText":"Apply","ctaLink":"/apply"}`

	rec := do(h, http.MethodPost, "/visa-requirements", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created VisaRequirement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = do(h, http.MethodGet, "/visa-requirements/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched VisaRequirement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, []string{"  Passport  ", "CAS number\t", "Bank statement"}, fetched.Requirements)
}

func TestRequirementsRoundTripKeepsOrder(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(h, http.MethodPost, "/visa-requirements", validBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created VisaRequirement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = do(h, http.MethodGet, "/visa-requirements/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched VisaRequirement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, []string{"Confirmation of Enrolment", "GTE statement", "OSHC", "English test"}, fetched.Requirements)
}

func TestListFiltersByCountry(t *testing.T) {
	h, _ := newTestRouter(t)
	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/visa-requirements", validBody).Code)
	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/visa-requirements",
		strings.Replace(validBody, "Australia", "Japan", 1)).Code)

	rec := do(h, http.MethodGet, "/visa-requirements?countryName=Japan", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page store.List[VisaRequirement]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Japan", page.Items[0].CountryName)

	rec = do(h, http.MethodGet, "/visa-requirements?countryName=Narnia", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Empty(t, page.Items)

	rec = do(h, http.MethodGet, "/visa-requirements", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(2), page.Total)
}

func TestUpdatePartial(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := do(h, http.MethodPost, "/visa-requirements", validBody)
	var created VisaRequirement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = do(h, http.MethodPut, "/visa-requirements/"+created.ID, `{"requirements":["Passport","Offer letter"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated VisaRequirement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, []string{"Passport", "Offer letter"}, updated.Requirements)
	assert.Equal(t, created.Title, updated.Title)

	rec = do(h, http.MethodPut, "/visa-requirements/"+created.ID, `{"requirements":"Passport"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPut, "/visa-requirements/"+created.ID, `{"requirements":["Passport"," "]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"invalidFields":["requirements"]`)

	rec = do(h, http.MethodPut, "/visa-requirements/"+created.ID, `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"invalidFields":["title"]`)

	rec = do(h, http.MethodPut, "/visa-requirements/missing", `{"title":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDelete(t *testing.T) {
	h, repo := newTestRouter(t)
	rec := do(h, http.MethodPost, "/visa-requirements", validBody)
	var created VisaRequirement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	assert.Equal(t, http.StatusOK, do(h, http.MethodDelete, "/visa-requirements/"+created.ID, "").Code)
	assert.Equal(t, 0, repo.Len())
	assert.Equal(t, http.StatusInternalServerError, do(h, http.MethodGet, "/visa-requirements/"+created.ID, "").Code)
}
