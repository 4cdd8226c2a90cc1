package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title   string   `json:"title" validate:"required"`
	Items   []string `json:"items" validate:"required"`
	CtaLink string   `json:"ctaLink" validate:"required"`
	Date    string   `json:"date" validate:"omitempty,isodate"`
	Phone   string   `json:"phone" validate:"omitempty,phone"`
}

func TestMissingFieldsUsesJSONNames(t *testing.T) {
	v := New()
	err := v.Struct(sample{Title: "Visa", Items: []string{"passport"}})
	require.Error(t, err)
	assert.Equal(t, []string{"ctaLink"}, v.MissingFields(err))
}

func TestMissingFieldsKeepsDeclarationOrder(t *testing.T) {
	v := New()
	err := v.Struct(sample{})
	assert.Equal(t, []string{"title", "items", "ctaLink"}, v.MissingFields(err))
}

func TestISODateRule(t *testing.T) {
	v := New()
	ok := sample{Title: "t", Items: []string{"x"}, CtaLink: "/apply", Date: "2026-03-01"}
	assert.NoError(t, v.Struct(ok))

	ok.Date = "2026-03-01T10:00:00Z"
	assert.NoError(t, v.Struct(ok))

	ok.Date = "next tuesday"
	err := v.Struct(ok)
	require.Error(t, err)
	assert.Equal(t, "isodate", v.ValidationErrors(err)[0].Tag())
}

func TestParseISODate(t *testing.T) {
	loc := time.FixedZone("NPT", 5*3600+45*60)
	got, err := ParseISODate("2026-05-10", loc)
	require.NoError(t, err)
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, 10, got.Day())

	got, err = ParseISODate("2026-05-10T08:30:00+02:00", loc)
	require.NoError(t, err)
	assert.Equal(t, 6, got.UTC().Hour())

	_, err = ParseISODate("10/05/2026", loc)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestPhoneRule(t *testing.T) {
	v := New()
	s := sample{Title: "t", Items: []string{"x"}, CtaLink: "/a", Phone: "+977 980-1234567"}
	assert.NoError(t, v.Struct(s))
	s.Phone = "call me"
	assert.Error(t, v.Struct(s))
}
