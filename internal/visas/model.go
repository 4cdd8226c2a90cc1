package visas

import (
	"strings"
	"time"
)

type VisaRequirement struct {
	ID           string    `bson:"_id" json:"id"`
	CountryName  string    `bson:"countryName" json:"countryName"`
	Title        string    `bson:"title" json:"title"`
	Requirements []string  `bson:"requirements" json:"requirements"`
	CtaText      string    `bson:"ctaText" json:"ctaText"`
	CtaLink      string    `bson:"ctaLink" json:"ctaLink"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CreateRequest field order is the order reported in missingFields.
type CreateRequest struct {
	CountryName  string   `json:"countryName" validate:"required"`
	Title        string   `json:"title" validate:"required"`
	Requirements []string `json:"requirements" validate:"required"`
	CtaText      string   `json:"ctaText" validate:"required"`
	CtaLink      string   `json:"ctaLink" validate:"required"`
}

// normalize trims the scalar fields so whitespace-only values count as
// missing. Requirements are left exactly as sent.
func (r *CreateRequest) normalize() {
	r.CountryName = strings.TrimSpace(r.CountryName)
	r.Title = strings.TrimSpace(r.Title)
	r.CtaText = strings.TrimSpace(r.CtaText)
	r.CtaLink = strings.TrimSpace(r.CtaLink)
}

type UpdateRequest struct {
	CountryName  *string   `json:"countryName"`
	Title        *string   `json:"title"`
	Requirements *[]string `json:"requirements"`
	CtaText      *string   `json:"ctaText"`
	CtaLink      *string   `json:"ctaLink"`
}

// validRequirements reports whether values holds at least one entry and no
// blank ones.
func validRequirements(values []string) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}
