package newsevents

import (
	"strings"
	"time"
)

const (
	TypeNews  = "news"
	TypeEvent = "event"

	StatusDraft     = "draft"
	StatusPublished = "published"
)

func IsValidType(value string) bool {
	return value == TypeNews || value == TypeEvent
}

func IsValidStatus(value string) bool {
	return value == StatusDraft || value == StatusPublished
}

type NewsEvent struct {
	ID         string    `bson:"_id" json:"id"`
	Title      string    `bson:"title" json:"title"`
	Type       string    `bson:"type" json:"type"`
	Content    string    `bson:"content" json:"content"`
	Date       time.Time `bson:"date" json:"date"`
	Status     string    `bson:"status" json:"status"`
	Location   string    `bson:"location,omitempty" json:"location,omitempty"`
	ImageURL   string    `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	IsFeatured bool      `bson:"isFeatured" json:"isFeatured"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

type CreateRequest struct {
	Title      string `json:"title" validate:"required"`
	Type       string `json:"type" validate:"required,oneof=news event"`
	Content    string `json:"content" validate:"required"`
	Date       string `json:"date" validate:"required,isodate"`
	Status     string `json:"status" validate:"omitempty,oneof=draft published"`
	Location   string `json:"location"`
	ImageURL   string `json:"imageUrl" validate:"omitempty,url"`
	IsFeatured *bool  `json:"isFeatured"`
}

// normalize trims the single-line fields before validation so a
// whitespace-only value fails "required". Content keeps its formatting unless
// it is blank.
func (r *CreateRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Type = strings.TrimSpace(r.Type)
	r.Date = strings.TrimSpace(r.Date)
	r.Status = strings.TrimSpace(r.Status)
	r.Location = strings.TrimSpace(r.Location)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	if strings.TrimSpace(r.Content) == "" {
		r.Content = ""
	}
}

// UpdateRequest is a partial update; the service enforces the enum and date rules.
type UpdateRequest struct {
	Title      *string `json:"title"`
	Type       *string `json:"type"`
	Content    *string `json:"content"`
	Date       *string `json:"date"`
	Status     *string `json:"status"`
	Location   *string `json:"location"`
	ImageURL   *string `json:"imageUrl"`
	IsFeatured *bool   `json:"isFeatured"`
}

type ListFilter struct {
	Type         string
	Status       string
	FeaturedOnly bool
}
