package countries

import "time"

type Country struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Slug        string    `bson:"slug" json:"slug"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	FlagURL     string    `bson:"flagUrl,omitempty" json:"flagUrl,omitempty"`
	ImageURL    string    `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Highlights  []string  `bson:"highlights" json:"highlights"`
	IsPopular   bool      `bson:"isPopular" json:"isPopular"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

type CreateRequest struct {
	Name        string   `json:"name" validate:"required"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	FlagURL     string   `json:"flagUrl" validate:"omitempty,url"`
	ImageURL    string   `json:"imageUrl" validate:"omitempty,url"`
	Highlights  []string `json:"highlights" validate:"omitempty,dive,required"`
	IsPopular   *bool    `json:"isPopular"`
}

// UpdateRequest is a partial update: nil fields are left untouched.
type UpdateRequest struct {
	Name        *string   `json:"name"`
	Slug        *string   `json:"slug"`
	Description *string   `json:"description"`
	FlagURL     *string   `json:"flagUrl" validate:"omitempty,url"`
	ImageURL    *string   `json:"imageUrl" validate:"omitempty,url"`
	Highlights  *[]string `json:"highlights" validate:"omitempty,dive,required"`
	IsPopular   *bool     `json:"isPopular"`
}

type ListFilter struct {
	PopularOnly bool
}
