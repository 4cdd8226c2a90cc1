package forms

import "time"

const (
	StatusPending   = "pending"
	StatusResponded = "responded"
)

func IsValidStatus(value string) bool {
	return value == StatusPending || value == StatusResponded
}

type Submission struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Subject   string    `bson:"subject,omitempty" json:"subject,omitempty"`
	Message   string    `bson:"message" json:"message"`
	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type CreateRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required"`
}

func (r CreateRequest) empty() bool {
	return r == CreateRequest{}
}

type UpdateRequest struct {
	Status *string `json:"status"`
}

type ListFilter struct {
	Status string
}
