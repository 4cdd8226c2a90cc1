package resources

import (
	"io"
	"time"
)

// Resource is the metadata half of an uploaded file; FileID names the blob.
type Resource struct {
	ID          string    `bson:"_id" json:"id"`
	FileID      string    `bson:"fileId" json:"fileId"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Type        string    `bson:"type" json:"type"`
	Size        int64     `bson:"size" json:"size"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

type UploadInput struct {
	Name        string
	Description string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
