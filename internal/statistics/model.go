package statistics

import "time"

// Statistic is a named counter shown on the public site. Records are seeded
// out of band; the API only updates existing ones.
type Statistic struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Count     int64     `bson:"count" json:"count"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

type UpdateRequest struct {
	Name  string `json:"name"`
	Count *int64 `json:"count"`
}
