package statistics

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"gurukul-backend/internal/store"

	"go.mongodb.org/mongo-driver/bson"
)

var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	repo     store.Repository[Statistic]
	location *time.Location
}

func NewService(repo store.Repository[Statistic], location *time.Location) *Service {
	return &Service{
		repo:     repo,
		location: location,
	}
}

func (s *Service) List(ctx context.Context) ([]Statistic, error) {
	items, err := s.repo.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// SetCount overwrites the count of an existing statistic. It never creates
// one: an unknown name yields store.ErrNotFound.
func (s *Service) SetCount(ctx context.Context, req UpdateRequest) (Statistic, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Count == nil || *req.Count < 0 {
		return Statistic{}, ErrInvalidInput
	}
	return s.repo.UpdateOne(ctx, bson.M{"name": name}, bson.M{
		"count":     *req.Count,
		"updatedAt": time.Now().In(s.location),
	})
}
