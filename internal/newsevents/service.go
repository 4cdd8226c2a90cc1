package newsevents

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"gurukul-backend/internal/store"
	"gurukul-backend/internal/validation"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidFilter = errors.New("invalid filter")

// FieldErrors maps a JSON field name to the rule it broke.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid fields: " + strings.Join(keys, ", ")
}

type Service struct {
	repo     store.Repository[NewsEvent]
	location *time.Location
}

func NewService(repo store.Repository[NewsEvent], location *time.Location) *Service {
	return &Service{
		repo:     repo,
		location: location,
	}
}

func (s *Service) List(ctx context.Context, filter ListFilter, page store.Page) (store.List[NewsEvent], error) {
	query := bson.M{}
	if t := strings.ToLower(strings.TrimSpace(filter.Type)); t != "" {
		if !IsValidType(t) {
			return store.List[NewsEvent]{}, ErrInvalidFilter
		}
		query["type"] = t
	}
	if st := strings.ToLower(strings.TrimSpace(filter.Status)); st != "" {
		if !IsValidStatus(st) {
			return store.List[NewsEvent]{}, ErrInvalidFilter
		}
		query["status"] = st
	}
	if filter.FeaturedOnly {
		query["isFeatured"] = true
	}
	return s.repo.List(ctx, query, page)
}

func (s *Service) Get(ctx context.Context, id string) (NewsEvent, error) {
	return s.repo.Get(ctx, strings.TrimSpace(id))
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (NewsEvent, error) {
	req.normalize()
	if req.Title == "" || req.Content == "" {
		invalid := FieldErrors{}
		if req.Title == "" {
			invalid["title"] = "required"
		}
		if req.Content == "" {
			invalid["content"] = "required"
		}
		return NewsEvent{}, invalid
	}
	date, err := validation.ParseISODate(req.Date, s.location)
	if err != nil {
		return NewsEvent{}, FieldErrors{"date": "isodate"}
	}
	status := req.Status
	if status == "" {
		status = StatusDraft
	}

	now := time.Now().In(s.location)
	item := NewsEvent{
		ID:         primitive.NewObjectID().Hex(),
		Title:      req.Title,
		Type:       req.Type,
		Content:    req.Content,
		Date:       date,
		Status:     status,
		Location:   req.Location,
		ImageURL:   req.ImageURL,
		IsFeatured: req.IsFeatured != nil && *req.IsFeatured,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return NewsEvent{}, err
	}
	return item, nil
}

// Update validates every present field before touching the backend, so a
// rejected request never mutates the document.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (NewsEvent, error) {
	set := bson.M{}
	invalid := FieldErrors{}

	if req.Title != nil {
		if v := strings.TrimSpace(*req.Title); v == "" {
			invalid["title"] = "required"
		} else {
			set["title"] = v
		}
	}
	if req.Type != nil {
		if !IsValidType(*req.Type) {
			invalid["type"] = "oneof"
		} else {
			set["type"] = *req.Type
		}
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			invalid["content"] = "required"
		} else {
			set["content"] = *req.Content
		}
	}
	if req.Date != nil {
		date, err := validation.ParseISODate(*req.Date, s.location)
		if err != nil {
			invalid["date"] = "isodate"
		} else {
			set["date"] = date
		}
	}
	if req.Status != nil {
		if !IsValidStatus(*req.Status) {
			invalid["status"] = "oneof"
		} else {
			set["status"] = *req.Status
		}
	}
	if req.Location != nil {
		set["location"] = strings.TrimSpace(*req.Location)
	}
	if req.ImageURL != nil {
		set["imageUrl"] = strings.TrimSpace(*req.ImageURL)
	}
	if req.IsFeatured != nil {
		set["isFeatured"] = *req.IsFeatured
	}

	if len(invalid) > 0 {
		return NewsEvent{}, invalid
	}

	set["updatedAt"] = time.Now().In(s.location)
	return s.repo.Update(ctx, strings.TrimSpace(id), set)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, strings.TrimSpace(id))
}
