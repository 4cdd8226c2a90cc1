package countries

import (
	"context"
	"errors"
	"strings"
	"time"

	"gurukul-backend/internal/store"
	"gurukul-backend/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrInvalidName = errors.New("name must not be empty")
	ErrInvalidSlug = errors.New("invalid slug")
	ErrSlugExists  = errors.New("slug already exists")
)

type Service struct {
	repo     store.Repository[Country]
	location *time.Location
}

func NewService(repo store.Repository[Country], location *time.Location) *Service {
	return &Service{
		repo:     repo,
		location: location,
	}
}

func (s *Service) List(ctx context.Context, filter ListFilter, page store.Page) (store.List[Country], error) {
	query := bson.M{}
	if filter.PopularOnly {
		query["isPopular"] = true
	}
	return s.repo.List(ctx, query, page)
}

func (s *Service) Get(ctx context.Context, id string) (Country, error) {
	return s.repo.Get(ctx, strings.TrimSpace(id))
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (Country, error) {
	return s.repo.FindOne(ctx, bson.M{"slug": strings.TrimSpace(slug)})
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Country, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Country{}, ErrInvalidName
	}
	slug := normalizeSlug(req.Slug, name)
	if slug == "" {
		return Country{}, ErrInvalidSlug
	}

	now := time.Now().In(s.location)
	item := Country{
		ID:          primitive.NewObjectID().Hex(),
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
		FlagURL:     strings.TrimSpace(req.FlagURL),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Highlights:  normalizeList(req.Highlights),
		IsPopular:   req.IsPopular != nil && *req.IsPopular,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Country{}, ErrSlugExists
		}
		return Country{}, err
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (Country, error) {
	set := bson.M{"updatedAt": time.Now().In(s.location)}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return Country{}, ErrInvalidName
		}
		set["name"] = name
	}
	if req.Slug != nil {
		slug := utils.Slugify(*req.Slug)
		if slug == "" {
			return Country{}, ErrInvalidSlug
		}
		set["slug"] = slug
	}
	if req.Description != nil {
		set["description"] = strings.TrimSpace(*req.Description)
	}
	if req.FlagURL != nil {
		set["flagUrl"] = strings.TrimSpace(*req.FlagURL)
	}
	if req.ImageURL != nil {
		set["imageUrl"] = strings.TrimSpace(*req.ImageURL)
	}
	if req.Highlights != nil {
		set["highlights"] = normalizeList(*req.Highlights)
	}
	if req.IsPopular != nil {
		set["isPopular"] = *req.IsPopular
	}

	updated, err := s.repo.Update(ctx, strings.TrimSpace(id), set)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Country{}, ErrSlugExists
		}
		return Country{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, strings.TrimSpace(id))
}

func normalizeSlug(slug, name string) string {
	raw := strings.TrimSpace(slug)
	if raw == "" {
		raw = name
	}
	return utils.Slugify(raw)
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
