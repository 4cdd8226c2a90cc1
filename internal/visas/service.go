package visas

import (
	"context"
	"strings"
	"time"

	"gurukul-backend/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InvalidFieldsError lists fields of a partial update that were present but empty.
type InvalidFieldsError struct {
	Fields []string
}

func (e *InvalidFieldsError) Error() string {
	return "fields must not be empty: " + strings.Join(e.Fields, ", ")
}

type Service struct {
	repo     store.Repository[VisaRequirement]
	location *time.Location
}

func NewService(repo store.Repository[VisaRequirement], location *time.Location) *Service {
	return &Service{
		repo:     repo,
		location: location,
	}
}

// List returns every requirement, or only those for countryName when it is set.
func (s *Service) List(ctx context.Context, countryName string, page store.Page) (store.List[VisaRequirement], error) {
	filter := bson.M{}
	if countryName = strings.TrimSpace(countryName); countryName != "" {
		filter["countryName"] = countryName
	}
	return s.repo.List(ctx, filter, page)
}

func (s *Service) Get(ctx context.Context, id string) (VisaRequirement, error) {
	return s.repo.Get(ctx, strings.TrimSpace(id))
}

// Create expects a request that already passed validation. The requirements
// sequence is stored as sent; an empty one or one with blank entries is
// rejected rather than rewritten.
func (s *Service) Create(ctx context.Context, req CreateRequest) (VisaRequirement, error) {
	if !validRequirements(req.Requirements) {
		return VisaRequirement{}, &InvalidFieldsError{Fields: []string{"requirements"}}
	}
	now := time.Now().In(s.location)
	item := VisaRequirement{
		ID:           primitive.NewObjectID().Hex(),
		CountryName:  req.CountryName,
		Title:        req.Title,
		Requirements: req.Requirements,
		CtaText:      req.CtaText,
		CtaLink:      req.CtaLink,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return VisaRequirement{}, err
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (VisaRequirement, error) {
	set := bson.M{}
	var invalid []string

	setString := func(field string, value *string) {
		if value == nil {
			return
		}
		v := strings.TrimSpace(*value)
		if v == "" {
			invalid = append(invalid, field)
			return
		}
		set[field] = v
	}
	setString("countryName", req.CountryName)
	setString("title", req.Title)
	if req.Requirements != nil {
		if !validRequirements(*req.Requirements) {
			invalid = append(invalid, "requirements")
		} else {
			set["requirements"] = *req.Requirements
		}
	}
	setString("ctaText", req.CtaText)
	setString("ctaLink", req.CtaLink)

	if len(invalid) > 0 {
		return VisaRequirement{}, &InvalidFieldsError{Fields: invalid}
	}

	set["updatedAt"] = time.Now().In(s.location)
	return s.repo.Update(ctx, strings.TrimSpace(id), set)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, strings.TrimSpace(id))
}
