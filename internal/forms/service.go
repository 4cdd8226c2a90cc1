package forms

import (
	"context"
	"errors"
	"strings"
	"time"

	"gurukul-backend/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidStatus = errors.New("invalid status")

type Notifier interface {
	SendFormSubmissionNotification(ctx context.Context, sub Submission) (string, error)
	SendFormSubmissionConfirmation(ctx context.Context, sub Submission) (string, error)
}

type Service struct {
	repo     store.Repository[Submission]
	location *time.Location
	notifier Notifier
}

// NewService accepts a nil notifier when email delivery is not configured.
func NewService(repo store.Repository[Submission], location *time.Location, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		location: location,
		notifier: notifier,
	}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Submission, error) {
	now := time.Now().In(s.location)
	sub := Submission{
		ID:        primitive.NewObjectID().Hex(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Subject:   strings.TrimSpace(req.Subject),
		Message:   strings.TrimSpace(req.Message),
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, page store.Page) (store.List[Submission], error) {
	query := bson.M{}
	if status := strings.ToLower(strings.TrimSpace(filter.Status)); status != "" {
		if !IsValidStatus(status) {
			return store.List[Submission]{}, ErrInvalidStatus
		}
		query["status"] = status
	}
	return s.repo.List(ctx, query, page)
}

func (s *Service) Get(ctx context.Context, id string) (Submission, error) {
	return s.repo.Get(ctx, strings.TrimSpace(id))
}

// Update applies an optional status transition. An empty request only
// touches updatedAt.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (Submission, error) {
	set := bson.M{"updatedAt": time.Now().In(s.location)}
	if req.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*req.Status))
		if !IsValidStatus(status) {
			return Submission{}, ErrInvalidStatus
		}
		set["status"] = status
	}
	return s.repo.Update(ctx, strings.TrimSpace(id), set)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, strings.TrimSpace(id))
}

func (s *Service) NotifyNewSubmission(ctx context.Context, sub Submission) error {
	if s.notifier == nil {
		return nil
	}
	_, err := s.notifier.SendFormSubmissionNotification(ctx, sub)
	return err
}

func (s *Service) NotifySubmitter(ctx context.Context, sub Submission) error {
	if s.notifier == nil {
		return nil
	}
	if strings.TrimSpace(sub.Email) == "" {
		return nil
	}
	_, err := s.notifier.SendFormSubmissionConfirmation(ctx, sub)
	return err
}
