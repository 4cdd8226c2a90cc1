package resources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gurukul-backend/internal/blob"
	"gurukul-backend/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrMissingFile = errors.New("file is required")
	ErrMissingName = errors.New("name is required")
)

const defaultType = "application/octet-stream"

// Service keeps a blob and its metadata record together: uploads write the
// blob first, deletes remove the blob first.
type Service struct {
	repo     store.Repository[Resource]
	blobs    blob.Store
	location *time.Location
}

func NewService(repo store.Repository[Resource], blobs blob.Store, location *time.Location) *Service {
	return &Service{
		repo:     repo,
		blobs:    blobs,
		location: location,
	}
}

func (s *Service) List(ctx context.Context, page store.Page) (store.List[Resource], error) {
	return s.repo.List(ctx, bson.M{}, page)
}

func (s *Service) Get(ctx context.Context, id string) (Resource, error) {
	return s.repo.Get(ctx, strings.TrimSpace(id))
}

// Upload stores the payload and then its metadata record. When the record
// cannot be written the blob is removed again; a failed cleanup is joined
// into the returned error.
func (s *Service) Upload(ctx context.Context, in UploadInput) (Resource, error) {
	if in.Body == nil {
		return Resource{}, ErrMissingFile
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Resource{}, ErrMissingName
	}
	contentType := strings.TrimSpace(in.ContentType)
	if contentType == "" {
		contentType = defaultType
	}

	info, err := s.blobs.Put(ctx, in.Filename, contentType, in.Size, in.Body)
	if err != nil {
		return Resource{}, fmt.Errorf("store blob: %w", err)
	}

	size := info.Size
	if size < 0 {
		size = in.Size
	}
	if size < 0 {
		size = 0
	}

	item := Resource{
		ID:          primitive.NewObjectID().Hex(),
		FileID:      info.ID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Type:        contentType,
		Size:        size,
		CreatedAt:   time.Now().In(s.location),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		if cleanupErr := s.blobs.Delete(ctx, info.ID); cleanupErr != nil && !errors.Is(cleanupErr, blob.ErrNotFound) {
			return Resource{}, errors.Join(err, fmt.Errorf("remove orphaned blob %s: %w", info.ID, cleanupErr))
		}
		return Resource{}, err
	}
	return item, nil
}

// Download resolves the record by blob id and opens the blob. It returns
// store.ErrNotFound when no record references fileID.
func (s *Service) Download(ctx context.Context, fileID string) (Resource, blob.Info, io.ReadCloser, error) {
	item, err := s.repo.FindOne(ctx, bson.M{"fileId": strings.TrimSpace(fileID)})
	if err != nil {
		return Resource{}, blob.Info{}, nil, err
	}
	info, body, err := s.blobs.Open(ctx, item.FileID)
	if err != nil {
		return Resource{}, blob.Info{}, nil, fmt.Errorf("open blob %s: %w", item.FileID, err)
	}
	return item, info, body, nil
}

// Delete removes the blob and then the record. A blob that is already gone
// counts as removed; if the blob delete fails the record is kept.
func (s *Service) Delete(ctx context.Context, id string) error {
	item, err := s.repo.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, item.FileID); err != nil && !errors.Is(err, blob.ErrNotFound) {
		return fmt.Errorf("delete blob %s: %w", item.FileID, err)
	}
	return s.repo.Delete(ctx, item.ID)
}
