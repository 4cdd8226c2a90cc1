package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStore keeps objects in a GridFS bucket of the application database.
// A bucket handle is built per call because deadlines are set on the handle.
type GridFSStore struct {
	db   *mongo.Database
	name string
}

func NewGridFSStore(db *mongo.Database, bucketName string) *GridFSStore {
	return &GridFSStore{db: db, name: bucketName}
}

func (s *GridFSStore) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(s.name))
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := b.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
		if err := b.SetWriteDeadline(deadline); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (s *GridFSStore) Put(ctx context.Context, filename, contentType string, size int64, body io.Reader) (Info, error) {
	b, err := s.bucket(ctx)
	if err != nil {
		return Info{}, err
	}

	contentType = contentTypeOrDefault(contentType)
	counter := &countingReader{r: body}
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})

	id, err := b.UploadFromStream(filename, counter, opts)
	if err != nil {
		return Info{}, fmt.Errorf("gridfs upload: %w", err)
	}
	return Info{
		ID:          id.Hex(),
		Filename:    filename,
		ContentType: contentType,
		Size:        counter.n,
	}, nil
}

func (s *GridFSStore) Open(ctx context.Context, id string) (Info, io.ReadCloser, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Info{}, nil, ErrNotFound
	}
	b, err := s.bucket(ctx)
	if err != nil {
		return Info{}, nil, err
	}

	stream, err := b.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return Info{}, nil, ErrNotFound
		}
		return Info{}, nil, fmt.Errorf("gridfs open: %w", err)
	}

	file := stream.GetFile()
	info := Info{ID: id, Filename: file.Name, Size: file.Length, ContentType: defaultContentType}
	if len(file.Metadata) > 0 {
		if ct, ok := file.Metadata.Lookup("contentType").StringValueOK(); ok && ct != "" {
			info.ContentType = ct
		}
	}
	return info, stream, nil
}

func (s *GridFSStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	b, err := s.bucket(ctx)
	if err != nil {
		return err
	}
	if err := b.Delete(oid); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("gridfs delete: %w", err)
	}
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
