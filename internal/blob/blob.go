// Package blob stores the raw bytes of uploaded resources.
package blob

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("blob not found")

const defaultContentType = "application/octet-stream"

// Info describes a stored object. Size is -1 when the backend does not report it.
type Info struct {
	ID          string
	Filename    string
	ContentType string
	Size        int64
}

type Store interface {
	// Put streams body into a new object and returns its backend-assigned id.
	Put(ctx context.Context, filename, contentType string, size int64, body io.Reader) (Info, error)
	// Open returns the object metadata and a reader over its bytes. The caller closes it.
	Open(ctx context.Context, id string) (Info, io.ReadCloser, error)
	Delete(ctx context.Context, id string) error
}

func contentTypeOrDefault(ct string) string {
	if ct == "" {
		return defaultContentType
	}
	return ct
}
