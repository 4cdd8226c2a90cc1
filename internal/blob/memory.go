package blob

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
)

type memoryObject struct {
	info Info
	data []byte
}

// MemoryStore is a process-local Store used by tests and local tooling.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]memoryObject
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func (m *MemoryStore) Put(ctx context.Context, filename, contentType string, size int64, body io.Reader) (Info, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return Info{}, err
	}
	info := Info{
		ID:          uuid.NewString(),
		Filename:    filename,
		ContentType: contentTypeOrDefault(contentType),
		Size:        int64(len(data)),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[info.ID] = memoryObject{info: info, data: data}
	return info, nil
}

func (m *MemoryStore) Open(ctx context.Context, id string) (Info, io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[id]
	if !ok {
		return Info{}, nil, ErrNotFound
	}
	return obj.info, io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[id]; !ok {
		return ErrNotFound
	}
	delete(m.objects, id)
	return nil
}

// Len reports how many objects are stored.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
