package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// Memory is an in-memory Storage used by tests and as a throwaway dev backend.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
	infos   map[string]ObjectInfo
}

// NewMemory creates an empty in-memory blob store.
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string][]byte),
		infos:   make(map[string]ObjectInfo),
	}
}

var _ Storage = (*Memory)(nil)

func (m *Memory) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ObjectInfo{}, err
	}

	info := ObjectInfo{
		Key:          key,
		Size:         int64(len(data)),
		ContentType:  opt.ContentType,
		LastModified: time.Now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.infos[key] = info
	return info, nil
}

func (m *Memory) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, ObjectInfo{}, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), m.infos[key], nil
}

// Remove drops a stored blob. Tests use it to simulate a blob that was
// deleted out-of-band while its metadata record survived.
func (m *Memory) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	delete(m.infos, key)
}

// Len reports the number of stored blobs.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
