package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStore keeps objects in process. It backs local development when
// no S3 endpoint is configured; objects are served by the /storage route.
type MemoryStore struct {
	mu        sync.RWMutex
	objects   map[string]memoryObject
	publicURL string
}

func NewMemoryStore(publicURL string) *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject), publicURL: publicURL}
}

func (m *MemoryStore) Upload(_ context.Context, bucket, key string, body io.Reader, _ int64, contentType string) (string, error) {
	if !knownBucket(bucket) {
		return "", ErrUnknownBucket
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	m.mu.Lock()
	m.objects[bucket+"/"+key] = memoryObject{data: buf.Bytes(), contentType: contentType}
	m.mu.Unlock()

	return m.PublicURL(bucket, key), nil
}

func (m *MemoryStore) Remove(_ context.Context, bucket string, keys ...string) error {
	if !knownBucket(bucket) {
		return ErrUnknownBucket
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.objects, bucket+"/"+key)
	}
	return nil
}

func (m *MemoryStore) PublicURL(bucket, key string) string {
	return publicURL(m.publicURL, bucket, key)
}

// Get returns the object body and content type.
func (m *MemoryStore) Get(bucket, key string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, "", ErrNotFound
	}
	return obj.data, obj.contentType, nil
}

// Has reports whether the object exists.
func (m *MemoryStore) Has(bucket, key string) bool {
	_, _, err := m.Get(bucket, key)
	return err == nil
}
