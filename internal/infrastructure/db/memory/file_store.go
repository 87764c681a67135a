package memory

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/inkpress/cms-backend/internal/core/ports"
)

// FileStore keeps uploaded bodies in memory and serves them under BaseURL.
type FileStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	BaseURL string
}

func NewFileStore(baseURL string) *FileStore {
	return &FileStore{objects: make(map[string][]byte), BaseURL: baseURL}
}

func (s *FileStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (*ports.StoredObject, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return &ports.StoredObject{Key: key, URL: s.BaseURL + "/" + key}, nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Object returns the stored bytes for key.
func (s *FileStore) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	return data, ok
}

func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
