package blob

import (
	"sync"

	"github.com/google/uuid"
)

type memoryBlob struct {
	data        []byte
	contentType string
}

type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memoryBlob)}
}

func (s *MemoryStore) Put(data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.blobs[id] = memoryBlob{data: stored, contentType: contentType}
	return id, nil
}

func (s *MemoryStore) Get(id string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if b, exists := s.blobs[id]; exists {
		out := make([]byte, len(b.data))
		copy(out, b.data)
		return out, b.contentType, nil
	}
	return nil, "", ErrNotFound
}

func (s *MemoryStore) Close() error {
	return nil
}
