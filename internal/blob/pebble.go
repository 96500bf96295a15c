package blob

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble/v2"
	"github.com/google/uuid"
)

// PebbleStore keeps blob bytes and their content type in a PebbleDB keyspace:
// "data:<id>" holds the raw bytes, "type:<id>" the content type.
type PebbleStore struct {
	db *pebble.DB
}

func OpenPebbleStore(dir string) (*PebbleStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating blob directory: %v", err)
	}

	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("error opening blob store: %v", err)
	}

	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Put(data []byte, contentType string) (string, error) {
	id := uuid.New().String()

	batch := s.db.NewBatch()
	defer batch.Close()

	if err := batch.Set([]byte("data:"+id), data, nil); err != nil {
		return "", fmt.Errorf("error staging blob data: %v", err)
	}
	if err := batch.Set([]byte("type:"+id), []byte(contentType), nil); err != nil {
		return "", fmt.Errorf("error staging blob type: %v", err)
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return "", fmt.Errorf("error committing blob: %v", err)
	}

	return id, nil
}

func (s *PebbleStore) Get(id string) ([]byte, string, error) {
	data, dataCloser, err := s.db.Get([]byte("data:" + id))
	if err == pebble.ErrNotFound {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("error reading blob %q: %v", id, err)
	}
	defer dataCloser.Close()

	contentType, typeCloser, err := s.db.Get([]byte("type:" + id))
	if err != nil {
		return nil, "", fmt.Errorf("error reading blob type %q: %v", id, err)
	}
	defer typeCloser.Close()

	out := make([]byte, len(data))
	copy(out, data)
	return out, string(contentType), nil
}

func (s *PebbleStore) Close() error {
	return s.db.Close()
}
