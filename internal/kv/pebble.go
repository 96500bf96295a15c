package kv

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble/v2"
)

// PebbleStore persists keys in a PebbleDB database under the given directory.
type PebbleStore struct {
	db *pebble.DB
}

func OpenPebbleStore(dir string) (*PebbleStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating store directory: %v", err)
	}

	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("error opening pebble store: %v", err)
	}

	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Get(key string) (string, error) {
	value, closer, err := s.db.Get([]byte(key))
	if err == pebble.ErrNotFound {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("error reading key %q: %v", key, err)
	}
	defer closer.Close()

	return string(value), nil
}

func (s *PebbleStore) Set(key, value string) error {
	if err := s.db.Set([]byte(key), []byte(value), pebble.Sync); err != nil {
		return fmt.Errorf("error writing key %q: %v", key, err)
	}
	return nil
}

func (s *PebbleStore) Delete(key string) error {
	if err := s.db.Delete([]byte(key), pebble.Sync); err != nil {
		return fmt.Errorf("error deleting key %q: %v", key, err)
	}
	return nil
}

func (s *PebbleStore) Close() error {
	return s.db.Close()
}
