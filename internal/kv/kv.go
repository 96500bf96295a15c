// Package kv provides the local session store: a small persistent key-value
// surface for per-identity state such as activity timestamps. It is injected
// into components rather than accessed ambiently so the callers stay testable.
package kv

import "errors"

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("key not found")

type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}
