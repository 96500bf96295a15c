// Package blob stores uploaded image attachments. Blobs are addressed by a
// generated UUID; content type travels with the bytes so the HTTP layer can
// serve them back verbatim.
package blob

import "errors"

var ErrNotFound = errors.New("blob not found")

type Store interface {
	Put(data []byte, contentType string) (string, error)
	Get(id string) ([]byte, string, error)
	Close() error
}
