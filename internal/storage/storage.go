// Package storage provides the persistence collaborator: whole-document
// read/write backends for the recall data file.
//
// The contract is deliberately narrow: a backend reads the entire document
// and writes the entire document, preserving arbitrary structure inside it
// byte-for-byte. There are no partial updates.
package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Read when no document has been persisted yet.
var ErrNotExist = errors.New("storage: no persisted data")

// Store reads and writes the whole persisted document.
type Store interface {
	// Read returns the raw document, or ErrNotExist when absent.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the whole document.
	Write(ctx context.Context, data []byte) error

	// Close releases any underlying resources.
	Close() error
}
