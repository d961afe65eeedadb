package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get for a missing key.
	ErrNotFound = errors.New("key not found")
	// ErrQuotaExceeded is returned by Set when the backend is out of space.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// KV is the key-value primitive every persisted collection is written to.
// Values are whole JSON documents; Set always overwrites (last write wins).
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
