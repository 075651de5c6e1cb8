// store/store.go
package store

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")

// SessionStore is the durable key/value storage behind the session.
// Save writes all entries or none of them.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Save(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
