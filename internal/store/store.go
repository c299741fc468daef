// Package store provides the durable key-value snapshot store the host
// side persists engine state into. Get/set semantics by string key are
// all the engine contract assumes about persistence.
package store

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get for keys that were never set.
var ErrKeyNotFound = errors.New("store: key not found")

// Store is a durable key-value store holding JSON payloads.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
