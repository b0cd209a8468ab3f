// Package kvstore holds the key-value store the journal persists to.
// Every backend stores opaque byte values under string keys and supports an
// atomic integer increment; nothing else is assumed about the store.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotInteger is returned by Incr when the stored value is not an integer.
var ErrNotInteger = errors.New("value is not an integer")

// Store is the external key-value store contract.
type Store interface {
	// Get returns the value stored under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set overwrites the value under key.
	Set(ctx context.Context, key string, value []byte) error
	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)
	// Incr increments the integer under key, treating an absent key as 0, and
	// returns the new value.
	Incr(ctx context.Context, key string) (int64, error)
	// Del removes key. Deleting an absent key is not an error.
	Del(ctx context.Context, key string) error
}
