package kv

import (
	"context"
	"errors"
)

// Store is the durable key-value capability behind guest carts, session
// mirrors and display preferences. Backings are pluggable: in-memory for
// tests, Redis in production.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("kv: key not found")
