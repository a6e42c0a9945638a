// Package repository defines the durable key-value storage used by the cart,
// wishlist and recent-search store.
package repository

import (
	"context"

	apperrors "github.com/apper-canvas/stylehub-crypto-chip/pkg/errors"
)

// KeyValueStore persists opaque values under string keys.
type KeyValueStore interface {
	// Get returns the value for key, or an error matching
	// apperrors.ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}

// NotFound builds the error backends return for an absent key.
func NotFound(key string) error {
	return apperrors.NotFound("key", key)
}

// WithPrefix returns a view of kv that namespaces every key with prefix.
func WithPrefix(kv KeyValueStore, prefix string) KeyValueStore {
	return &prefixed{kv: kv, prefix: prefix}
}

type prefixed struct {
	kv     KeyValueStore
	prefix string
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.kv.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.kv.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.kv.Delete(ctx, p.prefix+key)
}

func (p *prefixed) Ping(ctx context.Context) error {
	return p.kv.Ping(ctx)
}
