// Package repotest holds behaviour checks every KeyValueStore must pass.
package repotest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/repository"
	apperrors "github.com/apper-canvas/stylehub-crypto-chip/pkg/errors"
)

// Run exercises a fresh store returned by newStore.
func Run(t *testing.T, newStore func(t *testing.T) repository.KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("absent key is not found", func(t *testing.T) {
		kv := newStore(t)
		_, err := kv.Get(ctx, "cart")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		kv := newStore(t)
		require.NoError(t, kv.Set(ctx, "cart", []byte(`[{"productId":1}]`)))

		got, err := kv.Get(ctx, "cart")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"productId":1}]`, string(got))
	})

	t.Run("set overwrites", func(t *testing.T) {
		kv := newStore(t)
		require.NoError(t, kv.Set(ctx, "wishlist", []byte(`[1]`)))
		require.NoError(t, kv.Set(ctx, "wishlist", []byte(`[1,2]`)))

		got, err := kv.Get(ctx, "wishlist")
		require.NoError(t, err)
		assert.Equal(t, `[1,2]`, string(got))
	})

	t.Run("delete", func(t *testing.T) {
		kv := newStore(t)
		require.NoError(t, kv.Set(ctx, "recent-searches", []byte(`["dress"]`)))
		require.NoError(t, kv.Delete(ctx, "recent-searches"))

		_, err := kv.Get(ctx, "recent-searches")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.NoError(t, kv.Delete(ctx, "recent-searches"), "deleting twice is fine")
	})

	t.Run("prefixed views are isolated", func(t *testing.T) {
		kv := newStore(t)
		a := repository.WithPrefix(kv, "session:a:")
		b := repository.WithPrefix(kv, "session:b:")

		require.NoError(t, a.Set(ctx, "cart", []byte(`"a"`)))
		_, err := b.Get(ctx, "cart")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		raw, err := kv.Get(ctx, "session:a:cart")
		require.NoError(t, err)
		assert.Equal(t, `"a"`, string(raw))
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newStore(t).Ping(ctx))
	})
}
