package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/repository"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/repository/repotest"
)

func TestStore_Contract(t *testing.T) {
	repotest.Run(t, func(*testing.T) repository.KeyValueStore { return New() })
}

func TestStore_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := New()

	in := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", in))
	in[0] = 'x'

	out, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))
}

func TestStore_FailureInjection(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("quota exceeded")

	s.FailSets(boom)
	assert.ErrorIs(t, s.Set(ctx, "cart", []byte("[]")), boom)
	assert.Empty(t, s.Keys())

	s.FailSets(nil)
	require.NoError(t, s.Set(ctx, "cart", []byte("[]")))

	s.FailGets(boom)
	_, err := s.Get(ctx, "cart")
	assert.ErrorIs(t, err, boom)

	s.FailDeletes(boom)
	assert.ErrorIs(t, s.Delete(ctx, "cart"), boom)
	assert.Equal(t, []string{"cart"}, s.Keys())
}
