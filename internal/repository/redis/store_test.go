package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/repository"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/repository/repotest"
	apperrors "github.com/apper-canvas/stylehub-crypto-chip/pkg/errors"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, ttl), mr
}

func TestStore_Contract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.KeyValueStore {
		s, _ := setupTestRedis(t, 0)
		return s
	})
}

func TestStore_TTL(t *testing.T) {
	ctx := context.Background()
	s, mr := setupTestRedis(t, time.Hour)

	require.NoError(t, s.Set(ctx, "session:abc:cart", []byte("[]")))
	assert.Equal(t, time.Hour, mr.TTL("session:abc:cart"))

	mr.FastForward(2 * time.Hour)
	_, err := s.Get(ctx, "session:abc:cart")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_NoTTL(t *testing.T) {
	s, mr := setupTestRedis(t, 0)

	require.NoError(t, s.Set(context.Background(), "cart", []byte("[]")))
	assert.Zero(t, mr.TTL("cart"))
}

func TestStore_ServerDown(t *testing.T) {
	ctx := context.Background()
	s, mr := setupTestRedis(t, 0)
	mr.Close()

	_, err := s.Get(ctx, "cart")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	assert.Error(t, s.Set(ctx, "cart", []byte("[]")))
	assert.Error(t, s.Ping(ctx))
}
