package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/repository/memory"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/logger"
)

func TestManager_IsolatesSessions(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	m := NewManager(kv, nil, logger.Discard())

	a := m.Session(ctx, "alice")
	b := m.Session(ctx, "bob")
	require.Same(t, a, m.Session(ctx, "alice"))

	a.AddToCart(ctx, tee(), "M", "")
	b.AddToWishlist(ctx, 3)

	assert.Len(t, a.CartItems(), 1)
	assert.Empty(t, b.CartItems())
	assert.Empty(t, a.WishlistItems())

	assert.Equal(t, []string{"session:alice:cart", "session:bob:wishlist"}, kv.Keys())
}

func TestManager_ReloadsPersistedSession(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()

	NewManager(kv, nil, logger.Discard()).Session(ctx, "alice").AddToWishlist(ctx, 8)

	fresh := NewManager(kv, nil, logger.Discard())
	assert.Equal(t, []int{8}, fresh.Session(ctx, "alice").WishlistItems())
}

func TestManager_PersistenceHealthy(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	m := NewManager(kv, nil, logger.Discard())

	m.Session(ctx, "alice")
	assert.True(t, m.PersistenceHealthy())
	assert.NoError(t, m.Ping(ctx))

	kv.FailSets(errors.New("read-only filesystem"))
	m.Session(ctx, "bob").AddToWishlist(ctx, 1)
	assert.False(t, m.PersistenceHealthy())
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestManager_ClosesIdleSessions(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	m := NewManager(kv, nil, logger.Discard(), WithIdleTimeout(time.Hour), WithManagerClock(clock.now))

	alice := m.Session(ctx, "alice")
	alice.AddToWishlist(ctx, 8)

	clock.advance(40 * time.Minute)
	m.Session(ctx, "bob")
	assert.Equal(t, 2, m.Len())

	clock.advance(30 * time.Minute)
	m.Session(ctx, "bob")
	assert.Equal(t, 1, m.Len(), "alice idle for 70m is closed, bob was used 30m ago")

	reopened := m.Session(ctx, "alice")
	assert.NotSame(t, alice, reopened)
	assert.Equal(t, []int{8}, reopened.WishlistItems(), "closed session reloads from storage")
}

func TestManager_CapsOpenSessions(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	m := NewManager(memory.New(), nil, logger.Discard(), WithMaxSessions(2), WithManagerClock(clock.now))

	a := m.Session(ctx, "a")
	clock.advance(time.Second)
	m.Session(ctx, "b")
	clock.advance(time.Second)
	require.Same(t, a, m.Session(ctx, "a"), "touching a makes b the least recently used")
	clock.advance(time.Second)

	m.Session(ctx, "c")
	clock.advance(time.Second)
	assert.Equal(t, 2, m.Len())
	assert.Same(t, a, m.Session(ctx, "a"), "b was closed, not a")
	clock.advance(time.Second)

	for i := range 50 {
		m.Session(ctx, fmt.Sprintf("anon-%d", i))
		clock.advance(time.Second)
	}
	assert.Equal(t, 2, m.Len())
}

func TestManager_NoLimitsKeepsSessions(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	m := NewManager(memory.New(), nil, logger.Discard(), WithManagerClock(clock.now))

	a := m.Session(ctx, "a")
	clock.advance(1000 * time.Hour)
	assert.Same(t, a, m.Session(ctx, "a"))
}
