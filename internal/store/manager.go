package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/notify"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/repository"
)

var (
	openSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stylehub_store_sessions",
		Help: "Shopper sessions with a store open in this process",
	})

	closedSessions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stylehub_store_sessions_closed_total",
			Help: "Shopper sessions closed in this process, by reason",
		},
		[]string{"reason"},
	)
)

// maxSweepInterval bounds how often idle sessions are looked for.
const maxSweepInterval = time.Minute

// SessionPrefix returns the key namespace of one session.
func SessionPrefix(sessionID string) string {
	return "session:" + sessionID + ":"
}

type openSession struct {
	store    *Store
	lastUsed time.Time
}

// Manager opens one Store per session over a shared KeyValueStore. Stores
// are opened lazily and closed again when idle for longer than the idle
// timeout or when the open-session cap needs room. A closed session is
// reloaded from the KeyValueStore on its next use.
type Manager struct {
	kv          repository.KeyValueStore
	notifier    notify.Notifier
	logger      *slog.Logger
	idleTimeout time.Duration
	maxSessions int
	now         func() time.Time

	mu        sync.Mutex
	stores    map[string]*openSession
	lastSweep time.Time
}

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithIdleTimeout closes sessions unused for d. Zero keeps idle sessions.
func WithIdleTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) { m.idleTimeout = d }
}

// WithMaxSessions caps the open sessions; the least recently used one is
// closed to make room. Zero means no cap.
func WithMaxSessions(n int) ManagerOption {
	return func(m *Manager) { m.maxSessions = n }
}

// WithManagerClock replaces time.Now.
func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager returns a manager persisting into kv.
func NewManager(kv repository.KeyValueStore, notifier notify.Notifier, logger *slog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		kv:       kv,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		stores:   make(map[string]*openSession),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Session returns the store for sessionID, loading it on first use.
func (m *Manager) Session(ctx context.Context, sessionID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweepLocked(ctx, now)

	if open, ok := m.stores[sessionID]; ok {
		open.lastUsed = now
		return open.store
	}

	for m.maxSessions > 0 && len(m.stores) >= m.maxSessions {
		m.closeLeastRecentLocked(ctx)
	}

	s := Open(ctx, repository.WithPrefix(m.kv, SessionPrefix(sessionID)), m.notifier, m.logger, WithSession(sessionID))
	m.stores[sessionID] = &openSession{store: s, lastUsed: now}
	openSessions.Inc()
	return s
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

func (m *Manager) sweepLocked(ctx context.Context, now time.Time) {
	if m.idleTimeout <= 0 || now.Sub(m.lastSweep) < min(m.idleTimeout, maxSweepInterval) {
		return
	}
	m.lastSweep = now

	for id, open := range m.stores {
		if now.Sub(open.lastUsed) >= m.idleTimeout {
			m.closeLocked(ctx, id, "idle")
		}
	}
}

func (m *Manager) closeLeastRecentLocked(ctx context.Context) {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, open := range m.stores {
		if oldestID == "" || open.lastUsed.Before(oldest) {
			oldestID, oldest = id, open.lastUsed
		}
	}
	m.closeLocked(ctx, oldestID, "capacity")
}

func (m *Manager) closeLocked(ctx context.Context, sessionID, reason string) {
	open, ok := m.stores[sessionID]
	if !ok {
		return
	}
	delete(m.stores, sessionID)
	openSessions.Dec()
	closedSessions.WithLabelValues(reason).Inc()

	if !open.store.PersistenceHealthy() {
		m.logger.WarnContext(ctx, "closing shopper session with unpersisted changes",
			slog.String("closed_session", sessionID),
			slog.String("reason", reason),
		)
	}
}

// PersistenceHealthy reports false when any open session has an unpersisted
// change.
func (m *Manager) PersistenceHealthy() bool {
	m.mu.Lock()
	stores := make([]*Store, 0, len(m.stores))
	for _, open := range m.stores {
		stores = append(stores, open.store)
	}
	m.mu.Unlock()

	for _, s := range stores {
		if !s.PersistenceHealthy() {
			return false
		}
	}
	return true
}

// Ping checks the backing store.
func (m *Manager) Ping(ctx context.Context) error {
	return m.kv.Ping(ctx)
}
