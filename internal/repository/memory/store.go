// Package memory is an in-process KeyValueStore with failure injection for
// tests.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/repository"
)

// Store keeps values in a map. The zero value is not usable; call New.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte

	getErr error
	setErr error
	delErr error
}

// New returns an empty store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Get returns a copy of the value for key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return nil, repository.NotFound(key)
	}
	return slices.Clone(v), nil
}

// Set stores a copy of value.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = slices.Clone(value)
	return nil
}

// Delete removes key.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.delErr != nil {
		return s.delErr
	}
	delete(s.data, key)
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.data))
}

// FailGets makes every Get return err until cleared with nil.
func (s *Store) FailGets(err error) {
	s.mu.Lock()
	s.getErr = err
	s.mu.Unlock()
}

// FailSets makes every Set return err until cleared with nil.
func (s *Store) FailSets(err error) {
	s.mu.Lock()
	s.setErr = err
	s.mu.Unlock()
}

// FailDeletes makes every Delete return err until cleared with nil.
func (s *Store) FailDeletes(err error) {
	s.mu.Lock()
	s.delErr = err
	s.mu.Unlock()
}
