// Package search turns keystrokes into debounced product suggestions.
package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/domain"
)

// Defaults for the suggestion pipeline.
const (
	DefaultDebounce = 300 * time.Millisecond
	MaxSuggestions  = 5
	// MinQueryLength is the longest input that does not trigger a search.
	MinQueryLength = 2
)

// SearchFunc runs one query. It should honour ctx cancellation.
type SearchFunc func(ctx context.Context, query string) ([]domain.Product, error)

// Update is delivered whenever the visible suggestions change.
type Update struct {
	Query       string
	Suggestions []domain.Product
}

// Suggester debounces keystrokes and keeps the suggestions for the newest
// query. Each Input bumps a sequence number; a timer or a search result whose
// sequence is no longer current is discarded, so a slow response for an old
// query can never replace a newer one.
type Suggester struct {
	search   SearchFunc
	debounce time.Duration
	onUpdate func(Update)
	logger   *slog.Logger

	// emitMu serialises onUpdate calls.
	emitMu sync.Mutex

	mu      sync.Mutex
	seq     uint64
	timer   *time.Timer
	cancel  context.CancelFunc
	current Update
	closed  bool
}

// Option customises a Suggester.
type Option func(*Suggester)

// WithDebounce sets the quiet period before a query is issued.
func WithDebounce(d time.Duration) Option {
	return func(s *Suggester) { s.debounce = d }
}

// WithOnUpdate registers a callback invoked after every change of the
// suggestions. It runs on the goroutine that made the change and must not
// call back into the Suggester.
func WithOnUpdate(fn func(Update)) Option {
	return func(s *Suggester) { s.onUpdate = fn }
}

// WithLogger sets the logger used for failed searches.
func WithLogger(l *slog.Logger) Option {
	return func(s *Suggester) { s.logger = l }
}

// NewSuggester returns a Suggester issuing queries through search.
func NewSuggester(search SearchFunc, opts ...Option) *Suggester {
	s := &Suggester{
		search:   search,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Input records the current contents of the search box. Inputs of two
// characters or fewer clear the suggestions immediately; longer inputs are
// searched once no further input arrives within the debounce period.
func (s *Suggester) Input(query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.seq++
	seq := s.seq
	s.stopPendingLocked()

	if len([]rune(query)) <= MinQueryLength {
		changed := s.current.Query != query || len(s.current.Suggestions) > 0
		s.current = Update{Query: query, Suggestions: []domain.Product{}}
		upd := s.current
		s.mu.Unlock()
		if changed {
			s.emit(seq, upd)
		}
		return
	}

	s.timer = time.AfterFunc(s.debounce, func() { s.fire(seq, query) })
	s.mu.Unlock()
}

// stopPendingLocked cancels the armed timer and any in-flight search.
func (s *Suggester) stopPendingLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Suggester) fire(seq uint64, query string) {
	s.mu.Lock()
	if s.closed || seq != s.seq {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	results, err := s.search(ctx, query)
	cancel()

	s.mu.Lock()
	if s.closed || seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.cancel = nil
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("suggestion search failed",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		return
	}

	if len(results) > MaxSuggestions {
		results = results[:MaxSuggestions]
	}
	s.current = Update{Query: query, Suggestions: results}
	upd := s.current
	s.mu.Unlock()

	s.emit(seq, upd)
}

// emit delivers u unless a newer input has arrived since it was computed.
// The check and the callback run under emitMu, so an update overtaken by a
// newer one is dropped instead of being delivered after it.
func (s *Suggester) emit(seq uint64, u Update) {
	if s.onUpdate == nil {
		return
	}
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	stale := s.closed || seq != s.seq
	s.mu.Unlock()
	if stale {
		return
	}
	s.onUpdate(u)
}

// Current returns the latest applied suggestions.
func (s *Suggester) Current() Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.current
	out.Suggestions = append([]domain.Product(nil), s.current.Suggestions...)
	return out
}

// Close stops pending work. Later inputs are ignored.
func (s *Suggester) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopPendingLocked()
}

// Suggest is the stateless form used by request/response callers: queries
// longer than two characters return the top matches, anything shorter
// returns nil so the caller can show recent searches instead.
func Suggest(query string, search func(string) []domain.Product) []domain.Product {
	query = strings.TrimSpace(query)
	if len([]rune(query)) <= MinQueryLength {
		return nil
	}
	results := search(query)
	if len(results) > MaxSuggestions {
		results = results[:MaxSuggestions]
	}
	return results
}
