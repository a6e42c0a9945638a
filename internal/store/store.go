// Package store owns a shopper's cart, wishlist and recent searches and keeps
// them in durable key-value storage.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/domain"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/notify"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/repository"
	apperrors "github.com/apper-canvas/stylehub-crypto-chip/pkg/errors"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/logger"
)

// Keys under which state is persisted.
const (
	KeyCart           = "cart"
	KeyWishlist       = "wishlist"
	KeyRecentSearches = "recent-searches"
)

// MaxRecentSearches caps the recent-search history.
const MaxRecentSearches = 5

// Notification messages.
const (
	MsgAddedToCart         = "Item added to cart!"
	MsgRemovedFromCart     = "Item removed from cart"
	MsgCartCleared         = "Cart cleared"
	MsgOrderPlaced         = "Order placed successfully! Thank you for shopping with us."
	MsgAddedToWishlist     = "Added to wishlist!"
	MsgRemovedFromWishlist = "Removed from wishlist"
)

var (
	persistFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stylehub_store_persist_failures_total",
			Help: "Failed writes of shopper state, by key",
		},
		[]string{"key"},
	)

	loadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stylehub_store_load_failures_total",
			Help: "Shopper state that could not be loaded and was reset to empty, by key and reason",
		},
		[]string{"key", "reason"},
	)
)

// Store is the state container for one shopper. All methods are safe for
// concurrent use; each call runs to completion under one lock, and its
// persistence write happens before the lock is released.
//
// Persistence failures never reach the caller. The in-memory state stays
// authoritative and PersistenceHealthy reports false until the failing key is
// written successfully again.
type Store struct {
	kv       repository.KeyValueStore
	notifier notify.Notifier
	logger   *slog.Logger
	session  string
	now      func() time.Time

	mu       sync.Mutex
	cart     domain.Cart
	wishlist domain.Wishlist
	recent   []string
	degraded map[string]struct{}
}

// Option customises a Store.
type Option func(*Store)

// WithSession tags notifications and log lines with a session id.
func WithSession(id string) Option {
	return func(s *Store) { s.session = id }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open loads persisted state from kv. Missing keys start empty; keys that
// cannot be read or decoded are logged and also start empty.
func Open(ctx context.Context, kv repository.KeyValueStore, notifier notify.Notifier, l *slog.Logger, opts ...Option) *Store {
	if notifier == nil {
		notifier = notify.Nop
	}
	s := &Store{
		kv:       kv,
		notifier: notifier,
		logger:   l,
		now:      time.Now,
		cart:     domain.Cart{},
		wishlist: domain.Wishlist{},
		recent:   []string{},
		degraded: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.session != "" {
		ctx = logger.WithSessionID(ctx, s.session)
	}

	if cart, ok := load(ctx, s, KeyCart, domain.Cart.Validate); ok {
		s.cart = cart
	}
	if wishlist, ok := load(ctx, s, KeyWishlist, domain.Wishlist.Validate); ok {
		s.wishlist = wishlist
	}
	if recent, ok := load(ctx, s, KeyRecentSearches, validateRecentSearches); ok {
		s.recent = recent
	}

	if s.cart == nil {
		s.cart = domain.Cart{}
	}
	if s.wishlist == nil {
		s.wishlist = domain.Wishlist{}
	}
	if s.recent == nil {
		s.recent = []string{}
	}
	return s
}

// load decodes the value under key and checks it with validate. A key that
// is missing, unreadable, undecodable or invalid yields ok == false and the
// caller keeps its empty default; a partial decode is never applied.
func load[T any](ctx context.Context, s *Store, key string, validate func(T) error) (value T, ok bool) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, apperrors.ErrNotFound) {
		return value, false
	}
	if err != nil {
		err = apperrors.StorageUnavailable(key, err)
		loadFailures.WithLabelValues(key, "unavailable").Inc()
		s.log(ctx).WarnContext(ctx, "shopper state unavailable, starting empty",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return value, false
	}

	var decoded T
	err = json.Unmarshal(raw, &decoded)
	if err == nil {
		err = validate(decoded)
	}
	if err != nil {
		err = apperrors.MalformedState(key, err)
		loadFailures.WithLabelValues(key, "malformed").Inc()
		s.log(ctx).WarnContext(ctx, "discarding malformed shopper state",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return value, false
	}
	return decoded, true
}

func validateRecentSearches(recent []string) error {
	if len(recent) > MaxRecentSearches {
		return fmt.Errorf("%d recent searches exceed the limit of %d", len(recent), MaxRecentSearches)
	}
	for i, q := range recent {
		if strings.TrimSpace(q) == "" {
			return fmt.Errorf("recent search %d is blank", i)
		}
	}
	return nil
}

func (s *Store) log(ctx context.Context) *slog.Logger {
	return logger.WithContext(ctx, s.logger)
}

// persist writes value under key. Must be called with s.mu held.
func (s *Store) persist(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err == nil {
		err = s.kv.Set(ctx, key, data)
	}
	s.recordWrite(ctx, key, err)
}

// remove deletes key. Must be called with s.mu held.
func (s *Store) remove(ctx context.Context, key string) {
	s.recordWrite(ctx, key, s.kv.Delete(ctx, key))
}

func (s *Store) recordWrite(ctx context.Context, key string, err error) {
	if err == nil {
		if _, was := s.degraded[key]; was {
			delete(s.degraded, key)
			s.log(ctx).InfoContext(ctx, "shopper state persistence recovered", slog.String("key", key))
		}
		return
	}

	s.degraded[key] = struct{}{}
	persistFailures.WithLabelValues(key).Inc()
	s.log(ctx).WarnContext(ctx, "shopper state not persisted, continuing in memory",
		slog.String("key", key),
		slog.String("error", apperrors.StorageUnavailable(key, err).Error()),
	)
}

func (s *Store) notify(ctx context.Context, severity notify.Severity, msg string) {
	s.notifier.Notify(ctx, notify.Notification{
		Message:  msg,
		Severity: severity,
		Session:  s.session,
		At:       s.now(),
	})
}

// PersistenceHealthy reports whether the last write of every key succeeded.
func (s *Store) PersistenceHealthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.degraded) == 0
}

// AddToCart adds one unit of product in the given size and color. An existing
// line with the same key is incremented; otherwise a new line snapshots the
// product's current effective price. Returns the updated cart.
func (s *Store) AddToCart(ctx context.Context, product domain.Product, size, color string) []domain.CartItem {
	s.mu.Lock()
	key := domain.LineKey{ProductID: product.ID, Size: size, Color: color}
	if i := s.cart.FindItemIndex(key); i >= 0 {
		s.cart[i].Quantity++
	} else {
		s.cart = append(s.cart, domain.NewCartItem(product, size, color))
	}
	s.persist(ctx, KeyCart, s.cart)
	out := s.cart.Clone()
	s.mu.Unlock()

	s.notify(ctx, notify.SeveritySuccess, MsgAddedToCart)
	return out
}

// RemoveFromCart removes the line matching the key exactly. Removing a line
// that does not exist changes nothing.
func (s *Store) RemoveFromCart(ctx context.Context, productID int, size, color string) []domain.CartItem {
	s.mu.Lock()
	out := s.removeLine(ctx, domain.LineKey{ProductID: productID, Size: size, Color: color})
	s.mu.Unlock()

	s.notify(ctx, notify.SeverityInfo, MsgRemovedFromCart)
	return out
}

func (s *Store) removeLine(ctx context.Context, key domain.LineKey) []domain.CartItem {
	if i := s.cart.FindItemIndex(key); i >= 0 {
		s.cart = append(s.cart[:i:i], s.cart[i+1:]...)
		s.persist(ctx, KeyCart, s.cart)
	}
	return s.cart.Clone()
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes the line, exactly as RemoveFromCart does.
func (s *Store) UpdateQuantity(ctx context.Context, productID int, size, color string, quantity int) []domain.CartItem {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, productID, size, color)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.LineKey{ProductID: productID, Size: size, Color: color}
	if i := s.cart.FindItemIndex(key); i >= 0 && s.cart[i].Quantity != quantity {
		s.cart[i].Quantity = quantity
		s.persist(ctx, KeyCart, s.cart)
	}
	return s.cart.Clone()
}

// ClearCart empties the cart.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	s.cart = domain.Cart{}
	s.persist(ctx, KeyCart, s.cart)
	s.mu.Unlock()

	s.notify(ctx, notify.SeverityInfo, MsgCartCleared)
}

// Checkout turns the cart into an order summary and empties it. No payment
// or fulfilment happens. An empty cart cannot be checked out.
func (s *Store) Checkout(ctx context.Context) (domain.Order, error) {
	s.mu.Lock()
	if len(s.cart) == 0 {
		s.mu.Unlock()
		return domain.Order{}, apperrors.InvalidInput("cart is empty")
	}

	order := domain.Order{
		ID:         uuid.New().String(),
		Items:      s.cart.Clone(),
		TotalItems: s.cart.TotalItems(),
		TotalPrice: s.cart.TotalPrice(),
	}
	s.cart = domain.Cart{}
	s.persist(ctx, KeyCart, s.cart)
	s.mu.Unlock()

	s.log(ctx).InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.Int("total_items", order.TotalItems),
		slog.Float64("total_price", order.TotalPrice),
	)
	s.notify(ctx, notify.SeveritySuccess, MsgOrderPlaced)
	return order, nil
}

// CartItems returns a copy of the cart lines.
func (s *Store) CartItems() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// TotalItems is the sum of line quantities.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalItems()
}

// TotalPrice is the sum of snapshot price times quantity.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalPrice()
}

// AddToWishlist inserts productID if it is not already present. Only an
// actual insert raises a notification.
func (s *Store) AddToWishlist(ctx context.Context, productID int) {
	s.mu.Lock()
	added := s.addWish(ctx, productID)
	s.mu.Unlock()

	if added {
		s.notify(ctx, notify.SeveritySuccess, MsgAddedToWishlist)
	}
}

func (s *Store) addWish(ctx context.Context, productID int) bool {
	if s.wishlist.Contains(productID) {
		return false
	}
	s.wishlist = append(s.wishlist, productID)
	s.persist(ctx, KeyWishlist, s.wishlist)
	return true
}

// RemoveFromWishlist removes productID if present.
func (s *Store) RemoveFromWishlist(ctx context.Context, productID int) {
	s.mu.Lock()
	s.removeWish(ctx, productID)
	s.mu.Unlock()

	s.notify(ctx, notify.SeverityInfo, MsgRemovedFromWishlist)
}

func (s *Store) removeWish(ctx context.Context, productID int) {
	if s.wishlist.Contains(productID) {
		s.wishlist = s.wishlist.Without(productID)
		s.persist(ctx, KeyWishlist, s.wishlist)
	}
}

// ToggleWishlist removes productID when present and adds it otherwise.
// It returns whether the product is in the wishlist afterwards.
func (s *Store) ToggleWishlist(ctx context.Context, productID int) bool {
	s.mu.Lock()
	var inList bool
	if s.wishlist.Contains(productID) {
		s.removeWish(ctx, productID)
	} else {
		inList = s.addWish(ctx, productID)
	}
	s.mu.Unlock()

	if inList {
		s.notify(ctx, notify.SeveritySuccess, MsgAddedToWishlist)
	} else {
		s.notify(ctx, notify.SeverityInfo, MsgRemovedFromWishlist)
	}
	return inList
}

// IsInWishlist reports membership without side effects.
func (s *Store) IsInWishlist(productID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlist.Contains(productID)
}

// WishlistItems returns the wishlist in insertion order.
func (s *Store) WishlistItems() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.wishlist))
	copy(out, s.wishlist)
	return out
}

// AddRecentSearch records a submitted query at the front of the history,
// dropping an earlier identical entry and anything beyond the cap. Blank
// queries are ignored.
func (s *Store) AddRecentSearch(ctx context.Context, query string) []string {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	defer s.mu.Unlock()

	if query == "" {
		return s.recentCopy()
	}

	updated := make([]string, 0, MaxRecentSearches)
	updated = append(updated, query)
	for _, q := range s.recent {
		if q != query && len(updated) < MaxRecentSearches {
			updated = append(updated, q)
		}
	}
	s.recent = updated
	s.persist(ctx, KeyRecentSearches, s.recent)
	return s.recentCopy()
}

// RecentSearches returns the history, most recent first.
func (s *Store) RecentSearches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recentCopy()
}

// ClearRecentSearches empties the history and deletes its key.
func (s *Store) ClearRecentSearches(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = []string{}
	s.remove(ctx, KeyRecentSearches)
}

func (s *Store) recentCopy() []string {
	out := make([]string, len(s.recent))
	copy(out, s.recent)
	return out
}
