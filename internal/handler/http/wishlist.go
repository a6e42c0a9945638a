package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/domain"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/service"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/store"
	apperrors "github.com/apper-canvas/stylehub-crypto-chip/pkg/errors"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/httputil"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/logger"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	catalog  *service.CatalogService
	sessions *store.Manager
	logger   *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(catalog *service.CatalogService, sessions *store.Manager, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		catalog:  catalog,
		sessions: sessions,
		logger:   logger,
	}
}

// WishlistView lists the wished product ids and the products still in the
// catalog.
type WishlistView struct {
	ProductIDs []int            `json:"product_ids"`
	Products   []domain.Product `json:"products"`
}

// MembershipView reports whether one product is wished.
type MembershipView struct {
	ProductID  int  `json:"product_id"`
	InWishlist bool `json:"in_wishlist"`
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	ids := []int{}
	if !freshSession(r) {
		ids = h.session(r).WishlistItems()
	}

	view := WishlistView{ProductIDs: ids, Products: make([]domain.Product, 0, len(ids))}
	for _, id := range ids {
		p, err := h.catalog.GetByID(r.Context(), strconv.Itoa(id))
		if errors.Is(err, apperrors.ErrNotFound) {
			continue
		}
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		view.Products = append(view.Products, p)
	}
	respond(w, r, http.StatusOK, view)
}

// GetMembership handles GET /api/v1/wishlist/{productId}
func (h *WishlistHandler) GetMembership(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseProductID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}
	respond(w, r, http.StatusOK, MembershipView{ProductID: id, InWishlist: !freshSession(r) && h.session(r).IsInWishlist(id)})
}

// AddItem handles PUT /api/v1/wishlist/{productId}
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.existingProductID(w, r)
	if !ok {
		return
	}
	s := h.session(r)
	s.AddToWishlist(r.Context(), id)
	respond(w, r, http.StatusOK, MembershipView{ProductID: id, InWishlist: true})
}

// RemoveItem handles DELETE /api/v1/wishlist/{productId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseProductID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}
	h.session(r).RemoveFromWishlist(r.Context(), id)
	respond(w, r, http.StatusOK, MembershipView{ProductID: id, InWishlist: false})
}

// Toggle handles POST /api/v1/wishlist/{productId}/toggle
// Only adding requires the product to be in the catalog, so a product that
// has since left the catalog can still be removed.
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseProductID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}
	s := h.session(r)
	if !s.IsInWishlist(id) {
		if _, err := h.catalog.GetByID(r.Context(), strconv.Itoa(id)); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
	}
	in := s.ToggleWishlist(r.Context(), id)
	respond(w, r, http.StatusOK, MembershipView{ProductID: id, InWishlist: in})
}

func (h *WishlistHandler) existingProductID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := httputil.ParseProductID(w, chi.URLParam(r, "productId"))
	if !ok {
		return 0, false
	}
	if _, err := h.catalog.GetByID(r.Context(), strconv.Itoa(id)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return 0, false
	}
	return id, true
}

func (h *WishlistHandler) session(r *http.Request) *store.Store {
	return h.sessions.Session(r.Context(), logger.SessionIDFromContext(r.Context()))
}
