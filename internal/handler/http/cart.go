package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/domain"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/service"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/store"
	apperrors "github.com/apper-canvas/stylehub-crypto-chip/pkg/errors"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/httputil"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/logger"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	catalog  *service.CatalogService
	sessions *store.Manager
	logger   *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(catalog *service.CatalogService, sessions *store.Manager, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		catalog:  catalog,
		sessions: sessions,
		logger:   logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a product to the cart.
type AddItemRequest struct {
	ProductID int    `json:"product_id" validate:"required,gt=0"`
	Size      string `json:"size" validate:"variant"`
	Color     string `json:"color" validate:"variant"`
}

// UpdateQuantityRequest is the JSON request body for setting a line quantity.
// A quantity of zero or less removes the line.
type UpdateQuantityRequest struct {
	ProductID int    `json:"product_id" validate:"required,gt=0"`
	Size      string `json:"size" validate:"variant"`
	Color     string `json:"color" validate:"variant"`
	Quantity  *int   `json:"quantity" validate:"required"`
}

// CartView is the cart with its derived totals.
type CartView struct {
	Items      []domain.CartItem `json:"items"`
	TotalItems int               `json:"total_items"`
	TotalPrice float64           `json:"total_price"`
}

func newCartView(items []domain.CartItem) CartView {
	cart := domain.Cart(items)
	if items == nil {
		items = []domain.CartItem{}
	}
	return CartView{
		Items:      items,
		TotalItems: cart.TotalItems(),
		TotalPrice: cart.TotalPrice(),
	}
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	if freshSession(r) {
		respond(w, r, http.StatusOK, newCartView(nil))
		return
	}
	respond(w, r, http.StatusOK, newCartView(h.session(r).CartItems()))
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.catalog.GetByID(r.Context(), strconv.Itoa(req.ProductID))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if req.Size != "" && !product.HasSize(req.Size) {
		httputil.WriteError(w, r, apperrors.InvalidInput("size "+req.Size+" is not offered for this product"), h.logger)
		return
	}
	if req.Color != "" && !product.HasColor(req.Color) {
		httputil.WriteError(w, r, apperrors.InvalidInput("color "+req.Color+" is not offered for this product"), h.logger)
		return
	}

	items := h.session(r).AddToCart(r.Context(), product, req.Size, req.Color)
	respond(w, r, http.StatusCreated, newCartView(items))
}

// UpdateItemQuantity handles PUT /api/v1/cart/items
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	items := h.session(r).UpdateQuantity(r.Context(), req.ProductID, req.Size, req.Color, *req.Quantity)
	respond(w, r, http.StatusOK, newCartView(items))
}

// RemoveItem handles DELETE /api/v1/cart/items?product_id=&size=&color=
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	productID, ok := httputil.ParseProductID(w, q.Get("product_id"))
	if !ok {
		return
	}

	items := h.session(r).RemoveFromCart(r.Context(), productID, q.Get("size"), q.Get("color"))
	respond(w, r, http.StatusOK, newCartView(items))
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	s.ClearCart(r.Context())
	respond(w, r, http.StatusOK, newCartView(s.CartItems()))
}

// Checkout handles POST /api/v1/cart/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	order, err := h.session(r).Checkout(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	respond(w, r, http.StatusCreated, order)
}

func (h *CartHandler) session(r *http.Request) *store.Store {
	return h.sessions.Session(r.Context(), logger.SessionIDFromContext(r.Context()))
}
