package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/domain"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/search"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/service"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/store"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/httputil"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/logger"
)

// CatalogHandler serves product browsing and search.
type CatalogHandler struct {
	catalog  *service.CatalogService
	sessions *store.Manager
	logger   *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(catalog *service.CatalogService, sessions *store.Manager, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog:  catalog,
		sessions: sessions,
		logger:   logger,
	}
}

// SuggestionsResponse is returned by the suggestions endpoint. Short queries
// get the shopper's recent searches instead of product matches.
type SuggestionsResponse struct {
	Query          string           `json:"query"`
	Suggestions    []domain.Product `json:"suggestions"`
	RecentSearches []string         `json:"recent_searches,omitempty"`
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	criteria, sort, ok := parseBrowseQuery(w, r)
	if !ok {
		return
	}
	criteria.Category = r.URL.Query().Get("category")

	products, err := h.catalog.Browse(r.Context(), criteria, sort)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	respond(w, r, http.StatusOK, httputil.NewListResponse(products))
}

// GetProduct handles GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	respond(w, r, http.StatusOK, product)
}

// RelatedProducts handles GET /api/v1/products/{id}/related
func (h *CatalogHandler) RelatedProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.GetRelated(r.Context(), chi.URLParam(r, "id"), httputil.QueryInt(r, "limit", 0))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	respond(w, r, http.StatusOK, httputil.NewListResponse(products))
}

// Trending handles GET /api/v1/products/trending
func (h *CatalogHandler) Trending(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.GetTrending(r.Context(), httputil.QueryInt(r, "limit", 0))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	respond(w, r, http.StatusOK, httputil.NewListResponse(products))
}

// NewArrivals handles GET /api/v1/products/new-arrivals
func (h *CatalogHandler) NewArrivals(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.GetNewArrivals(r.Context(), httputil.QueryInt(r, "limit", 0))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	respond(w, r, http.StatusOK, httputil.NewListResponse(products))
}

// ListCategories handles GET /api/v1/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	respond(w, r, http.StatusOK, httputil.NewListResponse(categories))
}

// CategoryProducts handles GET /api/v1/categories/{category}/products
func (h *CatalogHandler) CategoryProducts(w http.ResponseWriter, r *http.Request) {
	criteria, sort, ok := parseBrowseQuery(w, r)
	if !ok {
		return
	}

	products, err := h.catalog.BrowseCategory(r.Context(), chi.URLParam(r, "category"), criteria, sort)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	respond(w, r, http.StatusOK, httputil.NewListResponse(products))
}

// ListBrands handles GET /api/v1/brands
func (h *CatalogHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalog.Brands(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	respond(w, r, http.StatusOK, httputil.NewListResponse(brands))
}

// Search handles GET /api/v1/search?q=
// A non-blank query is remembered in the shopper's recent searches.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query().Get("q")

	products, err := h.catalog.Search(ctx, q)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if strings.TrimSpace(q) != "" {
		h.session(r).AddRecentSearch(ctx, q)
	}
	respond(w, r, http.StatusOK, httputil.NewListResponse(products))
}

// Suggestions handles GET /api/v1/search/suggestions?q=
func (h *CatalogHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query().Get("q")

	var searchErr error
	suggestions := search.Suggest(q, func(query string) []domain.Product {
		var products []domain.Product
		products, searchErr = h.catalog.Search(ctx, query)
		return products
	})
	if searchErr != nil {
		httputil.WriteError(w, r, searchErr, h.logger)
		return
	}

	resp := SuggestionsResponse{Query: q, Suggestions: suggestions}
	if suggestions == nil {
		resp.Suggestions = []domain.Product{}
		resp.RecentSearches = h.recentSearches(r)
	}
	respond(w, r, http.StatusOK, resp)
}

// RecentSearches handles GET /api/v1/search/recent
func (h *CatalogHandler) RecentSearches(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, httputil.NewListResponse(h.recentSearches(r)))
}

// ClearRecentSearches handles DELETE /api/v1/search/recent
func (h *CatalogHandler) ClearRecentSearches(w http.ResponseWriter, r *http.Request) {
	h.session(r).ClearRecentSearches(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) recentSearches(r *http.Request) []string {
	if freshSession(r) {
		return []string{}
	}
	return h.session(r).RecentSearches()
}

func (h *CatalogHandler) session(r *http.Request) *store.Store {
	return h.sessions.Session(r.Context(), logger.SessionIDFromContext(r.Context()))
}

// parseBrowseQuery reads the filter sidebar and sort selection from the query
// string. Invalid values are answered with 400 and ok=false.
func parseBrowseQuery(w http.ResponseWriter, r *http.Request) (domain.FilterCriteria, domain.SortOption, bool) {
	criteria := domain.FilterCriteria{
		Brands: httputil.QueryList(r, "brands"),
		Sizes:  httputil.QueryList(r, "sizes"),
		Colors: httputil.QueryList(r, "colors"),
	}

	minPrice, okMin := parsePrice(w, r, "min_price", 0)
	if !okMin {
		return criteria, "", false
	}
	maxPrice, okMax := parsePrice(w, r, "max_price", math.Inf(1))
	if !okMax {
		return criteria, "", false
	}
	if r.URL.Query().Has("min_price") || r.URL.Query().Has("max_price") {
		criteria.PriceRange = &domain.PriceRange{Min: minPrice, Max: maxPrice}
	}

	sort, err := domain.ParseSortOption(r.URL.Query().Get("sort"))
	if err != nil {
		httputil.WriteError(w, r, err, nil)
		return criteria, "", false
	}
	return criteria, sort, true
}

func parsePrice(w http.ResponseWriter, r *http.Request, name string, def float64) (float64, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || math.IsNaN(v) {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: name + " must be a non-negative number"},
		})
		return 0, false
	}
	return v, true
}
