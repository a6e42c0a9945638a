package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/service"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/store"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/health"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/middleware"
)

// RouterConfig holds the transport settings of the router.
type RouterConfig struct {
	ServiceName    string
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	catalogService *service.CatalogService,
	sessions *store.Manager,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.AllowedOrigins)))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing())

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	catalogHandler := NewCatalogHandler(catalogService, sessions, logger)
	cartHandler := NewCartHandler(catalogService, sessions, logger)
	wishlistHandler := NewWishlistHandler(catalogService, sessions, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.SessionID)
		r.Use(middleware.RequestLogger(logger))
		r.Use(CollectNotifications)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogHandler.ListProducts)
			r.Get("/trending", catalogHandler.Trending)
			r.Get("/new-arrivals", catalogHandler.NewArrivals)
			r.Get("/{id}", catalogHandler.GetProduct)
			r.Get("/{id}/related", catalogHandler.RelatedProducts)
		})

		r.Get("/categories", catalogHandler.ListCategories)
		r.Get("/categories/{category}/products", catalogHandler.CategoryProducts)
		r.Get("/brands", catalogHandler.ListBrands)

		r.Route("/search", func(r chi.Router) {
			r.Get("/", catalogHandler.Search)
			r.Get("/suggestions", catalogHandler.Suggestions)
			r.Get("/recent", catalogHandler.RecentSearches)
			r.Delete("/recent", catalogHandler.ClearRecentSearches)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items", cartHandler.UpdateItemQuantity)
			r.Delete("/items", cartHandler.RemoveItem)
			r.Post("/checkout", cartHandler.Checkout)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", wishlistHandler.GetWishlist)
			r.Get("/{productId}", wishlistHandler.GetMembership)
			r.Put("/{productId}", wishlistHandler.AddItem)
			r.Delete("/{productId}", wishlistHandler.RemoveItem)
			r.Post("/{productId}/toggle", wishlistHandler.Toggle)
		})
	})

	return r
}
