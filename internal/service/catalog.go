package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/catalog"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/domain"
	apperrors "github.com/apper-canvas/stylehub-crypto-chip/pkg/errors"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/logger"
)

var (
	catalogProducts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stylehub_catalog_products",
		Help: "Number of products in the currently served catalog.",
	})

	catalogLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stylehub_catalog_loads_total",
			Help: "Catalog load attempts by result.",
		},
		[]string{"result"},
	)
)

// errNotLoaded is returned by queries issued before the first successful load.
var errNotLoaded = apperrors.ServiceUnavailable("product catalog is not loaded yet, please retry")

// CatalogService serves catalog queries from the most recently loaded engine.
// A reload swaps the engine atomically; queries already running keep the
// engine they started with.
type CatalogService struct {
	source catalog.Source
	engine atomic.Pointer[catalog.Engine]
	loads  singleflight.Group
	logger *slog.Logger
}

// NewCatalogService creates a catalog service. Nothing is fetched until Load.
func NewCatalogService(source catalog.Source, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		source: source,
		logger: logger,
	}
}

// Load fetches the product list from the source and starts serving it.
// Products that fail validation are skipped. A failed fetch leaves the
// previous engine in place and returns a ServiceUnavailable error.
// Concurrent calls share a single fetch.
func (s *CatalogService) Load(ctx context.Context) error {
	_, err, _ := s.loads.Do("catalog", func() (any, error) {
		return nil, s.load(ctx)
	})
	return err
}

// Reload is Load under the name the file watcher uses.
func (s *CatalogService) Reload(ctx context.Context) {
	if err := s.Load(ctx); err != nil {
		logger.WithContext(ctx, s.logger).Error("catalog reload failed, keeping previous catalog",
			slog.String("error", err.Error()),
		)
	}
}

func (s *CatalogService) load(ctx context.Context) error {
	log := logger.WithContext(ctx, s.logger)
	start := time.Now()

	products, err := s.source.Products(ctx)
	if err != nil {
		catalogLoads.WithLabelValues("error").Inc()
		log.Error("failed to load product catalog", slog.String("error", err.Error()))
		appErr := apperrors.ServiceUnavailable("product catalog could not be loaded, please retry")
		appErr.Err = errors.Join(apperrors.ErrServiceUnavailable, err)
		return appErr
	}

	valid := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if verr := p.Validate(); verr != nil {
			log.Warn("skipping invalid product",
				slog.Int("product_id", p.ID),
				slog.String("error", verr.Error()),
			)
			continue
		}
		valid = append(valid, p)
	}

	engine := catalog.New(valid)
	s.engine.Store(engine)

	catalogLoads.WithLabelValues("success").Inc()
	catalogProducts.Set(float64(engine.Len()))
	log.Info("product catalog loaded",
		slog.Int("products", engine.Len()),
		slog.Int("skipped", len(products)-len(valid)),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// Loaded reports whether a catalog is being served.
func (s *CatalogService) Loaded() bool {
	return s.engine.Load() != nil
}

func (s *CatalogService) current(ctx context.Context) (*catalog.Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e := s.engine.Load()
	if e == nil {
		return nil, errNotLoaded
	}
	return e, nil
}

// GetAll returns every product in catalog order.
func (s *CatalogService) GetAll(ctx context.Context) ([]domain.Product, error) {
	e, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return e.GetAll(), nil
}

// GetByID returns one product or a NotFound error.
func (s *CatalogService) GetByID(ctx context.Context, id string) (domain.Product, error) {
	e, err := s.current(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	return e.GetByID(id)
}

// GetByCategory returns products whose category matches case-insensitively.
func (s *CatalogService) GetByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	e, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return e.GetByCategory(category), nil
}

// Search returns products whose name, brand or category contains query.
func (s *CatalogService) Search(ctx context.Context, query string) ([]domain.Product, error) {
	e, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return e.Search(query), nil
}

// Browse filters the whole catalog and sorts the result.
func (s *CatalogService) Browse(ctx context.Context, criteria domain.FilterCriteria, sort domain.SortOption) ([]domain.Product, error) {
	e, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Sort(e.Filter(criteria), sort), nil
}

// BrowseCategory loads a category, applies the remaining filters to it and
// sorts the result.
func (s *CatalogService) BrowseCategory(ctx context.Context, category string, criteria domain.FilterCriteria, sort domain.SortOption) ([]domain.Product, error) {
	e, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Sort(catalog.FilterWithin(e.GetByCategory(category), criteria), sort), nil
}

// GetRelated returns products sharing a category or brand with id.
func (s *CatalogService) GetRelated(ctx context.Context, id string, limit int) ([]domain.Product, error) {
	e, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return e.GetRelated(id, limit), nil
}

// GetTrending returns the highest rated products.
func (s *CatalogService) GetTrending(ctx context.Context, limit int) ([]domain.Product, error) {
	e, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return e.GetTrending(limit), nil
}

// GetNewArrivals returns the products with the highest ids.
func (s *CatalogService) GetNewArrivals(ctx context.Context, limit int) ([]domain.Product, error) {
	e, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return e.GetNewArrivals(limit), nil
}

// Categories returns the distinct categories in first-seen order.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	e, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return e.Categories(), nil
}

// Brands returns the distinct brands in first-seen order.
func (s *CatalogService) Brands(ctx context.Context) ([]string, error) {
	e, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return e.Brands(), nil
}
