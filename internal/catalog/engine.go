// Package catalog answers read-only queries over an immutable product list.
package catalog

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/domain"
	apperrors "github.com/apper-canvas/stylehub-crypto-chip/pkg/errors"
)

// Default result sizes when a caller passes a non-positive limit.
const (
	DefaultRelatedLimit     = 4
	DefaultTrendingLimit    = 8
	DefaultNewArrivalsLimit = 8

	// TrendingMinRating is the lowest rating that counts as trending.
	TrendingMinRating = 4.0
)

// Engine is safe for concurrent use because nothing mutates it after New.
// Every query returns a fresh slice; the products inside share their nested
// slices with the engine and must be treated as read-only.
type Engine struct {
	products []domain.Product
	byID     map[int]int
}

// New builds an engine over a deep copy of products. Later changes to the
// caller's slice are not observed.
func New(products []domain.Product) *Engine {
	e := &Engine{
		products: make([]domain.Product, len(products)),
		byID:     make(map[int]int, len(products)),
	}
	for i, p := range products {
		e.products[i] = cloneProduct(p)
		if _, dup := e.byID[p.ID]; !dup {
			e.byID[p.ID] = i
		}
	}
	return e
}

func cloneProduct(p domain.Product) domain.Product {
	p.Images = slices.Clone(p.Images)
	p.Sizes = slices.Clone(p.Sizes)
	p.Colors = slices.Clone(p.Colors)
	if p.DiscountPrice != nil {
		p.DiscountPrice = domain.Float(*p.DiscountPrice)
	}
	return p
}

// Len returns the number of products.
func (e *Engine) Len() int {
	return len(e.products)
}

// GetAll returns every product in catalog order.
func (e *Engine) GetAll() []domain.Product {
	return slices.Clone(e.products)
}

// GetByID looks a product up by its id. The id is parsed as a base-10
// integer after trimming whitespace; anything unparsable is reported as not
// found rather than invalid, since no product could have it.
func (e *Engine) GetByID(id string) (domain.Product, error) {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return domain.Product{}, apperrors.NotFound("product", id)
	}
	idx, ok := e.byID[n]
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", id)
	}
	return e.products[idx], nil
}

// GetByCategory returns products whose category equals category, ignoring case.
func (e *Engine) GetByCategory(category string) []domain.Product {
	return e.where(func(p domain.Product) bool {
		return strings.EqualFold(p.Category, category)
	})
}

// Search matches query as a case-insensitive substring of the name, brand or
// category. An empty query matches everything.
func (e *Engine) Search(query string) []domain.Product {
	q := strings.ToLower(query)
	return e.where(func(p domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Brand), q) ||
			strings.Contains(strings.ToLower(p.Category), q)
	})
}

// Filter returns the products matching every non-empty constraint.
func (e *Engine) Filter(criteria domain.FilterCriteria) []domain.Product {
	return FilterWithin(e.products, criteria)
}

// FilterWithin applies criteria to an arbitrary product list, preserving its
// order. The input is not modified.
func FilterWithin(products []domain.Product, criteria domain.FilterCriteria) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if criteria.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// GetRelated returns up to limit other products sharing the category or the
// brand of the product with id. Unknown ids yield an empty list.
func (e *Engine) GetRelated(id string, limit int) []domain.Product {
	limit = orDefault(limit, DefaultRelatedLimit)

	src, err := e.GetByID(id)
	if err != nil {
		return []domain.Product{}
	}

	related := e.where(func(p domain.Product) bool {
		return p.ID != src.ID && (p.Category == src.Category || p.Brand == src.Brand)
	})
	return truncate(related, limit)
}

// GetTrending returns up to limit products rated at least 4.0, highest first.
// Equal ratings keep catalog order.
func (e *Engine) GetTrending(limit int) []domain.Product {
	limit = orDefault(limit, DefaultTrendingLimit)

	trending := e.where(func(p domain.Product) bool {
		return p.Rating >= TrendingMinRating
	})
	slices.SortStableFunc(trending, byRatingDesc)
	return truncate(trending, limit)
}

// GetNewArrivals returns up to limit products with the highest ids first.
func (e *Engine) GetNewArrivals(limit int) []domain.Product {
	limit = orDefault(limit, DefaultNewArrivalsLimit)

	all := e.GetAll()
	slices.SortStableFunc(all, byIDDesc)
	return truncate(all, limit)
}

// Categories returns the distinct categories in first-seen order.
func (e *Engine) Categories() []string {
	return e.distinct(func(p domain.Product) string { return p.Category })
}

// Brands returns the distinct brands in first-seen order.
func (e *Engine) Brands() []string {
	return e.distinct(func(p domain.Product) string { return p.Brand })
}

// Sort returns a sorted copy of products. Sorting is stable, so featured
// keeps the input order and ties keep their relative order.
func Sort(products []domain.Product, option domain.SortOption) []domain.Product {
	out := slices.Clone(products)
	if out == nil {
		out = []domain.Product{}
	}

	switch option {
	case domain.SortPriceLow:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return cmp.Compare(a.EffectivePrice(), b.EffectivePrice())
		})
	case domain.SortPriceHigh:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return cmp.Compare(b.EffectivePrice(), a.EffectivePrice())
		})
	case domain.SortRating:
		slices.SortStableFunc(out, byRatingDesc)
	case domain.SortNewest:
		slices.SortStableFunc(out, byIDDesc)
	}
	return out
}

func byRatingDesc(a, b domain.Product) int {
	return cmp.Compare(b.Rating, a.Rating)
}

func byIDDesc(a, b domain.Product) int {
	return cmp.Compare(b.ID, a.ID)
}

func (e *Engine) where(keep func(domain.Product) bool) []domain.Product {
	out := make([]domain.Product, 0)
	for _, p := range e.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (e *Engine) distinct(field func(domain.Product) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range e.products {
		v := field(p)
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func orDefault(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

func truncate(products []domain.Product, limit int) []domain.Product {
	if len(products) > limit {
		return products[:limit]
	}
	return products
}
