package domain

import (
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/apper-canvas/stylehub-crypto-chip/pkg/errors"
)

// PriceRange bounds the effective price inclusively.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether price lies within the range, bounds included.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// FilterCriteria narrows a product list. Empty fields impose no constraint.
type FilterCriteria struct {
	PriceRange *PriceRange `json:"priceRange,omitempty"`
	Sizes      []string    `json:"sizes,omitempty"`
	Colors     []string    `json:"colors,omitempty"`
	Brands     []string    `json:"brands,omitempty"`
	Category   string      `json:"category,omitempty"`
}

// IsEmpty reports whether the criteria match every product.
func (c FilterCriteria) IsEmpty() bool {
	return c.PriceRange == nil && len(c.Sizes) == 0 && len(c.Colors) == 0 &&
		len(c.Brands) == 0 && c.Category == ""
}

// Matches applies every non-empty constraint to p.
func (c FilterCriteria) Matches(p Product) bool {
	if c.Category != "" && !strings.EqualFold(p.Category, c.Category) {
		return false
	}
	if len(c.Brands) > 0 && !slices.Contains(c.Brands, p.Brand) {
		return false
	}
	if len(c.Sizes) > 0 && !anyOf(c.Sizes, p.HasSize) {
		return false
	}
	if len(c.Colors) > 0 && !anyOf(c.Colors, p.HasColor) {
		return false
	}
	if c.PriceRange != nil && !c.PriceRange.Contains(p.EffectivePrice()) {
		return false
	}
	return true
}

func anyOf(values []string, has func(string) bool) bool {
	for _, v := range values {
		if has(v) {
			return true
		}
	}
	return false
}

// SortOption orders a product list.
type SortOption string

const (
	SortFeatured  SortOption = "featured"
	SortPriceLow  SortOption = "price-low"
	SortPriceHigh SortOption = "price-high"
	SortRating    SortOption = "rating"
	SortNewest    SortOption = "newest"
)

// ParseSortOption maps a query value to a SortOption. Blank means featured.
func ParseSortOption(s string) (SortOption, error) {
	switch opt := SortOption(strings.ToLower(strings.TrimSpace(s))); opt {
	case "":
		return SortFeatured, nil
	case SortFeatured, SortPriceLow, SortPriceHigh, SortRating, SortNewest:
		return opt, nil
	default:
		return "", apperrors.InvalidInput(fmt.Sprintf("unknown sort option %q", s))
	}
}
