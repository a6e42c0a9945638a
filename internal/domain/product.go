package domain

import (
	"errors"
	"fmt"
	"slices"
)

// Product is a read-only catalog entry.
type Product struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Brand         string   `json:"brand"`
	Category      string   `json:"category"`
	Price         float64  `json:"price"`
	DiscountPrice *float64 `json:"discountPrice,omitempty"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"reviewCount"`
	Images        []string `json:"images"`
	Sizes         []string `json:"sizes"`
	Colors        []string `json:"colors"`
	Description   string   `json:"description,omitempty"`
}

// EffectivePrice is the discount price when present, otherwise the list price.
func (p Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// HasDiscount reports whether a discount price is set.
func (p Product) HasDiscount() bool {
	return p.DiscountPrice != nil
}

// HasSize reports whether size is offered. Matching is exact.
func (p Product) HasSize(size string) bool {
	return slices.Contains(p.Sizes, size)
}

// HasColor reports whether color is offered. Matching is exact.
func (p Product) HasColor(color string) bool {
	return slices.Contains(p.Colors, color)
}

// PrimaryImage returns the first image or "".
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Validate checks the catalog invariants for a single product.
func (p Product) Validate() error {
	var errs []error
	if p.ID <= 0 {
		errs = append(errs, fmt.Errorf("id must be positive, got %d", p.ID))
	}
	if p.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if p.Price < 0 {
		errs = append(errs, fmt.Errorf("price must not be negative, got %v", p.Price))
	}
	if p.DiscountPrice != nil && *p.DiscountPrice >= p.Price {
		errs = append(errs, fmt.Errorf("discount price %v must be below price %v", *p.DiscountPrice, p.Price))
	}
	if p.Rating < 0 || p.Rating > 5 {
		errs = append(errs, fmt.Errorf("rating %v outside [0,5]", p.Rating))
	}
	if p.ReviewCount < 0 {
		errs = append(errs, fmt.Errorf("review count must not be negative, got %d", p.ReviewCount))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("product %d: %w", p.ID, errors.Join(errs...))
}

// Float returns a pointer to v, for building discount prices.
func Float(v float64) *float64 {
	return &v
}
