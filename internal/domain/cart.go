package domain

import "fmt"

// LineKey identifies a cart line. Two items with the same product but a
// different size or color are separate lines.
type LineKey struct {
	ProductID int
	Size      string
	Color     string
}

// CartItem is a line in the cart. Price is the effective price captured when
// the line was first added and is not refreshed afterwards.
type CartItem struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Brand     string  `json:"brand"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
	Quantity  int     `json:"quantity"`
}

// Key returns the line identity.
func (i CartItem) Key() LineKey {
	return LineKey{ProductID: i.ProductID, Size: i.Size, Color: i.Color}
}

// Subtotal is price times quantity.
func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// NewCartItem snapshots p into a single-quantity line.
func NewCartItem(p Product, size, color string) CartItem {
	return CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Brand:     p.Brand,
		Price:     p.EffectivePrice(),
		Image:     p.PrimaryImage(),
		Size:      size,
		Color:     color,
		Quantity:  1,
	}
}

// Cart is an ordered list of lines with unique keys.
type Cart []CartItem

// FindItemIndex returns the index of the line with key k, or -1.
func (c Cart) FindItemIndex(k LineKey) int {
	for i := range c {
		if c[i].Key() == k {
			return i
		}
	}
	return -1
}

// TotalItems is the sum of quantities.
func (c Cart) TotalItems() int {
	n := 0
	for _, item := range c {
		n += item.Quantity
	}
	return n
}

// TotalPrice is the sum of line subtotals.
func (c Cart) TotalPrice() float64 {
	var total float64
	for _, item := range c {
		total += item.Subtotal()
	}
	return total
}

// Validate checks the line invariants: every line names a product, has a
// non-negative price and a quantity of at least one, and no two lines share
// a key.
func (c Cart) Validate() error {
	seen := make(map[LineKey]struct{}, len(c))
	for i, item := range c {
		switch {
		case item.ProductID <= 0:
			return fmt.Errorf("line %d: invalid product id %d", i, item.ProductID)
		case item.Quantity < 1:
			return fmt.Errorf("line %d: quantity %d is below 1", i, item.Quantity)
		case item.Price < 0:
			return fmt.Errorf("line %d: negative price %v", i, item.Price)
		}
		if _, dup := seen[item.Key()]; dup {
			return fmt.Errorf("line %d: duplicate line for product %d", i, item.ProductID)
		}
		seen[item.Key()] = struct{}{}
	}
	return nil
}

// Clone returns an independent copy.
func (c Cart) Clone() Cart {
	if c == nil {
		return Cart{}
	}
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Order is the summary returned by a checkout.
type Order struct {
	ID         string     `json:"id"`
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice float64    `json:"total_price"`
}
