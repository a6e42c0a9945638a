package domain

import (
	"fmt"
	"slices"
)

// Wishlist is a set of product ids kept in insertion order.
type Wishlist []int

// Contains reports membership.
func (w Wishlist) Contains(id int) bool {
	return slices.Contains(w, id)
}

// Without returns a copy with id removed.
func (w Wishlist) Without(id int) Wishlist {
	out := make(Wishlist, 0, len(w))
	for _, v := range w {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Validate rejects non-positive and repeated ids.
func (w Wishlist) Validate() error {
	seen := make(map[int]struct{}, len(w))
	for _, id := range w {
		if id <= 0 {
			return fmt.Errorf("invalid product id %d", id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("product %d listed twice", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
