package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/domain"
	apperrors "github.com/apper-canvas/stylehub-crypto-chip/pkg/errors"
)

type result struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, dataDir, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	args = append([]string{"--data-dir", dataDir}, args...)
	err := run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func decodeJSON[T any](t *testing.T, r result) T {
	t.Helper()
	require.NoError(t, r.err, r.stderr)
	var v T
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &v), r.stdout)
	return v
}

func ids(products []domain.Product) []int {
	out := make([]int, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestProducts_FilterAndSort(t *testing.T) {
	dir := t.TempDir()

	products := decodeJSON[[]domain.Product](t, runCLI(t, dir, "", "products", "--json", "--brand", "Zara", "--sort", "price-low"))

	assert.Equal(t, []int{17, 1, 6}, ids(products))
}

func TestProducts_PriceRangeUsesDiscount(t *testing.T) {
	dir := t.TempDir()

	products := decodeJSON[[]domain.Product](t, runCLI(t, dir, "", "products", "--json", "--category", "women", "--min-price", "1000", "--max-price", "1600"))

	assert.Equal(t, []int{3, 17}, ids(products))
}

func TestProducts_InvalidSort(t *testing.T) {
	r := runCLI(t, t.TempDir(), "", "products", "--sort", "cheapest")

	require.Error(t, r.err)
	assert.ErrorIs(t, r.err, apperrors.ErrInvalidInput)
}

func TestProduct(t *testing.T) {
	dir := t.TempDir()

	p := decodeJSON[domain.Product](t, runCLI(t, dir, "", "product", "3", "--json"))
	assert.Equal(t, "Embroidered Cotton Kurta", p.Name)
	assert.Equal(t, 1500.0, p.EffectivePrice())

	r := runCLI(t, dir, "", "product", "3")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "₹1500 (was ₹2000)")

	r = runCLI(t, dir, "", "product", "999")
	assert.ErrorIs(t, r.err, apperrors.ErrNotFound)
}

func TestDerivedListings(t *testing.T) {
	dir := t.TempDir()

	trending := decodeJSON[[]domain.Product](t, runCLI(t, dir, "", "trending", "--json"))
	assert.Equal(t, []int{10, 5, 3, 19, 4, 17, 1, 13}, ids(trending))

	arrivals := decodeJSON[[]domain.Product](t, runCLI(t, dir, "", "new", "--json", "--limit", "2"))
	assert.Equal(t, []int{20, 19}, ids(arrivals))

	related := decodeJSON[[]domain.Product](t, runCLI(t, dir, "", "related", "19", "--json"))
	assert.Equal(t, []int{6, 10, 14}, ids(related))
}

func TestCart_PersistsAcrossInvocations(t *testing.T) {
	dir := t.TempDir()

	r := runCLI(t, dir, "", "cart", "add", "3", "--size", "M")
	require.NoError(t, r.err)
	assert.Contains(t, r.stderr, "✓ Item added to cart!")

	require.NoError(t, runCLI(t, dir, "", "cart", "add", "3", "--size", "M").err)
	require.NoError(t, runCLI(t, dir, "", "cart", "add", "2", "--size", "L", "--color", "Blue").err)

	view := decodeJSON[cartView](t, runCLI(t, dir, "", "cart", "--json"))
	require.Len(t, view.Items, 2)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, 1500.0, view.Items[0].Price)
	assert.Equal(t, 3, view.TotalItems)
	assert.Equal(t, 4299.0, view.TotalPrice)

	view = decodeJSON[cartView](t, runCLI(t, dir, "", "cart", "update", "3", "0", "--size", "M", "--json"))
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].ProductID)

	order := decodeJSON[domain.Order](t, runCLI(t, dir, "", "cart", "checkout", "--json"))
	assert.Equal(t, 1299.0, order.TotalPrice)

	r = runCLI(t, dir, "", "cart", "list")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Your cart is empty.")

	r = runCLI(t, dir, "", "cart", "checkout")
	assert.ErrorIs(t, r.err, apperrors.ErrInvalidInput)
}

func TestCart_RejectsUnofferedSize(t *testing.T) {
	r := runCLI(t, t.TempDir(), "", "cart", "add", "3", "--size", "XXL")

	require.Error(t, r.err)
	assert.ErrorIs(t, r.err, apperrors.ErrInvalidInput)
}

func TestWishlist_Toggle(t *testing.T) {
	dir := t.TempDir()

	r := runCLI(t, dir, "", "wishlist", "toggle", "5")
	require.NoError(t, r.err)
	assert.Contains(t, r.stderr, "Added to wishlist!")

	view := decodeJSON[wishlistView](t, runCLI(t, dir, "", "wishlist", "--json"))
	assert.Equal(t, []int{5}, view.ProductIDs)
	assert.Equal(t, []int{5}, ids(view.Products))

	r = runCLI(t, dir, "", "wishlist", "toggle", "5")
	require.NoError(t, r.err)
	assert.Contains(t, r.stderr, "Removed from wishlist")

	view = decodeJSON[wishlistView](t, runCLI(t, dir, "", "wishlist", "list", "--json"))
	assert.Empty(t, view.ProductIDs)

	r = runCLI(t, dir, "", "wishlist", "toggle", "404")
	assert.ErrorIs(t, r.err, apperrors.ErrNotFound)
}

func TestSearch_RecordsRecentSearches(t *testing.T) {
	dir := t.TempDir()

	products := decodeJSON[[]domain.Product](t, runCLI(t, dir, "", "search", "sneakers", "--json"))
	assert.Equal(t, []int{5, 18}, ids(products))
	require.NoError(t, runCLI(t, dir, "", "search", "levi's").err)

	recent := decodeJSON[[]string](t, runCLI(t, dir, "", "recent", "--json"))
	assert.Equal(t, []string{"levi's", "sneakers"}, recent)

	recent = decodeJSON[[]string](t, runCLI(t, dir, "", "recent", "--clear", "--json"))
	assert.Empty(t, recent)
}

func TestSuggest_ReadsKeystrokes(t *testing.T) {
	r := runCLI(t, t.TempDir(), "j\nje\njea\njeans\n", "suggest", "--debounce", "20ms")

	require.NoError(t, r.err, r.stderr)
	assert.Contains(t, r.stdout, `"jeans": High-Rise Skinny Jeans (Levi's)`)
}

func TestSuggest_ShortInputOnly(t *testing.T) {
	r := runCLI(t, t.TempDir(), "k\nki\n", "suggest", "--debounce", "20ms")

	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, `"ki": no suggestions`)
}
