package catalog

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/domain"
	apperrors "github.com/apper-canvas/stylehub-crypto-chip/pkg/errors"
)

func fixtureProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Floral Maxi Dress", Brand: "Zara", Category: "Women", Price: 2499, Rating: 4.5, Sizes: []string{"S", "M"}, Colors: []string{"Blue"}, Images: []string{"1.jpg"}},
		{ID: 2, Name: "Oxford Shirt", Brand: "H&M", Category: "Men", Price: 1000, Rating: 4.2, Sizes: []string{"M", "L"}, Colors: []string{"White"}},
		{ID: 3, Name: "Cotton Kurta", Brand: "Biba", Category: "Women", Price: 2000, DiscountPrice: domain.Float(1500), Rating: 4.7, Sizes: []string{"M"}, Colors: []string{"Red"}},
		{ID: 4, Name: "Denim Jacket", Brand: "Zara", Category: "Men", Price: 1600, Rating: 3.9, Sizes: []string{"L"}, Colors: []string{"Blue"}},
		{ID: 5, Name: "Running Sneakers", Brand: "Nike", Category: "Footwear", Price: 900, Rating: 4.5, Sizes: []string{"9"}, Colors: []string{"Black"}},
		{ID: 6, Name: "Leather Bag", Brand: "Fossil", Category: "Accessories", Price: 3000, Rating: 4.0, Sizes: []string{"One Size"}, Colors: []string{"Brown"}},
	}
}

func ids(products []domain.Product) []int {
	out := make([]int, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestEngine_GetAll_IsACopy(t *testing.T) {
	src := fixtureProducts()
	eng := New(src)

	src[0].Name = "mutated"
	src[0].Sizes[0] = "XXL"
	got := eng.GetAll()
	assert.Equal(t, "Floral Maxi Dress", got[0].Name)
	assert.Equal(t, "S", got[0].Sizes[0])

	got[1].Name = "also mutated"
	assert.Equal(t, "Oxford Shirt", eng.GetAll()[1].Name)
}

func TestEngine_GetByID(t *testing.T) {
	eng := New(fixtureProducts())

	for _, p := range fixtureProducts() {
		got, err := eng.GetByID(strconv.Itoa(p.ID))
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
	}

	got, err := eng.GetByID(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, "Cotton Kurta", got.Name)

	// Trailing garbage is not stripped: "3abc" does not resolve to product 3.
	for _, id := range []string{"99", "abc", "", "3.5", "3abc", "+3x"} {
		_, err := eng.GetByID(id)
		assert.ErrorIs(t, err, apperrors.ErrNotFound, "id %q", id)
	}
}

func TestEngine_GetByCategory(t *testing.T) {
	eng := New(fixtureProducts())

	assert.Equal(t, []int{1, 3}, ids(eng.GetByCategory("women")))
	assert.Equal(t, []int{2, 4}, ids(eng.GetByCategory("MEN")))

	none := eng.GetByCategory("Kids")
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestEngine_Search(t *testing.T) {
	eng := New(fixtureProducts())

	assert.Equal(t, []int{1, 4}, ids(eng.Search("zara")), "brand match")
	assert.Equal(t, []int{3}, ids(eng.Search("KURTA")), "name match")
	assert.Equal(t, []int{5}, ids(eng.Search("foot")), "category match")
	assert.Len(t, eng.Search(""), 6)
	assert.Empty(t, eng.Search("zzz"))
}

func TestEngine_Filter(t *testing.T) {
	eng := New(fixtureProducts())

	t.Run("empty criteria returns catalog order", func(t *testing.T) {
		assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids(eng.Filter(domain.FilterCriteria{})))
	})

	t.Run("price range uses effective price inclusively", func(t *testing.T) {
		got := eng.Filter(domain.FilterCriteria{PriceRange: &domain.PriceRange{Min: 1000, Max: 1600}})
		assert.Equal(t, []int{2, 3, 4}, ids(got))
	})

	t.Run("constraints intersect", func(t *testing.T) {
		got := eng.Filter(domain.FilterCriteria{
			Brands: []string{"Zara", "Biba"},
			Colors: []string{"Blue", "Red"},
			Sizes:  []string{"M"},
		})
		assert.Equal(t, []int{1, 3}, ids(got))
	})

	t.Run("category", func(t *testing.T) {
		got := eng.Filter(domain.FilterCriteria{Category: "women", Brands: []string{"Biba"}})
		assert.Equal(t, []int{3}, ids(got))
	})
}

func TestFilterWithin_CategoryPage(t *testing.T) {
	eng := New(fixtureProducts())

	women := eng.GetByCategory("Women")
	got := FilterWithin(women, domain.FilterCriteria{PriceRange: &domain.PriceRange{Min: 0, Max: 2000}})
	assert.Equal(t, []int{3}, ids(got))
	assert.Len(t, women, 2)
}

func TestEngine_GetRelated(t *testing.T) {
	eng := New(fixtureProducts())

	// Product 1 is Women/Zara: 3 shares the category, 4 shares the brand.
	assert.Equal(t, []int{3, 4}, ids(eng.GetRelated("1", 0)))
	assert.Equal(t, []int{3}, ids(eng.GetRelated("1", 1)))

	unknown := eng.GetRelated("404", 4)
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func TestEngine_GetTrending(t *testing.T) {
	eng := New(fixtureProducts())

	got := eng.GetTrending(0)
	// 4 is rated 3.9 and excluded; 1 and 5 tie at 4.5 and keep catalog order.
	assert.Equal(t, []int{3, 1, 5, 2, 6}, ids(got))

	limited := eng.GetTrending(2)
	assert.Equal(t, []int{3, 1}, ids(limited))

	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Rating, got[i].Rating)
		assert.GreaterOrEqual(t, got[i].Rating, TrendingMinRating)
	}
}

func TestEngine_GetNewArrivals(t *testing.T) {
	eng := New(fixtureProducts())

	assert.Equal(t, []int{6, 5, 4}, ids(eng.GetNewArrivals(3)))
	// catalog order is untouched
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids(eng.GetAll()))
}

func TestSort(t *testing.T) {
	in := fixtureProducts()

	tests := []struct {
		option domain.SortOption
		want   []int
	}{
		{domain.SortFeatured, []int{1, 2, 3, 4, 5, 6}},
		{domain.SortPriceLow, []int{5, 2, 3, 4, 1, 6}},
		{domain.SortPriceHigh, []int{6, 1, 4, 3, 2, 5}},
		{domain.SortRating, []int{3, 1, 5, 2, 6, 4}},
		{domain.SortNewest, []int{6, 5, 4, 3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(string(tt.option), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Sort(in, tt.option)))
		})
	}

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids(in), "input must not be reordered")
	assert.NotNil(t, Sort(nil, domain.SortRating))
}

func TestEngine_Facets(t *testing.T) {
	eng := New(fixtureProducts())

	assert.Equal(t, []string{"Women", "Men", "Footwear", "Accessories"}, eng.Categories())
	assert.Equal(t, []string{"Zara", "H&M", "Biba", "Nike", "Fossil"}, eng.Brands())
}

func TestEngine_EmbeddedCatalog(t *testing.T) {
	products, err := NewEmbeddedSource().Products(t.Context())
	require.NoError(t, err)
	require.Len(t, products, 20)

	for _, p := range products {
		assert.NoError(t, p.Validate())
	}

	eng := New(products)
	p3, err := eng.GetByID("3")
	require.NoError(t, err)
	assert.Equal(t, 2000.0, p3.Price)
	assert.Equal(t, 1500.0, p3.EffectivePrice())

	inRange := eng.Filter(domain.FilterCriteria{PriceRange: &domain.PriceRange{Min: 1000, Max: 1600}})
	assert.Contains(t, ids(inRange), 3)

	assert.Equal(t, []int{10, 5, 3, 19, 4, 17, 1, 13}, ids(eng.GetTrending(8)))
	assert.Equal(t, []int{20, 19, 18, 17}, ids(eng.GetNewArrivals(4)))
}
