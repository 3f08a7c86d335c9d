package grid

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopify-product-grid/structs"
)

func collectionOf(n int) *structs.CollectionData {
	edges := make([]structs.ProductEdge, n)
	for i := range edges {
		edges[i] = structs.ProductEdge{Node: structs.Product{
			ID:    fmt.Sprintf("p%d", i+1),
			Title: fmt.Sprintf("Product %d", i+1),
		}}
	}
	return &structs.CollectionData{
		Collection: &structs.Collection{Products: structs.ProductConnection{Edges: edges}},
	}
}

func TestMapProducts_PreservesOrder(t *testing.T) {
	products, err := MapProducts(collectionOf(3), DefaultLimit)
	require.NoError(t, err)
	require.Len(t, products, 3)

	for i, p := range products {
		assert.Equal(t, fmt.Sprintf("p%d", i+1), p.ID)
	}
}

func TestMapProducts_Limit(t *testing.T) {
	tests := []struct {
		name  string
		edges int
		limit int
		want  int
	}{
		{"ten edges capped at six", 10, 6, 6},
		{"zero limit falls back to six", 10, 0, 6},
		{"fewer edges than limit", 2, 6, 2},
		{"custom limit", 10, 3, 3},
		{"empty collection", 0, 6, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := MapProducts(collectionOf(tt.edges), tt.limit)
			require.NoError(t, err)
			assert.Len(t, products, tt.want)
			assert.NotNil(t, products)
		})
	}
}

func TestMapProducts_MissingCollection(t *testing.T) {
	_, err := MapProducts(&structs.CollectionData{}, DefaultLimit)
	assert.True(t, errors.Is(err, ErrCollectionNotFound))

	_, err = MapProducts(nil, DefaultLimit)
	assert.True(t, errors.Is(err, ErrCollectionNotFound))
}

func TestCollectionQuery_BindsHandle(t *testing.T) {
	assert.Contains(t, CollectionQuery, "$handle: String!")
	assert.Contains(t, CollectionQuery, "collection(handle: $handle)")
	assert.Contains(t, CollectionQuery, "products(first: $first)")
	for _, field := range []string{"id", "title", "handle", "featuredImage", "url", "priceRange", "minVariantPrice", "amount"} {
		assert.Contains(t, CollectionQuery, field)
	}
}
