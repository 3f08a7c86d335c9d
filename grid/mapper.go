package grid

import (
	"github.com/pkg/errors"

	"shopify-product-grid/structs"
)

// ErrCollectionNotFound is returned when the response has no collection,
// which is what the storefront sends for an unknown handle.
var ErrCollectionNotFound = errors.New("grid: collection not found")

// MapProducts projects data.collection.products.edges[].node in order,
// keeping at most limit products. limit <= 0 means DefaultLimit.
func MapProducts(data *structs.CollectionData, limit int) ([]structs.Product, error) {
	if data == nil || data.Collection == nil {
		return nil, ErrCollectionNotFound
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	edges := data.Collection.Products.Edges
	if len(edges) > limit {
		edges = edges[:limit]
	}

	products := make([]structs.Product, 0, len(edges))
	for _, edge := range edges {
		products = append(products, edge.Node)
	}

	return products, nil
}
