// Package grid fetches a storefront collection through the GraphQL proxy and
// renders it as a grid of product cards.
package grid

import (
	"github.com/machinebox/graphql"
)

// DefaultLimit is how many products a collection fetch asks for when the
// caller does not say.
const DefaultLimit = 6

// CollectionQuery takes the handle as a variable, never as query text.
const CollectionQuery = `
query collectionProducts($handle: String!, $first: Int!) {
    collection(handle: $handle) {
        products(first: $first) {
            edges {
                node {
                    id
                    title
                    handle
                    featuredImage {
                        url
                    }
                    priceRange {
                        minVariantPrice {
                            amount
                        }
                    }
                }
            }
        }
    }
}`

// NewCollectionRequest builds the collection query for handle. first <= 0
// means DefaultLimit.
func NewCollectionRequest(handle string, first int) *graphql.Request {
	if first <= 0 {
		first = DefaultLimit
	}

	req := graphql.NewRequest(CollectionQuery)
	req.Var("handle", handle)
	req.Var("first", first)

	return req
}
