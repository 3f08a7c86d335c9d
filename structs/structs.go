package structs

type Image struct {
	URL string `json:"url"`
}

type Money struct {
	// raw amount as sent by the storefront, e.g. "19.99"
	Amount string `json:"amount"`
}

type PriceRange struct {
	MinVariantPrice Money `json:"minVariantPrice"`
}

type Product struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Handle        string     `json:"handle"`
	FeaturedImage *Image     `json:"featuredImage"`
	PriceRange    PriceRange `json:"priceRange"`
}

// ImageURL returns the featured image url, or "" when the product has none.
func (p Product) ImageURL() string {
	if p.FeaturedImage == nil {
		return ""
	}
	return p.FeaturedImage.URL
}

func (p Product) Price() string {
	return p.PriceRange.MinVariantPrice.Amount
}

type ProductEdge struct {
	Node Product `json:"node"`
}

type ProductConnection struct {
	Edges []ProductEdge `json:"edges"`
}

type Collection struct {
	Products ProductConnection `json:"products"`
}

// CollectionData is the "data" object of a collection query response.
// Collection is nil when the handle does not resolve.
type CollectionData struct {
	Collection *Collection `json:"collection"`
}
