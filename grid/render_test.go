package grid

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopify-product-grid/structs"
)

func product(id, title, amount, image string) structs.Product {
	p := structs.Product{ID: id, Title: title, Handle: strings.ToLower(title)}
	p.PriceRange.MinVariantPrice.Amount = amount
	if image != "" {
		p.FeaturedImage = &structs.Image{URL: image}
	}
	return p
}

func render(t *testing.T, o Outcome) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, o))
	return buf.String()
}

func TestRender_Loaded(t *testing.T) {
	out := render(t, Outcome{
		Status: StatusLoaded,
		Handle: "summer",
		Products: []structs.Product{
			product("p1", "Linen Shirt", "49.00", "https://cdn.shopify.com/linen.jpg"),
			product("p2", "Straw Hat", "1250.5", "https://cdn.shopify.com/hat.jpg"),
			product("p3", "Sandals", "30", "https://cdn.shopify.com/sandals.jpg"),
		},
	})

	assert.Contains(t, out, `class="grid md:grid-cols-3 gap-6"`)
	assert.Equal(t, 3, strings.Count(out, "data-product-id="))
	assert.Contains(t, out, `data-product-id="p2"`)
	assert.Contains(t, out, `<h3 class="font-semibold">Linen Shirt</h3>`)
	assert.Contains(t, out, `<img src="https://cdn.shopify.com/hat.jpg" alt="Straw Hat"`)

	// raw amount, no currency formatting
	assert.Contains(t, out, "<p>$49.00</p>")
	assert.Contains(t, out, "<p>$1250.5</p>")
	assert.Contains(t, out, "<p>$30</p>")
	assert.NotContains(t, out, "grid-error")
	assert.NotContains(t, out, "grid-status")
}

func TestRender_MissingImage(t *testing.T) {
	out := render(t, Outcome{
		Status:   StatusLoaded,
		Products: []structs.Product{product("p1", "Mystery Box", "5.00", "")},
	})

	assert.Contains(t, out, `<img src="" alt="Mystery Box"`)
	assert.Contains(t, out, "<p>$5.00</p>")
}

func TestRender_EscapesTitles(t *testing.T) {
	out := render(t, Outcome{
		Status:   StatusLoaded,
		Products: []structs.Product{product("p1", `<script>alert("x")</script>`, "1.00", "")},
	})

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestRender_States(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		want    string
		cards   int
	}{
		{"idle", Outcome{}, `data-status="idle"`, 0},
		{"loading", Outcome{Status: StatusLoading, Handle: "summer"}, "grid-status", 0},
		{
			"loading keeps previous list",
			Outcome{Status: StatusLoading, Products: []structs.Product{product("p1", "Old", "1", "")}},
			"grid-status",
			1,
		},
		{"failed", Outcome{Status: StatusFailed, Err: errors.New("boom")}, "grid-error", 0},
		{"loaded empty", Outcome{Status: StatusLoaded}, `data-status="loaded"`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, tt.outcome)
			assert.Contains(t, out, tt.want)
			assert.Equal(t, tt.cards, strings.Count(out, "data-product-id="))
		})
	}
}

func TestRender_FailedDoesNotLeakError(t *testing.T) {
	out := render(t, Outcome{Status: StatusFailed, Err: errors.New("dial tcp 10.0.0.1:443")})
	assert.NotContains(t, out, "10.0.0.1")
}

func TestRenderPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, Outcome{
		Status:   StatusLoaded,
		Handle:   "summer",
		Products: []structs.Product{product("p1", "Linen Shirt", "49.00", "")},
	}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>summer</title>")
	assert.Contains(t, out, `data-product-id="p1"`)
}
