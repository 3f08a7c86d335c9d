package grid

import (
	"html/template"
	"io"

	"github.com/pkg/errors"
)

const gridTemplate = `{{define "grid"}}<div class="grid md:grid-cols-3 gap-6" data-status="{{.Status}}">
{{- if eq .Status.String "loading"}}
  <p class="grid-status">Loading products…</p>
{{- else if eq .Status.String "failed"}}
  <p class="grid-error">Products could not be loaded.</p>
{{- end}}
{{- range .Products}}
  <div class="border rounded p-4" data-product-id="{{.ID}}">
    <img src="{{.ImageURL}}" alt="{{.Title}}" class="mb-4">
    <h3 class="font-semibold">{{.Title}}</h3>
    <p>${{.Price}}</p>
  </div>
{{- end}}
</div>
{{end}}

{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Handle}}</title>
</head>
<body>
{{template "grid" .}}</body>
</html>
{{end}}`

var templates = template.Must(template.New("grid.html").Parse(gridTemplate))

// Render writes the grid markup for o. Each card shows the image, title and
// the raw price amount after a dollar sign.
func Render(w io.Writer, o Outcome) error {
	return errors.Wrap(templates.ExecuteTemplate(w, "grid", o), "grid: render")
}

// RenderPage writes o as a complete HTML document.
func RenderPage(w io.Writer, o Outcome) error {
	return errors.Wrap(templates.ExecuteTemplate(w, "page", o), "grid: render page")
}
