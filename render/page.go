package render

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templates embed.FS

var pageTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))

// Page holds everything the card template needs. Status is only set
// when loading failed or the feed was empty; otherwise Updated holds
// the formatted refresh timestamp.
type Page struct {
	Title   string
	Status  string
	Updated string
	Cards   []Card
}

func (p *Page) Render(w io.Writer) error {
	return pageTemplate.Execute(w, p)
}
