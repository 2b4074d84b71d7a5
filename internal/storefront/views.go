package storefront

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	viewIndex        = "index.html"
	viewSearchCPF    = "buscar-cpf.html"
	viewVerifyCPF    = "verificar-cpf.html"
	layoutTemplate   = "layout.html"
	rootTemplateName = "layout"
)

// Views holds one parsed template set per page so page blocks do not clash.
type Views struct {
	pages map[string]*template.Template
}

func NewViews() (*Views, error) {
	pages := make(map[string]*template.Template)
	for _, page := range []string{viewIndex, viewSearchCPF, viewVerifyCPF} {
		t, err := template.ParseFS(templateFS, "templates/"+layoutTemplate, "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse view %s: %w", page, err)
		}
		pages[page] = t
	}
	return &Views{pages: pages}, nil
}

func (v *Views) Render(w io.Writer, page string, data interface{}) error {
	t, ok := v.pages[page]
	if !ok {
		return fmt.Errorf("unknown view %s", page)
	}
	return t.ExecuteTemplate(w, rootTemplateName, data)
}
