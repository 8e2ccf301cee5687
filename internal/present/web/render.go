package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/supermarkets"
	"github.com/totegamma/supermarkets/internal/manager"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"home", "list", "confirm"}

// Renderer executes the embedded page templates inside the shared layout.
type Renderer struct {
	templates map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: map[string]*template.Template{}}
	for _, page := range pages {
		t, err := template.New(page).ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %v", page, err)
		}
		r.templates[page] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown template %s", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

type pageData struct {
	Title    string
	LoggedIn bool
	UserName string
	Error    string

	// list page
	Loading      bool
	Items        []manager.Item
	ShowEmpty    bool
	EmptyMessage string
	NewHref      string
	Editor       *editorData

	// confirm page
	Prompt string
	Action string
}

type editorData struct {
	Action string
	IsNew  bool
	Values supermarkets.Fields
}
