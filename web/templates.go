// ABOUTME: TemplateEngine loads embedded HTML templates and renders them with Go's html/template.
// ABOUTME: Pages render inside the layout, or as the bare body fragment for partial navigation.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/2389-research/nutria/catalog"
	"github.com/yuin/goldmark"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData holds all data passed to templates for rendering.
type PageData struct {
	Title       string
	Nav         template.HTML // pre-rendered navigation bar
	Recipes     []catalog.Recipe
	Recipe      *catalog.Recipe
	Tags        []catalog.Tag
	Ingredients []catalog.Ingredient
	Status      int
	Message     string
}

// TemplateEngine loads and renders embedded HTML templates.
type TemplateEngine struct {
	templates map[string]*template.Template
}

// templateFuncs returns the FuncMap available to all templates.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"markdown": markdownToHTML,
		"quantity": formatQuantity,
		"join":     strings.Join,
	}
}

// NewTemplateEngine parses all embedded templates and returns a ready-to-use engine.
// Each page template is parsed together with the layout so that the layout wraps every page.
func NewTemplateEngine() (*TemplateEngine, error) {
	funcs := templateFuncs()

	pages := []string{
		"home.html",
		"recipes.html",
		"recipe.html",
		"tags.html",
		"ingredients.html",
		"error.html",
	}

	engine := &TemplateEngine{
		templates: make(map[string]*template.Template),
	}

	for _, page := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(
			templateFS,
			"templates/layout.html",
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		engine.templates[page] = t
	}

	return engine, nil
}

// Render executes the named template inside the layout and writes the result
// to w. It sets the Content-Type header to text/html.
func (e *TemplateEngine) Render(w http.ResponseWriter, name string, data any) error {
	return e.render(w, name, "layout.html", data)
}

// RenderPartial executes only the body fragment of the named page.
func (e *TemplateEngine) RenderPartial(w http.ResponseWriter, name string, data any) error {
	return e.render(w, name, "body", data)
}

func (e *TemplateEngine) render(w http.ResponseWriter, name, root string, data any) error {
	// Buffer so a template error doesn't leave a half-written 200.
	var buf bytes.Buffer
	if err := e.execute(&buf, name, root, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if pd, ok := data.(PageData); ok && pd.Status != 0 {
		w.WriteHeader(pd.Status)
	}
	_, err := buf.WriteTo(w)
	return err
}

// RenderTo executes the named template with the given data and writes the
// result to an arbitrary io.Writer (useful for testing without HTTP).
func (e *TemplateEngine) RenderTo(w io.Writer, name string, data any) error {
	return e.execute(w, name, "layout.html", data)
}

func (e *TemplateEngine) execute(w io.Writer, name, root string, data any) error {
	t, ok := e.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, root, data)
}

// markdownToHTML converts a markdown string to HTML using goldmark.
// Raw HTML in the input is stripped to prevent XSS.
func markdownToHTML(input string) template.HTML {
	var buf bytes.Buffer
	md := goldmark.New()
	if err := md.Convert([]byte(input), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(input))
	}
	return template.HTML(buf.String())
}

// formatQuantity prints whole quantities without a decimal part.
func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
