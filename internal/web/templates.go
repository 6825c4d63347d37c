package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/crudimg/internal/blob"
	"github.com/erazemk/crudimg/internal/db"
	"github.com/erazemk/crudimg/internal/model"
	webembed "github.com/erazemk/crudimg/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"thumbPath": func(key string) string {
			return model.ImagePath(key) + "?thumb=1"
		},
	}
}

// pages lists every template rendered inside the shared layout.
var pages = []string{
	"index.html",
	"create.html",
	"edit.html",
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs, err := webembed.Templates()
	if err != nil {
		return nil, fmt.Errorf("opening embedded templates: %w", err)
	}

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title string
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB        *db.DB
	Blobs     blob.Store
	Templates *Templates
	// PublicDir is served at the site root; its images subdirectory is a
	// local mirror consulted before the bucket.
	PublicDir string
	// Now stamps uploaded image keys.
	Now func() time.Time
}

// NewServer loads the templates and returns a server using the wall clock.
func NewServer(database *db.DB, blobs blob.Store, publicDir string) (*Server, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{
		DB:        database,
		Blobs:     blobs,
		Templates: templates,
		PublicDir: publicDir,
		Now:       time.Now,
	}, nil
}
