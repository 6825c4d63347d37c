package web

import (
	"fmt"
	"net/http"
	"os"
	"path"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	webembed "github.com/erazemk/crudimg/web"
)

// NewRouter creates the router with all page routes registered, wrapped in
// the request ID, logging and metrics middleware.
func NewRouter(s *Server) (http.Handler, error) {
	static, err := webembed.Static()
	if err != nil {
		return nil, fmt.Errorf("opening embedded static files: %w", err)
	}

	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	if s.PublicDir != "" {
		mux.Handle("GET /", http.FileServer(noListingFS{http.Dir(s.PublicDir)}))
	}

	mux.HandleFunc("GET /{$}", s.IndexPage)
	mux.HandleFunc("GET /create", s.CreatePage)
	mux.HandleFunc("POST /save", s.SaveSubmit)
	mux.HandleFunc("GET /edit/{id}", s.EditPage)
	mux.HandleFunc("POST /update", s.UpdateSubmit)
	mux.HandleFunc("GET /delete/{id}", s.DeleteSubmit)
	mux.HandleFunc("GET /delete-all", s.DeleteAllSubmit)
	mux.HandleFunc("GET /images/{key...}", s.ImageGet)

	mux.HandleFunc("GET /healthz", s.Healthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	return RequestIDMiddleware(LoggingMiddleware(MetricsMiddleware(mux))), nil
}

// noListingFS hides directories that have no index.html so the file server
// answers 404 instead of listing them.
type noListingFS struct {
	fs http.FileSystem
}

func (nfs noListingFS) Open(name string) (http.File, error) {
	f, err := nfs.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		index, err := nfs.fs.Open(path.Join(name, "index.html"))
		if err != nil {
			f.Close()
			return nil, os.ErrNotExist
		}
		index.Close()
	}
	return f, nil
}
