package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Healthz handles GET /healthz: 200 when both the datastore and the
// bucket answer, 503 otherwise.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.DB.PingContext(ctx); err != nil {
		slog.Warn("health check: datastore unavailable", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	if err := s.Blobs.Check(ctx); err != nil {
		slog.Warn("health check: object store unavailable", "error", err)
		http.Error(w, "object store unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
