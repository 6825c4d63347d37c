package web

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/erazemk/crudimg/internal/blob"
	"github.com/erazemk/crudimg/internal/imaging"
)

// ImageGet handles GET /images/{key...}. The local mirror under the public
// directory wins over the bucket. With ?thumb=1 a JPEG thumbnail is
// returned instead of the original bytes.
func (s *Server) ImageGet(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		http.NotFound(w, r)
		return
	}
	thumb := r.URL.Query().Get("thumb") != ""

	if f, info := s.openMirrored(key); f != nil {
		defer f.Close()
		if thumb {
			writeThumbnail(w, f, key, "")
			return
		}
		setImageHeaders(w)
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
		return
	}

	obj, err := s.Blobs.Get(r.Context(), key)
	if errors.Is(err, blob.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to get image", "key", key, "error", err)
		http.Error(w, "Error al obtener la imagen.", http.StatusInternalServerError)
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(key))
	}

	if thumb {
		writeThumbnail(w, obj.Body, key, contentType)
		return
	}

	setImageHeaders(w)
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	if _, err := io.Copy(w, obj.Body); err != nil {
		slog.Error("failed to write image response", "key", key, "error", err)
	}
}

// openMirrored opens <public>/images/<key> if it is a regular file.
func (s *Server) openMirrored(key string) (*os.File, os.FileInfo) {
	if s.PublicDir == "" {
		return nil, nil
	}
	root, err := os.OpenRoot(filepath.Join(s.PublicDir, "images"))
	if err != nil {
		return nil, nil
	}
	defer root.Close()

	f, err := root.Open(filepath.FromSlash(key))
	if err != nil {
		return nil, nil
	}
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		f.Close()
		return nil, nil
	}
	return f, info
}

// writeThumbnail downscales src. Sources the thumbnailer can't decode, and
// sources too large to buffer, are passed through unchanged.
func writeThumbnail(w http.ResponseWriter, src io.Reader, key, contentType string) {
	data, err := io.ReadAll(io.LimitReader(src, imaging.MaxSourceBytes+1))
	if err != nil {
		slog.Error("failed to read image", "key", key, "error", err)
		http.Error(w, "Error al obtener la imagen.", http.StatusInternalServerError)
		return
	}

	setImageHeaders(w)
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	if len(data) > imaging.MaxSourceBytes {
		slog.Warn("image too large for a thumbnail, sending original", "key", key)
		w.Header().Set("Content-Type", contentType)
		if _, err := io.Copy(w, io.MultiReader(bytes.NewReader(data), src)); err != nil {
			slog.Error("failed to write image response", "key", key, "error", err)
		}
		return
	}

	result, err := imaging.Thumbnail(bytes.NewReader(data), imaging.ThumbnailSize)
	if err != nil {
		if !errors.Is(err, imaging.ErrUnsupported) {
			slog.Warn("failed to build thumbnail", "key", key, "error", err)
		}
		w.Header().Set("Content-Type", contentType)
		if _, err := w.Write(data); err != nil {
			slog.Error("failed to write image response", "key", key, "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", result.MIME)
	if _, err := w.Write(result.Data); err != nil {
		slog.Error("failed to write thumbnail", "key", key, "error", err)
	}
}

func setImageHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
}
