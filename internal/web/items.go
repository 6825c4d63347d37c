package web

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/crudimg/internal/model"
	"github.com/erazemk/crudimg/internal/store"
)

// IndexPage handles GET /.
func (s *Server) IndexPage(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		http.Error(w, "Error al obtener los registros.", http.StatusInternalServerError)
		return
	}

	s.Templates.Render(w, "index.html", &struct {
		PageData
		Items []model.Item
	}{
		PageData: PageData{Title: "Inventario"},
		Items:    items,
	})
}

// CreatePage handles GET /create.
func (s *Server) CreatePage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "create.html", &PageData{Title: "Nuevo registro"})
}

// SaveSubmit handles POST /save.
func (s *Server) SaveSubmit(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		writeFormError(w, err)
		return
	}
	item, err := itemFromForm(r)
	if err != nil {
		writeFormError(w, err)
		return
	}
	file, err := uploadedImage(r)
	if err != nil {
		writeFormError(w, err)
		return
	}

	if file != nil {
		key, err := s.putImage(r.Context(), file)
		if err != nil {
			slog.Error("failed to upload image", "key", key, "error", err)
			http.Error(w, "Error al subir la imagen o guardar la información.", http.StatusInternalServerError)
			return
		}
		item.ImageKey = key
	}

	id, err := store.CreateItem(r.Context(), s.DB, item)
	if err != nil {
		slog.Error("failed to create item", "error", err)
		http.Error(w, "Error al subir la imagen o guardar la información.", http.StatusInternalServerError)
		return
	}

	slog.Info("item created", "id", id, "nombre", item.Name, "imagen", item.ImageKey)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// EditPage handles GET /edit/{id}.
func (s *Server) EditPage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeFormError(w, err)
		return
	}

	item, err := store.GetItem(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get item", "id", id, "error", err)
		http.Error(w, "Error al obtener el registro.", http.StatusInternalServerError)
		return
	}
	if item == nil || !item.HasImage() {
		http.Error(w, "Registro no encontrado o sin imagen", http.StatusNotFound)
		return
	}

	s.Templates.Render(w, "edit.html", &struct {
		PageData
		Item     *model.Item
		ImageURL string
	}{
		PageData: PageData{Title: "Editar " + item.Name},
		Item:     item,
		ImageURL: item.ImageURL(),
	})
}

// UpdateSubmit handles POST /update. Without a new file the key from the
// hidden "imagen" field is kept; with one the old object is removed before
// the replacement is uploaded.
func (s *Server) UpdateSubmit(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		writeFormError(w, err)
		return
	}
	id, err := parseID(r.FormValue("id"))
	if err != nil {
		writeFormError(w, err)
		return
	}
	item, err := itemFromForm(r)
	if err != nil {
		writeFormError(w, err)
		return
	}
	file, err := uploadedImage(r)
	if err != nil {
		writeFormError(w, err)
		return
	}

	item.ID = id
	item.ImageKey = r.FormValue("imagen")

	if file != nil {
		if item.ImageKey != "" {
			if err := s.Blobs.Delete(r.Context(), item.ImageKey); err != nil {
				slog.Error("failed to delete old image", "id", id, "key", item.ImageKey, "error", err)
				http.Error(w, "Error al actualizar el registro.", http.StatusInternalServerError)
				return
			}
		}
		key, err := s.putImage(r.Context(), file)
		if err != nil {
			slog.Error("failed to upload image", "id", id, "key", key, "error", err)
			http.Error(w, "Error al actualizar el registro.", http.StatusInternalServerError)
			return
		}
		item.ImageKey = key
	}

	if err := store.UpdateItem(r.Context(), s.DB, item); err != nil {
		slog.Error("failed to update item", "id", id, "error", err)
		http.Error(w, "Error al actualizar el registro.", http.StatusInternalServerError)
		return
	}

	slog.Info("item updated", "id", id, "imagen", item.ImageKey)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteSubmit handles GET /delete/{id}.
func (s *Server) DeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeFormError(w, err)
		return
	}

	key, _, err := store.GetItemImageKey(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get image key", "id", id, "error", err)
		http.Error(w, "Error al eliminar la imagen o el registro.", http.StatusInternalServerError)
		return
	}

	if key != "" {
		if err := s.Blobs.Delete(r.Context(), key); err != nil {
			slog.Error("failed to delete image", "id", id, "key", key, "error", err)
			http.Error(w, "Error al eliminar la imagen o el registro.", http.StatusInternalServerError)
			return
		}
	}

	if err := store.DeleteItem(r.Context(), s.DB, id); err != nil {
		slog.Error("failed to delete item", "id", id, "error", err)
		http.Error(w, "Error al eliminar la imagen o el registro.", http.StatusInternalServerError)
		return
	}

	slog.Info("item deleted", "id", id, "imagen", key)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteAllSubmit handles GET /delete-all. Every image is deleted
// concurrently; records are removed only after all deletions succeed.
func (s *Server) DeleteAllSubmit(w http.ResponseWriter, r *http.Request) {
	keys, err := store.ListImageKeys(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list image keys", "error", err)
		http.Error(w, "Error al eliminar las imágenes o los registros.", http.StatusInternalServerError)
		return
	}

	g, ctx := errgroup.WithContext(r.Context())
	for _, key := range keys {
		g.Go(func() error {
			if err := s.Blobs.Delete(ctx, key); err != nil {
				return fmt.Errorf("deleting %s: %w", key, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("failed to delete images", "error", err)
		http.Error(w, "Error al eliminar las imágenes o los registros.", http.StatusInternalServerError)
		return
	}

	n, err := store.DeleteAllItems(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to delete items", "error", err)
		http.Error(w, "Error al eliminar las imágenes o los registros.", http.StatusInternalServerError)
		return
	}

	slog.Info("all items deleted", "items", n, "images", len(keys))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// putImage uploads an image under a fresh timestamped key and returns it.
func (s *Server) putImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	key := model.ImageKey(s.Now(), file.Filename)

	f, err := file.Open()
	if err != nil {
		return key, fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()

	if err := s.Blobs.Put(ctx, key, f, file.Size, file.Header.Get("Content-Type")); err != nil {
		return key, err
	}
	return key, nil
}
