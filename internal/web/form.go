package web

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/crudimg/internal/model"
)

// MaxUploadSize is the largest image accepted by the save and update forms.
const MaxUploadSize = 10 << 20

// formOverhead leaves room for the text fields and multipart boundaries.
const formOverhead = 1 << 20

var (
	errTooLarge  = errors.New("upload too large")
	errBadNumber = errors.New("invalid numeric field")
	errBadForm   = errors.New("malformed form")
	errBadID     = errors.New("invalid id")
)

// parseForm reads a multipart or urlencoded body, capping its size.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+formOverhead)

	err := r.ParseMultipartForm(MaxUploadSize)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge) {
		return errTooLarge
	}
	return fmt.Errorf("%w: %v", errBadForm, err)
}

// itemFromForm builds an item from the text fields. Empty numbers are zero.
// cantidad must be an integer and precio a decimal; anything else is
// rejected here, before any remote call, rather than left to the driver.
func itemFromForm(r *http.Request) (*model.Item, error) {
	item := &model.Item{
		Name:        r.FormValue("nombre"),
		Description: r.FormValue("descripcion"),
		Brand:       r.FormValue("marca"),
	}

	if v := strings.TrimSpace(r.FormValue("cantidad")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: cantidad %q", errBadNumber, v)
		}
		item.Quantity = n
	}

	if v := strings.TrimSpace(r.FormValue("precio")); v != "" {
		// Accept a decimal comma as typed in Spanish locales.
		p, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: precio %q", errBadNumber, v)
		}
		item.Price = p
	}

	return item, nil
}

// uploadedImage returns the "imagen" file part, or nil when none was sent.
func uploadedImage(r *http.Request) (*multipart.FileHeader, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	files := r.MultipartForm.File["imagen"]
	if len(files) == 0 || files[0].Filename == "" {
		return nil, nil
	}
	if files[0].Size > MaxUploadSize {
		return nil, errTooLarge
	}
	return files[0], nil
}

// parseID parses a positive record id.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

// writeFormError answers a form parsing failure with the matching status.
func writeFormError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errTooLarge):
		http.Error(w, "La imagen supera el límite de 10 MB.", http.StatusRequestEntityTooLarge)
	case errors.Is(err, errBadNumber):
		http.Error(w, "Valor numérico inválido", http.StatusBadRequest)
	case errors.Is(err, errBadID):
		http.Error(w, "Identificador inválido", http.StatusBadRequest)
	default:
		http.Error(w, "Formulario inválido", http.StatusBadRequest)
	}
}
