// Package blob stores item images in an object store.
//
// The namespace is flat: an object's key is the image key recorded on the
// item, and its body is the uploaded bytes unchanged.
package blob

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get when the key doesn't exist.
var ErrNotFound = errors.New("object not found")

// Object is an object read back from the store. The caller must close Body.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// Store is an object store holding image bytes by key.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put writes body under key, replacing any existing object.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error

	// Get opens the object stored under key.
	Get(ctx context.Context, key string) (*Object, error)

	// Delete removes the object stored under key. Deleting a missing key
	// is not an error.
	Delete(ctx context.Context, key string) error

	// Check verifies that the store is reachable.
	Check(ctx context.Context) error
}
