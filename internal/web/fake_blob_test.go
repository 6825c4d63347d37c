package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/erazemk/crudimg/internal/blob"
)

// fakeBlobs is an in-memory blob.Store that records every call in order.
type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	ops     []string

	putErr    error
	deleteErr map[string]error
	checkErr  error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{
		objects:   make(map[string][]byte),
		types:     make(map[string]string),
		deleteErr: make(map[string]error),
	}
}

func (f *fakeBlobs) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "put:"+key)
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakeBlobs) Get(_ context.Context, key string) (*blob.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "get:"+key)
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("getting %s: %w", key, blob.ErrNotFound)
	}
	return &blob.Object{
		Body:        io.NopCloser(bytes.NewReader(data)),
		Size:        int64(len(data)),
		ContentType: f.types[key],
	}, nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "delete:"+key)
	if err := f.deleteErr[key]; err != nil {
		return err
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeBlobs) Check(context.Context) error {
	return f.checkErr
}

// calls returns a copy of the recorded operations.
func (f *fakeBlobs) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

// callsOf returns the keys passed to one operation.
func (f *fakeBlobs) callsOf(op string) []string {
	var keys []string
	for _, c := range f.calls() {
		if key, ok := strings.CutPrefix(c, op+":"); ok {
			keys = append(keys, key)
		}
	}
	return keys
}

var _ blob.Store = (*fakeBlobs)(nil)
