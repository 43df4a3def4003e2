package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/rs/zerolog"

	"wrapgen/internal/domain"
	"wrapgen/internal/providers/artgen"
	"wrapgen/internal/providers/vision"
)

var testLogger = zerolog.Nop()

type fakeAnalyzer struct {
	text string
	err  error
}

func (f *fakeAnalyzer) GenerateText(_ context.Context, _ vision.Request) (string, error) {
	return f.text, f.err
}

// fakeProvider answers Submit and Poll from caller-supplied functions. Both
// may be hit concurrently by the fan-out.
type fakeProvider struct {
	mu        sync.Mutex
	submits   int
	submitted []artgen.SubmitRequest

	submitFn func(n int, req artgen.SubmitRequest) (*artgen.RequestHandle, error)
	pollFn   func(handle *artgen.RequestHandle) (*artgen.RequestStatus, error)
}

func (f *fakeProvider) Submit(_ context.Context, req artgen.SubmitRequest) (*artgen.RequestHandle, error) {
	f.mu.Lock()
	n := f.submits
	f.submits++
	f.submitted = append(f.submitted, req)
	f.mu.Unlock()
	if f.submitFn != nil {
		return f.submitFn(n, req)
	}
	return &artgen.RequestHandle{ID: fmt.Sprintf("req-%d", n)}, nil
}

func (f *fakeProvider) Poll(_ context.Context, handle *artgen.RequestHandle) (*artgen.RequestStatus, error) {
	return f.pollFn(handle)
}

func (f *fakeProvider) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submits
}

func (f *fakeProvider) submittedPrompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	prompts := make([]string, len(f.submitted))
	for i, req := range f.submitted {
		prompts[i] = req.Prompt
	}
	return prompts
}

// memStore is an in-memory BlobStore keyed by the upload key.
type memStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{blobs: make(map[string][]byte)}
}

func (m *memStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), data...)
	return key, nil
}

func (m *memStore) Download(_ context.Context, ref string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[ref]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", ref, domain.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func pngBytes(w, h int, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if c != nil {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.Set(x, y, c)
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func succeededStatus(id, url string) *artgen.RequestStatus {
	return &artgen.RequestStatus{ID: id, State: artgen.StateSucceeded, ImageURL: url}
}

func failedStatus(id, msg string) *artgen.RequestStatus {
	return &artgen.RequestStatus{ID: id, State: artgen.StateFailed, ErrorMessage: msg}
}
