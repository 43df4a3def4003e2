package storage

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestUploadDownloadRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "http://localhost:8080/static")
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	payload := []byte("pdf bytes")
	ref, err := store.Upload(context.Background(), "exports/job-1.pdf", payload, "application/pdf")
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if !strings.HasPrefix(ref, "http://localhost:8080/static/") {
		t.Fatalf("ref = %q, want public URL under base", ref)
	}
	got, err := store.Download(context.Background(), ref)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("downloaded bytes differ: %q", got)
	}
}

func TestDownloadByBareKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	key, err := store.Upload(context.Background(), "artwork/a.png", []byte{1, 2, 3}, "image/png")
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if key != "artwork/a.png" {
		t.Fatalf("key = %q", key)
	}
	if _, err := store.Download(context.Background(), key); err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
}

func TestSanitizeKeyRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	if _, err := store.Upload(context.Background(), "../escape.txt", []byte("x"), "text/plain"); err == nil {
		t.Fatal("expected error for traversal key")
	}
}
