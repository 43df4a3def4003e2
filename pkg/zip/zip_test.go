package zip

import (
	"archive/zip"
	"bytes"
	"testing"
)

func TestArchiveAssets(t *testing.T) {
	data := ArchiveAssets([]Asset{
		{Filename: "concept.png", MIME: "image/png", Data: []byte("png-bytes")},
		{Filename: "empty.png", MIME: "image/png"},
		{Filename: "print-ready.pdf", MIME: "application/pdf", Data: []byte("%PDF-1.4")},
	})
	if data == nil {
		t.Fatal("archive is nil")
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("files = %d", len(zr.File))
	}
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names["concept.png"] || !names["print-ready.pdf"] {
		t.Fatalf("names = %v", names)
	}
	if names["empty.png"] {
		t.Fatal("empty asset archived")
	}
}
