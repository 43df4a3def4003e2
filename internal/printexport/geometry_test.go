package printexport

import "testing"

func TestBleedPixelsFixedConstant(t *testing.T) {
	if got := BleedPixels(); got != 38 {
		t.Fatalf("BleedPixels() = %d, want 38", got)
	}
}

func TestGeometryRoundTrip(t *testing.T) {
	geom, err := NewGeometry(4000, 2000)
	if err != nil {
		t.Fatalf("NewGeometry returned error: %v", err)
	}
	if geom.BleedPx != 38 {
		t.Fatalf("BleedPx = %d, want 38", geom.BleedPx)
	}
	if geom.PageWidthPx != 4076 || geom.PageHeightPx != 2076 {
		t.Fatalf("page = %dx%d, want 4076x2076", geom.PageWidthPx, geom.PageHeightPx)
	}

	media := geom.MediaBox()
	wantMedia := Box{0, 0, 4076 * 72.0 / 300.0, 2076 * 72.0 / 300.0}
	if media != wantMedia {
		t.Fatalf("MediaBox = %+v, want %+v", media, wantMedia)
	}
	if geom.BleedBox() != media {
		t.Fatalf("BleedBox = %+v, want MediaBox %+v", geom.BleedBox(), media)
	}

	trim := geom.TrimBox()
	wantTrim := Box{
		X0: 38 * 72.0 / 300.0,
		Y0: 38 * 72.0 / 300.0,
		X1: (4076 - 38) * 72.0 / 300.0,
		Y1: (2076 - 38) * 72.0 / 300.0,
	}
	if trim != wantTrim {
		t.Fatalf("TrimBox = %+v, want %+v", trim, wantTrim)
	}

	// trim must sit strictly inside the media box
	if !(trim.X0 > media.X0 && trim.Y0 > media.Y0 && trim.X1 < media.X1 && trim.Y1 < media.Y1) {
		t.Fatalf("TrimBox %+v not strictly inside MediaBox %+v", trim, media)
	}
}

func TestGeometryRejectsBadDimensions(t *testing.T) {
	if _, err := NewGeometry(0, 100); err == nil {
		t.Fatal("expected error for zero width")
	}
	if _, err := NewGeometry(100, -5); err == nil {
		t.Fatal("expected error for negative height")
	}
}

func TestPixelsToPoints(t *testing.T) {
	if got := PixelsToPoints(300); got != 72.0 {
		t.Fatalf("PixelsToPoints(300) = %v, want 72", got)
	}
	if got := PixelsToPoints(38); got != 9.12 {
		t.Fatalf("PixelsToPoints(38) = %v, want 9.12", got)
	}
}
