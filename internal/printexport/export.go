package printexport

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/jung-kurt/gofpdf"

	"wrapgen/internal/domain"
	"wrapgen/internal/infra"
	"wrapgen/internal/storage"
)

const jpegQuality = 92

// Exporter turns an approved concept raster into a print-shop-ready PDF. Export
// is a pure function of the approved image: a failed export leaves the job's
// generation state untouched and can simply be retried.
type Exporter struct {
	store  storage.BlobStore
	logger infra.Logger
}

// NewExporter wires an exporter with its blob store.
func NewExporter(store storage.BlobStore, logger infra.Logger) *Exporter {
	return &Exporter{store: store, logger: logger}
}

// Export fetches the approved raster, builds the bled canvas, assembles the PDF
// with trim/bleed/media page boxes, and uploads it. Errors carry the failing
// step as a prefix.
func (e *Exporter) Export(ctx context.Context, jobID, approvedRef string) (*domain.PrintExportResult, error) {
	data, err := e.store.Download(ctx, approvedRef)
	if err != nil {
		return nil, fmt.Errorf("fetch source: %w", err)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode source: %w", err)
	}
	bounds := src.Bounds()
	geom, err := NewGeometry(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, fmt.Errorf("compute geometry: %w", err)
	}

	canvas := buildBleedCanvas(src, geom)
	var encoded bytes.Buffer
	if err := jpeg.Encode(&encoded, canvas, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode canvas: %w", err)
	}

	pdfBytes, err := assemblePDF(encoded.Bytes(), geom)
	if err != nil {
		return nil, fmt.Errorf("assemble pdf: %w", err)
	}

	key := fmt.Sprintf("exports/%s.pdf", jobID)
	pdfURL, err := e.store.Upload(ctx, key, pdfBytes, "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("upload pdf: %w", err)
	}

	e.logger.Info().
		Str("job_id", jobID).
		Int("width_px", geom.PageWidthPx).
		Int("height_px", geom.PageHeightPx).
		Msg("printexport: export complete")

	return &domain.PrintExportResult{
		URL:         pdfURL,
		DPI:         PrintDPI,
		BleedInches: BleedInches,
		ColorMode:   ColorMode,
		WidthPx:     geom.PageWidthPx,
		HeightPx:    geom.PageHeightPx,
	}, nil
}

// buildBleedCanvas composites the source centered on a black canvas with the
// bleed margin on every side.
func buildBleedCanvas(src image.Image, geom Geometry) image.Image {
	dc := gg.NewContext(geom.PageWidthPx, geom.PageHeightPx)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.DrawImage(src, geom.BleedPx, geom.BleedPx)
	return dc.Image()
}

func assemblePDF(jpegBytes []byte, geom Geometry) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: geom.PageWidthPt(), Ht: geom.PageHeightPt()},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pageW, pageH := geom.PageWidthPt(), geom.PageHeightPt()
	bleed := geom.BleedPt()
	pdf.SetPageBox("bleed", 0, 0, pageW, pageH)
	pdf.SetPageBox("trim", bleed, bleed, pageW-2*bleed, pageH-2*bleed)

	opts := gofpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader("canvas", opts, bytes.NewReader(jpegBytes))
	pdf.ImageOptions("canvas", 0, 0, pageW, pageH, false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
