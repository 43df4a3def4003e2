package printexport

import (
	"fmt"
	"math"

	"wrapgen/internal/domain"
)

// The shop has one print standard; these are not configurable per job.
const (
	PrintDPI      = 300
	BleedInches   = 0.125
	PointsPerInch = 72.0
	ColorMode     = "RGB"
)

// BleedPixels is the bleed margin in pixels at the fixed print resolution.
func BleedPixels() int {
	return int(math.Round(BleedInches * PrintDPI))
}

// PixelsToPoints converts a pixel extent at PrintDPI into PDF points.
func PixelsToPoints(px int) float64 {
	return float64(px) * PointsPerInch / PrintDPI
}

// Box is a PDF rectangle: lower-left and upper-right corners in points.
type Box struct {
	X0, Y0, X1, Y1 float64
}

// Geometry derives the full bled-page layout for one source raster.
type Geometry struct {
	SourceWidth  int
	SourceHeight int
	BleedPx      int
	PageWidthPx  int
	PageHeightPx int
}

// NewGeometry computes the bled canvas geometry for a source image.
func NewGeometry(srcW, srcH int) (Geometry, error) {
	if srcW <= 0 || srcH <= 0 {
		return Geometry{}, fmt.Errorf("printexport: source dimensions %dx%d: %w", srcW, srcH, domain.ErrInvalidInput)
	}
	bleed := BleedPixels()
	return Geometry{
		SourceWidth:  srcW,
		SourceHeight: srcH,
		BleedPx:      bleed,
		PageWidthPx:  srcW + 2*bleed,
		PageHeightPx: srcH + 2*bleed,
	}, nil
}

// PageWidthPt is the full page width in points.
func (g Geometry) PageWidthPt() float64 {
	return PixelsToPoints(g.PageWidthPx)
}

// PageHeightPt is the full page height in points.
func (g Geometry) PageHeightPt() float64 {
	return PixelsToPoints(g.PageHeightPx)
}

// BleedPt is the bleed margin in points.
func (g Geometry) BleedPt() float64 {
	return PixelsToPoints(g.BleedPx)
}

// MediaBox is the full physical page.
func (g Geometry) MediaBox() Box {
	return Box{0, 0, g.PageWidthPt(), g.PageHeightPt()}
}

// BleedBox equals the media box: the entire canvas is printable bleed area.
func (g Geometry) BleedBox() Box {
	return g.MediaBox()
}

// TrimBox is the final cut line: the media box inset by the bleed margin on
// every edge, so the trim box always sits inside the bleed box.
func (g Geometry) TrimBox() Box {
	return Box{
		X0: g.BleedPt(),
		Y0: g.BleedPt(),
		X1: PixelsToPoints(g.PageWidthPx - g.BleedPx),
		Y1: PixelsToPoints(g.PageHeightPx - g.BleedPx),
	}
}
