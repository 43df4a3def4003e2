package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"wrapgen/internal/domain"
	"wrapgen/internal/infra"
	"wrapgen/internal/storage"
)

// CompositeStage overlays the brand lettering onto the generated artwork. It is
// fully deterministic: no external model call, and any failure here is an
// input or programming error, fatal to the job.
type CompositeStage struct {
	store  storage.BlobStore
	logger infra.Logger
}

// NewCompositeStage wires the stage.
func NewCompositeStage(store storage.BlobStore, logger infra.Logger) *CompositeStage {
	return &CompositeStage{store: store, logger: logger}
}

// Run composites brand name, tagline, and contact line onto the artwork using
// the selected template and palette, then stores the result. It returns the
// stored composite reference.
func (s *CompositeStage) Run(ctx context.Context, jobID string, inputs domain.BrandInputs, analysis *domain.BrandAnalysis, artworkRef string) (string, error) {
	tpl, err := TemplateByID(inputs.TemplateID)
	if err != nil {
		return "", err
	}
	data, err := s.store.Download(ctx, artworkRef)
	if err != nil {
		return "", fmt.Errorf("fetch artwork: %w", err)
	}
	base, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode artwork: %w", err)
	}

	dc := gg.NewContextForImage(base)
	w := float64(dc.Width())
	h := float64(dc.Height())

	textColor := parseHexColor(analysis.SecondaryColor, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	shadow := parseHexColor(analysis.PrimaryColor, color.RGBA{A: 255})

	if err := s.drawSlot(dc, inputs.BrandName, tpl.BrandName, inputs.Font, w, h, textColor, shadow); err != nil {
		return "", err
	}
	if err := s.drawSlot(dc, inputs.Tagline, tpl.Tagline, inputs.Font, w, h, textColor, shadow); err != nil {
		return "", err
	}
	if err := s.drawSlot(dc, contactLine(inputs), tpl.Contact, inputs.Font, w, h, textColor, shadow); err != nil {
		return "", err
	}

	var out bytes.Buffer
	if err := png.Encode(&out, dc.Image()); err != nil {
		return "", fmt.Errorf("encode composite: %w", err)
	}
	ref, err := s.store.Upload(ctx, fmt.Sprintf("composites/%s.png", jobID), out.Bytes(), "image/png")
	if err != nil {
		return "", fmt.Errorf("store composite: %w", err)
	}
	return ref, nil
}

func (s *CompositeStage) drawSlot(dc *gg.Context, text string, slot TextSlot, fontChoice string, w, h float64, fill, shadow color.Color) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	face, err := loadFace(fontChoice, slot.Scale*h)
	if err != nil {
		return fmt.Errorf("load typeface: %w", err)
	}
	dc.SetFontFace(face)

	x := slot.X * w
	y := slot.Y * h
	offset := slot.Scale * h * 0.04
	if offset < 1 {
		offset = 1
	}
	dc.SetColor(shadow)
	dc.DrawStringAnchored(text, x+offset, y+offset, slot.AnchorX, slot.AnchorY)
	dc.SetColor(fill)
	dc.DrawStringAnchored(text, x, y, slot.AnchorX, slot.AnchorY)
	return nil
}

// loadFace maps the customer's font choice onto an embedded Go typeface.
func loadFace(choice string, size float64) (font.Face, error) {
	var ttf []byte
	switch strings.ToLower(strings.TrimSpace(choice)) {
	case "bold", "block", "impact":
		ttf = gobold.TTF
	case "script", "italic":
		ttf = goitalic.TTF
	default:
		ttf = goregular.TTF
	}
	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(parsed, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
}

func contactLine(inputs domain.BrandInputs) string {
	var parts []string
	if p := strings.TrimSpace(inputs.Phone); p != "" {
		parts = append(parts, p)
	}
	if w := strings.TrimSpace(inputs.Website); w != "" {
		parts = append(parts, w)
	}
	return strings.Join(parts, "   ")
}

func parseHexColor(hex string, fallback color.RGBA) color.RGBA {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return fallback
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return fallback
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
