package pipeline

import (
	"fmt"
	"strings"

	"wrapgen/internal/domain"
)

// TextSlot positions one line of composited text. Coordinates and anchors are
// fractions of the canvas; Scale is the font size as a fraction of canvas
// height.
type TextSlot struct {
	X, Y             float64
	AnchorX, AnchorY float64
	Scale            float64
}

// CompositeTemplate is a named lettering layout for the wrap canvas.
type CompositeTemplate struct {
	ID        string
	BrandName TextSlot
	Tagline   TextSlot
	Contact   TextSlot
}

const defaultTemplateID = "standard"

var compositeTemplates = map[string]CompositeTemplate{
	"standard": {
		ID:        "standard",
		BrandName: TextSlot{X: 0.5, Y: 0.40, AnchorX: 0.5, AnchorY: 0.5, Scale: 0.16},
		Tagline:   TextSlot{X: 0.5, Y: 0.58, AnchorX: 0.5, AnchorY: 0.5, Scale: 0.06},
		Contact:   TextSlot{X: 0.5, Y: 0.90, AnchorX: 0.5, AnchorY: 0.5, Scale: 0.045},
	},
	"stacked": {
		ID:        "stacked",
		BrandName: TextSlot{X: 0.06, Y: 0.30, AnchorX: 0.0, AnchorY: 0.5, Scale: 0.14},
		Tagline:   TextSlot{X: 0.06, Y: 0.46, AnchorX: 0.0, AnchorY: 0.5, Scale: 0.055},
		Contact:   TextSlot{X: 0.06, Y: 0.88, AnchorX: 0.0, AnchorY: 0.5, Scale: 0.045},
	},
	"banner": {
		ID:        "banner",
		BrandName: TextSlot{X: 0.5, Y: 0.18, AnchorX: 0.5, AnchorY: 0.5, Scale: 0.12},
		Tagline:   TextSlot{X: 0.5, Y: 0.32, AnchorX: 0.5, AnchorY: 0.5, Scale: 0.05},
		Contact:   TextSlot{X: 0.94, Y: 0.90, AnchorX: 1.0, AnchorY: 0.5, Scale: 0.045},
	},
}

// TemplateByID resolves a lettering template. An empty id selects the default;
// an unknown id is a caller error and fatal to the job.
func TemplateByID(id string) (CompositeTemplate, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	if key == "" {
		key = defaultTemplateID
	}
	tpl, ok := compositeTemplates[key]
	if !ok {
		return CompositeTemplate{}, fmt.Errorf("template %q: %w", id, domain.ErrTemplateNotFound)
	}
	return tpl, nil
}
