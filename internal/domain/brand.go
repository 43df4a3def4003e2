package domain

import "strings"

// StyleCategory enumerates the supported wrap design style directions.
type StyleCategory string

const (
	StyleBoldAggressive    StyleCategory = "bold-aggressive"
	StyleCleanProfessional StyleCategory = "clean-professional"
	StyleLuxuryPremium     StyleCategory = "luxury-premium"
	StyleFunPlayful        StyleCategory = "fun-playful"
	StyleIndustrialTough   StyleCategory = "industrial-tough"
)

// NormalizeStyleCategory sanitizes free-form model output into a supported category.
func NormalizeStyleCategory(raw string) StyleCategory {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(StyleBoldAggressive):
		return StyleBoldAggressive
	case string(StyleLuxuryPremium):
		return StyleLuxuryPremium
	case string(StyleFunPlayful):
		return StyleFunPlayful
	case string(StyleIndustrialTough):
		return StyleIndustrialTough
	default:
		return StyleCleanProfessional
	}
}

// BrandInputs is the customer-supplied brief a pipeline run starts from.
type BrandInputs struct {
	BrandName  string   `json:"brand_name"`
	Tagline    string   `json:"tagline,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Website    string   `json:"website,omitempty"`
	Email      string   `json:"email,omitempty"`
	LogoURL    string   `json:"logo_url,omitempty"`
	Colors     []string `json:"colors,omitempty"`
	Industry   string   `json:"industry,omitempty"`
	StyleNotes string   `json:"style_notes,omitempty"`
	Font       string   `json:"font,omitempty"`
	TemplateID string   `json:"template_id,omitempty"`
}

// BrandAnalysis is the structured stage-1 output: brand attributes plus the
// derived artwork generation prompt. The prompt describes a textless background
// graphic; lettering is composited deterministically in stage 3.
type BrandAnalysis struct {
	PrimaryColor     string        `json:"primary_color"`
	SecondaryColor   string        `json:"secondary_color"`
	AccentColor      string        `json:"accent_color"`
	StyleCategory    StyleCategory `json:"style_category"`
	IndustryKeywords []string      `json:"industry_keywords"`
	ComplexityScore  int           `json:"complexity_score"`
	Prompt           string        `json:"prompt"`
}
