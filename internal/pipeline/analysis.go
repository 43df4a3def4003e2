package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"wrapgen/internal/domain"
	"wrapgen/internal/infra"
	"wrapgen/internal/providers/vision"
	"wrapgen/internal/storage"
)

const maxPromptWords = 250

// AnalysisStage turns the customer's brand brief into structured attributes and
// an artwork generation prompt. The stage never fails the job: when the model
// call or its JSON payload is unusable it falls back to a deterministic
// template prompt built from the raw inputs.
type AnalysisStage struct {
	model  vision.Analyzer
	store  storage.BlobStore
	logger infra.Logger
}

// NewAnalysisStage wires the stage. model may be nil, in which case every run
// uses the fallback prompt.
func NewAnalysisStage(model vision.Analyzer, store storage.BlobStore, logger infra.Logger) *AnalysisStage {
	return &AnalysisStage{model: model, store: store, logger: logger}
}

type analysisPayload struct {
	PrimaryColor     string   `json:"primary_color"`
	SecondaryColor   string   `json:"secondary_color"`
	AccentColor      string   `json:"accent_color"`
	StyleCategory    string   `json:"style_category"`
	IndustryKeywords []string `json:"industry_keywords"`
	ComplexityScore  int      `json:"complexity_score"`
	Prompt           string   `json:"prompt"`
}

// Run executes the brand analysis. The second return value reports an absorbed
// degradation (model unavailable, malformed payload); it is nil on a clean run
// and never fatal.
func (s *AnalysisStage) Run(ctx context.Context, inputs domain.BrandInputs) (*domain.BrandAnalysis, error) {
	if s.model == nil {
		return fallbackAnalysis(inputs), errors.New("analysis model not configured")
	}

	req := vision.Request{Instruction: buildAnalysisInstruction(inputs)}
	if logo := strings.TrimSpace(inputs.LogoURL); logo != "" && s.store != nil {
		data, err := s.store.Download(ctx, logo)
		if err != nil {
			// Logo is advisory input only; analyze without it.
			s.logger.Warn().Err(err).Msg("pipeline: logo fetch failed, analyzing without it")
		} else {
			req.ImageData = data
			req.ImageMIME = http.DetectContentType(data)
		}
	}

	raw, err := s.model.GenerateText(ctx, req)
	if err != nil {
		return fallbackAnalysis(inputs), fmt.Errorf("model call: %w", err)
	}
	payload, err := parseAnalysisPayload(raw)
	if err != nil {
		return fallbackAnalysis(inputs), fmt.Errorf("parse model payload: %w", err)
	}
	return normalizeAnalysis(payload, inputs), nil
}

// normalizeAnalysis validates the untyped model payload field by field,
// substituting a defined fallback for anything missing or out of range.
func normalizeAnalysis(p *analysisPayload, inputs domain.BrandInputs) *domain.BrandAnalysis {
	fb := fallbackAnalysis(inputs)
	out := &domain.BrandAnalysis{
		PrimaryColor:     coalesce(normalizeHex(p.PrimaryColor), fb.PrimaryColor),
		SecondaryColor:   coalesce(normalizeHex(p.SecondaryColor), fb.SecondaryColor),
		AccentColor:      coalesce(normalizeHex(p.AccentColor), fb.AccentColor),
		StyleCategory:    domain.NormalizeStyleCategory(p.StyleCategory),
		IndustryKeywords: normalizeKeywords(p.IndustryKeywords, inputs.Industry),
		ComplexityScore:  p.ComplexityScore,
		Prompt:           strings.TrimSpace(p.Prompt),
	}
	if out.ComplexityScore < 1 || out.ComplexityScore > 10 {
		out.ComplexityScore = fb.ComplexityScore
	}
	if out.Prompt == "" {
		out.Prompt = fb.Prompt
	}
	out.Prompt = enforceTextlessPrompt(capWords(out.Prompt, maxPromptWords))
	return out
}

// fallbackAnalysis builds a deterministic analysis from the raw inputs so the
// pipeline can always proceed.
func fallbackAnalysis(inputs domain.BrandInputs) *domain.BrandAnalysis {
	colors := inputs.Colors
	primary := "#1A1A1A"
	secondary := "#FFFFFF"
	accent := "#E63E30"
	if len(colors) > 0 && normalizeHex(colors[0]) != "" {
		primary = normalizeHex(colors[0])
	}
	if len(colors) > 1 && normalizeHex(colors[1]) != "" {
		secondary = normalizeHex(colors[1])
	}
	if len(colors) > 2 && normalizeHex(colors[2]) != "" {
		accent = normalizeHex(colors[2])
	}

	titler := cases.Title(language.AmericanEnglish)
	industry := strings.TrimSpace(inputs.Industry)
	if industry == "" {
		industry = "local business"
	}

	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Professional vehicle wrap background design for %s, a %s company.",
		titler.String(strings.TrimSpace(inputs.BrandName)), industry)
	fmt.Fprintf(sb, " Sweeping dynamic shapes in %s with %s contrast and %s accents,", primary, secondary, accent)
	sb.WriteString(" high contrast, crisp edges, suitable for full-vehicle print.")
	if notes := strings.TrimSpace(inputs.StyleNotes); notes != "" {
		fmt.Fprintf(sb, " Style direction: %s.", notes)
	}

	return &domain.BrandAnalysis{
		PrimaryColor:     primary,
		SecondaryColor:   secondary,
		AccentColor:      accent,
		StyleCategory:    domain.StyleCleanProfessional,
		IndustryKeywords: normalizeKeywords(nil, inputs.Industry),
		ComplexityScore:  5,
		Prompt:           enforceTextlessPrompt(capWords(sb.String(), maxPromptWords)),
	}
}

func buildAnalysisInstruction(inputs domain.BrandInputs) string {
	sb := &strings.Builder{}
	sb.WriteString("You are a vehicle wrap design director. Analyze the brand below and respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"primary_color":"#RRGGBB","secondary_color":"#RRGGBB","accent_color":"#RRGGBB","style_category":"bold-aggressive|clean-professional|luxury-premium|fun-playful|industrial-tough","industry_keywords":["..."],"complexity_score":1,"prompt":"..."}`)
	sb.WriteString(". The prompt field is the generation prompt for a textless vehicle wrap background graphic: at most 250 words, no text, no lettering, no words, no logos in the artwork itself. ")
	fmt.Fprintf(sb, "Brand: name=%q, tagline=%q, industry=%q, colors=%v, style_notes=%q, font=%q.",
		inputs.BrandName, inputs.Tagline, inputs.Industry, inputs.Colors, inputs.StyleNotes, inputs.Font)
	return sb.String()
}

// enforceTextlessPrompt guarantees the artwork prompt carries the no-lettering
// constraint regardless of what the model produced.
func enforceTextlessPrompt(prompt string) string {
	lower := strings.ToLower(prompt)
	if strings.Contains(lower, "no text") || strings.Contains(lower, "without text") {
		return prompt
	}
	return strings.TrimRight(prompt, ". ") + ". No text, no lettering, no words, no logos."
}

func capWords(text string, limit int) string {
	words := strings.Fields(text)
	if len(words) <= limit {
		return strings.TrimSpace(text)
	}
	return strings.Join(words[:limit], " ")
}

func parseAnalysisPayload(raw string) (*analysisPayload, error) {
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return nil, errors.New("empty payload")
	}
	var decoded analysisPayload
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return nil, err
	}
	return &decoded, nil
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

func normalizeHex(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "#") {
		raw = "#" + raw
	}
	if len(raw) != 7 {
		return ""
	}
	for _, c := range raw[1:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return ""
		}
	}
	return strings.ToUpper(raw)
}

func normalizeKeywords(keywords []string, fallback string) []string {
	seen := make(map[string]struct{})
	var result []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		kwLower := strings.ToLower(kw)
		if _, ok := seen[kwLower]; ok {
			continue
		}
		seen[kwLower] = struct{}{}
		result = append(result, kw)
	}
	if len(result) == 0 && strings.TrimSpace(fallback) != "" {
		result = []string{strings.TrimSpace(fallback)}
	}
	return result
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}
