package pipeline

import (
	"context"
	"strings"
	"testing"

	"wrapgen/internal/domain"
)

func TestAnalysisParsesModelPayload(t *testing.T) {
	model := &fakeAnalyzer{text: "```json\n" + `{
		"primary_color": "#ff6a00",
		"secondary_color": "0B1F3A",
		"accent_color": "#FFFFFF",
		"style_category": "Bold-Aggressive",
		"industry_keywords": ["plumbing", "Plumbing", "pipes"],
		"complexity_score": 7,
		"prompt": "Angular copper waves over deep navy, sweeping across the panel."
	}` + "\n```"}
	stage := NewAnalysisStage(model, nil, testLogger)

	analysis, degraded := stage.Run(context.Background(), domain.BrandInputs{BrandName: "FlowRight"})
	if degraded != nil {
		t.Fatalf("unexpected degradation: %v", degraded)
	}
	if analysis.PrimaryColor != "#FF6A00" {
		t.Fatalf("primary color = %q", analysis.PrimaryColor)
	}
	if analysis.SecondaryColor != "#0B1F3A" {
		t.Fatalf("secondary color = %q", analysis.SecondaryColor)
	}
	if analysis.StyleCategory != domain.StyleBoldAggressive {
		t.Fatalf("style = %q", analysis.StyleCategory)
	}
	if len(analysis.IndustryKeywords) != 2 {
		t.Fatalf("keywords = %v", analysis.IndustryKeywords)
	}
	if analysis.ComplexityScore != 7 {
		t.Fatalf("complexity = %d", analysis.ComplexityScore)
	}
	if !strings.Contains(strings.ToLower(analysis.Prompt), "no text") {
		t.Fatalf("prompt missing textless constraint: %q", analysis.Prompt)
	}
}

func TestAnalysisFallsBackOnMalformedPayload(t *testing.T) {
	model := &fakeAnalyzer{text: "Here are my thoughts on the brand, in prose."}
	stage := NewAnalysisStage(model, nil, testLogger)

	inputs := domain.BrandInputs{
		BrandName: "summit roofing",
		Industry:  "roofing",
		Colors:    []string{"#224488"},
	}
	analysis, degraded := stage.Run(context.Background(), inputs)
	if degraded == nil {
		t.Fatal("expected degradation error")
	}
	if analysis == nil {
		t.Fatal("fallback analysis missing")
	}
	if !strings.Contains(analysis.Prompt, "Summit Roofing") {
		t.Fatalf("fallback prompt missing brand name: %q", analysis.Prompt)
	}
	if analysis.PrimaryColor != "#224488" {
		t.Fatalf("fallback primary = %q", analysis.PrimaryColor)
	}
	if analysis.StyleCategory != domain.StyleCleanProfessional {
		t.Fatalf("fallback style = %q", analysis.StyleCategory)
	}
	if !strings.Contains(analysis.Prompt, "No text") {
		t.Fatalf("fallback prompt missing textless constraint: %q", analysis.Prompt)
	}
}

func TestAnalysisFallsBackOnModelError(t *testing.T) {
	model := &fakeAnalyzer{err: domain.ErrProviderUnavailable}
	stage := NewAnalysisStage(model, nil, testLogger)

	analysis, degraded := stage.Run(context.Background(), domain.BrandInputs{BrandName: "Acme"})
	if degraded == nil {
		t.Fatal("expected degradation error")
	}
	if analysis == nil || analysis.Prompt == "" {
		t.Fatalf("fallback analysis = %+v", analysis)
	}
}

func TestAnalysisWithoutModelUsesFallback(t *testing.T) {
	stage := NewAnalysisStage(nil, nil, testLogger)

	analysis, degraded := stage.Run(context.Background(), domain.BrandInputs{BrandName: "Acme"})
	if degraded == nil {
		t.Fatal("expected degradation error")
	}
	if analysis == nil || analysis.ComplexityScore != 5 {
		t.Fatalf("fallback analysis = %+v", analysis)
	}
}

func TestNormalizeAnalysisBoundsComplexity(t *testing.T) {
	for _, score := range []int{0, -3, 11, 100} {
		payload := &analysisPayload{ComplexityScore: score, Prompt: "abstract waves"}
		out := normalizeAnalysis(payload, domain.BrandInputs{BrandName: "Acme"})
		if out.ComplexityScore != 5 {
			t.Fatalf("score %d normalized to %d", score, out.ComplexityScore)
		}
	}
}

func TestCapWordsTruncatesLongPrompts(t *testing.T) {
	long := strings.Repeat("word ", 400)
	capped := capWords(long, maxPromptWords)
	if got := len(strings.Fields(capped)); got != maxPromptWords {
		t.Fatalf("capped to %d words", got)
	}
	short := "already short"
	if capWords(short, maxPromptWords) != short {
		t.Fatal("short prompt modified")
	}
}

func TestEnforceTextlessPromptIsIdempotent(t *testing.T) {
	once := enforceTextlessPrompt("blue waves")
	twice := enforceTextlessPrompt(once)
	if once != twice {
		t.Fatalf("not idempotent: %q vs %q", once, twice)
	}
	if strings.Count(strings.ToLower(twice), "no text") != 1 {
		t.Fatalf("constraint duplicated: %q", twice)
	}
}

func TestNormalizeHex(t *testing.T) {
	cases := map[string]string{
		"#ff0000": "#FF0000",
		"00ff00":  "#00FF00",
		"#12345":  "",
		"red":     "",
		"":        "",
	}
	for in, want := range cases {
		if got := normalizeHex(in); got != want {
			t.Fatalf("normalizeHex(%q) = %q, want %q", in, got, want)
		}
	}
}
