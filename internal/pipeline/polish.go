package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"time"

	"wrapgen/internal/domain"
	"wrapgen/internal/infra"
	"wrapgen/internal/providers/artgen"
	"wrapgen/internal/storage"
)

// PolishStage sends the composite through one image-to-image refinement pass to
// smooth transitions and add photographic realism. Single request, same poll
// policy as the artwork fan-out, no fan-out of its own. Whether its failure
// fails the job is the orchestrator's policy, not this stage's.
type PolishStage struct {
	provider GenerationProvider
	store    storage.BlobStore
	logger   infra.Logger

	PollInterval time.Duration
	MaxAttempts  int
}

// NewPolishStage wires the stage with the default poll policy.
func NewPolishStage(provider GenerationProvider, store storage.BlobStore, logger infra.Logger) *PolishStage {
	return &PolishStage{
		provider:     provider,
		store:        store,
		logger:       logger,
		PollInterval: defaultPollInterval,
		MaxAttempts:  defaultPollMaxAttempts,
	}
}

// Run refines the composite and stores the polished concept. It returns the
// stored concept reference.
func (s *PolishStage) Run(ctx context.Context, jobID string, analysis *domain.BrandAnalysis, compositeRef string) (string, error) {
	data, err := s.store.Download(ctx, compositeRef)
	if err != nil {
		return "", fmt.Errorf("fetch composite: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode composite: %w", err)
	}

	handle, err := s.provider.Submit(ctx, artgen.SubmitRequest{
		Prompt:      polishPrompt(analysis),
		Width:       cfg.Width,
		Height:      cfg.Height,
		SourceImage: data,
		SourceMIME:  http.DetectContentType(data),
		StyleParams: map[string]string{"mode": "refine", "strength": "0.35"},
	})
	if err != nil {
		return "", err
	}

	status, err := pollUntilTerminal(ctx, s.provider, handle, s.PollInterval, s.MaxAttempts)
	if err != nil {
		return "", err
	}
	if status.State == artgen.StateFailed {
		return "", fmt.Errorf("refinement failed: %s: %w", status.ErrorMessage, domain.ErrProviderRejected)
	}
	if status.ImageURL == "" {
		return "", fmt.Errorf("refinement succeeded without output: %w", domain.ErrProviderUnavailable)
	}

	polished, err := s.store.Download(ctx, status.ImageURL)
	if err != nil {
		return "", fmt.Errorf("fetch polished image: %w", err)
	}
	ref, err := s.store.Upload(ctx, fmt.Sprintf("concepts/%s.png", jobID), polished, "image/png")
	if err != nil {
		return "", fmt.Errorf("store concept: %w", err)
	}
	return ref, nil
}

func polishPrompt(analysis *domain.BrandAnalysis) string {
	return fmt.Sprintf(
		"Refine this vehicle wrap mockup: smooth color transitions, photographic realism, "+
			"keep all existing lettering exactly as it is, preserve composition, %s style.",
		analysis.StyleCategory)
}
