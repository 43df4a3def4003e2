package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"wrapgen/internal/domain"
	"wrapgen/internal/infra"
	"wrapgen/internal/providers/artgen"
)

// Poll policy applied per provider request: fixed interval, bounded attempts.
// Exceeding the bound fails that request only, never the whole fan-out.
const (
	defaultPollInterval    = 2 * time.Second
	defaultPollMaxAttempts = 30

	maxFanOut = 3

	artworkWidth  = 2048
	artworkHeight = 1024
)

// GenerationProvider is the submit/poll contract stage 2 and stage 4 drive.
type GenerationProvider interface {
	Submit(ctx context.Context, req artgen.SubmitRequest) (*artgen.RequestHandle, error)
	Poll(ctx context.Context, handle *artgen.RequestHandle) (*artgen.RequestStatus, error)
}

// Angle suffixes appended to the base prompt when more than one concept is
// generated, so the fan-out yields distinguishable candidates.
var variationAngles = []string{
	"Driver-side profile composition.",
	"Rear three-quarter composition.",
}

// ArtworkStage fans out up to three generation requests from the stage-1 prompt
// and polls each to a terminal state concurrently. At least one success makes
// the stage succeed; unresolved slots are dropped rather than wasting the
// completed generations.
type ArtworkStage struct {
	provider GenerationProvider
	logger   infra.Logger

	FanOut       int
	PollInterval time.Duration
	MaxAttempts  int
}

// NewArtworkStage wires the stage with the default poll policy.
func NewArtworkStage(provider GenerationProvider, fanOut int, logger infra.Logger) *ArtworkStage {
	if fanOut < 1 || fanOut > maxFanOut {
		fanOut = maxFanOut
	}
	return &ArtworkStage{
		provider:     provider,
		logger:       logger,
		FanOut:       fanOut,
		PollInterval: defaultPollInterval,
		MaxAttempts:  defaultPollMaxAttempts,
	}
}

type slotOutcome struct {
	imageURL string
	err      error
}

// Run submits the fan-out and reduces the per-slot outcomes. It returns the
// successfully generated image references in slot order.
func (s *ArtworkStage) Run(ctx context.Context, prompt string) ([]string, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("artwork: empty prompt: %w", domain.ErrInvalidInput)
	}

	outcomes := make([]slotOutcome, s.FanOut)
	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < s.FanOut; i++ {
		i := i
		g.Go(func() error {
			url, err := s.generateOne(gCtx, variationPrompt(prompt, s.FanOut, i))
			outcomes[i] = slotOutcome{imageURL: url, err: err}
			// Slot failures are reduced below; never cancel sibling slots.
			return nil
		})
	}
	_ = g.Wait()

	var refs []string
	var failures []error
	for i, outcome := range outcomes {
		if outcome.err != nil {
			s.logger.Warn().Err(outcome.err).Int("slot", i).Msg("pipeline: artwork slot failed")
			failures = append(failures, fmt.Errorf("slot %d: %w", i, outcome.err))
			continue
		}
		refs = append(refs, outcome.imageURL)
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("artwork: all %d generation requests failed: %w", s.FanOut, errors.Join(failures...))
	}
	return refs, nil
}

func (s *ArtworkStage) generateOne(ctx context.Context, prompt string) (string, error) {
	handle, err := s.provider.Submit(ctx, artgen.SubmitRequest{
		Prompt: prompt,
		Width:  artworkWidth,
		Height: artworkHeight,
	})
	if err != nil {
		return "", err
	}
	status, err := pollUntilTerminal(ctx, s.provider, handle, s.PollInterval, s.MaxAttempts)
	if err != nil {
		return "", err
	}
	if status.State == artgen.StateFailed {
		return "", fmt.Errorf("generation failed: %s: %w", status.ErrorMessage, domain.ErrProviderRejected)
	}
	if status.ImageURL == "" {
		return "", fmt.Errorf("generation succeeded without output: %w", domain.ErrProviderUnavailable)
	}
	return status.ImageURL, nil
}

// pollUntilTerminal applies the fixed poll budget to one request. Each request
// sleeps on an independent timer; exhausting the budget is ErrProviderTimeout
// for this request only.
func pollUntilTerminal(ctx context.Context, provider GenerationProvider, handle *artgen.RequestHandle, interval time.Duration, maxAttempts int) (*artgen.RequestStatus, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		status, err := provider.Poll(ctx, handle)
		if err != nil {
			return nil, err
		}
		if status.State.Terminal() {
			return status, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
	return nil, fmt.Errorf("request %s exceeded %d poll attempts: %w", handle.ID, maxAttempts, domain.ErrProviderTimeout)
}

func variationPrompt(prompt string, total, index int) string {
	trimmed := strings.TrimSpace(prompt)
	if total <= 1 || index == 0 {
		return trimmed
	}
	angle := variationAngles[(index-1)%len(variationAngles)]
	return trimmed + " " + angle
}
