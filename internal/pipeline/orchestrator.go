package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"wrapgen/internal/domain"
	"wrapgen/internal/infra"
	"wrapgen/internal/printexport"
	"wrapgen/internal/providers/artgen"
)

// Orchestrator drives a design job through the four stages and owns every
// write to the job record. A failed stage moves the job to failed with the
// stage name recorded; stage 1 and (optionally) stage 4 degrade instead of
// failing.
type Orchestrator struct {
	jobs     domain.JobRepository
	health   domain.HealthLogRepository
	analysis *AnalysisStage
	artwork  *ArtworkStage
	compose  *CompositeStage
	polish   *PolishStage
	exporter *printexport.Exporter
	provider GenerationProvider
	logger   infra.Logger

	polishFallback bool
}

// OrchestratorOptions carries the orchestrator's collaborators.
type OrchestratorOptions struct {
	Jobs      domain.JobRepository
	Health    domain.HealthLogRepository
	Analysis  *AnalysisStage
	Artwork   *ArtworkStage
	Composite *CompositeStage
	Polish    *PolishStage
	Exporter  *printexport.Exporter
	Provider  GenerationProvider
	Logger    infra.Logger

	// PolishFallback keeps the stage-3 composite as the concept when stage 4
	// fails instead of failing the job.
	PolishFallback bool
}

func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	return &Orchestrator{
		jobs:           opts.Jobs,
		health:         opts.Health,
		analysis:       opts.Analysis,
		artwork:        opts.Artwork,
		compose:        opts.Composite,
		polish:         opts.Polish,
		exporter:       opts.Exporter,
		provider:       opts.Provider,
		logger:         opts.Logger,
		polishFallback: opts.PolishFallback,
	}
}

// RunResult is the terminal outcome of one pipeline run.
type RunResult struct {
	JobID        string                `json:"job_id"`
	Status       domain.JobStatus      `json:"status"`
	ConceptRef   string                `json:"concept_ref,omitempty"`
	FailedStage  string                `json:"failed_stage,omitempty"`
	ErrorMessage string                `json:"error_message,omitempty"`
	Analysis     *domain.BrandAnalysis `json:"analysis,omitempty"`
}

// Run executes the pipeline for the given brief. The returned error is nil for
// any run that reached a terminal state, including failed; it is non-nil only
// when the job record itself could not be created or advanced.
func (o *Orchestrator) Run(ctx context.Context, inputs domain.BrandInputs) (*RunResult, error) {
	if strings.TrimSpace(inputs.BrandName) == "" {
		return nil, fmt.Errorf("brand_name is required: %w", domain.ErrInvalidInput)
	}

	job := &domain.DesignJob{
		ID:           uuid.NewString(),
		Inputs:       inputs,
		CurrentStage: 1,
		StageName:    domain.StageBrandAnalysis,
		Status:       domain.JobStatusProcessing,
		CreatedAt:    time.Now().UTC(),
	}
	if err := o.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	log := o.logger.With().Str("job_id", job.ID).Logger()

	// Stage 1: always yields an analysis; a non-nil error is the absorbed
	// degradation cause, recorded but never fatal.
	analysis, degraded := o.analysis.Run(ctx, inputs)
	if degraded != nil {
		log.Warn().Err(degraded).Msg("brand analysis degraded to fallback")
		o.recordHealth(ctx, job.ID, domain.StageBrandAnalysis, "warn", degraded.Error())
	}
	if err := o.jobs.AdvanceToArtwork(ctx, job.ID, analysis); err != nil {
		return nil, fmt.Errorf("advance to artwork: %w", err)
	}

	artworkRefs, err := o.artwork.Run(ctx, analysis.Prompt)
	if err != nil {
		return o.fail(ctx, job.ID, domain.StageArtworkGeneration, err)
	}
	if err := o.jobs.AdvanceToCompositing(ctx, job.ID, artworkRefs); err != nil {
		return nil, fmt.Errorf("advance to compositing: %w", err)
	}

	compositeRef, err := o.compose.Run(ctx, job.ID, inputs, analysis, artworkRefs[0])
	if err != nil {
		return o.fail(ctx, job.ID, domain.StageCompositing, err)
	}
	if err := o.jobs.AdvanceToPolish(ctx, job.ID, compositeRef); err != nil {
		return nil, fmt.Errorf("advance to polish: %w", err)
	}

	conceptRef, err := o.polish.Run(ctx, job.ID, analysis, compositeRef)
	if err != nil {
		if !o.polishFallback {
			return o.fail(ctx, job.ID, domain.StagePolish, err)
		}
		log.Warn().Err(err).Msg("polish failed, keeping composite as concept")
		o.recordHealth(ctx, job.ID, domain.StagePolish, "warn", err.Error())
		conceptRef = compositeRef
	}

	if err := o.jobs.MarkConceptReady(ctx, job.ID, conceptRef); err != nil {
		return nil, fmt.Errorf("mark concept ready: %w", err)
	}
	log.Info().Str("concept_ref", conceptRef).Msg("design concept ready")
	return &RunResult{
		JobID:      job.ID,
		Status:     domain.JobStatusConceptReady,
		ConceptRef: conceptRef,
		Analysis:   analysis,
	}, nil
}

func (o *Orchestrator) fail(ctx context.Context, jobID, stage string, cause error) (*RunResult, error) {
	o.logger.Error().Str("job_id", jobID).Str("stage", stage).Err(cause).Msg("pipeline stage failed")
	o.recordHealth(ctx, jobID, stage, "error", cause.Error())
	if err := o.jobs.MarkFailed(ctx, jobID, stage, cause.Error()); err != nil {
		return nil, fmt.Errorf("mark failed: %w", err)
	}
	return &RunResult{
		JobID:        jobID,
		Status:       domain.JobStatusFailed,
		FailedStage:  stage,
		ErrorMessage: cause.Error(),
	}, nil
}

// ExportPrintReady produces the print-ready PDF for a finished job. When
// approvedRef is empty the job's stored concept is exported. An export failure
// is recorded but leaves the job record untouched; the concept remains valid.
func (o *Orchestrator) ExportPrintReady(ctx context.Context, jobID, approvedRef string) (*domain.PrintExportResult, error) {
	job, err := o.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobStatusConceptReady && job.Status != domain.JobStatusComplete {
		return nil, fmt.Errorf("job %s has no approved concept: %w", jobID, domain.ErrInvalidInput)
	}
	ref := approvedRef
	if ref == "" {
		ref = job.ConceptRef
	}
	result, err := o.exporter.Export(ctx, jobID, ref)
	if err != nil {
		o.recordHealth(ctx, jobID, "export", "error", err.Error())
		return nil, err
	}
	if err := o.jobs.SaveExport(ctx, jobID, result); err != nil {
		return nil, fmt.Errorf("save export: %w", err)
	}
	return result, nil
}

// ProviderStatus is one entry of a batch poll.
type ProviderStatus struct {
	RequestID string `json:"request_id"`
	State     string `json:"state,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	Error     string `json:"error,omitempty"`
}

// PollProviderBatch fetches the current provider state for each request id.
// Per-id failures are reported inline so one bad id never hides the rest.
func (o *Orchestrator) PollProviderBatch(ctx context.Context, ids []string) []ProviderStatus {
	out := make([]ProviderStatus, 0, len(ids))
	for _, id := range ids {
		status, err := o.provider.Poll(ctx, &artgen.RequestHandle{ID: id})
		if err != nil {
			out = append(out, ProviderStatus{RequestID: id, Error: err.Error()})
			continue
		}
		out = append(out, ProviderStatus{
			RequestID: id,
			State:     string(status.State),
			ImageURL:  status.ImageURL,
		})
	}
	return out
}

func (o *Orchestrator) recordHealth(ctx context.Context, jobID, stage, level, message string) {
	if o.health == nil {
		return
	}
	err := o.health.Record(ctx, domain.HealthEvent{JobID: jobID, Stage: stage, Level: level, Message: message})
	if err != nil {
		o.logger.Warn().Err(err).Str("job_id", jobID).Msg("health event dropped")
	}
}
