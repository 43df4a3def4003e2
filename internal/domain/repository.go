package domain

import "context"

// JobRepository defines persistence for design jobs. Every mutator is a single
// write that also advances write_seq; the orchestrator is the only writer for a
// given job id.
type JobRepository interface {
	Create(ctx context.Context, job *DesignJob) error
	GetByID(ctx context.Context, jobID string) (*DesignJob, error)

	// Stage advances persist the completed stage's output and the next stage
	// ordinal/name in the same write.
	AdvanceToArtwork(ctx context.Context, jobID string, analysis *BrandAnalysis) error
	AdvanceToCompositing(ctx context.Context, jobID string, artworkRefs []string) error
	AdvanceToPolish(ctx context.Context, jobID string, compositeRef string) error

	MarkConceptReady(ctx context.Context, jobID string, conceptRef string) error
	MarkFailed(ctx context.Context, jobID string, failedStage, message string) error
	SaveExport(ctx context.Context, jobID string, export *PrintExportResult) error
}

// HealthEvent is one observability record scoped to a job and stage.
type HealthEvent struct {
	JobID   string
	Stage   string
	Level   string
	Message string
}

// HealthLogRepository appends health events. Recording is best-effort: callers
// must never fail the pipeline when Record returns an error.
type HealthLogRepository interface {
	Record(ctx context.Context, event HealthEvent) error
}
