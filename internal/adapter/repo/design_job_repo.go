package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wrapgen/internal/domain"
)

// DesignJobRepositoryPG implements domain.JobRepository.
//
// Every mutator is one UPDATE that sets the stage output, the stage pointer,
// and write_seq = write_seq + 1 together, so a reader always sees a consistent
// record. Advances are guarded against moving the stage pointer backwards; a
// guard miss surfaces as domain.ErrNotFound.
type DesignJobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewDesignJobRepository creates a design job repository backed by PostgreSQL.
func NewDesignJobRepository(pool *pgxpool.Pool) *DesignJobRepositoryPG {
	return &DesignJobRepositoryPG{pool: pool}
}

// Create inserts a new job record at stage 1.
func (r *DesignJobRepositoryPG) Create(ctx context.Context, job *domain.DesignJob) error {
	inputs, err := json.Marshal(job.Inputs)
	if err != nil {
		return fmt.Errorf("encode inputs: %w", err)
	}
	query := `
INSERT INTO design_jobs (id, inputs_json, current_stage, stage_name, status)
VALUES ($1, $2, $3, $4, $5);
`
	_, err = r.pool.Exec(ctx, query, job.ID, inputs, job.CurrentStage, job.StageName, job.Status)
	return err
}

// GetByID fetches a job by its identifier.
func (r *DesignJobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.DesignJob, error) {
	query := `
SELECT id, inputs_json, current_stage, stage_name, status,
       analysis_json, artwork_refs, composite_ref, concept_ref, export_json,
       failed_stage, error_message, write_seq, created_at, updated_at
FROM design_jobs
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, jobID)

	var (
		job          domain.DesignJob
		inputsJSON   []byte
		analysisJSON []byte
		exportJSON   []byte
	)
	if err := row.Scan(
		&job.ID,
		&inputsJSON,
		&job.CurrentStage,
		&job.StageName,
		&job.Status,
		&analysisJSON,
		&job.ArtworkRefs,
		&job.CompositeRef,
		&job.ConceptRef,
		&exportJSON,
		&job.FailedStage,
		&job.ErrorMessage,
		&job.WriteSeq,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(inputsJSON, &job.Inputs); err != nil {
		return nil, fmt.Errorf("decode inputs: %w", err)
	}
	if len(analysisJSON) > 0 {
		job.Analysis = &domain.BrandAnalysis{}
		if err := json.Unmarshal(analysisJSON, job.Analysis); err != nil {
			return nil, fmt.Errorf("decode analysis: %w", err)
		}
	}
	if len(exportJSON) > 0 {
		job.Export = &domain.PrintExportResult{}
		if err := json.Unmarshal(exportJSON, job.Export); err != nil {
			return nil, fmt.Errorf("decode export: %w", err)
		}
	}
	return &job, nil
}

// AdvanceToArtwork stores the stage-1 analysis and moves the job to stage 2.
func (r *DesignJobRepositoryPG) AdvanceToArtwork(ctx context.Context, jobID string, analysis *domain.BrandAnalysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	query := `
UPDATE design_jobs
SET analysis_json = $2,
    current_stage = 2,
    stage_name = $3,
    write_seq = write_seq + 1,
    updated_at = NOW()
WHERE id = $1 AND status = 'processing' AND current_stage <= 2;
`
	return r.exec(ctx, query, jobID, payload, domain.StageArtworkGeneration)
}

// AdvanceToCompositing stores the generated artwork refs and moves to stage 3.
func (r *DesignJobRepositoryPG) AdvanceToCompositing(ctx context.Context, jobID string, artworkRefs []string) error {
	query := `
UPDATE design_jobs
SET artwork_refs = $2,
    current_stage = 3,
    stage_name = $3,
    write_seq = write_seq + 1,
    updated_at = NOW()
WHERE id = $1 AND status = 'processing' AND current_stage <= 3;
`
	return r.exec(ctx, query, jobID, artworkRefs, domain.StageCompositing)
}

// AdvanceToPolish stores the composite ref and moves to stage 4.
func (r *DesignJobRepositoryPG) AdvanceToPolish(ctx context.Context, jobID string, compositeRef string) error {
	query := `
UPDATE design_jobs
SET composite_ref = $2,
    current_stage = 4,
    stage_name = $3,
    write_seq = write_seq + 1,
    updated_at = NOW()
WHERE id = $1 AND status = 'processing' AND current_stage <= 4;
`
	return r.exec(ctx, query, jobID, compositeRef, domain.StagePolish)
}

// MarkConceptReady stores the concept ref and the terminal concept_ready status.
func (r *DesignJobRepositoryPG) MarkConceptReady(ctx context.Context, jobID string, conceptRef string) error {
	query := `
UPDATE design_jobs
SET concept_ref = $2,
    status = $3,
    write_seq = write_seq + 1,
    updated_at = NOW()
WHERE id = $1 AND status = 'processing';
`
	return r.exec(ctx, query, jobID, conceptRef, domain.JobStatusConceptReady)
}

// MarkFailed records the failing stage and message. Outputs of completed
// stages are left in place.
func (r *DesignJobRepositoryPG) MarkFailed(ctx context.Context, jobID string, failedStage, message string) error {
	query := `
UPDATE design_jobs
SET status = $2,
    failed_stage = $3,
    error_message = $4,
    write_seq = write_seq + 1,
    updated_at = NOW()
WHERE id = $1;
`
	return r.exec(ctx, query, jobID, domain.JobStatusFailed, failedStage, message)
}

// SaveExport records the print export result and completes the job.
func (r *DesignJobRepositoryPG) SaveExport(ctx context.Context, jobID string, export *domain.PrintExportResult) error {
	payload, err := json.Marshal(export)
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	query := `
UPDATE design_jobs
SET export_json = $2,
    status = $3,
    write_seq = write_seq + 1,
    updated_at = NOW()
WHERE id = $1;
`
	return r.exec(ctx, query, jobID, payload, domain.JobStatusComplete)
}

func (r *DesignJobRepositoryPG) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
