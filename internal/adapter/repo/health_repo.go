package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"wrapgen/internal/domain"
)

// HealthLogRepositoryPG implements domain.HealthLogRepository on an
// append-only table.
type HealthLogRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewHealthLogRepository creates a health log repository backed by PostgreSQL.
func NewHealthLogRepository(pool *pgxpool.Pool) *HealthLogRepositoryPG {
	return &HealthLogRepositoryPG{pool: pool}
}

// Record appends one health event.
func (r *HealthLogRepositoryPG) Record(ctx context.Context, event domain.HealthEvent) error {
	query := `
INSERT INTO pipeline_health (job_id, stage, level, message)
VALUES ($1, $2, $3, $4);
`
	_, err := r.pool.Exec(ctx, query, event.JobID, event.Stage, event.Level, event.Message)
	return err
}
