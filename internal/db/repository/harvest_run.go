package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ad-tracker/youtube-channel-harvester/internal/db"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HarvestRunRepository records harvest runs.
type HarvestRunRepository interface {
	// Create inserts a new run in the running state.
	Create(ctx context.Context, run *models.HarvestRun) error

	// Finish stores the run's final status, counters, and finish time.
	Finish(ctx context.Context, run *models.HarvestRun) error

	// GetByID retrieves a run by ID.
	GetByID(ctx context.Context, runID uuid.UUID) (*models.HarvestRun, error)

	// List retrieves runs, most recent first, with the total count.
	List(ctx context.Context, limit, offset int) ([]*models.HarvestRun, int, error)
}

type harvestRunRepository struct {
	pool *pgxpool.Pool
}

// NewHarvestRunRepository creates a new HarvestRunRepository.
func NewHarvestRunRepository(pool *pgxpool.Pool) HarvestRunRepository {
	return &harvestRunRepository{pool: pool}
}

const harvestRunColumns = `run_id, handles, status, channels_resolved, channels_unresolved, channels_persisted,
	channel_errors, videos_harvested, videos_persisted, videos_failed, error_message, started_at, finished_at`

func (r *harvestRunRepository) Create(ctx context.Context, run *models.HarvestRun) error {
	query := `
		INSERT INTO harvest_runs (run_id, handles, status, started_at)
		VALUES ($1, $2, $3, $4)
		RETURNING started_at
	`

	err := r.pool.QueryRow(ctx, query, run.RunID, run.Handles, run.Status, run.StartedAt).Scan(&run.StartedAt)
	if err != nil {
		return db.WrapError(err, "create harvest run")
	}

	return nil
}

func (r *harvestRunRepository) Finish(ctx context.Context, run *models.HarvestRun) error {
	if run.FinishedAt == nil {
		now := time.Now()
		run.FinishedAt = &now
	}

	query := `
		UPDATE harvest_runs
		SET status = $2,
		    channels_resolved = $3,
		    channels_unresolved = $4,
		    channels_persisted = $5,
		    channel_errors = $6,
		    videos_harvested = $7,
		    videos_persisted = $8,
		    videos_failed = $9,
		    error_message = $10,
		    finished_at = $11
		WHERE run_id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		run.RunID,
		run.Status,
		run.ChannelsResolved,
		run.ChannelsUnresolved,
		run.ChannelsPersisted,
		run.ChannelErrors,
		run.VideosHarvested,
		run.VideosPersisted,
		run.VideosFailed,
		run.ErrorMessage,
		run.FinishedAt,
	)
	if err != nil {
		return db.WrapError(err, "finish harvest run")
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("finish harvest run: %w", db.ErrNotFound)
	}

	return nil
}

func (r *harvestRunRepository) GetByID(ctx context.Context, runID uuid.UUID) (*models.HarvestRun, error) {
	query := `SELECT ` + harvestRunColumns + ` FROM harvest_runs WHERE run_id = $1`

	run := &models.HarvestRun{}
	err := r.pool.QueryRow(ctx, query, runID).Scan(runScanTargets(run)...)
	if err != nil {
		return nil, db.WrapError(err, "get harvest run")
	}

	return run, nil
}

func (r *harvestRunRepository) List(ctx context.Context, limit, offset int) ([]*models.HarvestRun, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM harvest_runs`).Scan(&total); err != nil {
		return nil, 0, db.WrapError(err, "count harvest runs")
	}

	query := `SELECT ` + harvestRunColumns + ` FROM harvest_runs ORDER BY started_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, db.WrapError(err, "list harvest runs")
	}
	defer rows.Close()

	runs := []*models.HarvestRun{}
	for rows.Next() {
		run := &models.HarvestRun{}
		if err := rows.Scan(runScanTargets(run)...); err != nil {
			return nil, 0, fmt.Errorf("scan harvest run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate harvest runs: %w", err)
	}

	return runs, total, nil
}

func runScanTargets(run *models.HarvestRun) []any {
	return []any{
		&run.RunID,
		&run.Handles,
		&run.Status,
		&run.ChannelsResolved,
		&run.ChannelsUnresolved,
		&run.ChannelsPersisted,
		&run.ChannelErrors,
		&run.VideosHarvested,
		&run.VideosPersisted,
		&run.VideosFailed,
		&run.ErrorMessage,
		&run.StartedAt,
		&run.FinishedAt,
	}
}
