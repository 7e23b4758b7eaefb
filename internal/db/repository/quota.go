package repository

import (
	"context"
	"time"

	"github.com/ad-tracker/youtube-channel-harvester/internal/db"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// QuotaRepository defines operations for managing API quota usage.
type QuotaRepository interface {
	// IncrementQuota adds quotaCost units and one call of operationType to the given day.
	IncrementQuota(ctx context.Context, day time.Time, quotaCost int, operationType string) error

	// GetQuotaForDate retrieves usage for a day. A day with no usage yields a zero row.
	GetQuotaForDate(ctx context.Context, day time.Time) (*models.APIQuotaUsage, error)

	// GetQuotaHistory retrieves usage for the last days days, newest first.
	GetQuotaHistory(ctx context.Context, days int) ([]*models.APIQuotaUsage, error)
}

type quotaRepository struct {
	pool *pgxpool.Pool
}

// NewQuotaRepository creates a new QuotaRepository.
func NewQuotaRepository(pool *pgxpool.Pool) QuotaRepository {
	return &quotaRepository{pool: pool}
}

func (r *quotaRepository) IncrementQuota(ctx context.Context, day time.Time, quotaCost int, operationType string) error {
	var search, videosList, other int
	switch operationType {
	case models.OperationSearch:
		search = 1
	case models.OperationVideosList:
		videosList = 1
	default:
		other = 1
	}

	query := `
		INSERT INTO api_quota_usage (usage_date, quota_used, operations_count, search_calls, videos_list_calls, other_calls)
		VALUES ($1, $2, 1, $3, $4, $5)
		ON CONFLICT (usage_date) DO UPDATE
		SET quota_used = api_quota_usage.quota_used + EXCLUDED.quota_used,
		    operations_count = api_quota_usage.operations_count + 1,
		    search_calls = api_quota_usage.search_calls + EXCLUDED.search_calls,
		    videos_list_calls = api_quota_usage.videos_list_calls + EXCLUDED.videos_list_calls,
		    other_calls = api_quota_usage.other_calls + EXCLUDED.other_calls,
		    updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query, dateOnly(day), quotaCost, search, videosList, other)
	if err != nil {
		return db.WrapError(err, "increment quota")
	}

	return nil
}

func (r *quotaRepository) GetQuotaForDate(ctx context.Context, day time.Time) (*models.APIQuotaUsage, error) {
	query := `
		SELECT usage_date, quota_used, operations_count, search_calls, videos_list_calls, other_calls,
		       created_at, updated_at
		FROM api_quota_usage
		WHERE usage_date = $1
	`

	usage := &models.APIQuotaUsage{}
	err := r.pool.QueryRow(ctx, query, dateOnly(day)).Scan(
		&usage.UsageDate,
		&usage.QuotaUsed,
		&usage.OperationsCount,
		&usage.SearchCalls,
		&usage.VideosListCalls,
		&usage.OtherCalls,
		&usage.CreatedAt,
		&usage.UpdatedAt,
	)

	if err != nil {
		wrapped := db.WrapError(err, "get quota for date")
		if db.IsNotFound(wrapped) {
			return &models.APIQuotaUsage{UsageDate: dateOnly(day)}, nil
		}
		return nil, wrapped
	}

	return usage, nil
}

func (r *quotaRepository) GetQuotaHistory(ctx context.Context, days int) ([]*models.APIQuotaUsage, error) {
	if days <= 0 {
		days = 7
	}

	query := `
		SELECT usage_date, quota_used, operations_count, search_calls, videos_list_calls, other_calls,
		       created_at, updated_at
		FROM api_quota_usage
		WHERE usage_date > $1
		ORDER BY usage_date DESC
	`

	since := dateOnly(time.Now().UTC()).AddDate(0, 0, -days)
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, db.WrapError(err, "get quota history")
	}
	defer rows.Close()

	history := []*models.APIQuotaUsage{}
	for rows.Next() {
		usage := &models.APIQuotaUsage{}
		err := rows.Scan(
			&usage.UsageDate,
			&usage.QuotaUsed,
			&usage.OperationsCount,
			&usage.SearchCalls,
			&usage.VideosListCalls,
			&usage.OtherCalls,
			&usage.CreatedAt,
			&usage.UpdatedAt,
		)
		if err != nil {
			return nil, db.WrapError(err, "scan quota history")
		}
		history = append(history, usage)
	}

	if err := rows.Err(); err != nil {
		return nil, db.WrapError(err, "iterate quota history")
	}

	return history, nil
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
