package repository

import (
	"context"
	"fmt"

	"github.com/ad-tracker/youtube-channel-harvester/internal/db"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChannelRepository defines operations for managing channels.
type ChannelRepository interface {
	// UpsertChannel inserts the channel or, when channel_id already exists,
	// overwrites its handle. It reports whether a new row was inserted.
	UpsertChannel(ctx context.Context, channel *models.Channel) (bool, error)

	// GetChannelByID retrieves a single channel by ID.
	GetChannelByID(ctx context.Context, channelID string) (*models.Channel, error)

	// ListChannels retrieves channels ordered by most recent update, with the total count.
	ListChannels(ctx context.Context, limit, offset int) ([]*models.Channel, int, error)
}

type channelRepository struct {
	pool *pgxpool.Pool
}

// NewChannelRepository creates a new ChannelRepository.
func NewChannelRepository(pool *pgxpool.Pool) ChannelRepository {
	return &channelRepository{pool: pool}
}

func (r *channelRepository) UpsertChannel(ctx context.Context, channel *models.Channel) (bool, error) {
	// xmax is zero only for a freshly inserted tuple.
	query := `
		INSERT INTO channels (channel_id, handle, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (channel_id) DO UPDATE
		SET handle = EXCLUDED.handle,
		    updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at, (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.pool.QueryRow(ctx, query,
		channel.ChannelID,
		channel.Handle,
		channel.CreatedAt,
		channel.UpdatedAt,
	).Scan(
		&channel.CreatedAt,
		&channel.UpdatedAt,
		&inserted,
	)

	if err != nil {
		return false, db.WrapError(err, "upsert channel")
	}

	return inserted, nil
}

func (r *channelRepository) GetChannelByID(ctx context.Context, channelID string) (*models.Channel, error) {
	query := `
		SELECT channel_id, handle, created_at, updated_at
		FROM channels
		WHERE channel_id = $1
	`

	channel := &models.Channel{}
	err := r.pool.QueryRow(ctx, query, channelID).Scan(
		&channel.ChannelID,
		&channel.Handle,
		&channel.CreatedAt,
		&channel.UpdatedAt,
	)

	if err != nil {
		return nil, db.WrapError(err, "get channel by id")
	}

	return channel, nil
}

func (r *channelRepository) ListChannels(ctx context.Context, limit, offset int) ([]*models.Channel, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM channels`).Scan(&total); err != nil {
		return nil, 0, db.WrapError(err, "count channels")
	}

	query := `
		SELECT channel_id, handle, created_at, updated_at
		FROM channels
		ORDER BY updated_at DESC, channel_id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, db.WrapError(err, "list channels")
	}
	defer rows.Close()

	channels, err := scanChannels(rows)
	if err != nil {
		return nil, 0, err
	}

	return channels, total, nil
}

// Helper function to scan multiple channels from query results
func scanChannels(rows pgx.Rows) ([]*models.Channel, error) {
	channels := []*models.Channel{}

	for rows.Next() {
		channel := &models.Channel{}
		err := rows.Scan(
			&channel.ChannelID,
			&channel.Handle,
			&channel.CreatedAt,
			&channel.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, channel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channels: %w", err)
	}

	return channels, nil
}
