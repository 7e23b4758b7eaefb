package repository

import (
	"context"
	"fmt"

	"github.com/ad-tracker/youtube-channel-harvester/internal/db"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VideoRepository defines operations for managing videos.
type VideoRepository interface {
	// UpsertVideo inserts the video or, when (video_id, channel_id) already
	// exists, overwrites every non-key column. It reports whether a new row was
	// inserted. A video_id already stored under another channel fails with
	// db.ErrDuplicateKey.
	UpsertVideo(ctx context.Context, video *models.Video) (bool, error)

	// GetVideo retrieves a video by its compound key.
	GetVideo(ctx context.Context, videoID, channelID string) (*models.Video, error)

	// GetVideoByID retrieves a video by ID.
	GetVideoByID(ctx context.Context, videoID string) (*models.Video, error)

	// ListVideosByChannel retrieves a channel's videos, newest upload first, with the total count.
	ListVideosByChannel(ctx context.Context, channelID string, limit, offset int) ([]*models.Video, int, error)
}

type videoRepository struct {
	pool *pgxpool.Pool
}

// NewVideoRepository creates a new VideoRepository.
func NewVideoRepository(pool *pgxpool.Pool) VideoRepository {
	return &videoRepository{pool: pool}
}

const videoColumns = `video_id, channel_id, title, upload_date, view_count, like_count, comment_count, created_at, updated_at`

func (r *videoRepository) UpsertVideo(ctx context.Context, video *models.Video) (bool, error) {
	query := `
		INSERT INTO videos (video_id, channel_id, title, upload_date, view_count, like_count, comment_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (video_id, channel_id) DO UPDATE
		SET title = EXCLUDED.title,
		    upload_date = EXCLUDED.upload_date,
		    view_count = EXCLUDED.view_count,
		    like_count = EXCLUDED.like_count,
		    comment_count = EXCLUDED.comment_count,
		    updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at, (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.pool.QueryRow(ctx, query,
		video.VideoID,
		video.ChannelID,
		video.Title,
		video.UploadDate,
		video.ViewCount,
		video.LikeCount,
		video.CommentCount,
		video.CreatedAt,
		video.UpdatedAt,
	).Scan(
		&video.CreatedAt,
		&video.UpdatedAt,
		&inserted,
	)

	if err != nil {
		return false, db.WrapError(err, "upsert video")
	}

	return inserted, nil
}

func (r *videoRepository) GetVideo(ctx context.Context, videoID, channelID string) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE video_id = $1 AND channel_id = $2`

	video, err := scanVideo(r.pool.QueryRow(ctx, query, videoID, channelID))
	if err != nil {
		return nil, db.WrapError(err, "get video")
	}

	return video, nil
}

func (r *videoRepository) GetVideoByID(ctx context.Context, videoID string) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE video_id = $1`

	video, err := scanVideo(r.pool.QueryRow(ctx, query, videoID))
	if err != nil {
		return nil, db.WrapError(err, "get video by id")
	}

	return video, nil
}

func (r *videoRepository) ListVideosByChannel(ctx context.Context, channelID string, limit, offset int) ([]*models.Video, int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM videos WHERE channel_id = $1`, channelID).Scan(&total)
	if err != nil {
		return nil, 0, db.WrapError(err, "count videos")
	}

	query := `
		SELECT ` + videoColumns + `
		FROM videos
		WHERE channel_id = $1
		ORDER BY upload_date DESC, video_id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, channelID, limit, offset)
	if err != nil {
		return nil, 0, db.WrapError(err, "list videos by channel")
	}
	defer rows.Close()

	videos := []*models.Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, total, nil
}

func scanVideo(row pgx.Row) (*models.Video, error) {
	video := &models.Video{}
	err := row.Scan(
		&video.VideoID,
		&video.ChannelID,
		&video.Title,
		&video.UploadDate,
		&video.ViewCount,
		&video.LikeCount,
		&video.CommentCount,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return video, nil
}
