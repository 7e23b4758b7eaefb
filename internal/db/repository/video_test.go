package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ad-tracker/youtube-channel-harvester/internal/db"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db/models"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVideo(t *testing.T, videoID, channelID, title, publishedAt string, views uint64) *models.Video {
	t.Helper()
	video, err := models.NewVideo(videoID, channelID, title, publishedAt, models.VideoStatistics{
		ViewCount:    views,
		LikeCount:    views / 10,
		CommentCount: views / 100,
	})
	require.NoError(t, err)
	return video
}

func TestVideoRepository_UpsertVideo(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := NewVideoRepository(td.Pool)
	ctx := context.Background()

	t.Run("creates new video", func(t *testing.T) {
		td.TruncateTables(t)

		video := newTestVideo(t, "video123", "UC123", "Rock &amp; Roll", "2023-05-01T12:34:56Z", 1000)
		inserted, err := repo.UpsertVideo(ctx, video)
		require.NoError(t, err)
		assert.True(t, inserted)

		retrieved, err := repo.GetVideo(ctx, "video123", "UC123")
		require.NoError(t, err)
		assert.Equal(t, "Rock  Roll", retrieved.Title)
		assert.Equal(t, "2023-05-01", retrieved.UploadDate.Format(time.DateOnly))
		assert.Equal(t, uint64(1000), retrieved.ViewCount)
		assert.Equal(t, uint64(100), retrieved.LikeCount)
		assert.Equal(t, uint64(10), retrieved.CommentCount)
	})

	t.Run("updates every non-key field of existing video", func(t *testing.T) {
		td.TruncateTables(t)

		_, err := repo.UpsertVideo(ctx, newTestVideo(t, "video123", "UC123", "Old", "2023-05-01T00:00:00Z", 10))
		require.NoError(t, err)

		updated := newTestVideo(t, "video123", "UC123", "New", "2023-05-02T00:00:00Z", 5000)
		inserted, err := repo.UpsertVideo(ctx, updated)
		require.NoError(t, err)
		assert.False(t, inserted)

		retrieved, err := repo.GetVideoByID(ctx, "video123")
		require.NoError(t, err)
		assert.Equal(t, "New", retrieved.Title)
		assert.Equal(t, "2023-05-02", retrieved.UploadDate.Format(time.DateOnly))
		assert.Equal(t, uint64(5000), retrieved.ViewCount)
		assert.Equal(t, uint64(500), retrieved.LikeCount)
	})

	t.Run("re-harvesting identical data is idempotent", func(t *testing.T) {
		td.TruncateTables(t)

		for i := 0; i < 3; i++ {
			_, err := repo.UpsertVideo(ctx, newTestVideo(t, "video123", "UC123", "Same", "2023-05-01T00:00:00Z", 42))
			require.NoError(t, err)
		}

		videos, total, err := repo.ListVideosByChannel(ctx, "UC123", 10, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, videos, 1)
		assert.Equal(t, uint64(42), videos[0].ViewCount)
	})

	t.Run("same video under another channel violates the primary key", func(t *testing.T) {
		td.TruncateTables(t)

		_, err := repo.UpsertVideo(ctx, newTestVideo(t, "video123", "UC123", "Title", "2023-05-01T00:00:00Z", 1))
		require.NoError(t, err)

		_, err = repo.UpsertVideo(ctx, newTestVideo(t, "video123", "UC999", "Title", "2023-05-01T00:00:00Z", 1))
		require.Error(t, err)
		assert.True(t, db.IsDuplicateKey(err))

		retrieved, err := repo.GetVideoByID(ctx, "video123")
		require.NoError(t, err)
		assert.Equal(t, "UC123", retrieved.ChannelID)
	})

	t.Run("counts above int64 range are rejected", func(t *testing.T) {
		td.TruncateTables(t)

		video := newTestVideo(t, "video123", "UC123", "Title", "2023-05-01T00:00:00Z", 1)
		video.ViewCount = 1 << 63
		_, err := repo.UpsertVideo(ctx, video)
		assert.Error(t, err)
	})
}

func TestVideoRepository_ListVideosByChannel(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := NewVideoRepository(td.Pool)
	ctx := context.Background()

	t.Run("orders by upload date descending", func(t *testing.T) {
		td.TruncateTables(t)

		_, err := repo.UpsertVideo(ctx, newTestVideo(t, "old", "UC123", "Old", "2021-01-01T00:00:00Z", 1))
		require.NoError(t, err)
		_, err = repo.UpsertVideo(ctx, newTestVideo(t, "new", "UC123", "New", "2023-01-01T00:00:00Z", 1))
		require.NoError(t, err)
		_, err = repo.UpsertVideo(ctx, newTestVideo(t, "other", "UC999", "Other", "2022-01-01T00:00:00Z", 1))
		require.NoError(t, err)

		videos, total, err := repo.ListVideosByChannel(ctx, "UC123", 10, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, videos, 2)
		assert.Equal(t, "new", videos[0].VideoID)
		assert.Equal(t, "old", videos[1].VideoID)
	})

	t.Run("missing video is not found", func(t *testing.T) {
		td.TruncateTables(t)

		_, err := repo.GetVideo(ctx, "missing", "UC123")
		assert.True(t, db.IsNotFound(err))
	})
}
