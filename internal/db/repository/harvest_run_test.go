package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ad-tracker/youtube-channel-harvester/internal/db"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db/models"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHarvestRunRepository(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := NewHarvestRunRepository(td.Pool)
	ctx := context.Background()

	t.Run("create and finish", func(t *testing.T) {
		td.TruncateTables(t)

		run := models.NewHarvestRun([]string{"mkbhd", "veritasium"})
		require.NoError(t, repo.Create(ctx, run))

		stored, err := repo.GetByID(ctx, run.RunID)
		require.NoError(t, err)
		assert.Equal(t, models.RunStatusRunning, stored.Status)
		assert.Equal(t, []string{"mkbhd", "veritasium"}, stored.Handles)
		assert.Nil(t, stored.FinishedAt)

		run.Status = models.RunStatusCompleted
		run.ChannelsResolved = 2
		run.ChannelsPersisted = 2
		run.VideosHarvested = 98
		run.VideosPersisted = 97
		run.VideosFailed = 1
		require.NoError(t, repo.Finish(ctx, run))

		stored, err = repo.GetByID(ctx, run.RunID)
		require.NoError(t, err)
		assert.Equal(t, models.RunStatusCompleted, stored.Status)
		assert.Equal(t, 98, stored.VideosHarvested)
		assert.Equal(t, 97, stored.VideosPersisted)
		assert.Equal(t, 1, stored.VideosFailed)
		require.NotNil(t, stored.FinishedAt)
	})

	t.Run("failed run keeps its error message", func(t *testing.T) {
		td.TruncateTables(t)

		run := models.NewHarvestRun(nil)
		require.NoError(t, repo.Create(ctx, run))

		msg := "resolve channels: quotaExceeded"
		run.Status = models.RunStatusFailed
		run.ErrorMessage = &msg
		require.NoError(t, repo.Finish(ctx, run))

		stored, err := repo.GetByID(ctx, run.RunID)
		require.NoError(t, err)
		require.NotNil(t, stored.ErrorMessage)
		assert.Equal(t, msg, *stored.ErrorMessage)
		assert.Empty(t, stored.Handles)
	})

	t.Run("finish of unknown run", func(t *testing.T) {
		td.TruncateTables(t)

		run := models.NewHarvestRun(nil)
		err := repo.Finish(ctx, run)
		assert.True(t, db.IsNotFound(err))

		_, err = repo.GetByID(ctx, uuid.New())
		assert.True(t, db.IsNotFound(err))
	})

	t.Run("list newest first", func(t *testing.T) {
		td.TruncateTables(t)

		older := models.NewHarvestRun([]string{"a"})
		older.StartedAt = time.Now().Add(-time.Hour)
		require.NoError(t, repo.Create(ctx, older))

		newer := models.NewHarvestRun([]string{"b"})
		require.NoError(t, repo.Create(ctx, newer))

		runs, total, err := repo.List(ctx, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, runs, 2)
		assert.Equal(t, newer.RunID, runs[0].RunID)
	})
}
