package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ad-tracker/youtube-channel-harvester/internal/db/models"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotaRepository(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := NewQuotaRepository(td.Pool)
	ctx := context.Background()
	today := time.Now().UTC()

	t.Run("day without usage is zero", func(t *testing.T) {
		td.TruncateTables(t)

		usage, err := repo.GetQuotaForDate(ctx, today)
		require.NoError(t, err)
		assert.Zero(t, usage.QuotaUsed)
		assert.Zero(t, usage.OperationsCount)
	})

	t.Run("increments accumulate per operation", func(t *testing.T) {
		td.TruncateTables(t)

		require.NoError(t, repo.IncrementQuota(ctx, today, 100, models.OperationSearch))
		require.NoError(t, repo.IncrementQuota(ctx, today, 100, models.OperationSearch))
		require.NoError(t, repo.IncrementQuota(ctx, today, 1, models.OperationVideosList))
		require.NoError(t, repo.IncrementQuota(ctx, today, 3, "channels_list"))

		usage, err := repo.GetQuotaForDate(ctx, today)
		require.NoError(t, err)
		assert.Equal(t, 204, usage.QuotaUsed)
		assert.Equal(t, 4, usage.OperationsCount)
		assert.Equal(t, 2, usage.SearchCalls)
		assert.Equal(t, 1, usage.VideosListCalls)
		assert.Equal(t, 1, usage.OtherCalls)
	})

	t.Run("days are kept apart", func(t *testing.T) {
		td.TruncateTables(t)

		yesterday := today.AddDate(0, 0, -1)
		require.NoError(t, repo.IncrementQuota(ctx, yesterday, 100, models.OperationSearch))
		require.NoError(t, repo.IncrementQuota(ctx, today, 1, models.OperationVideosList))

		usage, err := repo.GetQuotaForDate(ctx, today)
		require.NoError(t, err)
		assert.Equal(t, 1, usage.QuotaUsed)

		history, err := repo.GetQuotaHistory(ctx, 7)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, 1, history[0].QuotaUsed)
		assert.Equal(t, 100, history[1].QuotaUsed)
	})
}
