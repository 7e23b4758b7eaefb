package quota

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ad-tracker/youtube-channel-harvester/internal/db/models"
)

type mockQuotaRepo struct {
	mock.Mock
}

func (m *mockQuotaRepo) IncrementQuota(ctx context.Context, day time.Time, quotaCost int, operationType string) error {
	args := m.Called(ctx, day, quotaCost, operationType)
	return args.Error(0)
}

func (m *mockQuotaRepo) GetQuotaForDate(ctx context.Context, day time.Time) (*models.APIQuotaUsage, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.APIQuotaUsage), args.Error(1)
}

func (m *mockQuotaRepo) GetQuotaHistory(ctx context.Context, days int) ([]*models.APIQuotaUsage, error) {
	args := m.Called(ctx, days)
	return args.Get(0).([]*models.APIQuotaUsage), args.Error(1)
}

var fixedNow = time.Date(2024, 3, 10, 23, 30, 0, 0, time.FixedZone("PST", -8*3600))

func newTestManager(repo *mockQuotaRepo, limit, threshold int) *Manager {
	m := NewManager(repo, limit, threshold, nil)
	m.now = func() time.Time { return fixedNow }
	return m
}

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager(&mockQuotaRepo{}, 0, 150, nil)
	assert.Equal(t, 10000, m.dailyLimit)
	assert.Equal(t, 90, m.thresholdPercent)
	assert.Equal(t, 9000, m.threshold())
}

func TestManager_RecordQuotaUsage(t *testing.T) {
	ctx := context.Background()

	t.Run("records against the UTC day", func(t *testing.T) {
		repo := &mockQuotaRepo{}
		m := newTestManager(repo, 10000, 90)

		repo.On("IncrementQuota", ctx, mock.MatchedBy(func(day time.Time) bool {
			// 23:30 PST is already the next day in UTC
			return day.Location() == time.UTC && day.Day() == 11
		}), 100, models.OperationSearch).Return(nil)

		require.NoError(t, m.RecordQuotaUsage(ctx, 100, models.OperationSearch))
		repo.AssertExpectations(t)
	})

	t.Run("wraps repository errors", func(t *testing.T) {
		repo := &mockQuotaRepo{}
		m := newTestManager(repo, 10000, 90)

		repo.On("IncrementQuota", ctx, mock.Anything, 1, models.OperationVideosList).Return(errors.New("connection reset"))

		err := m.RecordQuotaUsage(ctx, 1, models.OperationVideosList)
		assert.ErrorContains(t, err, "connection reset")
	})
}

func TestManager_QuotaInfo(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		used          int
		wantExhausted bool
		wantRemaining int
		wantPercent   float64
	}{
		{"fresh day", 0, false, 900, 0},
		{"below threshold", 500, false, 400, 50},
		{"at threshold", 900, true, 0, 90},
		{"over the limit", 1200, true, 0, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockQuotaRepo{}
			m := newTestManager(repo, 1000, 90)
			repo.On("GetQuotaForDate", ctx, mock.Anything).Return(&models.APIQuotaUsage{
				QuotaUsed:       tt.used,
				OperationsCount: 3,
			}, nil)

			exhausted, err := m.IsQuotaExhausted(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantExhausted, exhausted)

			remaining, err := m.GetRemainingQuota(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRemaining, remaining)

			percent, err := m.GetQuotaUsagePercentage(ctx)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantPercent, percent, 0.001)

			info, err := m.GetQuotaInfo(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1000, info.QuotaLimit)
			assert.Equal(t, 3, info.OperationsCount)
			assert.GreaterOrEqual(t, info.QuotaRemaining, 0)
		})
	}

	t.Run("repository failure", func(t *testing.T) {
		repo := &mockQuotaRepo{}
		m := newTestManager(repo, 1000, 90)
		repo.On("GetQuotaForDate", ctx, mock.Anything).Return(nil, errors.New("boom"))

		_, err := m.IsQuotaExhausted(ctx)
		assert.Error(t, err)
	})
}
