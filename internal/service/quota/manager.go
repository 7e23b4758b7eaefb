package quota

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-harvester/internal/db/repository"
)

const (
	defaultDailyLimit       = 10000 // YouTube API v3 default
	defaultThresholdPercent = 90
)

// Info summarizes today's quota consumption.
type Info struct {
	QuotaUsed       int
	QuotaLimit      int
	QuotaRemaining  int
	OperationsCount int
	SearchCalls     int
	VideosListCalls int
}

// Manager handles YouTube API quota accounting. It only records and reports;
// it never blocks a call.
type Manager struct {
	repo             repository.QuotaRepository
	logger           *zap.Logger
	now              func() time.Time
	dailyLimit       int
	thresholdPercent int
}

// NewManager creates a new quota manager
func NewManager(repo repository.QuotaRepository, dailyLimit int, thresholdPercent int, logger *zap.Logger) *Manager {
	if dailyLimit <= 0 {
		dailyLimit = defaultDailyLimit
	}
	if thresholdPercent <= 0 || thresholdPercent > 100 {
		thresholdPercent = defaultThresholdPercent
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		repo:             repo,
		logger:           logger,
		now:              time.Now,
		dailyLimit:       dailyLimit,
		thresholdPercent: thresholdPercent,
	}
}

// RecordQuotaUsage records API quota usage against the current UTC day.
func (m *Manager) RecordQuotaUsage(ctx context.Context, quotaCost int, operationType string) error {
	if err := m.repo.IncrementQuota(ctx, m.today(), quotaCost, operationType); err != nil {
		return fmt.Errorf("failed to record quota usage: %w", err)
	}

	m.logger.Debug("quota usage recorded",
		zap.Int("cost", quotaCost),
		zap.String("operation", operationType),
	)

	return nil
}

// GetQuotaInfo returns current quota information
func (m *Manager) GetQuotaInfo(ctx context.Context) (*Info, error) {
	usage, err := m.repo.GetQuotaForDate(ctx, m.today())
	if err != nil {
		return nil, fmt.Errorf("failed to get quota info: %w", err)
	}

	remaining := m.dailyLimit - usage.QuotaUsed
	if remaining < 0 {
		remaining = 0
	}

	return &Info{
		QuotaUsed:       usage.QuotaUsed,
		QuotaLimit:      m.dailyLimit,
		QuotaRemaining:  remaining,
		OperationsCount: usage.OperationsCount,
		SearchCalls:     usage.SearchCalls,
		VideosListCalls: usage.VideosListCalls,
	}, nil
}

// GetQuotaUsagePercentage returns the percentage of daily quota used
func (m *Manager) GetQuotaUsagePercentage(ctx context.Context) (float64, error) {
	info, err := m.GetQuotaInfo(ctx)
	if err != nil {
		return 0, err
	}

	return float64(info.QuotaUsed) / float64(m.dailyLimit) * 100, nil
}

// IsQuotaExhausted checks if quota threshold has been reached
func (m *Manager) IsQuotaExhausted(ctx context.Context) (bool, error) {
	info, err := m.GetQuotaInfo(ctx)
	if err != nil {
		return false, err
	}

	return info.QuotaUsed >= m.threshold(), nil
}

// GetRemainingQuota returns how much quota is remaining before threshold
func (m *Manager) GetRemainingQuota(ctx context.Context) (int, error) {
	info, err := m.GetQuotaInfo(ctx)
	if err != nil {
		return 0, err
	}

	remaining := m.threshold() - info.QuotaUsed
	if remaining < 0 {
		return 0, nil
	}

	return remaining, nil
}

func (m *Manager) threshold() int {
	return (m.dailyLimit * m.thresholdPercent) / 100
}

func (m *Manager) today() time.Time {
	return m.now().UTC()
}
