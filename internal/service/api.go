// Package service implements the harvest pipeline: channel resolution, video
// harvesting, and the runner that persists both.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-harvester/internal/db/models"
	"github.com/ad-tracker/youtube-channel-harvester/internal/metrics"
	"github.com/ad-tracker/youtube-channel-harvester/internal/service/youtube"
)

// YouTubeAPI is the subset of the YouTube Data API used by the pipeline.
// *youtube.Client implements it.
type YouTubeAPI interface {
	SearchChannel(ctx context.Context, query string) (channelID string, found bool, err error)
	SearchChannelVideos(ctx context.Context, channelID, pageToken string, maxResults int64) (*youtube.SearchPage, error)
	VideoStatistics(ctx context.Context, videoID string) (models.VideoStatistics, error)
}

// QuotaRecorder accounts API quota units. *quota.Manager implements it.
type QuotaRecorder interface {
	RecordQuotaUsage(ctx context.Context, quotaCost int, operationType string) error
}

// Pacer waits between consecutive API calls.
type Pacer interface {
	Pause(ctx context.Context) error
}

// DelayPacer sleeps for a fixed delay. A zero or negative delay does not wait.
type DelayPacer struct {
	Delay time.Duration
}

// Pause blocks for the delay or until ctx is done.
func (p DelayPacer) Pause(ctx context.Context) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CallTracker runs the bookkeeping that follows every API call: quota
// accounting, metrics, and the courtesy pause.
type CallTracker struct {
	quota   QuotaRecorder
	metrics *metrics.Harvest
	pacer   Pacer
	logger  *zap.Logger
}

// NewCallTracker creates a CallTracker. quota and m may be nil; a nil pacer
// does not wait.
func NewCallTracker(quota QuotaRecorder, m *metrics.Harvest, pacer Pacer, logger *zap.Logger) *CallTracker {
	if pacer == nil {
		pacer = DelayPacer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CallTracker{
		quota:   quota,
		metrics: m,
		pacer:   pacer,
		logger:  logger,
	}
}

// Done records a finished call of the given operation and then pauses.
// It returns an error only when ctx ends during the pause.
func (t *CallTracker) Done(ctx context.Context, operation string, cost int, callErr error) error {
	t.metrics.APICall(operation, callErr)

	if t.quota != nil {
		if err := t.quota.RecordQuotaUsage(ctx, cost, operation); err != nil {
			t.logger.Warn("Failed to record quota usage",
				zap.String("operation", operation),
				zap.Int("cost", cost),
				zap.Error(err),
			)
		}
	}

	return t.pacer.Pause(ctx)
}

// apiErrorFields returns log fields carrying the HTTP status and body of an
// API error, when it has them.
func apiErrorFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}
	if code, body, ok := youtube.APIStatus(err); ok {
		fields = append(fields, zap.Int("status_code", code), zap.String("response_body", body))
	}
	return fields
}
