package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-harvester/internal/db"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db/models"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db/repository"
	"github.com/ad-tracker/youtube-channel-harvester/internal/metrics"
)

// Summary reports the outcome of one harvest run.
type Summary struct {
	RunID              uuid.UUID     `json:"run_id"`
	Handles            int           `json:"handles"`
	ChannelsResolved   int           `json:"channels_resolved"`
	ChannelsUnresolved int           `json:"channels_unresolved"`
	ChannelsPersisted  int           `json:"channels_persisted"`
	ChannelErrors      int           `json:"channel_errors"`
	VideosHarvested    int           `json:"videos_harvested"`
	VideosPersisted    int           `json:"videos_persisted"`
	VideosFailed       int           `json:"videos_failed"`
	Duration           time.Duration `json:"duration"`
}

// Runner drives one harvest: resolve handles, upsert channels, then harvest
// and upsert each channel's videos. Everything runs sequentially.
type Runner struct {
	resolver  *ChannelResolver
	harvester *VideoHarvester
	channels  repository.ChannelRepository
	videos    repository.VideoRepository
	runs      repository.HarvestRunRepository
	metrics   *metrics.Harvest
	logger    *zap.Logger
}

// NewRunner creates a Runner. runs may be nil, in which case no run record
// is kept.
func NewRunner(
	resolver *ChannelResolver,
	harvester *VideoHarvester,
	channels repository.ChannelRepository,
	videos repository.VideoRepository,
	runs repository.HarvestRunRepository,
	m *metrics.Harvest,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		resolver:  resolver,
		harvester: harvester,
		channels:  channels,
		videos:    videos,
		runs:      runs,
		metrics:   m,
		logger:    logger,
	}
}

// Run harvests the given handles. Per-row persistence errors and per-channel
// harvest errors are logged and counted. A resolver API error or context
// cancellation stops the run and is returned together with the partial summary.
func (r *Runner) Run(ctx context.Context, handles []string) (*Summary, error) {
	start := time.Now()
	run := models.NewHarvestRun(handles)
	summary := &Summary{RunID: run.RunID, Handles: len(handles)}
	logger := r.logger.With(zap.String("run_id", run.RunID.String()))

	r.startRun(ctx, logger, run)
	logger.Info("Harvest run started", zap.Strings("handles", handles))

	runErr := r.run(ctx, logger, handles, summary)

	summary.Duration = time.Since(start)
	r.metrics.RunFinished(summary.Duration, runErr == nil)
	r.finishRun(ctx, logger, run, summary, runErr)

	if runErr != nil {
		logger.Error("Harvest run failed", zap.Error(runErr), zap.Any("summary", summary))
		return summary, runErr
	}

	logger.Info("Harvest run completed",
		zap.Int("channels_resolved", summary.ChannelsResolved),
		zap.Int("channels_persisted", summary.ChannelsPersisted),
		zap.Int("videos_harvested", summary.VideosHarvested),
		zap.Int("videos_persisted", summary.VideosPersisted),
		zap.Int("videos_failed", summary.VideosFailed),
		zap.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func (r *Runner) run(ctx context.Context, logger *zap.Logger, handles []string, summary *Summary) error {
	channels, err := r.resolver.Resolve(ctx, handles)
	if err != nil {
		return err
	}
	summary.ChannelsResolved = len(channels)
	summary.ChannelsUnresolved = len(handles) - len(channels)

	for _, channel := range channels {
		inserted, err := r.channels.UpsertChannel(ctx, channel)
		r.metrics.Upsert("channel", inserted, err)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("Failed to upsert channel",
				zap.String("channel_id", channel.ChannelID),
				zap.String("handle", channel.Handle),
				zap.Error(err),
			)
			continue
		}
		summary.ChannelsPersisted++
	}

	for _, channel := range channels {
		if err := r.harvestChannel(ctx, logger, channel, summary); err != nil {
			return err
		}
	}

	return nil
}

// harvestChannel persists whatever the harvester returned, then reports a
// context error if the run was cancelled.
func (r *Runner) harvestChannel(ctx context.Context, logger *zap.Logger, channel *models.Channel, summary *Summary) error {
	videos, harvestErr := r.harvester.Harvest(ctx, channel.ChannelID)
	summary.VideosHarvested += len(videos)

	if harvestErr != nil {
		summary.ChannelErrors++
		logger.Error("Harvest ended early for channel",
			zap.String("channel_id", channel.ChannelID),
			zap.Int("videos_collected", len(videos)),
			zap.Error(harvestErr),
		)
	}

	for _, video := range videos {
		inserted, err := r.videos.UpsertVideo(ctx, video)
		r.metrics.Upsert("video", inserted, err)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			summary.VideosFailed++
			fields := []zap.Field{
				zap.String("video_id", video.VideoID),
				zap.String("channel_id", video.ChannelID),
				zap.Error(err),
			}
			if errors.Is(err, db.ErrDuplicateKey) {
				logger.Warn("Video already stored under another channel", fields...)
			} else {
				logger.Error("Failed to upsert video", fields...)
			}
			continue
		}
		summary.VideosPersisted++
	}

	if ctx.Err() != nil {
		return fmt.Errorf("harvest cancelled: %w", ctx.Err())
	}
	return nil
}

func (r *Runner) startRun(ctx context.Context, logger *zap.Logger, run *models.HarvestRun) {
	if r.runs == nil {
		return
	}
	if err := r.runs.Create(ctx, run); err != nil {
		logger.Warn("Failed to record harvest run start", zap.Error(err))
	}
}

func (r *Runner) finishRun(ctx context.Context, logger *zap.Logger, run *models.HarvestRun, s *Summary, runErr error) {
	if r.runs == nil {
		return
	}

	run.Status = models.RunStatusCompleted
	if runErr != nil {
		run.Status = models.RunStatusFailed
		msg := runErr.Error()
		run.ErrorMessage = &msg
	}
	run.ChannelsResolved = s.ChannelsResolved
	run.ChannelsUnresolved = s.ChannelsUnresolved
	run.ChannelsPersisted = s.ChannelsPersisted
	run.ChannelErrors = s.ChannelErrors
	run.VideosHarvested = s.VideosHarvested
	run.VideosPersisted = s.VideosPersisted
	run.VideosFailed = s.VideosFailed
	finished := time.Now()
	run.FinishedAt = &finished

	// The run record is written even when ctx was cancelled.
	if err := r.runs.Finish(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("Failed to record harvest run finish", zap.Error(err))
	}
}
