package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-harvester/internal/db/models"
	"github.com/ad-tracker/youtube-channel-harvester/internal/metrics"
	"github.com/ad-tracker/youtube-channel-harvester/internal/service/youtube"
)

// DefaultPageSize is the search page size used when none is configured.
const DefaultPageSize int64 = 49

// VideoHarvester pages through a channel's uploads and collects each video
// with its statistics.
type VideoHarvester struct {
	api      YouTubeAPI
	calls    *CallTracker
	metrics  *metrics.Harvest
	logger   *zap.Logger
	pageSize int64
}

// NewVideoHarvester creates a VideoHarvester. pageSize is clamped to 1..50;
// zero selects DefaultPageSize.
func NewVideoHarvester(api YouTubeAPI, calls *CallTracker, m *metrics.Harvest, pageSize int64, logger *zap.Logger) *VideoHarvester {
	if calls == nil {
		calls = NewCallTracker(nil, m, nil, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VideoHarvester{
		api:      api,
		calls:    calls,
		metrics:  m,
		logger:   logger,
		pageSize: clampPageSize(pageSize),
	}
}

func clampPageSize(size int64) int64 {
	switch {
	case size == 0:
		return DefaultPageSize
	case size < 1:
		return 1
	case size > youtube.MaxPageSize:
		return youtube.MaxPageSize
	default:
		return size
	}
}

// PageSize returns the effective search page size.
func (h *VideoHarvester) PageSize() int64 {
	return h.pageSize
}

// Harvest collects every video of channelID, newest first. When a page
// request fails, the videos collected so far are returned along with the
// error.
func (h *VideoHarvester) Harvest(ctx context.Context, channelID string) ([]*models.Video, error) {
	var (
		videos    []*models.Video
		pageToken string
		pages     int
	)

	for {
		page, err := h.api.SearchChannelVideos(ctx, channelID, pageToken, h.pageSize)
		pauseErr := h.calls.Done(ctx, models.OperationSearch, youtube.SearchQuotaCost, err)
		if err != nil {
			h.logger.Error("Video search failed",
				append(apiErrorFields(err), zap.String("channel_id", channelID), zap.Int("page", pages+1))...)
			return videos, fmt.Errorf("harvest channel %s page %d: %w", channelID, pages+1, err)
		}
		if pauseErr != nil {
			return videos, fmt.Errorf("harvest channel %s: %w", channelID, pauseErr)
		}

		pages++
		h.metrics.PageFetched()
		h.logger.Debug("Fetched search page",
			zap.String("channel_id", channelID),
			zap.Int("page", pages),
			zap.Int("items", len(page.Items)),
		)

		for _, item := range page.Items {
			if item.Kind != youtube.VideoKind {
				continue
			}

			video, err := h.buildVideo(ctx, item)
			if err != nil {
				if ctx.Err() != nil {
					return videos, fmt.Errorf("harvest channel %s: %w", channelID, err)
				}
				continue
			}
			videos = append(videos, video)
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	h.logger.Info("Harvested channel",
		zap.String("channel_id", channelID),
		zap.Int("pages", pages),
		zap.Int("videos", len(videos)),
	)

	return videos, nil
}

// buildVideo maps one search item to a video. A failed statistics lookup
// yields zero counts; an unparseable publish time drops the item.
func (h *VideoHarvester) buildVideo(ctx context.Context, item youtube.SearchItem) (*models.Video, error) {
	if _, err := models.TruncateToDate(item.PublishedAt); err != nil {
		h.metrics.VideoSkipped()
		h.logger.Warn("Skipping video with unparseable publish time",
			zap.String("video_id", item.VideoID),
			zap.String("published_at", item.PublishedAt),
			zap.Error(err),
		)
		return nil, err
	}

	stats, err := h.api.VideoStatistics(ctx, item.VideoID)
	if pauseErr := h.calls.Done(ctx, models.OperationVideosList, youtube.VideosListQuotaCost, err); pauseErr != nil {
		return nil, pauseErr
	}
	if err != nil {
		h.metrics.StatisticsFallback()
		h.logger.Warn("Statistics lookup failed, storing zero counts",
			append(apiErrorFields(err), zap.String("video_id", item.VideoID))...)
		stats = models.VideoStatistics{}
	}

	return models.NewVideo(item.VideoID, item.ChannelID, item.Title, item.PublishedAt, stats)
}
