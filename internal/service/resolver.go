package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-harvester/internal/db/models"
	"github.com/ad-tracker/youtube-channel-harvester/internal/metrics"
	"github.com/ad-tracker/youtube-channel-harvester/internal/service/youtube"
)

// ChannelResolver maps channel handles to channel IDs with a channel search.
type ChannelResolver struct {
	api     YouTubeAPI
	calls   *CallTracker
	metrics *metrics.Harvest
	logger  *zap.Logger
}

// NewChannelResolver creates a ChannelResolver.
func NewChannelResolver(api YouTubeAPI, calls *CallTracker, m *metrics.Harvest, logger *zap.Logger) *ChannelResolver {
	if calls == nil {
		calls = NewCallTracker(nil, m, nil, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChannelResolver{
		api:     api,
		calls:   calls,
		metrics: m,
		logger:  logger,
	}
}

// Resolve looks up each handle in order and returns the channels found, in
// input order, duplicates included. Handles with no search result are
// dropped with a warning. The first API error aborts resolution.
func (r *ChannelResolver) Resolve(ctx context.Context, handles []string) ([]*models.Channel, error) {
	channels := make([]*models.Channel, 0, len(handles))

	for _, handle := range handles {
		channelID, found, err := r.api.SearchChannel(ctx, handle)
		if pauseErr := r.calls.Done(ctx, models.OperationSearch, youtube.SearchQuotaCost, err); pauseErr != nil && err == nil {
			return channels, fmt.Errorf("resolve channels: %w", pauseErr)
		}
		if err != nil {
			r.logger.Error("Channel search failed", append(apiErrorFields(err), zap.String("handle", handle))...)
			return channels, fmt.Errorf("resolve channel %q: %w", handle, err)
		}

		r.metrics.ChannelResolved(found)
		if !found {
			r.logger.Warn("No channel found for handle, skipping", zap.String("handle", handle))
			continue
		}

		r.logger.Info("Resolved channel",
			zap.String("handle", handle),
			zap.String("channel_id", channelID),
		)
		channels = append(channels, models.NewChannel(channelID, handle))
	}

	return channels, nil
}
