package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-harvester/internal/db"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db/models"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db/repository"
	"github.com/ad-tracker/youtube-channel-harvester/internal/validation"
)

// ChannelHandler serves harvested channels and their videos.
type ChannelHandler struct {
	channels repository.ChannelRepository
	videos   repository.VideoRepository
	logger   *zap.Logger
}

// NewChannelHandler creates a new ChannelHandler.
func NewChannelHandler(channels repository.ChannelRepository, videos repository.VideoRepository, logger *zap.Logger) *ChannelHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChannelHandler{channels: channels, videos: videos, logger: logger}
}

// ChannelListResponse is the body of GET /api/v1/channels.
type ChannelListResponse struct {
	Channels []*models.Channel `json:"channels"`
	PaginatedResponse
}

// VideoListResponse is the body of GET /api/v1/channels/:id/videos.
type VideoListResponse struct {
	Videos []*models.Video `json:"videos"`
	PaginatedResponse
}

// List handles GET /api/v1/channels.
func (h *ChannelHandler) List(c *gin.Context) {
	limit, offset := parseLimit(c), parseOffset(c)

	channels, total, err := h.channels.ListChannels(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list channels", zap.Error(err))
		sendError(c, http.StatusInternalServerError, "failed to list channels")
		return
	}

	c.JSON(http.StatusOK, ChannelListResponse{
		Channels:          channels,
		PaginatedResponse: paginated(len(channels), total, limit, offset),
	})
}

// Get handles GET /api/v1/channels/:id.
func (h *ChannelHandler) Get(c *gin.Context) {
	channelID := c.Param("id")
	if err := validation.ValidateChannelID(channelID); err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	channel, err := h.channels.GetChannelByID(c.Request.Context(), channelID)
	if err != nil {
		if db.IsNotFound(err) {
			sendError(c, http.StatusNotFound, fmt.Sprintf("channel with id '%s' not found", channelID))
			return
		}
		h.logger.Error("Failed to get channel", zap.String("channel_id", channelID), zap.Error(err))
		sendError(c, http.StatusInternalServerError, "failed to retrieve channel")
		return
	}

	c.JSON(http.StatusOK, channel)
}

// ListVideos handles GET /api/v1/channels/:id/videos.
func (h *ChannelHandler) ListVideos(c *gin.Context) {
	channelID := c.Param("id")
	if err := validation.ValidateChannelID(channelID); err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}
	limit, offset := parseLimit(c), parseOffset(c)

	videos, total, err := h.videos.ListVideosByChannel(c.Request.Context(), channelID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list videos", zap.String("channel_id", channelID), zap.Error(err))
		sendError(c, http.StatusInternalServerError, "failed to list videos")
		return
	}

	c.JSON(http.StatusOK, VideoListResponse{
		Videos:            videos,
		PaginatedResponse: paginated(len(videos), total, limit, offset),
	})
}
