package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-harvester/internal/db"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db/repository"
	"github.com/ad-tracker/youtube-channel-harvester/internal/validation"
)

// VideoHandler serves single harvested videos.
type VideoHandler struct {
	videos repository.VideoRepository
	logger *zap.Logger
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(videos repository.VideoRepository, logger *zap.Logger) *VideoHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VideoHandler{videos: videos, logger: logger}
}

// Get handles GET /api/v1/videos/:id.
func (h *VideoHandler) Get(c *gin.Context) {
	videoID := c.Param("id")
	if err := validation.ValidateVideoID(videoID); err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	video, err := h.videos.GetVideoByID(c.Request.Context(), videoID)
	if err != nil {
		if db.IsNotFound(err) {
			sendError(c, http.StatusNotFound, fmt.Sprintf("video with id '%s' not found", videoID))
			return
		}
		h.logger.Error("Failed to get video", zap.String("video_id", videoID), zap.Error(err))
		sendError(c, http.StatusInternalServerError, "failed to retrieve video")
		return
	}

	c.JSON(http.StatusOK, video)
}
