package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-harvester/internal/db"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db/models"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db/repository"
)

// RunHandler serves harvest run records.
type RunHandler struct {
	runs   repository.HarvestRunRepository
	logger *zap.Logger
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(runs repository.HarvestRunRepository, logger *zap.Logger) *RunHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunHandler{runs: runs, logger: logger}
}

// RunListResponse is the body of GET /api/v1/runs.
type RunListResponse struct {
	Runs []*models.HarvestRun `json:"runs"`
	PaginatedResponse
}

// List handles GET /api/v1/runs.
func (h *RunHandler) List(c *gin.Context) {
	limit, offset := parseLimit(c), parseOffset(c)

	runs, total, err := h.runs.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list harvest runs", zap.Error(err))
		sendError(c, http.StatusInternalServerError, "failed to list harvest runs")
		return
	}

	c.JSON(http.StatusOK, RunListResponse{
		Runs:              runs,
		PaginatedResponse: paginated(len(runs), total, limit, offset),
	})
}

// Get handles GET /api/v1/runs/:id.
func (h *RunHandler) Get(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "run id must be a UUID")
		return
	}

	run, err := h.runs.GetByID(c.Request.Context(), runID)
	if err != nil {
		if db.IsNotFound(err) {
			sendError(c, http.StatusNotFound, fmt.Sprintf("harvest run '%s' not found", runID))
			return
		}
		h.logger.Error("Failed to get harvest run", zap.String("run_id", runID.String()), zap.Error(err))
		sendError(c, http.StatusInternalServerError, "failed to retrieve harvest run")
		return
	}

	c.JSON(http.StatusOK, run)
}
