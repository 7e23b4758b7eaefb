package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus is the lifecycle state of a harvest run.
type RunStatus string

// RunStatus values.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// HarvestRun records one invocation of the harvester.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type HarvestRun struct {
	RunID              uuid.UUID  `db:"run_id" json:"run_id"`
	Handles            []string   `db:"handles" json:"handles"`
	Status             RunStatus  `db:"status" json:"status"`
	ChannelsResolved   int        `db:"channels_resolved" json:"channels_resolved"`
	ChannelsUnresolved int        `db:"channels_unresolved" json:"channels_unresolved"`
	ChannelsPersisted  int        `db:"channels_persisted" json:"channels_persisted"`
	ChannelErrors      int        `db:"channel_errors" json:"channel_errors"`
	VideosHarvested    int        `db:"videos_harvested" json:"videos_harvested"`
	VideosPersisted    int        `db:"videos_persisted" json:"videos_persisted"`
	VideosFailed       int        `db:"videos_failed" json:"videos_failed"`
	ErrorMessage       *string    `db:"error_message" json:"error_message,omitempty"`
	StartedAt          time.Time  `db:"started_at" json:"started_at"`
	FinishedAt         *time.Time `db:"finished_at" json:"finished_at,omitempty"`
}

// NewHarvestRun starts a run record for the given handles.
func NewHarvestRun(handles []string) *HarvestRun {
	if handles == nil {
		handles = []string{}
	}
	return &HarvestRun{
		RunID:     uuid.New(),
		Handles:   handles,
		Status:    RunStatusRunning,
		StartedAt: time.Now(),
	}
}
