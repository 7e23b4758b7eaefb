package models

import "time"

// Channel is a YouTube channel resolved from a user-supplied handle.
type Channel struct {
	ChannelID string    `db:"channel_id" json:"channel_id"`
	Handle    string    `db:"handle" json:"handle"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewChannel creates a new Channel for the given identifier and handle.
func NewChannel(channelID, handle string) *Channel {
	now := time.Now()
	return &Channel{
		ChannelID: channelID,
		Handle:    handle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
