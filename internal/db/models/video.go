package models

import (
	"fmt"
	"strings"
	"time"
)

// Video is a harvested YouTube video with its statistics at harvest time.
type Video struct {
	VideoID      string    `db:"video_id" json:"video_id"`
	ChannelID    string    `db:"channel_id" json:"channel_id"`
	Title        string    `db:"title" json:"title"`
	UploadDate   time.Time `db:"upload_date" json:"upload_date"`
	ViewCount    uint64    `db:"view_count" json:"view_count"`
	LikeCount    uint64    `db:"like_count" json:"like_count"`
	CommentCount uint64    `db:"comment_count" json:"comment_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// VideoStatistics holds the counters returned by a statistics lookup.
type VideoStatistics struct {
	ViewCount    uint64
	LikeCount    uint64
	CommentCount uint64
}

// NewVideo creates a Video from search snippet fields. The title is normalized
// and publishedAt is truncated to its date.
func NewVideo(videoID, channelID, title, publishedAt string, stats VideoStatistics) (*Video, error) {
	uploadDate, err := TruncateToDate(publishedAt)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Video{
		VideoID:      videoID,
		ChannelID:    channelID,
		Title:        NormalizeTitle(title),
		UploadDate:   uploadDate,
		ViewCount:    stats.ViewCount,
		LikeCount:    stats.LikeCount,
		CommentCount: stats.CommentCount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NormalizeTitle deletes every "&amp;" from a search snippet title.
// The entity is removed, not decoded: "Rock &amp; Roll" becomes "Rock  Roll".
func NormalizeTitle(title string) string {
	return strings.ReplaceAll(title, "&amp;", "")
}

// TruncateToDate returns the UTC calendar date of an ISO-8601 timestamp by
// dropping everything from the "T" separator on.
func TruncateToDate(timestamp string) (time.Time, error) {
	datePart, _, _ := strings.Cut(timestamp, "T")

	date, err := time.ParseInLocation(time.DateOnly, datePart, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid publish timestamp %q: %w", timestamp, err)
	}

	return date, nil
}
