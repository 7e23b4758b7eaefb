package models

import "time"

// APIQuotaUsage is one UTC day of YouTube API quota accounting.
type APIQuotaUsage struct {
	UsageDate       time.Time `db:"usage_date" json:"usage_date"`
	QuotaUsed       int       `db:"quota_used" json:"quota_used"`
	OperationsCount int       `db:"operations_count" json:"operations_count"`
	SearchCalls     int       `db:"search_calls" json:"search_calls"`
	VideosListCalls int       `db:"videos_list_calls" json:"videos_list_calls"`
	OtherCalls      int       `db:"other_calls" json:"other_calls"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Quota operation types.
const (
	OperationSearch     = "search_list"
	OperationVideosList = "videos_list"
)
