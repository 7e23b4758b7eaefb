package youtube

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/ad-tracker/youtube-channel-harvester/internal/db/models"
)

// Quota unit costs of the calls made by the harvester.
const (
	SearchQuotaCost     = 100
	VideosListQuotaCost = 1
)

// MaxPageSize is the largest maxResults accepted by search.list.
const MaxPageSize = 50

// VideoKind marks search results that are videos.
const VideoKind = "youtube#video"

// ErrVideoNotFound is returned when a statistics lookup yields no items.
var ErrVideoNotFound = errors.New("video not found")

// Client wraps the YouTube Data API v3 client
type Client struct {
	service *youtube.Service
}

// SearchItem is the subset of a search result the harvester uses.
type SearchItem struct {
	Kind        string
	VideoID     string
	ChannelID   string
	Title       string
	PublishedAt string
}

// SearchPage is one page of search results.
type SearchPage struct {
	Items         []SearchItem
	NextPageToken string
}

// NewClient creates a new YouTube API client. Extra options are appended
// after the API key, which lets tests point the client at a local endpoint.
func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{service: service}, nil
}

// SearchChannel runs a channel search for query and returns the channel ID of
// the top-ranked result. found is false when the search returned nothing.
func (c *Client) SearchChannel(ctx context.Context, query string) (channelID string, found bool, err error) {
	resp, err := c.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("channel").
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", false, fmt.Errorf("search channel %q: %w", query, err)
	}

	for _, item := range resp.Items {
		if item.Id != nil && item.Id.ChannelId != "" {
			return item.Id.ChannelId, true, nil
		}
	}

	return "", false, nil
}

// SearchChannelVideos fetches one page of a channel's search results, newest
// upload first. An empty pageToken requests the first page.
func (c *Client) SearchChannelVideos(ctx context.Context, channelID, pageToken string, maxResults int64) (*SearchPage, error) {
	call := c.service.Search.List([]string{"snippet"}).
		ChannelId(channelID).
		MaxResults(maxResults).
		Order("date").
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("search videos for channel %s: %w", channelID, err)
	}

	page := &SearchPage{
		Items:         make([]SearchItem, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}

	for _, item := range resp.Items {
		page.Items = append(page.Items, mapSearchResult(item))
	}

	return page, nil
}

// VideoStatistics looks up view, like, and comment counts for one video.
// Counts the API omits are zero.
func (c *Client) VideoStatistics(ctx context.Context, videoID string) (models.VideoStatistics, error) {
	resp, err := c.service.Videos.List([]string{"statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return models.VideoStatistics{}, fmt.Errorf("fetch statistics for video %s: %w", videoID, err)
	}

	if len(resp.Items) == 0 {
		return models.VideoStatistics{}, fmt.Errorf("fetch statistics for video %s: %w", videoID, ErrVideoNotFound)
	}

	stats := resp.Items[0].Statistics
	if stats == nil {
		return models.VideoStatistics{}, nil
	}

	return models.VideoStatistics{
		ViewCount:    stats.ViewCount,
		LikeCount:    stats.LikeCount,
		CommentCount: stats.CommentCount,
	}, nil
}

func mapSearchResult(item *youtube.SearchResult) SearchItem {
	var out SearchItem
	if item.Id != nil {
		out.Kind = item.Id.Kind
		out.VideoID = item.Id.VideoId
	}
	if item.Snippet != nil {
		out.ChannelID = item.Snippet.ChannelId
		out.Title = item.Snippet.Title
		out.PublishedAt = item.Snippet.PublishedAt
	}
	return out
}

// APIStatus extracts the HTTP status code and response body from an API error.
// ok is false when err does not carry a googleapi.Error.
func APIStatus(err error) (code int, body string, ok bool) {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return 0, "", false
	}
	return apiErr.Code, apiErr.Body, true
}
