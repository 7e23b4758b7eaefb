package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ad-tracker/youtube-channel-harvester/internal/db/models"
	"github.com/ad-tracker/youtube-channel-harvester/internal/service/youtube"
)

type mockYouTubeAPI struct {
	mock.Mock
}

func (m *mockYouTubeAPI) SearchChannel(ctx context.Context, query string) (string, bool, error) {
	args := m.Called(ctx, query)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockYouTubeAPI) SearchChannelVideos(ctx context.Context, channelID, pageToken string, maxResults int64) (*youtube.SearchPage, error) {
	args := m.Called(ctx, channelID, pageToken, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*youtube.SearchPage), args.Error(1)
}

func (m *mockYouTubeAPI) VideoStatistics(ctx context.Context, videoID string) (models.VideoStatistics, error) {
	args := m.Called(ctx, videoID)
	return args.Get(0).(models.VideoStatistics), args.Error(1)
}

type mockQuotaRecorder struct {
	mock.Mock
}

func (m *mockQuotaRecorder) RecordQuotaUsage(ctx context.Context, quotaCost int, operationType string) error {
	args := m.Called(ctx, quotaCost, operationType)
	return args.Error(0)
}

// countingPacer records pauses without sleeping.
type countingPacer struct {
	mu     sync.Mutex
	pauses int
}

func (p *countingPacer) Pause(ctx context.Context) error {
	p.mu.Lock()
	p.pauses++
	p.mu.Unlock()
	return ctx.Err()
}

func (p *countingPacer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pauses
}

type mockChannelRepo struct {
	mock.Mock
}

func (m *mockChannelRepo) UpsertChannel(ctx context.Context, channel *models.Channel) (bool, error) {
	args := m.Called(ctx, channel)
	return args.Bool(0), args.Error(1)
}

func (m *mockChannelRepo) GetChannelByID(ctx context.Context, channelID string) (*models.Channel, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Channel), args.Error(1)
}

func (m *mockChannelRepo) ListChannels(ctx context.Context, limit, offset int) ([]*models.Channel, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Channel), args.Int(1), args.Error(2)
}

type mockVideoRepo struct {
	mock.Mock
}

func (m *mockVideoRepo) UpsertVideo(ctx context.Context, video *models.Video) (bool, error) {
	args := m.Called(ctx, video)
	return args.Bool(0), args.Error(1)
}

func (m *mockVideoRepo) GetVideo(ctx context.Context, videoID, channelID string) (*models.Video, error) {
	args := m.Called(ctx, videoID, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Video), args.Error(1)
}

func (m *mockVideoRepo) GetVideoByID(ctx context.Context, videoID string) (*models.Video, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Video), args.Error(1)
}

func (m *mockVideoRepo) ListVideosByChannel(ctx context.Context, channelID string, limit, offset int) ([]*models.Video, int, error) {
	args := m.Called(ctx, channelID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Video), args.Int(1), args.Error(2)
}

type mockHarvestRunRepo struct {
	mock.Mock
}

func (m *mockHarvestRunRepo) Create(ctx context.Context, run *models.HarvestRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *mockHarvestRunRepo) Finish(ctx context.Context, run *models.HarvestRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *mockHarvestRunRepo) GetByID(ctx context.Context, runID uuid.UUID) (*models.HarvestRun, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HarvestRun), args.Error(1)
}

func (m *mockHarvestRunRepo) List(ctx context.Context, limit, offset int) ([]*models.HarvestRun, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.HarvestRun), args.Int(1), args.Error(2)
}

func videoItem(videoID, channelID, title, publishedAt string) youtube.SearchItem {
	return youtube.SearchItem{
		Kind:        youtube.VideoKind,
		VideoID:     videoID,
		ChannelID:   channelID,
		Title:       title,
		PublishedAt: publishedAt,
	}
}
