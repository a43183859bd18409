package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/internal/kafka"
	"github.com/videohub/videohub-api/internal/metrics"
	"github.com/videohub/videohub-api/internal/repository"
	"github.com/videohub/videohub-api/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

type fakeVideoRepo struct {
	videos map[uuid.UUID]*domain.Video
	views  []*domain.ViewRecord

	lastListQuery domain.VideoListQuery
	lastSkip      int
	lastLimit     int
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: make(map[uuid.UUID]*domain.Video)}
}

func (r *fakeVideoRepo) Create(_ context.Context, video *domain.Video) error {
	cp := *video
	r.videos[video.ID] = &cp
	return nil
}

func (r *fakeVideoRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Video, error) {
	video, ok := r.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *video
	return &cp, nil
}

func (r *fakeVideoRepo) Update(_ context.Context, video *domain.Video) error {
	if _, ok := r.videos[video.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *video
	r.videos[video.ID] = &cp
	return nil
}

func (r *fakeVideoRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.videos[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.videos, id)
	return nil
}

func (r *fakeVideoRepo) List(_ context.Context, q domain.VideoListQuery) ([]domain.Video, error) {
	r.lastListQuery = q
	return nil, nil
}

func (r *fakeVideoRepo) ListByUploader(_ context.Context, _ uuid.UUID, skip, limit int) ([]domain.Video, error) {
	r.lastSkip, r.lastLimit = skip, limit
	return nil, nil
}

func (r *fakeVideoRepo) ListHot(_ context.Context, skip, limit int) ([]domain.Video, error) {
	r.lastSkip, r.lastLimit = skip, limit
	return nil, nil
}

func (r *fakeVideoRepo) ListTrending(_ context.Context, _ time.Time, skip, limit int) ([]domain.Video, error) {
	r.lastSkip, r.lastLimit = skip, limit
	return nil, nil
}

func (r *fakeVideoRepo) ListRecommended(_ context.Context, _ uuid.UUID, skip, limit int) ([]domain.Video, error) {
	r.lastSkip, r.lastLimit = skip, limit
	return nil, nil
}

func (r *fakeVideoRepo) ListFeatured(_ context.Context, skip, limit int) ([]domain.Video, error) {
	r.lastSkip, r.lastLimit = skip, limit
	return nil, nil
}

func (r *fakeVideoRepo) ListFeed(_ context.Context, _ uuid.UUID, skip, limit int) ([]domain.Video, error) {
	r.lastSkip, r.lastLimit = skip, limit
	return nil, nil
}

func (r *fakeVideoRepo) RecordView(_ context.Context, view *domain.ViewRecord) error {
	r.views = append(r.views, view)
	return nil
}

func (r *fakeVideoRepo) ViewStats(_ context.Context, videoID uuid.UUID) (*domain.VideoViewStats, error) {
	return &domain.VideoViewStats{VideoID: videoID, TotalViews: int64(len(r.views))}, nil
}

func (r *fakeVideoRepo) WatchHistory(_ context.Context, _ uuid.UUID, _, _ int) ([]domain.WatchHistoryEntry, error) {
	return nil, nil
}

func newTestVideoService(t *testing.T, repo *fakeVideoRepo) VideoService {
	t.Helper()
	platformMetrics := metrics.NewPlatformMetrics(prometheus.NewRegistry(), logger.NewNop())
	svc := NewVideoService(repo, newMediaHostStub(), kafka.NopProducer{}, platformMetrics, logger.NewNop())

	impl := svc.(*videoService)
	impl.now = func() time.Time { return testNow }
	return svc
}

func createTestVideo(t *testing.T, svc VideoService, uploaderID uuid.UUID) *domain.Video {
	t.Helper()
	video, err := svc.Create(context.Background(), uploaderID, domain.VideoCreateRequest{
		Title:    "Morning run",
		VideoURL: "https://res.cloudinary.com/demo/video/upload/v1/videos/run.mp4",
		Duration: 120,
		Category: "sports",
	})
	require.NoError(t, err)
	return video
}

func TestCreateVideoPublishesImmediately(t *testing.T) {
	repo := newFakeVideoRepo()
	svc := newTestVideoService(t, repo)
	uploaderID := uuid.New()

	video := createTestVideo(t, svc, uploaderID)

	assert.Equal(t, domain.VideoStatusPublished, video.Status)
	require.NotNil(t, video.PublishedAt)
	assert.Equal(t, testNow, *video.PublishedAt)
	assert.Equal(t, uploaderID, video.UploaderID)
	assert.NotNil(t, video.Tags, "tags default to an empty list, not null")
}

func TestUpdateVideoByOwner(t *testing.T) {
	repo := newFakeVideoRepo()
	svc := newTestVideoService(t, repo)
	owner := &domain.Principal{UserID: uuid.New()}
	video := createTestVideo(t, svc, owner.UserID)

	title := "Evening run"
	updated, err := svc.Update(context.Background(), owner, video.ID, domain.VideoUpdateRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Evening run", updated.Title)
}

func TestUpdateVideoByStrangerRejected(t *testing.T) {
	repo := newFakeVideoRepo()
	svc := newTestVideoService(t, repo)
	video := createTestVideo(t, svc, uuid.New())

	stranger := &domain.Principal{UserID: uuid.New()}
	title := "Hijacked"
	_, err := svc.Update(context.Background(), stranger, video.ID, domain.VideoUpdateRequest{Title: &title})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUpdateVideoStatusRequiresAdmin(t *testing.T) {
	repo := newFakeVideoRepo()
	svc := newTestVideoService(t, repo)
	owner := &domain.Principal{UserID: uuid.New()}
	video := createTestVideo(t, svc, owner.UserID)

	status := string(domain.VideoStatusBlocked)
	_, err := svc.Update(context.Background(), owner, video.ID, domain.VideoUpdateRequest{Status: &status})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	admin := &domain.Principal{UserID: uuid.New(), IsAdmin: true}
	updated, err := svc.Update(context.Background(), admin, video.ID, domain.VideoUpdateRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.VideoStatusBlocked, updated.Status)
}

func TestUpdateVideoFeaturedRequiresAdmin(t *testing.T) {
	repo := newFakeVideoRepo()
	svc := newTestVideoService(t, repo)
	owner := &domain.Principal{UserID: uuid.New()}
	video := createTestVideo(t, svc, owner.UserID)

	featured := true
	_, err := svc.Update(context.Background(), owner, video.ID, domain.VideoUpdateRequest{IsFeatured: &featured})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestDeleteVideoCleansUpMedia(t *testing.T) {
	repo := newFakeVideoRepo()
	media := newMediaHostStub()
	platformMetrics := metrics.NewPlatformMetrics(prometheus.NewRegistry(), logger.NewNop())
	svc := NewVideoService(repo, media, kafka.NopProducer{}, platformMetrics, logger.NewNop())

	owner := &domain.Principal{UserID: uuid.New()}
	video := createTestVideo(t, svc, owner.UserID)

	require.NoError(t, svc.Delete(context.Background(), owner, video.ID))

	_, err := svc.Get(context.Background(), video.ID)
	assert.ErrorIs(t, err, domain.ErrVideoNotFound)
	assert.Equal(t, []string{"videos/run"}, media.destroyed)
}

func TestDeleteVideoByAdmin(t *testing.T) {
	repo := newFakeVideoRepo()
	svc := newTestVideoService(t, repo)
	video := createTestVideo(t, svc, uuid.New())

	admin := &domain.Principal{UserID: uuid.New(), IsAdmin: true}
	assert.NoError(t, svc.Delete(context.Background(), admin, video.ID))
}

func TestRecordViewCompletion(t *testing.T) {
	tests := []struct {
		name           string
		watchDuration  float64
		wantCompletion float64
		wantCompleted  bool
	}{
		{"partial watch", 30, 25, false},
		{"near full watch", 110, 91.66666666666666, true},
		{"overshoot clamps to 100", 500, 100, true},
		{"zero duration", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeVideoRepo()
			svc := newTestVideoService(t, repo)
			video := createTestVideo(t, svc, uuid.New())

			userID := uuid.New()
			require.NoError(t, svc.RecordView(context.Background(), video.ID, &userID, tt.watchDuration))

			require.Len(t, repo.views, 1)
			view := repo.views[0]
			assert.InDelta(t, tt.wantCompletion, view.CompletionPercentage, 0.001)
			assert.Equal(t, tt.wantCompleted, view.IsCompleted)
			assert.Equal(t, &userID, view.UserID)
		})
	}
}

func TestRecordViewAnonymous(t *testing.T) {
	repo := newFakeVideoRepo()
	svc := newTestVideoService(t, repo)
	video := createTestVideo(t, svc, uuid.New())

	require.NoError(t, svc.RecordView(context.Background(), video.ID, nil, 60))
	require.Len(t, repo.views, 1)
	assert.Nil(t, repo.views[0].UserID)
}

func TestRecordViewUnknownVideo(t *testing.T) {
	svc := newTestVideoService(t, newFakeVideoRepo())

	err := svc.RecordView(context.Background(), uuid.New(), nil, 60)
	assert.ErrorIs(t, err, domain.ErrVideoNotFound)
}

func TestListNormalizesPagination(t *testing.T) {
	repo := newFakeVideoRepo()
	svc := newTestVideoService(t, repo)

	_, err := svc.List(context.Background(), domain.VideoListQuery{Skip: -5, Limit: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, repo.lastListQuery.Skip)
	assert.Equal(t, 20, repo.lastListQuery.Limit)

	_, err = svc.ListHot(context.Background(), 10, 500)
	require.NoError(t, err)
	assert.Equal(t, 10, repo.lastSkip)
	assert.Equal(t, 100, repo.lastLimit)
}
