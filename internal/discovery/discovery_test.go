package discovery

import (
	"context"
	"time"

	"github.com/glorenz/netbot/internal/models"
)

// fakeRecords captures discovery upserts and status transitions.
type fakeRecords struct {
	upserts    []string
	statuses   map[string]string
	reasons    map[string]string
	upsertErr  error
	failStatus bool
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{
		statuses: make(map[string]string),
		reasons:  make(map[string]string),
	}
}

func (f *fakeRecords) Upsert(ctx context.Context, externalID string, platform models.Platform, source string, metrics map[string]float64) (int64, error) {
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.upserts = append(f.upserts, externalID)
	return int64(len(f.upserts)), nil
}

func (f *fakeRecords) UpdateStatus(ctx context.Context, externalID string, platform models.Platform, status, reasoning string) error {
	if f.failStatus {
		return context.DeadlineExceeded
	}
	f.statuses[externalID] = status
	f.reasons[externalID] = reasoning
	return nil
}

func (f *fakeRecords) CountSince(ctx context.Context, platform models.Platform, statuses []string, since time.Time) (int, error) {
	return 0, nil
}

func (f *fakeRecords) ListRecent(ctx context.Context, limit int) ([]*models.DiscoveredPost, error) {
	return nil, nil
}

func (f *fakeRecords) GetMetrics(ctx context.Context, externalID string, platform models.Platform) (map[string]float64, error) {
	return nil, nil
}

// fakeInteractions answers dedup checks from a fixed set.
type fakeInteractions struct {
	seen      map[string]bool
	existsErr error
	created   []*models.Interaction
}

func newFakeInteractions(seen ...string) *fakeInteractions {
	m := make(map[string]bool, len(seen))
	for _, id := range seen {
		m[id] = true
	}
	return &fakeInteractions{seen: m}
}

func (f *fakeInteractions) Create(ctx context.Context, in *models.Interaction) (bool, error) {
	if f.seen[in.PostID] {
		return false, nil
	}
	f.seen[in.PostID] = true
	f.created = append(f.created, in)
	return true, nil
}

func (f *fakeInteractions) Exists(ctx context.Context, postID string, platform models.Platform) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.seen[postID], nil
}

func (f *fakeInteractions) ListSince(ctx context.Context, since time.Time) ([]*models.Interaction, error) {
	return f.created, nil
}

func (f *fakeInteractions) ListRecent(ctx context.Context, limit int) ([]*models.Interaction, error) {
	return f.created, nil
}

// fakeClient scripts the platform surface with function fields; nil
// fields return empty results.
type fakeClient struct {
	platform    models.Platform
	latestPosts func(username string, limit int) ([]models.SocialPost, error)
	searchPosts func(query string, limit int) ([]models.SocialPost, error)
	postDetails func(postID string) (*models.SocialPost, error)
	feedPosts   func(limit int) ([]models.SocialPost, error)
}

func (f *fakeClient) Platform() models.Platform       { return f.platform }
func (f *fakeClient) Login(ctx context.Context) error { return nil }
func (f *fakeClient) Stop()                           {}

func (f *fakeClient) GetUserLatestPosts(ctx context.Context, username string, limit int) ([]models.SocialPost, error) {
	if f.latestPosts == nil {
		return nil, nil
	}
	return f.latestPosts(username, limit)
}

func (f *fakeClient) SearchPosts(ctx context.Context, query string, limit int) ([]models.SocialPost, error) {
	if f.searchPosts == nil {
		return nil, nil
	}
	return f.searchPosts(query, limit)
}

func (f *fakeClient) GetPostDetails(ctx context.Context, postID string) (*models.SocialPost, error) {
	if f.postDetails == nil {
		return nil, nil
	}
	return f.postDetails(postID)
}

func (f *fakeClient) LikePost(ctx context.Context, post *models.SocialPost) error {
	return nil
}

func (f *fakeClient) PostComment(ctx context.Context, post *models.SocialPost, text string) error {
	return nil
}

// fakeFeedClient adds the home-feed capability.
type fakeFeedClient struct {
	fakeClient
}

func (f *fakeFeedClient) GetFeedPosts(ctx context.Context, limit int) ([]models.SocialPost, error) {
	if f.feedPosts == nil {
		return nil, nil
	}
	return f.feedPosts(limit)
}
