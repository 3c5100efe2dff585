package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorenz/netbot/internal/agent"
	"github.com/glorenz/netbot/internal/brain"
	"github.com/glorenz/netbot/internal/models"
)

type fakeGen struct {
	byLayer map[string]any
}

func (f *fakeGen) GenerateText(ctx context.Context, req brain.Request) (string, error) {
	return "", nil
}

func (f *fakeGen) GenerateJSON(ctx context.Context, req brain.Request, out any) error {
	data, err := json.Marshal(f.byLayer[req.Layer])
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

type fakeRecords struct {
	statuses map[string]string
	reasons  map[string]string
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{statuses: make(map[string]string), reasons: make(map[string]string)}
}

func (f *fakeRecords) Upsert(ctx context.Context, externalID string, platform models.Platform, source string, metrics map[string]float64) (int64, error) {
	return 1, nil
}

func (f *fakeRecords) UpdateStatus(ctx context.Context, externalID string, platform models.Platform, status, reasoning string) error {
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

type fakeInteractions struct {
	created  []*models.Interaction
	inserted bool
}

func (f *fakeInteractions) Create(ctx context.Context, in *models.Interaction) (bool, error) {
	f.created = append(f.created, in)
	return f.inserted, nil
}

func (f *fakeInteractions) Exists(ctx context.Context, postID string, platform models.Platform) (bool, error) {
	return false, nil
}

func (f *fakeInteractions) ListSince(ctx context.Context, since time.Time) ([]*models.Interaction, error) {
	return nil, nil
}

func (f *fakeInteractions) ListRecent(ctx context.Context, limit int) ([]*models.Interaction, error) {
	return nil, nil
}

type fakeStats struct {
	count      int
	increments int
}

func (f *fakeStats) GetDailyCount(ctx context.Context, platform models.Platform) (int, error) {
	return f.count, nil
}

func (f *fakeStats) Increment(ctx context.Context, platform models.Platform) error {
	f.increments++
	return nil
}

type fakeEvents struct {
	logged []string
}

func (f *fakeEvents) Log(ctx context.Context, level, module, message string) {
	f.logged = append(f.logged, message)
}

type fakeStrategy struct {
	platform   models.Platform
	candidates []models.SocialPost
	calls      int
}

func (f *fakeStrategy) Platform() models.Platform { return f.platform }

func (f *fakeStrategy) FindCandidates(ctx context.Context, limit int) ([]models.SocialPost, error) {
	f.calls++
	return f.candidates, nil
}

type fakeClient struct {
	platform   models.Platform
	likes      []string
	comments   []string
	commentErr map[string]error
}

func (f *fakeClient) Platform() models.Platform       { return f.platform }
func (f *fakeClient) Login(ctx context.Context) error { return nil }
func (f *fakeClient) Stop()                           {}

func (f *fakeClient) GetUserLatestPosts(ctx context.Context, username string, limit int) ([]models.SocialPost, error) {
	return nil, nil
}

func (f *fakeClient) SearchPosts(ctx context.Context, query string, limit int) ([]models.SocialPost, error) {
	return nil, nil
}

func (f *fakeClient) GetPostDetails(ctx context.Context, postID string) (*models.SocialPost, error) {
	return nil, nil
}

func (f *fakeClient) LikePost(ctx context.Context, post *models.SocialPost) error {
	f.likes = append(f.likes, post.ID)
	return nil
}

func (f *fakeClient) PostComment(ctx context.Context, post *models.SocialPost, text string) error {
	if err := f.commentErr[post.ID]; err != nil {
		return err
	}
	f.comments = append(f.comments, post.ID)
	return nil
}

type fixture struct {
	controller   *Controller
	records      *fakeRecords
	interactions *fakeInteractions
	stats        *fakeStats
	events       *fakeEvents
	client       *fakeClient
	strategy     *fakeStrategy
}

func newFixture(t *testing.T, cfg Config, candidates []models.SocialPost) *fixture {
	t.Helper()

	gen := &fakeGen{byLayer: map[string]any{
		"judge":       models.JudgeVerdict{ShouldEngage: true, Category: models.CategoryTechnical, Language: "en"},
		"ghostwriter": models.GhostwriterOutput{CommentText: "solid point about goroutines", ConfidenceScore: 85, Reasoning: "on topic"},
	}}

	records := newFakeRecords()
	interactions := &fakeInteractions{inserted: true}
	stats := &fakeStats{}
	events := &fakeEvents{}
	client := &fakeClient{platform: models.PlatformTwitter}
	strategy := &fakeStrategy{platform: models.PlatformTwitter, candidates: candidates}

	judge := agent.NewJudge(gen, "judge-model")
	builder := agent.NewContextBuilder(nil, nil, nil)
	writer := agent.NewGhostwriter(gen, "writer-model", "testdata/missing-persona.md")
	socialAgent := agent.NewSocialAgent(judge, builder, writer, records)

	controller := NewController(
		[]Network{{Name: "twitter", Client: client, Discovery: strategy}},
		socialAgent, records, interactions, stats, events, cfg,
		rand.New(rand.NewSource(1)),
	)
	controller.sleep = func(ctx context.Context, d time.Duration) {}

	return &fixture{
		controller:   controller,
		records:      records,
		interactions: interactions,
		stats:        stats,
		events:       events,
		client:       client,
		strategy:     strategy,
	}
}

func twitterPost(id string, likes int) models.SocialPost {
	return models.SocialPost{
		ID:        id,
		Platform:  models.PlatformTwitter,
		Author:    models.Author{Username: "author-" + id},
		Content:   "interesting take on Go scheduling",
		LikeCount: likes,
	}
}

func TestRunCycleSkipsNetworkAtDailyLimit(t *testing.T) {
	f := newFixture(t, Config{DailyInteractionLimit: 10}, []models.SocialPost{twitterPost("p1", 5)})
	f.stats.count = 10

	stats := f.controller.RunCycle(context.Background())

	require.Contains(t, stats.PerNetwork, "twitter")
	assert.True(t, stats.PerNetwork["twitter"].Skipped)
	assert.Zero(t, f.strategy.calls)
}

func TestRunCycleCommentsOncePerNetwork(t *testing.T) {
	f := newFixture(t, Config{DailyInteractionLimit: 10}, []models.SocialPost{
		twitterPost("p1", 5),
		twitterPost("p2", 50),
		twitterPost("p3", 1),
	})

	stats := f.controller.RunCycle(context.Background())

	ns := stats.PerNetwork["twitter"]
	assert.Equal(t, 3, ns.Candidates)
	assert.Equal(t, 3, ns.Approved)
	assert.Equal(t, 1, ns.Commented)

	// Acts on the highest-virality post only.
	require.Len(t, f.client.comments, 1)
	assert.Equal(t, "p2", f.client.comments[0])
	assert.Equal(t, []string{"p2"}, f.client.likes)

	require.Len(t, f.interactions.created, 1)
	assert.Equal(t, "p2", f.interactions.created[0].PostID)
	assert.Equal(t, "solid point about goroutines", f.interactions.created[0].CommentText)

	assert.Equal(t, models.DiscoveryStatusCommented, f.records.statuses["p2"])
	assert.Equal(t, 1, f.stats.increments)
}

func TestRunCycleDryRunMarksApproved(t *testing.T) {
	f := newFixture(t, Config{DailyInteractionLimit: 10, DryRun: true}, []models.SocialPost{twitterPost("p1", 5)})

	stats := f.controller.RunCycle(context.Background())

	assert.Zero(t, stats.PerNetwork["twitter"].Commented)
	assert.Empty(t, f.client.comments)
	assert.Empty(t, f.interactions.created)
	assert.Equal(t, models.DiscoveryStatusApproved, f.records.statuses["p1"])
	assert.Equal(t, "[Dry Run] on topic", f.records.reasons["p1"])
}

func TestRunCycleMovesOnAfterCommentFailure(t *testing.T) {
	f := newFixture(t, Config{DailyInteractionLimit: 10}, []models.SocialPost{
		twitterPost("best", 50),
		twitterPost("backup", 5),
	})
	f.client.commentErr = map[string]error{"best": errors.New("rate limited")}

	stats := f.controller.RunCycle(context.Background())

	assert.Equal(t, 1, stats.PerNetwork["twitter"].Commented)
	assert.Equal(t, []string{"backup"}, f.client.comments)
	require.Len(t, f.events.logged, 1)
	assert.Contains(t, f.events.logged[0], "best")
}
