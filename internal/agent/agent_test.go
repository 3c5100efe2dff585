package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorenz/netbot/internal/brain"
	"github.com/glorenz/netbot/internal/models"
)

// fakeGen scripts the model per chain layer.
type fakeGen struct {
	byLayer  map[string]any
	errLayer map[string]error
}

func (f *fakeGen) GenerateText(ctx context.Context, req brain.Request) (string, error) {
	return "", nil
}

func (f *fakeGen) GenerateJSON(ctx context.Context, req brain.Request, out any) error {
	if err := f.errLayer[req.Layer]; err != nil {
		return err
	}
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

// fakeClient covers the platform surface without the profile
// capability, so the context builder skips dossier generation.
type fakeClient struct{ platform models.Platform }

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

func (f *fakeClient) LikePost(ctx context.Context, post *models.SocialPost) error { return nil }

func (f *fakeClient) PostComment(ctx context.Context, post *models.SocialPost, text string) error {
	return nil
}

func newTestAgent(gen *fakeGen, records *fakeRecords) *SocialAgent {
	judge := NewJudge(gen, "judge-model")
	builder := NewContextBuilder(nil, nil, nil)
	writer := NewGhostwriter(gen, "writer-model", "testdata/missing-persona.md")
	return NewSocialAgent(judge, builder, writer, records)
}

func TestJudgeAllKeepsApprovedInOrder(t *testing.T) {
	gen := &fakeGen{byLayer: map[string]any{
		"judge": models.JudgeVerdict{ShouldEngage: true, Category: models.CategoryTechnical, Language: "en", Reasoning: "solid technical take"},
	}}
	a := newTestAgent(gen, newFakeRecords())

	candidates := []models.SocialPost{
		{ID: "p1", Platform: models.PlatformTwitter},
		{ID: "p2", Platform: models.PlatformTwitter},
	}
	approved := a.JudgeAll(context.Background(), candidates)

	require.Len(t, approved, 2)
	assert.Equal(t, "p1", approved[0].Post.ID)
	assert.Equal(t, "p2", approved[1].Post.ID)
}

func TestJudgeAllPersistsRejections(t *testing.T) {
	gen := &fakeGen{byLayer: map[string]any{
		"judge": models.JudgeVerdict{ShouldEngage: false, Category: models.CategoryOther, Language: "en", Reasoning: "crypto spam"},
	}}
	records := newFakeRecords()
	a := newTestAgent(gen, records)

	approved := a.JudgeAll(context.Background(), []models.SocialPost{{ID: "p1", Platform: models.PlatformTwitter}})

	assert.Empty(t, approved)
	assert.Equal(t, models.DiscoveryStatusRejected, records.statuses["p1"])
	assert.Equal(t, "[Judge] crypto spam", records.reasons["p1"])
}

func TestJudgeAllFailsOpenOnError(t *testing.T) {
	gen := &fakeGen{errLayer: map[string]error{"judge": errors.New("quota exceeded")}}
	a := newTestAgent(gen, newFakeRecords())

	approved := a.JudgeAll(context.Background(), []models.SocialPost{{ID: "p1", Platform: models.PlatformTwitter}})

	require.Len(t, approved, 1)
	assert.True(t, approved[0].Verdict.ShouldEngage)
	assert.Equal(t, "Judge error (fail-open): quota exceeded", approved[0].Verdict.Reasoning)
}

func TestDecideAndCommentAcceptsAtThreshold(t *testing.T) {
	gen := &fakeGen{byLayer: map[string]any{
		"ghostwriter": models.GhostwriterOutput{CommentText: "nice breakdown", ConfidenceScore: 70, Reasoning: "on topic"},
	}}
	a := newTestAgent(gen, newFakeRecords())

	post := &models.SocialPost{ID: "p1", Platform: models.PlatformTwitter}
	verdict := &models.JudgeVerdict{ShouldEngage: true, Category: models.CategoryTechnical, Language: "en"}
	decision := a.DecideAndComment(context.Background(), post, verdict, &fakeClient{platform: models.PlatformTwitter})

	assert.True(t, decision.ShouldAct)
	assert.Equal(t, "comment", decision.ActionType)
	assert.Equal(t, "nice breakdown", decision.Content)
}

func TestDecideAndCommentRejectsBelowThreshold(t *testing.T) {
	gen := &fakeGen{byLayer: map[string]any{
		"ghostwriter": models.GhostwriterOutput{CommentText: "hm", ConfidenceScore: 69, Reasoning: "weak signal"},
	}}
	a := newTestAgent(gen, newFakeRecords())

	post := &models.SocialPost{ID: "p1", Platform: models.PlatformTwitter}
	verdict := &models.JudgeVerdict{ShouldEngage: true}
	decision := a.DecideAndComment(context.Background(), post, verdict, &fakeClient{platform: models.PlatformTwitter})

	assert.False(t, decision.ShouldAct)
	assert.Equal(t, "[Low Confidence 69%] weak signal", decision.Reasoning)
}

func TestDecideAndCommentRejectsWhitespaceComment(t *testing.T) {
	gen := &fakeGen{byLayer: map[string]any{
		"ghostwriter": models.GhostwriterOutput{CommentText: "   \n", ConfidenceScore: 90, Reasoning: "confident about nothing"},
	}}
	a := newTestAgent(gen, newFakeRecords())

	post := &models.SocialPost{ID: "p1", Platform: models.PlatformTwitter}
	verdict := &models.JudgeVerdict{ShouldEngage: true}
	decision := a.DecideAndComment(context.Background(), post, verdict, &fakeClient{platform: models.PlatformTwitter})

	assert.False(t, decision.ShouldAct)
	assert.Equal(t, "[Empty Comment] confident about nothing", decision.Reasoning)
}

func TestDecideAndCommentFailsClosedOnGenerationError(t *testing.T) {
	gen := &fakeGen{errLayer: map[string]error{"ghostwriter": errors.New("model timeout")}}
	a := newTestAgent(gen, newFakeRecords())

	post := &models.SocialPost{ID: "p1", Platform: models.PlatformTwitter}
	verdict := &models.JudgeVerdict{ShouldEngage: true}
	decision := a.DecideAndComment(context.Background(), post, verdict, &fakeClient{platform: models.PlatformTwitter})

	assert.False(t, decision.ShouldAct)
	assert.Equal(t, "Error: model timeout", decision.Reasoning)
	assert.Equal(t, models.PlatformTwitter, decision.Platform)
}
