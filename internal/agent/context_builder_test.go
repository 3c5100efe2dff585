package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/glorenz/netbot/internal/models"
)

type fakeInteractions struct {
	recent []*models.Interaction
}

func (f *fakeInteractions) Create(ctx context.Context, in *models.Interaction) (bool, error) {
	return true, nil
}

func (f *fakeInteractions) Exists(ctx context.Context, postID string, platform models.Platform) (bool, error) {
	return false, nil
}

func (f *fakeInteractions) ListSince(ctx context.Context, since time.Time) ([]*models.Interaction, error) {
	return f.recent, nil
}

func (f *fakeInteractions) ListRecent(ctx context.Context, limit int) ([]*models.Interaction, error) {
	return f.recent, nil
}

func TestBuildEngagementSignals(t *testing.T) {
	b := NewContextBuilder(nil, nil, nil)
	verdict := &models.JudgeVerdict{Category: models.CategoryTechnical, Language: "en"}
	client := &fakeClient{platform: models.PlatformTwitter}

	cases := []struct {
		replies      float64
		wantSignal   string
		wantStrategy string
	}{
		{15, "High", "Join the flow. Reply to a specific point from existing comments (if valid)."},
		{3, "Medium", "Add a constructive perspective to the existing discussion."},
		{0, "Low", "Kickstart the conversation. Be provocative but polite."},
	}
	for _, tc := range cases {
		post := &models.SocialPost{
			ID:       "p1",
			Platform: models.PlatformTwitter,
			Metrics:  map[string]float64{"reply_count": tc.replies},
		}
		ec := b.Build(context.Background(), post, verdict, client)
		assert.Equal(t, tc.wantSignal, ec.EngagementSignal, "replies=%v", tc.replies)
		assert.Equal(t, tc.wantStrategy, ec.Strategy, "replies=%v", tc.replies)
	}
}

func TestBuildTwitterCharLimit(t *testing.T) {
	b := NewContextBuilder(nil, nil, nil)
	post := &models.SocialPost{ID: "p1", Platform: models.PlatformTwitter}
	verdict := &models.JudgeVerdict{}

	ec := b.Build(context.Background(), post, verdict, &fakeClient{platform: models.PlatformTwitter})

	assert.Equal(t, "280 characters", ec.CharLimit)
}

func TestBuildPastTakesSamePlatformOnly(t *testing.T) {
	interactions := &fakeInteractions{recent: []*models.Interaction{
		{Platform: models.PlatformLinkedin, CommentText: "take on linkedin"},
		{Platform: models.PlatformTwitter, CommentText: "first take"},
		{Platform: models.PlatformTwitter, CommentText: "second take"},
		{Platform: models.PlatformTwitter, CommentText: "third take"},
	}}
	b := NewContextBuilder(nil, interactions, nil)

	post := &models.SocialPost{ID: "p1", Platform: models.PlatformTwitter}
	ec := b.Build(context.Background(), post, &models.JudgeVerdict{}, &fakeClient{platform: models.PlatformTwitter})

	// Capped at two entries, platform-filtered.
	assert.Equal(t, "- first take\n- second take", ec.PastTakesBlock)
}

func TestBuildCommentsBlock(t *testing.T) {
	b := NewContextBuilder(nil, nil, nil)
	post := &models.SocialPost{
		ID:       "p1",
		Platform: models.PlatformDevto,
		Comments: []models.Comment{
			{Author: models.Author{Username: "alice"}, Text: "great article"},
			{Author: models.Author{Username: "bob"}, Text: "disagree with point 2"},
		},
	}

	ec := b.Build(context.Background(), post, &models.JudgeVerdict{}, &fakeClient{platform: models.PlatformDevto})

	assert.Equal(t, "Recent Comments:\n- @alice: great article\n- @bob: disagree with point 2", ec.CommentsBlock)
}

func TestFormatDossierFlagsHypeSeller(t *testing.T) {
	block := formatDossier(&models.ProfileDossier{
		Summary:        "sells courses",
		JobTitle:       "Influencer",
		TechnicalLevel: models.LevelNonTechnical,
		IsHypeSeller:   true,
	})

	assert.Contains(t, block, "YES (HYPE SELLER DETECTED)")
	assert.Contains(t, block, "IMPORTANT: Adapt your response")
}
