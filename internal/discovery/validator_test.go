package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glorenz/netbot/internal/models"
)

func TestValidateRejectsEmptyIDWithoutPersisting(t *testing.T) {
	records := newFakeRecords()
	v := NewValidator(records, newFakeInteractions(), "me")

	ok := v.Validate(context.Background(), &models.SocialPost{Platform: models.PlatformTwitter})

	assert.False(t, ok)
	assert.Empty(t, records.upserts)
	assert.Empty(t, records.statuses)
}

func TestValidateRecordsEveryCandidateAsSeen(t *testing.T) {
	records := newFakeRecords()
	v := NewValidator(records, newFakeInteractions(), "me")

	post := &models.SocialPost{ID: "p1", Platform: models.PlatformTwitter, Author: models.Author{Username: "alice"}}
	assert.True(t, v.Validate(context.Background(), post))
	assert.Equal(t, []string{"p1"}, records.upserts)
}

func TestValidateSkipsOwnPost(t *testing.T) {
	records := newFakeRecords()
	v := NewValidator(records, newFakeInteractions(), "Me")

	post := &models.SocialPost{ID: "p1", Platform: models.PlatformTwitter, Author: models.Author{Username: "me"}}
	assert.False(t, v.Validate(context.Background(), post))
	assert.Equal(t, models.DiscoveryStatusSkipped, records.statuses["p1"])
	assert.Equal(t, "Own post", records.reasons["p1"])
}

func TestValidateDedupRunsLast(t *testing.T) {
	records := newFakeRecords()
	v := NewValidator(records, newFakeInteractions("p1"), "me")

	post := &models.SocialPost{ID: "p1", Platform: models.PlatformTwitter, Author: models.Author{Username: "alice"}}
	assert.False(t, v.Validate(context.Background(), post))
	assert.Equal(t, models.DiscoveryStatusSkipped, records.statuses["p1"])
	assert.Equal(t, "Already interacted", records.reasons["p1"])
}

func TestValidateDedupErrorAllowsCandidate(t *testing.T) {
	records := newFakeRecords()
	interactions := newFakeInteractions("p1")
	interactions.existsErr = errors.New("db down")
	v := NewValidator(records, interactions, "me")

	post := &models.SocialPost{ID: "p1", Platform: models.PlatformTwitter, Author: models.Author{Username: "alice"}}
	assert.True(t, v.Validate(context.Background(), post))
}

func TestReplyCountWindow(t *testing.T) {
	rule := ReplyCountWindow(5, 50)

	cases := []struct {
		replies float64
		want    string
	}{
		{4, "Low engagement: 4 replies"},
		{5, ""},
		{50, ""},
		{51, "Too crowded: 51 replies"},
	}
	for _, tc := range cases {
		post := &models.SocialPost{Metrics: map[string]float64{"reply_count": tc.replies}}
		assert.Equal(t, tc.want, rule(post), "replies=%v", tc.replies)
	}
}

func TestEngagementFloorRejectsOnlyWhenBothBelow(t *testing.T) {
	rule := EngagementFloor(10, 2)

	reject := &models.SocialPost{Metrics: map[string]float64{"likes": 9, "comments": 1}}
	assert.Equal(t, "Low engagement: 9 likes, 1 comments", rule(reject))

	byLikes := &models.SocialPost{Metrics: map[string]float64{"likes": 10, "comments": 1}}
	assert.Empty(t, rule(byLikes))

	byComments := &models.SocialPost{Metrics: map[string]float64{"likes": 0, "comments": 2}}
	assert.Empty(t, rule(byComments))
}

func TestEngagementFloorReadsReactionAliases(t *testing.T) {
	rule := EngagementFloor(10, 2)

	post := &models.SocialPost{Metrics: map[string]float64{"reaction_count": 25}}
	assert.Empty(t, rule(post))
}

func TestExcludeOrganizationPages(t *testing.T) {
	rule := ExcludeOrganizationPages()

	cases := []struct {
		author models.Author
		want   string
	}{
		{models.Author{ProfileURL: "https://www.linkedin.com/company/acme"}, "Company or school page"},
		{models.Author{ProfileURL: "https://www.linkedin.com/school/mit"}, "Company or school page"},
		{models.Author{Username: "acme/posts"}, "Company or school page"},
		{models.Author{Username: "alice", ProfileURL: "https://www.linkedin.com/in/alice"}, ""},
	}
	for _, tc := range cases {
		post := &models.SocialPost{Author: tc.author}
		assert.Equal(t, tc.want, rule(post), "author=%+v", tc.author)
	}
}

func TestExcludePromoted(t *testing.T) {
	rule := ExcludePromoted()

	assert.Equal(t, "Promoted content", rule(&models.SocialPost{Content: "Something Promoted here"}))
	assert.Empty(t, rule(&models.SocialPost{Content: "Organic take on Go generics"}))
}

func TestMinContentLength(t *testing.T) {
	rule := MinContentLength(10)

	assert.Equal(t, "Low content", rule(&models.SocialPost{Content: "   short  "}))
	assert.Empty(t, rule(&models.SocialPost{Content: "long enough content"}))
}

func TestRequireComments(t *testing.T) {
	rule := RequireComments()

	assert.Equal(t, "No comments yet", rule(&models.SocialPost{}))
	assert.Empty(t, rule(&models.SocialPost{Metrics: map[string]float64{"comment_count": 3}}))
}

func TestRuleOrderBlocksOrgPageBeforeEngagement(t *testing.T) {
	records := newFakeRecords()
	v := NewValidator(records, newFakeInteractions(), "me",
		ExcludeOrganizationPages(),
		EngagementFloor(linkedinMinLikes, linkedinMinComments))

	// Viral company post: must be rejected for being a company page,
	// not admitted on engagement.
	post := &models.SocialPost{
		ID:       "corp1",
		Platform: models.PlatformLinkedin,
		Author:   models.Author{Username: "acme", ProfileURL: "https://www.linkedin.com/company/acme"},
		Metrics:  map[string]float64{"likes": 9000, "comments": 400},
	}
	assert.False(t, v.Validate(context.Background(), post))
	assert.Equal(t, "Company or school page", records.reasons["corp1"])
}
