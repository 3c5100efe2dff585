package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glorenz/netbot/internal/models"
)

func TestViralityScoreFormula(t *testing.T) {
	post := &models.SocialPost{
		LikeCount:    10,
		CommentCount: 4,
		ShareCount:   2,
		Metrics: map[string]float64{
			"views":          30,
			"follower_count": 1000,
		},
	}

	// 10 + 4*3 + 2*5 + 30*0.01 + 1000*0.001 = 33.3
	assert.InDelta(t, 33.3, ViralityScore(post), 1e-9)
}

func TestViralityScoreViewAliases(t *testing.T) {
	a := &models.SocialPost{Metrics: map[string]float64{"view_count": 500}}
	b := &models.SocialPost{Metrics: map[string]float64{"views": 500}}

	assert.Equal(t, ViralityScore(a), ViralityScore(b))
}

func TestViralityScoreMissingMetricsCountZero(t *testing.T) {
	assert.Zero(t, ViralityScore(&models.SocialPost{}))
}

func TestViralityScoreMonotonicPerMetric(t *testing.T) {
	base := models.SocialPost{
		LikeCount:    5,
		CommentCount: 5,
		ShareCount:   5,
		Metrics:      map[string]float64{"views": 100, "follower_count": 100},
	}

	bump := func(mutate func(p *models.SocialPost)) float64 {
		p := base
		p.Metrics = map[string]float64{"views": 100, "follower_count": 100}
		mutate(&p)
		return ViralityScore(&p)
	}

	baseline := ViralityScore(&base)
	assert.Greater(t, bump(func(p *models.SocialPost) { p.LikeCount++ }), baseline)
	assert.Greater(t, bump(func(p *models.SocialPost) { p.CommentCount++ }), baseline)
	assert.Greater(t, bump(func(p *models.SocialPost) { p.ShareCount++ }), baseline)
	assert.Greater(t, bump(func(p *models.SocialPost) { p.Metrics["views"] = 200 }), baseline)
	assert.Greater(t, bump(func(p *models.SocialPost) { p.Metrics["follower_count"] = 200 }), baseline)
}

func TestRankByViralityOrdersBestFirst(t *testing.T) {
	candidates := []Candidate{
		{Post: models.SocialPost{ID: "mid", LikeCount: 20}},
		{Post: models.SocialPost{ID: "top", CommentCount: 10}},
		{Post: models.SocialPost{ID: "low", LikeCount: 3}},
	}

	ranked := RankByVirality(candidates)

	assert.Equal(t, "top", ranked[0].Post.ID)
	assert.Equal(t, "mid", ranked[1].Post.ID)
	assert.Equal(t, "low", ranked[2].Post.ID)
	// Input order untouched.
	assert.Equal(t, "mid", candidates[0].Post.ID)
}

func TestRankByViralityTiesKeepDiscoveryOrder(t *testing.T) {
	candidates := []Candidate{
		{Post: models.SocialPost{ID: "first", LikeCount: 5}},
		{Post: models.SocialPost{ID: "second", LikeCount: 5}},
		{Post: models.SocialPost{ID: "third", LikeCount: 5}},
	}

	ranked := RankByVirality(candidates)

	assert.Equal(t, "first", ranked[0].Post.ID)
	assert.Equal(t, "second", ranked[1].Post.ID)
	assert.Equal(t, "third", ranked[2].Post.ID)
}
