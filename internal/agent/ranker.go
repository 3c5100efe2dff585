// Package agent holds the sequential engagement chain: judge all
// candidates, rank by virality, build context, generate the comment.
package agent

import (
	"sort"

	"github.com/glorenz/netbot/internal/models"
)

// Candidate pairs a validated post with its judge verdict.
type Candidate struct {
	Post    models.SocialPost
	Verdict models.JudgeVerdict
}

// ViralityScore estimates the value of commenting on a post. Comments
// and shares outweigh likes; reach terms (views, followers) contribute
// at a heavy discount. Missing metrics count as zero.
func ViralityScore(post *models.SocialPost) float64 {
	likes := float64(post.LikeCount)
	comments := float64(post.CommentCount)
	shares := float64(post.ShareCount)
	views := post.Metric("view_count", "views")
	followers := post.Metric("follower_count")

	return likes + comments*3 + shares*5 + views*0.01 + followers*0.001
}

// RankByVirality orders candidates best-first. The sort is stable, so
// equal scores keep their discovery order.
func RankByVirality(candidates []Candidate) []Candidate {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ViralityScore(&ranked[i].Post) > ViralityScore(&ranked[j].Post)
	})
	return ranked
}
