package discovery

import (
	"context"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/glorenz/netbot/internal/models"
	"github.com/glorenz/netbot/internal/platform"
	"github.com/glorenz/netbot/internal/repository"
)

// LinkedIn engagement floor: at least 10 reactions or 2 comments.
const (
	linkedinMinLikes    = 10
	linkedinMinComments = 2
)

// linkedinStrategy is feed-first: browse the home feed, fall back to
// topic search. Whichever source yields validated candidates, they are
// returned sorted by engagement score descending.
type linkedinStrategy struct {
	client    platform.Client
	feed      platform.FeedSource
	validator *Validator
	topics    []string
	rng       *rand.Rand
}

func NewLinkedin(client platform.Client, records repository.DiscoveryRepository, interactions repository.InteractionRepository, selfUsername string, topics []string, rng *rand.Rand) Strategy {
	feed, _ := client.(platform.FeedSource)
	return &linkedinStrategy{
		client: client,
		feed:   feed,
		validator: NewValidator(records, interactions, selfUsername,
			ExcludeOrganizationPages(),
			EngagementFloor(linkedinMinLikes, linkedinMinComments),
			MinContentLength(10),
			ExcludePromoted()),
		topics: topics,
		rng:    rng,
	}
}

func (s *linkedinStrategy) Platform() models.Platform {
	return models.PlatformLinkedin
}

func (s *linkedinStrategy) FindCandidates(ctx context.Context, limit int) ([]models.SocialPost, error) {
	sources := []struct {
		name  string
		fetch func(ctx context.Context, limit int) []models.SocialPost
	}{
		{"feed", s.fetchFromFeed},
		{"topic search", s.fetchFromTopics},
	}

	for _, src := range sources {
		slog.Info("linkedin discovery", "source", src.name)
		candidates := src.fetch(ctx, limit)
		valid := validateAll(ctx, s.validator, candidates)
		if len(valid) > 0 {
			sortByEngagement(valid)
			slog.Info("linkedin candidates found", "source", src.name, "count", len(valid))
			return valid, nil
		}
		slog.Info("source yielded no valid candidates", "source", src.name)
	}
	return nil, nil
}

func (s *linkedinStrategy) fetchFromFeed(ctx context.Context, limit int) []models.SocialPost {
	if s.feed == nil {
		return nil
	}
	posts, err := s.feed.GetFeedPosts(ctx, limit)
	if err != nil {
		slog.Warn("linkedin feed fetch failed", "error", err.Error())
		return nil
	}
	return posts
}

func (s *linkedinStrategy) fetchFromTopics(ctx context.Context, limit int) []models.SocialPost {
	if len(s.topics) == 0 {
		slog.Warn("no topics configured for linkedin search")
		return nil
	}
	posts := tryRandomEntries(ctx, s.rng, s.topics, limit, func(ctx context.Context, topic string, limit int) ([]models.SocialPost, error) {
		slog.Info("searching topic", "topic", topic)
		return s.client.SearchPosts(ctx, topic, limit)
	})
	shufflePosts(s.rng, posts)
	return posts
}

// engagementScore is the discovery-layer priority heuristic, coarser
// than the agent's virality score. Comments weigh 3x: they mark threads
// where a reply actually gets read.
func engagementScore(post *models.SocialPost) float64 {
	likes := post.Metric("likes", "reactions", "reaction_count")
	comments := post.Metric("comments")
	return likes + comments*3
}

func sortByEngagement(posts []models.SocialPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		return engagementScore(&posts[i]) > engagementScore(&posts[j])
	})
}
