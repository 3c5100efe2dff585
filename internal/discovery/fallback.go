package discovery

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/glorenz/netbot/internal/models"
	"github.com/glorenz/netbot/internal/platform"
)

// vipTagStrategy is the VIP/tag fallback policy shared by Instagram and
// Twitter: pick a primary source with a weighted coin flip, try up to
// three random entries from it, and fall back to the other source when
// the primary yields zero validated candidates.
type vipTagStrategy struct {
	platform  models.Platform
	client    platform.Client
	validator *Validator
	vips      []string
	tags      []string
	rng       *rand.Rand
	vipBias   float64

	// hydrate refetches each candidate through GetPostDetails before
	// validation. Instagram needs it: grid scrapes carry only the
	// shortcode and URL, and the content rules run on the full post.
	hydrate bool
}

func (s *vipTagStrategy) Platform() models.Platform {
	return s.platform
}

func (s *vipTagStrategy) FindCandidates(ctx context.Context, limit int) ([]models.SocialPost, error) {
	vipFirst := true
	switch {
	case len(s.vips) > 0 && len(s.tags) > 0:
		vipFirst = s.rng.Float64() < s.vipBias
	case len(s.tags) > 0:
		vipFirst = false
	case len(s.vips) == 0:
		slog.Warn("no VIPs and no hashtags configured", "platform", s.platform)
		return nil, nil
	}

	sources := []struct {
		name  string
		fetch func(ctx context.Context, limit int) []models.SocialPost
	}{
		{"vip", s.fetchFromVIPs},
		{"hashtag", s.fetchFromTags},
	}
	if !vipFirst {
		sources[0], sources[1] = sources[1], sources[0]
	}

	for _, src := range sources {
		candidates := src.fetch(ctx, limit)
		if s.hydrate {
			candidates = s.hydrateAll(ctx, candidates)
		}
		valid := validateAll(ctx, s.validator, candidates)
		if len(valid) > 0 {
			return valid, nil
		}
		slog.Info("source returned no valid candidates", "platform", s.platform, "source", src.name)
	}
	return nil, nil
}

func (s *vipTagStrategy) hydrateAll(ctx context.Context, posts []models.SocialPost) []models.SocialPost {
	hydrated := make([]models.SocialPost, 0, len(posts))
	for i := range posts {
		full, err := s.client.GetPostDetails(ctx, posts[i].ID)
		if err != nil {
			slog.Warn("detail fetch failed", "platform", s.platform, "post_id", posts[i].ID, "error", err.Error())
			continue
		}
		if full != nil {
			hydrated = append(hydrated, *full)
		}
	}
	return hydrated
}

func (s *vipTagStrategy) fetchFromVIPs(ctx context.Context, limit int) []models.SocialPost {
	return tryRandomEntries(ctx, s.rng, s.vips, limit, func(ctx context.Context, user string, limit int) ([]models.SocialPost, error) {
		slog.Info("checking VIP", "platform", s.platform, "username", user)
		return s.client.GetUserLatestPosts(ctx, user, limit)
	})
}

func (s *vipTagStrategy) fetchFromTags(ctx context.Context, limit int) []models.SocialPost {
	posts := tryRandomEntries(ctx, s.rng, s.tags, limit, func(ctx context.Context, tag string, limit int) ([]models.SocialPost, error) {
		slog.Info("checking hashtag", "platform", s.platform, "tag", tag)
		return s.client.SearchPosts(ctx, tag, limit)
	})
	// Tag results come back in feed order; shuffle so the same top posts
	// are not resampled every cycle.
	shufflePosts(s.rng, posts)
	return posts
}
