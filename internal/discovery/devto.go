package discovery

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/glorenz/netbot/internal/models"
	"github.com/glorenz/netbot/internal/platform"
	"github.com/glorenz/netbot/internal/repository"
)

// devtoStrategy mixes VIP authors and tags: a coin flip (50%) decides
// whether to check one random VIP; tags are tried only when the VIP
// pass yielded nothing. List entries carry only headline metrics, so
// each validated candidate is refetched for its full body and comments.
type devtoStrategy struct {
	client    platform.Client
	validator *Validator
	vips      []string
	tags      []string
	rng       *rand.Rand
}

func NewDevto(client platform.Client, records repository.DiscoveryRepository, interactions repository.InteractionRepository, selfUsername string, vips, tags []string, rng *rand.Rand) Strategy {
	return &devtoStrategy{
		client: client,
		validator: NewValidator(records, interactions, selfUsername,
			RequireComments()),
		vips: vips,
		tags: tags,
		rng:  rng,
	}
}

func (s *devtoStrategy) Platform() models.Platform {
	return models.PlatformDevto
}

func (s *devtoStrategy) FindCandidates(ctx context.Context, limit int) ([]models.SocialPost, error) {
	var candidates []models.SocialPost

	if len(s.vips) > 0 && s.rng.Float64() < 0.5 {
		username := s.vips[s.rng.Intn(len(s.vips))]
		slog.Info("devto discovery: checking VIP", "username", username)
		posts, err := s.client.GetUserLatestPosts(ctx, username, limit)
		if err != nil {
			slog.Warn("devto VIP fetch failed", "username", username, "error", err.Error())
		}
		candidates = append(candidates, posts...)
	}

	if len(candidates) == 0 && len(s.tags) > 0 {
		tag := s.tags[s.rng.Intn(len(s.tags))]
		slog.Info("devto discovery: checking tag", "tag", tag)
		posts, err := s.client.SearchPosts(ctx, tag, limit)
		if err != nil {
			slog.Warn("devto tag fetch failed", "tag", tag, "error", err.Error())
		}
		candidates = append(candidates, posts...)
	}

	var valid []models.SocialPost
	for i := range candidates {
		if limit > 0 && len(valid) >= limit {
			break
		}
		if !s.validator.Validate(ctx, &candidates[i]) {
			continue
		}
		full, err := s.client.GetPostDetails(ctx, candidates[i].ID)
		if err != nil {
			slog.Warn("devto detail fetch failed", "post_id", candidates[i].ID, "error", err.Error())
			continue
		}
		if full != nil {
			valid = append(valid, *full)
		}
	}
	return valid, nil
}
