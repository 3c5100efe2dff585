package discovery

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/glorenz/netbot/internal/models"
)

// Strategy produces up to limit validated candidates per invocation.
// Implementations own their source-selection randomness; the *rand.Rand
// is injected so tests can pin it.
type Strategy interface {
	Platform() models.Platform
	FindCandidates(ctx context.Context, limit int) ([]models.SocialPost, error)
}

const maxSourceTries = 3

type fetchFunc func(ctx context.Context, entry string, limit int) ([]models.SocialPost, error)

// tryRandomEntries samples up to three entries from the list and
// returns the first non-empty fetch. Fetch errors are transient by
// definition here; they are logged and the next entry is tried.
func tryRandomEntries(ctx context.Context, rng *rand.Rand, entries []string, limit int, fetch fetchFunc) []models.SocialPost {
	if len(entries) == 0 {
		return nil
	}
	attempts := maxSourceTries
	if len(entries) < attempts {
		attempts = len(entries)
	}
	order := rng.Perm(len(entries))
	for _, idx := range order[:attempts] {
		posts, err := fetch(ctx, entries[idx], limit)
		if err != nil {
			slog.Warn("discovery fetch failed", "entry", entries[idx], "error", err.Error())
			continue
		}
		if len(posts) > 0 {
			return posts
		}
	}
	return nil
}

func shufflePosts(rng *rand.Rand, posts []models.SocialPost) {
	rng.Shuffle(len(posts), func(i, j int) {
		posts[i], posts[j] = posts[j], posts[i]
	})
}

// validateAll keeps discovery order while filtering through the
// validator.
func validateAll(ctx context.Context, v *Validator, posts []models.SocialPost) []models.SocialPost {
	var valid []models.SocialPost
	for i := range posts {
		if v.Validate(ctx, &posts[i]) {
			valid = append(valid, posts[i])
		}
	}
	return valid
}
