// Package discovery finds candidate posts per network and filters them
// through a shared validator before the agent ever sees them.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/glorenz/netbot/internal/models"
	"github.com/glorenz/netbot/internal/repository"
)

// Rule is one platform-specific admission check. A non-empty return is
// the human-readable rejection reason persisted to the discovery record.
type Rule func(post *models.SocialPost) string

// Validator admits or rejects raw candidates. Every candidate with an
// ID is recorded as "seen" no matter the outcome, so the discovery
// trail stays complete. Checks run fail-fast in a fixed order: platform
// rules, self-authorship, then interaction dedup last.
type Validator struct {
	records      repository.DiscoveryRepository
	interactions repository.InteractionRepository
	selfUsername string
	rules        []Rule
}

func NewValidator(records repository.DiscoveryRepository, interactions repository.InteractionRepository, selfUsername string, rules ...Rule) *Validator {
	return &Validator{
		records:      records,
		interactions: interactions,
		selfUsername: selfUsername,
		rules:        rules,
	}
}

func (v *Validator) Validate(ctx context.Context, post *models.SocialPost) bool {
	if post.ID == "" {
		return false
	}

	if _, err := v.records.Upsert(ctx, post.ID, post.Platform, "discovery", post.Metrics); err != nil {
		slog.Warn("failed to record discovery", "post_id", post.ID, "platform", post.Platform, "error", err.Error())
	}

	for _, rule := range v.rules {
		if reason := rule(post); reason != "" {
			v.skip(ctx, post, reason)
			return false
		}
	}

	if v.selfUsername != "" && strings.EqualFold(post.Author.Username, v.selfUsername) {
		v.skip(ctx, post, "Own post")
		return false
	}

	// Dedup runs last. A query error counts as "not interacted": the
	// unique constraint on interactions still blocks a duplicate write.
	interacted, err := v.interactions.Exists(ctx, post.ID, post.Platform)
	if err != nil {
		slog.Warn("dedup check failed, allowing candidate", "post_id", post.ID, "error", err.Error())
		interacted = false
	}
	if interacted {
		v.skip(ctx, post, "Already interacted")
		return false
	}

	return true
}

func (v *Validator) skip(ctx context.Context, post *models.SocialPost, reason string) {
	slog.Info("skipping candidate", "post_id", post.ID, "platform", post.Platform, "reason", reason)
	if err := v.records.UpdateStatus(ctx, post.ID, post.Platform, models.DiscoveryStatusSkipped, reason); err != nil {
		slog.Warn("failed to update discovery status", "post_id", post.ID, "error", err.Error())
	}
}

// Platform rules.

// ReplyCountWindow admits posts whose reply count sits inside
// [min, max]. Below is a dead thread, above is too crowded for a new
// comment to be seen.
func ReplyCountWindow(min, max int) Rule {
	return func(post *models.SocialPost) string {
		replies := int(post.Metric("reply_count"))
		if replies < min {
			return fmt.Sprintf("Low engagement: %d replies", replies)
		}
		if replies > max {
			return fmt.Sprintf("Too crowded: %d replies", replies)
		}
		return ""
	}
}

// EngagementFloor rejects posts failing both thresholds. Passing either
// one admits the post.
func EngagementFloor(minLikes, minComments int) Rule {
	return func(post *models.SocialPost) string {
		likes := int(post.Metric("likes", "reactions", "reaction_count"))
		comments := int(post.Metric("comments"))
		if likes < minLikes && comments < minComments {
			return fmt.Sprintf("Low engagement: %d likes, %d comments", likes, comments)
		}
		return ""
	}
}

// MinContentLength rejects posts too short for the agent to reason
// about.
func MinContentLength(n int) Rule {
	return func(post *models.SocialPost) string {
		if len(strings.TrimSpace(post.Content)) < n {
			return "Low content"
		}
		return ""
	}
}

// RequireContentOrMedia rejects posts with neither a caption nor media.
func RequireContentOrMedia() Rule {
	return func(post *models.SocialPost) string {
		if post.Content == "" && len(post.MediaURLs) == 0 {
			return "No caption or media"
		}
		return ""
	}
}

// ExcludePromoted drops sponsored feed entries by marker text.
func ExcludePromoted() Rule {
	return func(post *models.SocialPost) string {
		if strings.Contains(post.Content, "Promoted") {
			return "Promoted content"
		}
		return ""
	}
}

// ExcludeOrganizationPages hard-blocks company and school pages by URL
// shape. Runs before engagement checks by rule order, regardless of how
// viral the post is.
func ExcludeOrganizationPages() Rule {
	return func(post *models.SocialPost) string {
		profile := post.Author.ProfileURL
		handle := post.Author.Username
		if strings.Contains(profile, "/company/") || strings.Contains(profile, "/school/") ||
			strings.Contains(handle, "/company/") || strings.Contains(handle, "/school/") ||
			strings.HasSuffix(handle, "/posts") {
			return "Company or school page"
		}
		return ""
	}
}

// RequireComments rejects posts with no existing discussion.
func RequireComments() Rule {
	return func(post *models.SocialPost) string {
		if post.Metric("comment_count") <= 0 {
			return "No comments yet"
		}
		return ""
	}
}
