package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glorenz/netbot/internal/models"
	"github.com/glorenz/netbot/internal/platform"
	"github.com/glorenz/netbot/internal/repository"
)

// ContextBuilder assembles everything the ghostwriter needs. No model
// call of its own; the dossier sub-call is owned by the analyzer and
// only happens when the platform client can fetch profiles. Every
// enrichment degrades to an empty block on failure.
type ContextBuilder struct {
	analyzer     *ProfileAnalyzer
	interactions repository.InteractionRepository
	profiles     repository.ProfileRepository
}

// dossierMaxAge bounds how long a cached author dossier stays valid.
const dossierMaxAge = 30 * 24 * time.Hour

func NewContextBuilder(analyzer *ProfileAnalyzer, interactions repository.InteractionRepository, profiles repository.ProfileRepository) *ContextBuilder {
	return &ContextBuilder{analyzer: analyzer, interactions: interactions, profiles: profiles}
}

func (b *ContextBuilder) Build(ctx context.Context, post *models.SocialPost, verdict *models.JudgeVerdict, client platform.Client) models.EngagementContext {
	replyCount := int(post.Metric("reply_count"))
	likeCount := int(post.Metric("like_count", "likes"))

	signal := "Low"
	strategy := "Kickstart the conversation. Be provocative but polite."
	switch {
	case replyCount > 10:
		signal = "High"
		strategy = "Join the flow. Reply to a specific point from existing comments (if valid)."
	case replyCount > 0:
		signal = "Medium"
		strategy = "Add a constructive perspective to the existing discussion."
	}

	charLimit, styleGuide := platformStyle(post.Platform)

	ec := models.EngagementContext{
		PostID:           post.ID,
		Platform:         post.Platform,
		AuthorUsername:   post.Author.Username,
		Content:          post.Content,
		MediaType:        post.MediaType,
		MediaURLs:        post.MediaURLs,
		Category:         string(verdict.Category),
		Language:         verdict.Language,
		EngagementSignal: signal,
		Strategy:         strategy,
		ReplyCount:       replyCount,
		LikeCount:        likeCount,
		CommentsBlock:    formatComments(post.Comments),
		CharLimit:        charLimit,
		StyleGuide:       styleGuide,
	}

	ec.DossierBlock = b.buildDossier(ctx, post, client)
	ec.PastTakesBlock = b.buildPastTakes(ctx, post.Platform)

	slog.Info("context built",
		"post_id", post.ID,
		"signal", signal,
		"dossier", ec.DossierBlock != "",
		"past_takes", ec.PastTakesBlock != "")
	return ec
}

// buildDossier fetches and analyzes the author profile when the client
// exposes that capability.
func (b *ContextBuilder) buildDossier(ctx context.Context, post *models.SocialPost, client platform.Client) string {
	source, ok := client.(platform.ProfileSource)
	if !ok || b.analyzer == nil {
		return ""
	}

	if b.profiles != nil {
		cached, err := b.profiles.Get(ctx, post.Platform, post.Author.Username, dossierMaxAge)
		if err == nil && cached != nil {
			return formatDossier(cached)
		}
	}

	profile, err := source.GetProfileData(ctx, post.Author.Username)
	if err != nil {
		slog.Warn("profile fetch failed", "username", post.Author.Username, "error", err.Error())
		return ""
	}
	dossier, err := b.analyzer.Analyze(ctx, profile)
	if err != nil {
		slog.Warn("dossier generation failed", "username", post.Author.Username, "error", err.Error())
		return ""
	}
	if dossier == nil {
		return ""
	}
	if b.profiles != nil {
		if err := b.profiles.Save(ctx, post.Platform, post.Author.Username, dossier); err != nil {
			slog.Warn("dossier cache write failed", "username", post.Author.Username, "error", err.Error())
		}
	}
	return formatDossier(dossier)
}

// buildPastTakes surfaces recent comments on the same platform so the
// ghostwriter stays consistent with what was already said.
func (b *ContextBuilder) buildPastTakes(ctx context.Context, p models.Platform) string {
	if b.interactions == nil {
		return ""
	}
	recent, err := b.interactions.ListSince(ctx, time.Now().AddDate(0, 0, -7))
	if err != nil {
		slog.Warn("past takes lookup failed", "error", err.Error())
		return ""
	}

	var lines []string
	for _, in := range recent {
		if in.Platform != p || in.CommentText == "" {
			continue
		}
		lines = append(lines, "- "+in.CommentText)
		if len(lines) >= 2 {
			break
		}
	}
	return strings.Join(lines, "\n")
}

func formatComments(comments []models.Comment) string {
	if len(comments) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Recent Comments:\n")
	for _, c := range comments {
		fmt.Fprintf(&sb, "- @%s: %s\n", c.Author.Username, c.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatDossier(d *models.ProfileDossier) string {
	hype := "No"
	if d.IsHypeSeller {
		hype = "YES (HYPE SELLER DETECTED)"
	}
	return fmt.Sprintf(`- Summary: %s
- Job Title: %s
- Technical Level: %s
- Hype Seller: %s
- Interests: %s
- Tone Preference: %s
- INTERACTION GUIDELINES: %s

IMPORTANT: Adapt your response to match this person's level and tone.`,
		d.Summary, d.JobTitle, d.TechnicalLevel, hype,
		strings.Join(d.Interests, ", "), d.TonePreference, d.InteractionGuidelines)
}

func platformStyle(p models.Platform) (charLimit, styleGuide string) {
	switch p {
	case models.PlatformTwitter:
		return "280 characters",
			"Use abbreviations if needed, no hashtags unless relevant, casual but professional."
	case models.PlatformThreads:
		return "proportional to the post length",
			"Conversational, threading-friendly, casual."
	case models.PlatformLinkedin:
		return "proportional to the post length",
			"Professional, constructive, slightly more formal."
	case models.PlatformDevto:
		return "proportional to the post length",
			"Technical, in-depth, explanatory, code-friendly, professional."
	case models.PlatformInstagram:
		return "proportional to the post length",
			"Casual, helpful, Instagram-native."
	default:
		return "proportional to the post length", "Casual, helpful."
	}
}
