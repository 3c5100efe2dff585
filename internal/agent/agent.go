package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/glorenz/netbot/internal/models"
	"github.com/glorenz/netbot/internal/platform"
	"github.com/glorenz/netbot/internal/repository"
)

// minConfidence is the decision pipeline's acceptance threshold.
const minConfidence = 70

// SocialAgent runs the chain over a cycle's candidates:
// judge all, rank by virality, then build context and write for the
// chosen post only.
type SocialAgent struct {
	judge   *Judge
	builder *ContextBuilder
	writer  *Ghostwriter
	records repository.DiscoveryRepository
}

func NewSocialAgent(judge *Judge, builder *ContextBuilder, writer *Ghostwriter, records repository.DiscoveryRepository) *SocialAgent {
	return &SocialAgent{judge: judge, builder: builder, writer: writer, records: records}
}

// JudgeAll filters candidates through the judge and keeps the approved
// ones in discovery order. Judge failures approve the post (fail-open):
// an early-pipeline error must not silently starve the cycle.
func (a *SocialAgent) JudgeAll(ctx context.Context, candidates []models.SocialPost) []Candidate {
	var approved []Candidate
	for i := range candidates {
		post := &candidates[i]
		verdict, err := a.judge.Evaluate(ctx, post)
		if err != nil {
			slog.Error("judge failed, approving by default", "post_id", post.ID, "error", err.Error())
			verdict = models.JudgeVerdict{
				ShouldEngage: true,
				Category:     models.CategoryOther,
				Language:     "en",
				Reasoning:    fmt.Sprintf("Judge error (fail-open): %v", err),
			}
		}

		if !verdict.ShouldEngage {
			slog.Info("judge rejected candidate", "post_id", post.ID, "reason", verdict.Reasoning)
			if err := a.records.UpdateStatus(ctx, post.ID, post.Platform, models.DiscoveryStatusRejected, "[Judge] "+verdict.Reasoning); err != nil {
				slog.Warn("failed to record judge rejection", "post_id", post.ID, "error", err.Error())
			}
			continue
		}

		approved = append(approved, Candidate{Post: *post, Verdict: verdict})
	}
	slog.Info("judge results", "approved", len(approved), "total", len(candidates))
	return approved
}

// DecideAndComment runs context assembly and generation for a single
// pre-approved post and applies the acceptance policy. Generation
// failures produce a should_act=false decision (fail-closed); no error
// escapes this boundary.
func (a *SocialAgent) DecideAndComment(ctx context.Context, post *models.SocialPost, verdict *models.JudgeVerdict, client platform.Client) models.ActionDecision {
	ec := a.builder.Build(ctx, post, verdict, client)

	out, err := a.writer.Write(ctx, &ec)
	if err != nil {
		slog.Error("generation failed", "post_id", post.ID, "error", err.Error())
		return models.ActionDecision{
			ShouldAct: false,
			Reasoning: fmt.Sprintf("Error: %v", err),
			Platform:  post.Platform,
		}
	}

	shouldAct := true
	if out.ConfidenceScore < minConfidence {
		slog.Warn("confidence below threshold", "post_id", post.ID, "confidence", out.ConfidenceScore)
		shouldAct = false
		out.Reasoning = fmt.Sprintf("[Low Confidence %d%%] %s", out.ConfidenceScore, out.Reasoning)
	}
	if strings.TrimSpace(out.CommentText) == "" {
		slog.Warn("empty comment generated", "post_id", post.ID)
		shouldAct = false
		out.Reasoning = "[Empty Comment] " + out.Reasoning
	}

	slog.Info("final decision",
		"post_id", post.ID,
		"act", shouldAct,
		"confidence", out.ConfidenceScore,
		"category", verdict.Category,
		"language", verdict.Language)

	return models.ActionDecision{
		ShouldAct:       shouldAct,
		ActionType:      "comment",
		Content:         out.CommentText,
		ConfidenceScore: out.ConfidenceScore,
		Reasoning:       out.Reasoning,
		Platform:        post.Platform,
	}
}
