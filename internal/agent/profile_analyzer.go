package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/glorenz/netbot/internal/brain"
	"github.com/glorenz/netbot/internal/models"
)

const analyzerSystemPrompt = `You are the Profile Analyst for a senior software engineer's social media bot.
Your mission is to dissect social media profiles with an eye for technical pragmatism, product vision, and robustness.

## YOUR GOAL:
Analyze the provided bio and recent posts to create a professional and psychological dossier.
Determine if the user is a technical peer, a junior needing mentorship, or a "Hype Seller" (all buzzwords, no substance).

Respond with JSON: {"summary": "...", "technical_level": "Beginner|Intermediate|Expert|Non-Technical", "job_title": "...", "is_hype_seller": bool, "tone_preference": "...", "interests": [...], "interaction_guidelines": "..."}`

// ProfileAnalyzer turns a scraped author profile into a dossier the
// ghostwriter uses to pick its register. One model call per analysis;
// only invoked for the single post that survived ranking.
type ProfileAnalyzer struct {
	gen   brain.Generator
	model string
}

func NewProfileAnalyzer(gen brain.Generator, model string) *ProfileAnalyzer {
	return &ProfileAnalyzer{gen: gen, model: model}
}

func (a *ProfileAnalyzer) Analyze(ctx context.Context, profile *models.Profile) (*models.ProfileDossier, error) {
	if profile == nil {
		return nil, nil
	}

	var posts strings.Builder
	for i, post := range profile.RecentPosts {
		if i >= 10 {
			break
		}
		content := post.Content
		if len(content) > 200 {
			content = content[:200] + "..."
		}
		fmt.Fprintf(&posts, "Post %d: %s\n", i+1, content)
	}

	bio := profile.Bio
	if bio == "" {
		bio = "No bio"
	}

	prompt := fmt.Sprintf(`Analyze this user profile:

- Username: @%s
- Bio: %q
- Followers: %d

## RECENT POSTS:
%s

## ANALYSIS REQUIREMENTS:
1. DETECT "HYPE SELLERS": flag is_hype_seller if they promote get-rich-quick tech schemes, grind culture without technical depth, or flashy tools without architectural substance.
2. JOB TITLE: identify their likely professional role (CTO, Recruiter, Junior Dev, ...).
3. TECHNICAL DEPTH: evaluate whether they understand the "why" or just repeat buzzwords.
4. INTERACTION STRATEGY: junior gets a pragmatic mentor, a peer gets technical debate, a hype seller gets called out.`,
		profile.Username, bio, profile.FollowerCount, posts.String())

	var dossier models.ProfileDossier
	err := a.gen.GenerateJSON(ctx, brain.Request{
		Model:    a.model,
		System:   analyzerSystemPrompt,
		Prompt:   prompt,
		Layer:    "profile_analyzer",
		Platform: profile.Platform,
	}, &dossier)
	if err != nil {
		return nil, err
	}
	return &dossier, nil
}
