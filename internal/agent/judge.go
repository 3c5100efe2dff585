package agent

import (
	"context"
	"fmt"

	"github.com/glorenz/netbot/internal/brain"
	"github.com/glorenz/netbot/internal/models"
)

const judgeSystemPrompt = `You are a content filter for a senior software engineer's social media bot.
Your ONLY job is to decide if a post is worth engaging with and categorize it.

## REJECT if the post is about:
- Finance, investments, crypto trading
- Politics or political opinions
- Religion or spiritual content
- Sales pitches, product promotions, or affiliate marketing
- Memes without technical depth
- Generic motivational/self-help content ("Rise and grind", "Believe in yourself")
- Content you cannot understand or that is too vague

## APPROVE if the post is about:
- Software engineering, coding, architecture
- AI, machine learning, data science
- Tech industry trends, startups
- Career development IN TECH (not generic career advice)
- Developer tools, frameworks, languages
- System design, DevOps, cloud
- Open source projects
- Technical opinions or hot takes

## LANGUAGE DETECTION
Detect the language of the post. Use ISO codes: 'pt-br' for Brazilian Portuguese, 'en' for English, 'es' for Spanish, etc.

Be decisive. When in doubt, REJECT.

Respond with JSON: {"should_engage": bool, "category": "Technical|Career|Networking|Opinion|Other", "language": "...", "reasoning": "..."}`

// Judge is the first, cheapest chain layer: a minimal prompt with no
// persona or dossier, so rejected posts cost almost nothing.
type Judge struct {
	gen   brain.Generator
	model string
}

func NewJudge(gen brain.Generator, model string) *Judge {
	return &Judge{gen: gen, model: model}
}

// Evaluate returns the verdict for a single post. Errors are returned
// to the caller, which decides the fail-open policy.
func (j *Judge) Evaluate(ctx context.Context, post *models.SocialPost) (models.JudgeVerdict, error) {
	prompt := fmt.Sprintf(`Analyze this %s post:
- Author: @%s
- Content: %q
- Media Type: %s

Should we engage with this post? Categorize it and detect the language.`,
		post.Platform, post.Author.Username, post.Content, post.MediaType)

	var verdict models.JudgeVerdict
	err := j.gen.GenerateJSON(ctx, brain.Request{
		Model:    j.model,
		System:   judgeSystemPrompt,
		Prompt:   prompt,
		Layer:    "judge",
		PostID:   post.ID,
		Platform: post.Platform,
	}, &verdict)
	if err != nil {
		return models.JudgeVerdict{}, err
	}
	return verdict, nil
}
