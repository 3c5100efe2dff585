package agent

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/glorenz/netbot/internal/brain"
	"github.com/glorenz/netbot/internal/models"
)

const fallbackPersona = `You are NOT an AI assistant. You are a senior software engineer (13+ years) and studio founder. Direct, technical, cynical about hype, and highly opinionated.`

const ghostwriterGuidelines = `## TASK EXECUTION: THE GHOSTWRITER
You are operating in "Social Media Comment Mode".
Your ONLY job is to write an authentic, high-quality comment on a provided post, strictly following the persona defined above AND the constraints below.

## BEHAVIOR GUIDELINES (STRICT)
1. The "Senior" Filter: call out overengineering and vaporware.
2. Irony is a tool: humorous but pragmatic.
3. Pragmatism > theory. Robustness > hype.
4. Brevity is power: ABSOLUTE LIMIT 200 characters, line breaks for rhythm, no fluff, no intros, no outros.

## VOCABULARY (ADAPT TO LANGUAGE)
- pt-br: natural dev slang ("treta", "no gargalo", "vendeu fumaça"); "garoteou" for rookie conceptual mistakes; sarcastic but knowledgeable. Prohibited words: Mindset, Disruptive, Synergy.
- en: senior slang ("bikeshedding", "premature optimization", "vaporware", "spaghetti"); professional but sharp.

## AUDIENCE ADAPTATION
1. Junior/Mid context: hard-truth mentor, point out the flaw directly.
2. Senior/CTO context: peer debate on architecture, costs, scalability.
3. Design/Visual context: critique aesthetics, then pivot to technical viability.

## NEGATIVE CONSTRAINTS (INSTANT FAIL)
- NEVER start with "Great post!", "Interesting perspective", or "I agree".
- NEVER ask generic questions like "What do you think?" or "Thoughts?".
- NEVER exceed 200 characters.

## OUTPUT
Respond with JSON: {"comment_text": "...", "confidence_score": 0-100, "reasoning": "..."}. comment_text matches the detected language, no hashtags, max 1 emoji.`

// Ghostwriter is the final chain layer: full persona, full context, one
// model call per chosen post.
type Ghostwriter struct {
	gen    brain.Generator
	model  string
	system string
}

// NewGhostwriter loads the persona document from personaPath; a missing
// file falls back to a minimal built-in persona so the chain still
// works on a fresh deployment.
func NewGhostwriter(gen brain.Generator, model, personaPath string) *Ghostwriter {
	persona := fallbackPersona
	if personaPath != "" {
		data, err := os.ReadFile(personaPath)
		if err != nil {
			slog.Warn("failed to load persona, using fallback", "path", personaPath, "error", err.Error())
		} else {
			persona = string(data)
		}
	}
	return &Ghostwriter{
		gen:    gen,
		model:  model,
		system: "# SYSTEM ROLE: DIGITAL TWIN\n\n## IDENTITY\n" + persona + "\n\n---\n\n" + ghostwriterGuidelines,
	}
}

// Write generates the comment for a pre-built context. Errors are
// returned to the caller, which applies the fail-closed policy.
func (g *Ghostwriter) Write(ctx context.Context, ec *models.EngagementContext) (models.GhostwriterOutput, error) {
	var out models.GhostwriterOutput
	err := g.gen.GenerateJSON(ctx, brain.Request{
		Model:    g.model,
		System:   g.system,
		Prompt:   buildWriterPrompt(ec),
		Layer:    "ghostwriter",
		PostID:   ec.PostID,
		Platform: ec.Platform,
	}, &out)
	if err != nil {
		return models.GhostwriterOutput{}, err
	}
	return out, nil
}

func buildWriterPrompt(ec *models.EngagementContext) string {
	sections := []string{
		fmt.Sprintf("## POST (%s)", ec.Platform),
		fmt.Sprintf("Author: @%s", ec.AuthorUsername),
		fmt.Sprintf("Content: %q", ec.Content),
		fmt.Sprintf("Category: %s | Language: %s", ec.Category, ec.Language),
		"",
		"## SIGNALS",
		fmt.Sprintf("Engagement: %s (%d replies, %d likes)", ec.EngagementSignal, ec.ReplyCount, ec.LikeCount),
		fmt.Sprintf("Strategy: %s", ec.Strategy),
	}

	if ec.DossierBlock != "" {
		sections = append(sections, "", "## TARGET AUDIENCE DOSSIER", ec.DossierBlock)
	}
	if ec.PastTakesBlock != "" {
		sections = append(sections, "", "## PAST INTERACTIONS (CONSISTENCY CHECK)", ec.PastTakesBlock)
	}
	if ec.CommentsBlock != "" {
		sections = append(sections, "", "## EXISTING COMMENTS", ec.CommentsBlock)
	}
	if len(ec.MediaURLs) > 0 {
		sections = append(sections, "", "Image URL (for context): "+ec.MediaURLs[0])
	}

	sections = append(sections, "", "---",
		fmt.Sprintf("Write the comment. Max %s. Style: %s", ec.CharLimit, ec.StyleGuide))

	return strings.Join(sections, "\n")
}
