package cascade

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/glorenz/netbot/internal/brain"
)

// Copywriter turns a briefing into the caption and, for carousels, the
// slide texts.
type Copywriter struct {
	gen   brain.Generator
	model string
}

func NewCopywriter(gen brain.Generator, model string) *Copywriter {
	return &Copywriter{gen: gen, model: model}
}

const copywriterSystem = `You write high-converting, authoritative Instagram captions for a senior software engineer.
Rules:
1. Hook: start with a scroll-stopping first line.
2. Body: explain the concept clearly in short paragraphs. Add value.
3. CTA: end with a clear call to action ("Save this post", "Comment X for the link").
4. Tone: confident, technical but accessible, slightly provocative if appropriate.
5. Emojis: 2-4 max, intentionally placed.
ALL TEXT MUST BE STRICTLY IN ENGLISH.
Respond with JSON: {"caption": "...", "hashtags": "space-separated, 15-20 relevant hashtags"}`

// WriteCaption returns the full caption text with hashtags appended.
func (c *Copywriter) WriteCaption(ctx context.Context, briefing *Briefing) (string, error) {
	prompt := fmt.Sprintf(`BRIEFING:
Angle: %s
Key Points: %s

Write the Instagram caption.`, briefing.ContentAngle, strings.Join(briefing.KeyPoints, "; "))

	var out struct {
		Caption  string `json:"caption"`
		Hashtags string `json:"hashtags"`
	}
	err := c.gen.GenerateJSON(ctx, brain.Request{
		Model:  c.model,
		System: copywriterSystem,
		Prompt: prompt,
		Layer:  "copywriter",
	}, &out)
	if err != nil {
		return "", err
	}
	slog.Info("caption generated", "length", len(out.Caption))
	return out.Caption + "\n\n" + out.Hashtags, nil
}

// Slide is one internal carousel slide.
type Slide struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// WriteSlides generates the educational slides between the cover and
// the CTA slide.
func (c *Copywriter) WriteSlides(ctx context.Context, briefing *Briefing) ([]Slide, error) {
	prompt := fmt.Sprintf(`BRIEFING TOPIC: %s
KEY POINTS TO COVER:
%s

Create the text for each internal slide of the carousel based on the key points.
Do not include the cover or the final CTA slide, just the content slides.

Respond with JSON: {"slides": [{"title": "...", "body": "..."}]}`,
		briefing.ContentAngle, strings.Join(briefing.KeyPoints, "\n"))

	var out struct {
		Slides []Slide `json:"slides"`
	}
	err := c.gen.GenerateJSON(ctx, brain.Request{
		Model:  c.model,
		System: "You write concise, punchy, highly readable slide text for Instagram carousels. Short title, brief body per slide. ALL CONTENT STRICTLY IN ENGLISH.",
		Prompt: prompt,
		Layer:  "slide_writer",
	}, &out)
	if err != nil {
		return nil, err
	}
	slog.Info("slides generated", "count", len(out.Slides))
	return out.Slides, nil
}
