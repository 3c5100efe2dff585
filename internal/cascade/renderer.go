package cascade

import (
	"context"
	"fmt"
	"strings"
)

// ImageGenerator is the subset of the brain used for rendering.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, model, prompt string) ([]byte, string, error)
}

// Renderer produces the post artwork with an image-capable model. The
// aesthetic brief is fixed: modern tech, dark mode or sleek minimal.
type Renderer struct {
	gen   ImageGenerator
	model string
}

func NewRenderer(gen ImageGenerator, model string) *Renderer {
	return &Renderer{gen: gen, model: model}
}

// RenderCover generates the cover (or the single fixed image).
func (r *Renderer) RenderCover(ctx context.Context, briefing *Briefing) ([]byte, string, error) {
	prompt := fmt.Sprintf(`Create exactly this image. High premium tech aesthetics, dark mode or sleek minimal, 4:5 portrait.

Style: modern tech Instagram post, clean typography, professional.
Headline text on the image: %q
Background: %s
No watermarks, no swipe indicators.`, briefing.ContentAngle, briefing.VisualPrompt)

	return r.gen.GenerateImage(ctx, r.model, prompt)
}

// RenderSlide generates one internal carousel slide image.
func (r *Renderer) RenderSlide(ctx context.Context, briefing *Briefing, slide Slide, index, total int) ([]byte, string, error) {
	prompt := fmt.Sprintf(`Create exactly this image. Same visual identity as a carousel cover: %s.
Slide %d of %d for an Instagram carousel, 4:5 portrait, clean typography, generous whitespace.

Title on the image: %q
Body text on the image: %q

Keep the text fully legible. No watermarks.`,
		strings.TrimSpace(briefing.VisualPrompt), index, total, slide.Title, slide.Body)

	return r.gen.GenerateImage(ctx, r.model, prompt)
}
