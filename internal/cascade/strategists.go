package cascade

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glorenz/netbot/internal/brain"
	"github.com/glorenz/netbot/internal/models"
	"github.com/glorenz/netbot/internal/repository"
)

// Strategists own the three planning layers. Each layer is one model
// call; past outputs feed back into the prompt as an anti-repetition
// guardrail.
type Strategists struct {
	gen   brain.Generator
	repo  repository.CascadeRepository
	model string
}

func NewStrategists(gen brain.Generator, repo repository.CascadeRepository, model string) *Strategists {
	return &Strategists{gen: gen, repo: repo, model: model}
}

// EnsureTheme returns the month's macro theme, generating and
// persisting it on first call.
func (s *Strategists) EnsureTheme(ctx context.Context, year int, month time.Month) (*models.MonthlyTheme, error) {
	existing, err := s.repo.GetTheme(ctx, year, int(month))
	if err != nil {
		return nil, fmt.Errorf("load theme: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	past, err := s.repo.ListThemeTitles(ctx, 20)
	if err != nil {
		slog.Warn("past theme lookup failed", "error", err.Error())
	}
	guardrail := "None yet."
	if len(past) > 0 {
		guardrail = strings.Join(past, ", ")
	}

	prompt := fmt.Sprintf(`Define the macro content theme for %s %d.
Focus on advanced backend engineering, system architecture, multi-agent AI, and tech leadership.
The theme must be progressive, modern, and engaging, and it must build authority.

CRITICAL GUARDRAIL - DO NOT REPEAT OR CLOSELY RESEMBLE THESE PAST THEMES:
%s

Respond with JSON: {"theme": "...", "description": "..."}`, month, year, guardrail)

	var out struct {
		Theme       string `json:"theme"`
		Description string `json:"description"`
	}
	err = s.gen.GenerateJSON(ctx, brain.Request{
		Model:  s.model,
		System: "You are a strategic content planner for a senior software engineer. OUTPUT MUST BE STRICTLY IN ENGLISH.",
		Prompt: prompt,
		Layer:  "roadmapper",
	}, &out)
	if err != nil {
		return nil, err
	}

	theme := &models.MonthlyTheme{
		Year:        year,
		Month:       int(month),
		Theme:       out.Theme,
		Description: out.Description,
	}
	if err := s.repo.CreateTheme(ctx, theme); err != nil {
		return nil, fmt.Errorf("save theme: %w", err)
	}
	slog.Info("monthly theme generated", "year", year, "month", month, "theme", out.Theme)
	return theme, nil
}

// EnsureTopic returns the ISO week's topic under the given theme,
// generating it on first call.
func (s *Strategists) EnsureTopic(ctx context.Context, theme *models.MonthlyTheme, year, week int) (*models.WeeklyTopic, error) {
	existing, err := s.repo.GetTopic(ctx, year, week)
	if err != nil {
		return nil, fmt.Errorf("load topic: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	prompt := fmt.Sprintf(`MONTHLY THEME: %s
DESCRIPTION: %s

Produce ONE specific, actionable topic for ISO week %d that contributes to the monthly theme but stands alone.

Respond with JSON: {"topic": "...", "angle": "..."}`, theme.Theme, theme.Description, week)

	var out struct {
		Topic string `json:"topic"`
		Angle string `json:"angle"`
	}
	err = s.gen.GenerateJSON(ctx, brain.Request{
		Model:  s.model,
		System: "You are a tactical content planner. You break macro themes into concrete weekly topics. OUTPUT MUST BE STRICTLY IN ENGLISH.",
		Prompt: prompt,
		Layer:  "tactician",
	}, &out)
	if err != nil {
		return nil, err
	}

	topic := &models.WeeklyTopic{
		ThemeID:    theme.ID,
		Year:       year,
		WeekNumber: week,
		Topic:      out.Topic,
		Angle:      out.Angle,
	}
	if err := s.repo.CreateTopic(ctx, topic); err != nil {
		return nil, fmt.Errorf("save topic: %w", err)
	}
	slog.Info("weekly topic generated", "week", week, "topic", out.Topic)
	return topic, nil
}

// Briefing is the daily content plan handed to the copywriter and
// renderer.
type Briefing struct {
	Format       string   `json:"format"` // carousel_cover or fixed_image
	ContentAngle string   `json:"content_angle"`
	KeyPoints    []string `json:"key_points"`
	VisualPrompt string   `json:"visual_suggestion"`
}

// GenerateBriefing produces today's post plan from the weekly topic.
func (s *Strategists) GenerateBriefing(ctx context.Context, topic *models.WeeklyTopic) (*Briefing, error) {
	prompt := fmt.Sprintf(`WEEKLY TOPIC: %s
ANGLE: %s
TODAY: %s

Create a specific daily post briefing for an Instagram post based on this topic.
If the topic requires multiple steps or deep explanation, use format "carousel_cover".
If it's a quick insight, opinion, or single strong statement, use "fixed_image".

Respond with JSON: {"format": "carousel_cover|fixed_image", "content_angle": "...", "key_points": ["..."], "visual_suggestion": "..."}`,
		topic.Topic, topic.Angle, time.Now().Weekday())

	var briefing Briefing
	err := s.gen.GenerateJSON(ctx, brain.Request{
		Model:  s.model,
		System: "You translate a weekly topic into a specific daily post briefing with a concrete outline. OUTPUT MUST BE STRICTLY IN ENGLISH.",
		Prompt: prompt,
		Layer:  "briefer",
	}, &briefing)
	if err != nil {
		return nil, err
	}
	if briefing.Format != "carousel_cover" && briefing.Format != "fixed_image" {
		briefing.Format = "fixed_image"
	}
	slog.Info("daily briefing generated", "format", briefing.Format, "angle", briefing.ContentAngle)
	return &briefing, nil
}
