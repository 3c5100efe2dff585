// Package cascade plans, produces and publishes one owned Instagram
// post per day. Planning runs as a chain: a monthly theme feeds weekly
// topics, a weekly topic feeds the daily briefing, and the briefing
// drives copy, images and publication.
package cascade

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glorenz/netbot/internal/models"
	"github.com/glorenz/netbot/internal/notify"
	"github.com/glorenz/netbot/internal/repository"
)

// maxAttempts bounds regeneration requests from the operator.
const maxAttempts = 2

type Cascade struct {
	strategists *Strategists
	copywriter  *Copywriter
	renderer    *Renderer
	storage     *Storage
	publisher   *Publisher
	notifier    notify.Notifier
	repo        repository.CascadeRepository
	dryRun      bool
}

func New(strategists *Strategists, copywriter *Copywriter, renderer *Renderer, storage *Storage, publisher *Publisher, notifier notify.Notifier, repo repository.CascadeRepository, dryRun bool) *Cascade {
	return &Cascade{
		strategists: strategists,
		copywriter:  copywriter,
		renderer:    renderer,
		storage:     storage,
		publisher:   publisher,
		notifier:    notifier,
		repo:        repo,
		dryRun:      dryRun,
	}
}

// RunDaily produces and, after operator approval, publishes today's
// post. It is idempotent for a given day.
func (c *Cascade) RunDaily(ctx context.Context) error {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	existing, err := c.repo.GetBrief(ctx, today)
	if err != nil {
		return fmt.Errorf("load brief: %w", err)
	}
	if existing != nil && existing.Status != models.BriefStatusDraft {
		slog.Info("daily brief already handled", "date", today.Format("2006-01-02"), "status", existing.Status)
		return nil
	}

	theme, err := c.strategists.EnsureTheme(ctx, now.Year(), now.Month())
	if err != nil {
		return fmt.Errorf("monthly theme: %w", err)
	}
	year, week := now.ISOWeek()
	topic, err := c.strategists.EnsureTopic(ctx, theme, year, week)
	if err != nil {
		return fmt.Errorf("weekly topic: %w", err)
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		brief, err := c.produce(ctx, topic, today)
		if err != nil {
			return err
		}

		action, err := c.requestApproval(ctx, brief)
		if err != nil {
			slog.Warn("approval request failed, keeping draft", "error", err)
			return nil
		}

		switch action {
		case notify.ActionApprove:
			return c.publish(ctx, brief)
		case notify.ActionRegenerate:
			slog.Info("operator requested regeneration", "attempt", attempt)
			brief.Status = models.BriefStatusDiscarded
			if err := c.repo.UpdateBrief(ctx, brief); err != nil {
				slog.Warn("failed to discard brief", "error", err)
			}
			continue
		default:
			slog.Info("operator skipped today's post")
			brief.Status = models.BriefStatusDiscarded
			return c.repo.UpdateBrief(ctx, brief)
		}
	}

	slog.Info("regeneration attempts exhausted, leaving draft for manual review")
	return nil
}

// PublishBrief publishes a stored brief by date, regardless of how the
// Telegram prompt was answered. Used by the dashboard API.
func (c *Cascade) PublishBrief(ctx context.Context, date time.Time) error {
	brief, err := c.repo.GetBrief(ctx, date)
	if err != nil {
		return fmt.Errorf("load brief: %w", err)
	}
	if brief == nil {
		return fmt.Errorf("no brief for %s", date.Format("2006-01-02"))
	}
	if brief.Status == models.BriefStatusPublished {
		return fmt.Errorf("brief already published")
	}
	return c.publish(ctx, brief)
}

// DiscardBrief marks a stored brief as discarded.
func (c *Cascade) DiscardBrief(ctx context.Context, date time.Time) error {
	brief, err := c.repo.GetBrief(ctx, date)
	if err != nil {
		return fmt.Errorf("load brief: %w", err)
	}
	if brief == nil {
		return fmt.Errorf("no brief for %s", date.Format("2006-01-02"))
	}
	if brief.Status == models.BriefStatusPublished {
		return fmt.Errorf("brief already published")
	}
	brief.Status = models.BriefStatusDiscarded
	return c.repo.UpdateBrief(ctx, brief)
}

// produce runs briefing, copy, rendering and upload, and persists the
// result as a draft brief.
func (c *Cascade) produce(ctx context.Context, topic *models.WeeklyTopic, today time.Time) (*models.DailyBrief, error) {
	briefing, err := c.strategists.GenerateBriefing(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("briefing: %w", err)
	}

	caption, err := c.copywriter.WriteCaption(ctx, briefing)
	if err != nil {
		return nil, fmt.Errorf("caption: %w", err)
	}

	images := make([][]byte, 0, 8)
	cover, _, err := c.renderer.RenderCover(ctx, briefing)
	if err != nil {
		return nil, fmt.Errorf("cover image: %w", err)
	}
	images = append(images, cover)

	if briefing.Format == "carousel_cover" {
		slides, err := c.copywriter.WriteSlides(ctx, briefing)
		if err != nil {
			return nil, fmt.Errorf("slides: %w", err)
		}
		for i, slide := range slides {
			img, _, err := c.renderer.RenderSlide(ctx, briefing, slide, i+1, len(slides))
			if err != nil {
				return nil, fmt.Errorf("slide image %d: %w", i+1, err)
			}
			images = append(images, img)
		}
	}

	urls, err := c.storage.UploadAll(ctx, images)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	brief := &models.DailyBrief{
		TopicID:   topic.ID,
		BriefDate: today,
		Headline:  briefing.ContentAngle,
		KeyPoints: strings.Join(briefing.KeyPoints, "\n"),
		Caption:   caption,
		SlideURLs: urls,
		Status:    models.BriefStatusDraft,
	}
	if err := c.repo.CreateBrief(ctx, brief); err != nil {
		return nil, fmt.Errorf("save brief: %w", err)
	}
	slog.Info("daily brief produced", "format", briefing.Format, "images", len(urls))
	return brief, nil
}

func (c *Cascade) requestApproval(ctx context.Context, brief *models.DailyBrief) (notify.Action, error) {
	body := fmt.Sprintf("<b>%s</b>\n\n%s\n\n🖼 %d image(s)\n%s",
		brief.Headline, brief.Caption, len(brief.SlideURLs), strings.Join(brief.SlideURLs, "\n"))
	return c.notifier.Confirm(ctx, "📬 Today's post is ready", body)
}

func (c *Cascade) publish(ctx context.Context, brief *models.DailyBrief) error {
	if c.dryRun {
		slog.Info("dry run, skipping publication", "brief_id", brief.ID)
		brief.Status = models.BriefStatusApproved
		return c.repo.UpdateBrief(ctx, brief)
	}

	var mediaID string
	var err error
	if len(brief.SlideURLs) >= 2 {
		mediaID, err = c.publisher.PublishCarousel(ctx, brief.SlideURLs, brief.Caption)
	} else if len(brief.SlideURLs) == 1 {
		mediaID, err = c.publisher.PublishSingleImage(ctx, brief.SlideURLs[0], brief.Caption)
	} else {
		err = fmt.Errorf("brief has no images")
	}
	if err != nil {
		slog.Error("publication failed", "brief_id", brief.ID, "error", err)
		brief.Status = models.BriefStatusApproved
		if uerr := c.repo.UpdateBrief(ctx, brief); uerr != nil {
			slog.Warn("failed to persist brief after publish error", "error", uerr)
		}
		if _, nerr := c.notifier.Send(fmt.Sprintf("⚠️ Publication failed: %v", err)); nerr != nil {
			slog.Warn("failed to notify publish error", "error", nerr)
		}
		return err
	}

	brief.Status = models.BriefStatusPublished
	brief.MediaID = mediaID
	if err := c.repo.UpdateBrief(ctx, brief); err != nil {
		return fmt.Errorf("persist published brief: %w", err)
	}
	if _, err := c.notifier.Send(fmt.Sprintf("🚀 Published! Media ID: %s", mediaID)); err != nil {
		slog.Warn("failed to send publish confirmation", "error", err)
	}
	slog.Info("daily post published", "media_id", mediaID)
	return nil
}
