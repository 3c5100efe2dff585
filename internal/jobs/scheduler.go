package job

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron"

	"github.com/glorenz/netbot/internal/cascade"
	"github.com/glorenz/netbot/internal/queue"
)

// Scheduler enqueues the recurring background tasks. Engagement cycles
// get a random delay on top of the cron cadence so runs never land at
// the exact same minute every time.
type Scheduler struct {
	client    *asynq.Client
	publisher *cascade.Publisher
	rng       *rand.Rand
	maxJitter time.Duration
}

func NewScheduler(client *asynq.Client, publisher *cascade.Publisher, rng *rand.Rand) *Scheduler {
	return &Scheduler{
		client:    client,
		publisher: publisher,
		rng:       rng,
		maxJitter: 15 * time.Minute,
	}
}

// Register installs all recurring jobs on the given cron runner.
func (s *Scheduler) Register(c *cron.Cron) {
	c.AddFunc("@every 01h30m00s", s.EnqueueEngagementCycle)
	c.AddFunc("0 0 10 * * *", s.EnqueueDailyCascade)
	c.AddFunc("0 30 23 * * *", s.EnqueueDailyReport)
	c.AddFunc("@every 24h00m00s", s.RefreshInstagramToken)
}

func (s *Scheduler) EnqueueEngagementCycle() {
	jitter := time.Duration(s.rng.Int63n(int64(s.maxJitter)))
	if err := queue.Enqueue(s.client, queue.TaskTypeEngagementCycle, queue.EngagementCyclePayload{Trigger: "cron"}, jitter); err != nil {
		slog.Error("failed to enqueue engagement cycle", "error", err)
	}
}

func (s *Scheduler) EnqueueDailyCascade() {
	if err := queue.Enqueue(s.client, queue.TaskTypeCascadeDaily, queue.CascadeDailyPayload{Trigger: "cron"}, 0); err != nil {
		slog.Error("failed to enqueue daily cascade", "error", err)
	}
}

func (s *Scheduler) EnqueueDailyReport() {
	if err := queue.Enqueue(s.client, queue.TaskTypeDailyReport, queue.DailyReportPayload{Trigger: "cron"}, 0); err != nil {
		slog.Error("failed to enqueue daily report", "error", err)
	}
}

// RefreshInstagramToken keeps the Graph API long-lived token alive.
func (s *Scheduler) RefreshInstagramToken() {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.publisher.RefreshToken(ctx); err != nil {
		slog.Warn("unable to refresh instagram token", "error", err)
	}
}
