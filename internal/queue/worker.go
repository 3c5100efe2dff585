package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

func (q *Queue) HandleEngagementCycleTask(ctx context.Context, task *asynq.Task) error {
	var payload EngagementCyclePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	slog.Info("engagement cycle starting", "trigger", payload.Trigger)
	stats := q.controller.RunCycle(ctx)
	for name, ns := range stats.PerNetwork {
		slog.Info("network cycle finished",
			"network", name,
			"candidates", ns.Candidates,
			"approved", ns.Approved,
			"commented", ns.Commented,
			"skipped", ns.Skipped)
	}
	return nil
}

func (q *Queue) HandleCascadeDailyTask(ctx context.Context, task *asynq.Task) error {
	var payload CascadeDailyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	slog.Info("daily cascade starting", "trigger", payload.Trigger)
	if err := q.cascade.RunDaily(ctx); err != nil {
		slog.Error("daily cascade failed", "error", err)
		return err
	}
	return nil
}

func (q *Queue) HandleDailyReportTask(ctx context.Context, task *asynq.Task) error {
	var payload DailyReportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	slog.Info("daily report starting", "trigger", payload.Trigger)
	q.reporter.Publish(ctx, q.platforms)
	return nil
}
