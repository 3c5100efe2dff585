package queue

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Enqueue schedules a task of the given type after an optional delay.
// A zero delay enqueues for immediate processing.
func Enqueue(client *asynq.Client, taskType string, payload any, delay time.Duration) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(taskType, taskPayload)

	opts := []asynq.Option{asynq.MaxRetry(1)}
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}

	if _, err := client.Enqueue(task, opts...); err != nil {
		return err
	}

	slog.Info("task scheduled", "type", taskType, "delay", delay)
	return nil
}
