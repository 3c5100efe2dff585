package queue

import (
	"github.com/glorenz/netbot/internal/cascade"
	"github.com/glorenz/netbot/internal/models"
	"github.com/glorenz/netbot/internal/orchestrator"
)

// Queue owns the background task handlers. Tasks are enqueued by the
// cron scheduler and by the API, and executed by the asynq worker.
type Queue struct {
	controller *orchestrator.Controller
	reporter   *orchestrator.Reporter
	cascade    *cascade.Cascade
	platforms  []models.Platform
}

func NewQueue(
	controller *orchestrator.Controller,
	reporter *orchestrator.Reporter,
	cascade *cascade.Cascade,
	platforms []models.Platform) *Queue {
	return &Queue{
		controller: controller,
		reporter:   reporter,
		cascade:    cascade,
		platforms:  platforms,
	}
}

const (
	TaskTypeEngagementCycle = "engagement:cycle"
	TaskTypeCascadeDaily    = "cascade:daily"
	TaskTypeDailyReport     = "report:daily"
)

type EngagementCyclePayload struct {
	Trigger string `json:"trigger"` // cron or manual
}

type CascadeDailyPayload struct {
	Trigger string `json:"trigger"`
}

type DailyReportPayload struct {
	Trigger string `json:"trigger"`
}
