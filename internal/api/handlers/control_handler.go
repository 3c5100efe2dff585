package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"github.com/glorenz/netbot/internal/queue"
)

// ControlHandler lets the operator trigger background tasks on demand.
// The tasks run on the asynq worker, not in the request.
type ControlHandler struct {
	client *asynq.Client
}

func NewControlHandler(client *asynq.Client) *ControlHandler {
	return &ControlHandler{client: client}
}

func (h *ControlHandler) TriggerCycle(c *fiber.Ctx) error {
	err := queue.Enqueue(h.client, queue.TaskTypeEngagementCycle, queue.EngagementCyclePayload{Trigger: "manual"}, 0)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to enqueue engagement cycle",
		})
	}
	return c.SendStatus(fiber.StatusAccepted)
}

func (h *ControlHandler) TriggerCascade(c *fiber.Ctx) error {
	err := queue.Enqueue(h.client, queue.TaskTypeCascadeDaily, queue.CascadeDailyPayload{Trigger: "manual"}, 0)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to enqueue daily cascade",
		})
	}
	return c.SendStatus(fiber.StatusAccepted)
}

func (h *ControlHandler) TriggerReport(c *fiber.Ctx) error {
	err := queue.Enqueue(h.client, queue.TaskTypeDailyReport, queue.DailyReportPayload{Trigger: "manual"}, 0)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to enqueue daily report",
		})
	}
	return c.SendStatus(fiber.StatusAccepted)
}
