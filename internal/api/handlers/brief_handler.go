package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/glorenz/netbot/internal/cascade"
	"github.com/glorenz/netbot/internal/repository"
)

// BriefHandler exposes the daily content briefs for review from the
// dashboard, as an alternative to the Telegram approval prompt.
type BriefHandler struct {
	repo    repository.CascadeRepository
	cascade *cascade.Cascade
}

func NewBriefHandler(repo repository.CascadeRepository, cascade *cascade.Cascade) *BriefHandler {
	return &BriefHandler{repo: repo, cascade: cascade}
}

func (h *BriefHandler) GetBrief(c *fiber.Ctx) error {
	date, err := parseDateParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid date, expected YYYY-MM-DD",
		})
	}

	brief, err := h.repo.GetBrief(c.Context(), date)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load brief",
		})
	}
	if brief == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No brief for given date",
		})
	}

	return c.JSON(brief)
}

func (h *BriefHandler) PublishBrief(c *fiber.Ctx) error {
	date, err := parseDateParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid date, expected YYYY-MM-DD",
		})
	}

	if err := h.cascade.PublishBrief(c.Context(), date); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *BriefHandler) DiscardBrief(c *fiber.Ctx) error {
	date, err := parseDateParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid date, expected YYYY-MM-DD",
		})
	}

	if err := h.cascade.DiscardBrief(c.Context(), date); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
