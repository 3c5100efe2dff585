package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/glorenz/netbot/internal/models"
	"github.com/glorenz/netbot/internal/repository"
)

// DashboardHandler serves the read-only monitoring endpoints: the
// discovery funnel, past interactions and daily reports.
type DashboardHandler struct {
	records      repository.DiscoveryRepository
	interactions repository.InteractionRepository
	reports      repository.ReportRepository
	stats        repository.DailyStatsRepository
	platforms    []models.Platform
	dryRun       bool
}

func NewDashboardHandler(
	records repository.DiscoveryRepository,
	interactions repository.InteractionRepository,
	reports repository.ReportRepository,
	stats repository.DailyStatsRepository,
	platforms []models.Platform,
	dryRun bool) *DashboardHandler {
	return &DashboardHandler{
		records:      records,
		interactions: interactions,
		reports:      reports,
		stats:        stats,
		platforms:    platforms,
		dryRun:       dryRun,
	}
}

func (h *DashboardHandler) ListDiscoveries(c *fiber.Ctx) error {
	limit := parseLimitQuery(c, 50, 200)

	posts, err := h.records.ListRecent(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list discoveries",
		})
	}

	return c.JSON(posts)
}

func (h *DashboardHandler) ListInteractions(c *fiber.Ctx) error {
	limit := parseLimitQuery(c, 50, 200)

	interactions, err := h.interactions.ListRecent(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list interactions",
		})
	}

	return c.JSON(interactions)
}

func (h *DashboardHandler) GetReport(c *fiber.Ctx) error {
	date, err := parseDateParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid date, expected YYYY-MM-DD",
		})
	}

	report, err := h.reports.GetByDate(c.Context(), date)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load report",
		})
	}
	if report == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No report for given date",
		})
	}

	return c.JSON(report)
}

// GetStatus returns today's interaction counters per platform and the
// dry-run flag.
func (h *DashboardHandler) GetStatus(c *fiber.Ctx) error {
	counts := make(map[string]int, len(h.platforms))
	for _, p := range h.platforms {
		n, err := h.stats.GetDailyCount(c.Context(), p)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unable to load daily counters",
			})
		}
		counts[string(p)] = n
	}

	return c.JSON(fiber.Map{
		"dry_run":            h.dryRun,
		"interactions_today": counts,
	})
}
