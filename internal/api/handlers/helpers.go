package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// parseDateParam reads a :date path segment as YYYY-MM-DD, defaulting
// to today when absent.
func parseDateParam(c *fiber.Ctx) (time.Time, error) {
	raw := c.Params("date")
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}
	return time.Parse("2006-01-02", raw)
}

func parseLimitQuery(c *fiber.Ctx, fallback, max int) int {
	limit := c.QueryInt("limit", fallback)
	if limit <= 0 || limit > max {
		return fallback
	}
	return limit
}
