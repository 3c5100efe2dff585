package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/glorenz/netbot/internal/models"
)

type DailyStatsRepository interface {
	GetDailyCount(ctx context.Context, platform models.Platform) (int, error)
	// Increment bumps today's counter atomically (single upsert, no
	// read-modify-write).
	Increment(ctx context.Context, platform models.Platform) error
}

type dailyStatsRepository struct {
	db *sql.DB
}

func NewDailyStatsRepository(db *sql.DB) DailyStatsRepository {
	return &dailyStatsRepository{db: db}
}

func (r *dailyStatsRepository) GetDailyCount(ctx context.Context, platform models.Platform) (int, error) {
	query := `SELECT interaction_count FROM daily_stats WHERE date = CURRENT_DATE AND platform = $1`

	var count int
	err := r.db.QueryRowContext(ctx, query, string(platform)).Scan(&count)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		slog.Info(err.Error())
		return 0, err
	}

	return count, nil
}

func (r *dailyStatsRepository) Increment(ctx context.Context, platform models.Platform) error {
	query := `
		INSERT INTO daily_stats (date, platform, interaction_count)
		VALUES (CURRENT_DATE, $1, 1)
		ON CONFLICT (date, platform)
		DO UPDATE SET interaction_count = daily_stats.interaction_count + 1
	`

	_, err := r.db.ExecContext(ctx, query, string(platform))
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
