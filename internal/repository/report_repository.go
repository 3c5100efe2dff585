package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/glorenz/netbot/internal/models"
)

type ReportRepository interface {
	// Upsert stores the cycle report for its date; a later cycle on the
	// same day overwrites the earlier snapshot.
	Upsert(ctx context.Context, rep *models.CycleReport) error
	GetByDate(ctx context.Context, date time.Time) (*models.CycleReport, error)
}

type reportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Upsert(ctx context.Context, rep *models.CycleReport) error {
	query := `
		INSERT INTO cycle_reports (cycle_date, metrics, summary, telegram_message_id)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		ON CONFLICT (cycle_date)
		DO UPDATE SET metrics = EXCLUDED.metrics, summary = EXCLUDED.summary,
			telegram_message_id = COALESCE(EXCLUDED.telegram_message_id, cycle_reports.telegram_message_id)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query, rep.CycleDate, rep.Metrics, rep.Summary, rep.TelegramMessageID).Scan(&rep.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *reportRepository) GetByDate(ctx context.Context, date time.Time) (*models.CycleReport, error) {
	query := `
		SELECT id, cycle_date, metrics, summary, COALESCE(telegram_message_id, ''), created_at
		FROM cycle_reports
		WHERE cycle_date = $1
	`

	var rep models.CycleReport
	err := r.db.QueryRowContext(ctx, query, date).Scan(&rep.ID, &rep.CycleDate, &rep.Metrics, &rep.Summary, &rep.TelegramMessageID, &rep.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &rep, nil
}
