package repository

import (
	"context"
	"database/sql"
	"log/slog"
)

// EventRepository persists application events (warnings, degraded paths)
// for the dashboard. Writes never fail the caller: a lost log row is not
// worth aborting an engagement cycle for.
type EventRepository interface {
	Log(ctx context.Context, level, module, message string)
}

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Log(ctx context.Context, level, module, message string) {
	query := `INSERT INTO logs (level, module, message) VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, level, module, message); err != nil {
		slog.Error("failed to persist app event", "error", err.Error())
	}
}
