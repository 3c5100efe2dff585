package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/glorenz/netbot/internal/models"
)

type LLMLogRepository interface {
	Create(ctx context.Context, l *models.LLMLog) error
	// TokenUsageSince aggregates input/output tokens for cost reporting.
	TokenUsageSince(ctx context.Context, since time.Time) (inputTokens, outputTokens int, err error)
}

type llmLogRepository struct {
	db *sql.DB
}

func NewLLMLogRepository(db *sql.DB) LLMLogRepository {
	return &llmLogRepository{db: db}
}

func (r *llmLogRepository) Create(ctx context.Context, l *models.LLMLog) error {
	query := `
		INSERT INTO llm_logs (provider, model, layer, post_id, platform, user_prompt, response, input_tokens, output_tokens)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		l.Provider, l.Model, l.Layer, l.PostID, string(l.Platform),
		l.UserPrompt, l.Response, l.InputTokens, l.OutputTokens,
	).Scan(&l.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *llmLogRepository) TokenUsageSince(ctx context.Context, since time.Time) (int, int, error) {
	query := `
		SELECT COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0)
		FROM llm_logs
		WHERE created_at >= $1
	`

	var in, out int
	err := r.db.QueryRowContext(ctx, query, since).Scan(&in, &out)
	if err != nil {
		slog.Info(err.Error())
		return 0, 0, err
	}

	return in, out, nil
}
