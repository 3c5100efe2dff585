package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/glorenz/netbot/internal/models"
)

type InteractionRepository interface {
	// Create inserts the interaction row and reports whether it was
	// actually inserted. The UNIQUE (post_id, platform) constraint makes
	// the insert the dedup gate: a concurrent duplicate loses the race
	// here rather than in a check-then-insert window.
	Create(ctx context.Context, in *models.Interaction) (inserted bool, err error)
	// Exists is the cheap pre-filter used by the validator. On query
	// error it returns false: discovery stays open and the unique
	// constraint still blocks a duplicate insert.
	Exists(ctx context.Context, postID string, platform models.Platform) (bool, error)
	ListSince(ctx context.Context, since time.Time) ([]*models.Interaction, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Interaction, error)
}

type interactionRepository struct {
	db *sql.DB
}

func NewInteractionRepository(db *sql.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

func (r *interactionRepository) Create(ctx context.Context, in *models.Interaction) (bool, error) {
	if in.Metadata == nil {
		in.Metadata = map[string]string{}
	}
	metadataJSON, err := json.Marshal(in.Metadata)
	if err != nil {
		return false, err
	}

	query := `
		INSERT INTO interactions (post_id, username, comment_text, platform, metadata)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (post_id, platform) DO NOTHING
		RETURNING id
	`

	err = r.db.QueryRowContext(ctx, query, in.PostID, in.Username, in.CommentText, string(in.Platform), metadataJSON).Scan(&in.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			// Conflict: someone already interacted with this post.
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return true, nil
}

func (r *interactionRepository) Exists(ctx context.Context, postID string, platform models.Platform) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM interactions WHERE post_id = $1 AND platform = $2)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, postID, string(platform)).Scan(&exists)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	return exists, nil
}

func (r *interactionRepository) ListSince(ctx context.Context, since time.Time) ([]*models.Interaction, error) {
	query := `
		SELECT id, post_id, username, comment_text, platform, metadata, created_at
		FROM interactions
		WHERE created_at >= $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return scanInteractions(rows)
}

func (r *interactionRepository) ListRecent(ctx context.Context, limit int) ([]*models.Interaction, error) {
	query := `
		SELECT id, post_id, username, comment_text, platform, metadata, created_at
		FROM interactions
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return scanInteractions(rows)
}

func scanInteractions(rows *sql.Rows) ([]*models.Interaction, error) {
	var interactions []*models.Interaction
	for rows.Next() {
		var in models.Interaction
		var metadataJSON []byte
		if err := rows.Scan(&in.ID, &in.PostID, &in.Username, &in.CommentText, &in.Platform, &metadataJSON, &in.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		if err := json.Unmarshal(metadataJSON, &in.Metadata); err != nil {
			in.Metadata = map[string]string{}
		}
		interactions = append(interactions, &in)
	}
	return interactions, rows.Err()
}
