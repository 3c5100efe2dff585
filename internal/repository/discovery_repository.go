package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/glorenz/netbot/internal/models"
	"github.com/lib/pq"
)

type DiscoveryRepository interface {
	// Upsert records a discovered post as "seen". Re-discovery of the
	// same (external_id, platform) refreshes metrics and updated_at but
	// leaves status untouched: statuses only move forward.
	Upsert(ctx context.Context, externalID string, platform models.Platform, source string, metrics map[string]float64) (int64, error)
	UpdateStatus(ctx context.Context, externalID string, platform models.Platform, status, reasoning string) error
	CountSince(ctx context.Context, platform models.Platform, statuses []string, since time.Time) (int, error)
	ListRecent(ctx context.Context, limit int) ([]*models.DiscoveredPost, error)
	GetMetrics(ctx context.Context, externalID string, platform models.Platform) (map[string]float64, error)
}

type discoveryRepository struct {
	db *sql.DB
}

func NewDiscoveryRepository(db *sql.DB) DiscoveryRepository {
	return &discoveryRepository{db: db}
}

func (r *discoveryRepository) Upsert(ctx context.Context, externalID string, platform models.Platform, source string, metrics map[string]float64) (int64, error) {
	if metrics == nil {
		metrics = map[string]float64{}
	}
	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO discovered_posts (external_id, platform, hashtag_source, metrics, status)
		VALUES ($1, $2, $3, $4, 'seen')
		ON CONFLICT (external_id, platform)
		DO UPDATE SET metrics = EXCLUDED.metrics, updated_at = now()
		RETURNING id
	`

	var id int64
	err = r.db.QueryRowContext(ctx, query, externalID, string(platform), source, metricsJSON).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *discoveryRepository) UpdateStatus(ctx context.Context, externalID string, platform models.Platform, status, reasoning string) error {
	query := `
		UPDATE discovered_posts
		SET status = $3, ai_reasoning = COALESCE(NULLIF($4, ''), ai_reasoning), updated_at = now()
		WHERE external_id = $1 AND platform = $2
	`

	_, err := r.db.ExecContext(ctx, query, externalID, string(platform), status, reasoning)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

// CountSince counts discovery records for a platform created after the
// given time. An empty statuses slice counts every status.
func (r *discoveryRepository) CountSince(ctx context.Context, platform models.Platform, statuses []string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM discovered_posts
		WHERE platform = $1 AND created_at >= $2
		  AND (cardinality($3::text[]) = 0 OR status = ANY($3))
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, string(platform), since, pq.Array(statuses)).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return count, nil
}

func (r *discoveryRepository) ListRecent(ctx context.Context, limit int) ([]*models.DiscoveredPost, error) {
	query := `
		SELECT id, external_id, platform, hashtag_source, metrics, status, COALESCE(ai_reasoning, ''), created_at, updated_at
		FROM discovered_posts
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.DiscoveredPost
	for rows.Next() {
		var dp models.DiscoveredPost
		var metricsJSON []byte
		if err := rows.Scan(&dp.ID, &dp.ExternalID, &dp.Platform, &dp.Source, &metricsJSON, &dp.Status, &dp.AIReasoning, &dp.CreatedAt, &dp.UpdatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		if err := json.Unmarshal(metricsJSON, &dp.Metrics); err != nil {
			dp.Metrics = map[string]float64{}
		}
		posts = append(posts, &dp)
	}

	return posts, rows.Err()
}

func (r *discoveryRepository) GetMetrics(ctx context.Context, externalID string, platform models.Platform) (map[string]float64, error) {
	query := `SELECT metrics FROM discovered_posts WHERE external_id = $1 AND platform = $2`

	var metricsJSON []byte
	err := r.db.QueryRowContext(ctx, query, externalID, string(platform)).Scan(&metricsJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	metrics := map[string]float64{}
	if err := json.Unmarshal(metricsJSON, &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}
