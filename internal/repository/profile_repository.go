package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/glorenz/netbot/internal/models"
)

// ProfileRepository caches author dossiers so a returning author does
// not cost a profile scrape plus a model call every cycle.
type ProfileRepository interface {
	// Get returns the cached dossier, or nil when missing or older than
	// maxAge.
	Get(ctx context.Context, platform models.Platform, username string, maxAge time.Duration) (*models.ProfileDossier, error)
	Save(ctx context.Context, platform models.Platform, username string, dossier *models.ProfileDossier) error
}

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Get(ctx context.Context, platform models.Platform, username string, maxAge time.Duration) (*models.ProfileDossier, error) {
	query := `
		SELECT dossier, updated_at
		FROM profile_dossiers
		WHERE platform = $1 AND username = $2
	`

	var raw []byte
	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx, query, platform, username).Scan(&raw, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	if time.Since(updatedAt) > maxAge {
		return nil, nil
	}

	var dossier models.ProfileDossier
	if err := json.Unmarshal(raw, &dossier); err != nil {
		return nil, err
	}
	return &dossier, nil
}

func (r *profileRepository) Save(ctx context.Context, platform models.Platform, username string, dossier *models.ProfileDossier) error {
	raw, err := json.Marshal(dossier)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO profile_dossiers (platform, username, dossier, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (platform, username) DO UPDATE SET dossier = EXCLUDED.dossier, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, platform, username, raw); err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
