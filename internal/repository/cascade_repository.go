package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/glorenz/netbot/internal/models"
)

// CascadeRepository stores the content planning chain: monthly themes,
// weekly topics and daily briefs.
type CascadeRepository interface {
	GetTheme(ctx context.Context, year, month int) (*models.MonthlyTheme, error)
	CreateTheme(ctx context.Context, t *models.MonthlyTheme) error
	ListThemeTitles(ctx context.Context, limit int) ([]string, error)

	GetTopic(ctx context.Context, year, week int) (*models.WeeklyTopic, error)
	CreateTopic(ctx context.Context, t *models.WeeklyTopic) error

	GetBrief(ctx context.Context, date time.Time) (*models.DailyBrief, error)
	CreateBrief(ctx context.Context, b *models.DailyBrief) error
	UpdateBrief(ctx context.Context, b *models.DailyBrief) error
}

type cascadeRepository struct {
	db *sql.DB
}

func NewCascadeRepository(db *sql.DB) CascadeRepository {
	return &cascadeRepository{db: db}
}

func (r *cascadeRepository) GetTheme(ctx context.Context, year, month int) (*models.MonthlyTheme, error) {
	query := `SELECT id, year, month, theme, description, created_at FROM monthly_themes WHERE year = $1 AND month = $2`

	var t models.MonthlyTheme
	err := r.db.QueryRowContext(ctx, query, year, month).Scan(&t.ID, &t.Year, &t.Month, &t.Theme, &t.Description, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &t, nil
}

func (r *cascadeRepository) CreateTheme(ctx context.Context, t *models.MonthlyTheme) error {
	query := `
		INSERT INTO monthly_themes (year, month, theme, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (year, month) DO UPDATE SET theme = EXCLUDED.theme, description = EXCLUDED.description
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query, t.Year, t.Month, t.Theme, t.Description).Scan(&t.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *cascadeRepository) ListThemeTitles(ctx context.Context, limit int) ([]string, error) {
	query := `SELECT theme FROM monthly_themes ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

func (r *cascadeRepository) GetTopic(ctx context.Context, year, week int) (*models.WeeklyTopic, error) {
	query := `SELECT id, theme_id, year, week_number, topic, angle, created_at FROM weekly_topics WHERE year = $1 AND week_number = $2`

	var t models.WeeklyTopic
	err := r.db.QueryRowContext(ctx, query, year, week).Scan(&t.ID, &t.ThemeID, &t.Year, &t.WeekNumber, &t.Topic, &t.Angle, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &t, nil
}

func (r *cascadeRepository) CreateTopic(ctx context.Context, t *models.WeeklyTopic) error {
	query := `
		INSERT INTO weekly_topics (theme_id, year, week_number, topic, angle)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (year, week_number) DO UPDATE SET topic = EXCLUDED.topic, angle = EXCLUDED.angle
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query, t.ThemeID, t.Year, t.WeekNumber, t.Topic, t.Angle).Scan(&t.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *cascadeRepository) GetBrief(ctx context.Context, date time.Time) (*models.DailyBrief, error) {
	query := `
		SELECT id, topic_id, brief_date, headline, key_points, caption, slide_urls, status, COALESCE(media_id, ''), created_at
		FROM daily_briefs
		WHERE brief_date = $1
	`

	var b models.DailyBrief
	var slidesJSON []byte
	err := r.db.QueryRowContext(ctx, query, date).Scan(&b.ID, &b.TopicID, &b.BriefDate, &b.Headline, &b.KeyPoints, &b.Caption, &slidesJSON, &b.Status, &b.MediaID, &b.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	if err := json.Unmarshal(slidesJSON, &b.SlideURLs); err != nil {
		b.SlideURLs = nil
	}
	return &b, nil
}

func (r *cascadeRepository) CreateBrief(ctx context.Context, b *models.DailyBrief) error {
	slidesJSON, err := json.Marshal(b.SlideURLs)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO daily_briefs (topic_id, brief_date, headline, key_points, caption, slide_urls, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err = r.db.QueryRowContext(ctx, query, b.TopicID, b.BriefDate, b.Headline, b.KeyPoints, b.Caption, slidesJSON, b.Status).Scan(&b.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *cascadeRepository) UpdateBrief(ctx context.Context, b *models.DailyBrief) error {
	slidesJSON, err := json.Marshal(b.SlideURLs)
	if err != nil {
		return err
	}

	query := `
		UPDATE daily_briefs
		SET headline = $2, key_points = $3, caption = $4, slide_urls = $5, status = $6, media_id = NULLIF($7, '')
		WHERE id = $1
	`

	_, err = r.db.ExecContext(ctx, query, b.ID, b.Headline, b.KeyPoints, b.Caption, slidesJSON, b.Status, b.MediaID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
