package models

import "time"

// Discovery statuses. A record starts as "seen" and is only advanced by
// later pipeline stages; re-discovery refreshes metrics but never moves
// the status backwards.
const (
	DiscoveryStatusSeen      = "seen"
	DiscoveryStatusSkipped   = "skipped"
	DiscoveryStatusRejected  = "rejected"
	DiscoveryStatusApproved  = "approved"
	DiscoveryStatusCommented = "commented"
	DiscoveryStatusPosted    = "posted"
)

// DiscoveredPost is the persisted audit record for every candidate the
// discovery layer ever saw, keyed by (external_id, platform).
type DiscoveredPost struct {
	ID          int64              `db:"id" json:"id"`
	ExternalID  string             `db:"external_id" json:"external_id"`
	Platform    Platform           `db:"platform" json:"platform"`
	Source      string             `db:"hashtag_source" json:"source"`
	Metrics     map[string]float64 `db:"metrics" json:"metrics"`
	Status      string             `db:"status" json:"status"`
	AIReasoning string             `db:"ai_reasoning" json:"ai_reasoning,omitempty"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updated_at"`
}

// Interaction is written exactly once per successful comment, keyed by
// (post_id, platform). It doubles as the dedup source of truth.
type Interaction struct {
	ID          int64             `db:"id" json:"id"`
	PostID      string            `db:"post_id" json:"post_id"`
	Username    string            `db:"username" json:"username"`
	CommentText string            `db:"comment_text" json:"comment_text"`
	Platform    Platform          `db:"platform" json:"platform"`
	Metadata    map[string]string `db:"metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
}

// DailyStat is the per-platform, per-calendar-day interaction counter.
type DailyStat struct {
	Date             time.Time `db:"date" json:"date"`
	Platform         Platform  `db:"platform" json:"platform"`
	InteractionCount int       `db:"interaction_count" json:"interaction_count"`
}

// AppEvent is a persisted application log row (degraded paths, warnings).
type AppEvent struct {
	ID        int64     `db:"id" json:"id"`
	Level     string    `db:"level" json:"level"`
	Module    string    `db:"module" json:"module"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// LLMLog records a single model call for cost and audit tracking.
type LLMLog struct {
	ID           int64     `db:"id" json:"id"`
	Provider     string    `db:"provider" json:"provider"`
	Model        string    `db:"model" json:"model"`
	Layer        string    `db:"layer" json:"layer"`
	PostID       string    `db:"post_id" json:"post_id,omitempty"`
	Platform     Platform  `db:"platform" json:"platform,omitempty"`
	UserPrompt   string    `db:"user_prompt" json:"user_prompt"`
	Response     string    `db:"response" json:"response"`
	InputTokens  int       `db:"input_tokens" json:"input_tokens"`
	OutputTokens int       `db:"output_tokens" json:"output_tokens"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CycleReport is the persisted dashboard snapshot for a cycle date.
type CycleReport struct {
	ID                int64     `db:"id" json:"id"`
	CycleDate         time.Time `db:"cycle_date" json:"cycle_date"`
	Metrics           string    `db:"metrics" json:"metrics"` // JSON blob
	Summary           string    `db:"summary" json:"summary"`
	TelegramMessageID string    `db:"telegram_message_id" json:"telegram_message_id,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// Content cascade planning records.

type MonthlyTheme struct {
	ID          int64     `db:"id" json:"id"`
	Year        int       `db:"year" json:"year"`
	Month       int       `db:"month" json:"month"`
	Theme       string    `db:"theme" json:"theme"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type WeeklyTopic struct {
	ID         int64     `db:"id" json:"id"`
	ThemeID    int64     `db:"theme_id" json:"theme_id"`
	Year       int       `db:"year" json:"year"`
	WeekNumber int       `db:"week_number" json:"week_number"`
	Topic      string    `db:"topic" json:"topic"`
	Angle      string    `db:"angle" json:"angle"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type DailyBrief struct {
	ID        int64     `db:"id" json:"id"`
	TopicID   int64     `db:"topic_id" json:"topic_id"`
	BriefDate time.Time `db:"brief_date" json:"brief_date"`
	Headline  string    `db:"headline" json:"headline"`
	KeyPoints string    `db:"key_points" json:"key_points"`
	Caption   string    `db:"caption" json:"caption"`
	SlideURLs []string  `db:"slide_urls" json:"slide_urls,omitempty"`
	Status    string    `db:"status" json:"status"` // draft, approved, published, discarded
	MediaID   string    `db:"media_id" json:"media_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	BriefStatusDraft     = "draft"
	BriefStatusApproved  = "approved"
	BriefStatusPublished = "published"
	BriefStatusDiscarded = "discarded"
)
