package models

import "time"

// Platform identifies a social network. Post IDs are only unique per
// platform, so every persisted key carries the platform next to the ID.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformThreads   Platform = "threads"
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedin  Platform = "linkedin"
	PlatformBluesky   Platform = "bluesky"
	PlatformDevto     Platform = "devto"
)

type Author struct {
	Username    string   `json:"username"`
	Platform    Platform `json:"platform"`
	ID          string   `json:"id,omitempty"`
	DisplayName string   `json:"display_name,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	ProfileURL  string   `json:"profile_url,omitempty"`
	IsVerified  bool     `json:"is_verified,omitempty"`
}

type Comment struct {
	ID        string     `json:"id"`
	Author    Author     `json:"author"`
	Text      string     `json:"text"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	LikeCount int        `json:"like_count"`
}

// SocialPost is an ephemeral candidate owned by the cycle that discovered
// it. Metrics holds the raw per-platform counters (reply_count, views,
// follower_count, ...) that don't map onto the common fields.
type SocialPost struct {
	ID        string     `json:"id"`
	Platform  Platform   `json:"platform"`
	Author    Author     `json:"author"`
	Content   string     `json:"content"`
	URL       string     `json:"url"`
	CreatedAt *time.Time `json:"created_at,omitempty"`

	MediaURLs []string `json:"media_urls,omitempty"`
	MediaType string   `json:"media_type"` // image, video, carousel, text

	LikeCount    int `json:"like_count"`
	CommentCount int `json:"comment_count"`
	ShareCount   int `json:"share_count"`

	Comments []Comment          `json:"comments,omitempty"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

// Metric returns the first non-zero metric among the given keys.
// Platform scrapers are inconsistent about naming (likes vs reactions vs
// reaction_count), so lookups list every alias.
func (p *SocialPost) Metric(keys ...string) float64 {
	for _, k := range keys {
		if v, ok := p.Metrics[k]; ok && v != 0 {
			return v
		}
	}
	return 0
}

// Profile is the author-level data used for dossier generation.
type Profile struct {
	Username      string       `json:"username"`
	Platform      Platform     `json:"platform"`
	Bio           string       `json:"bio,omitempty"`
	FollowerCount int          `json:"follower_count"`
	RecentPosts   []SocialPost `json:"recent_posts,omitempty"`
}
