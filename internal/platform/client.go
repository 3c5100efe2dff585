// Package platform defines the capability set the engagement pipeline
// expects from each social network and hosts the concrete clients.
package platform

import (
	"context"

	"github.com/glorenz/netbot/internal/models"
)

// Client is the per-network capability set consumed by discovery and the
// cycle controller. Implementations are either thin HTTP API wrappers
// (Dev.to) or browser-automation sessions (LinkedIn, Twitter, Instagram).
type Client interface {
	Platform() models.Platform
	Login(ctx context.Context) error
	GetUserLatestPosts(ctx context.Context, username string, limit int) ([]models.SocialPost, error)
	SearchPosts(ctx context.Context, query string, limit int) ([]models.SocialPost, error)
	GetPostDetails(ctx context.Context, postID string) (*models.SocialPost, error)
	LikePost(ctx context.Context, post *models.SocialPost) error
	PostComment(ctx context.Context, post *models.SocialPost, text string) error
	Stop()
}

// ProfileSource is an optional capability: clients that can fetch
// author-level profile data implement it, and the context builder
// discovers it with a type assertion instead of probing methods.
type ProfileSource interface {
	GetProfileData(ctx context.Context, username string) (*models.Profile, error)
}

// FeedSource is an optional capability for networks with a browsable
// home feed (LinkedIn). Feed-first discovery requires it.
type FeedSource interface {
	GetFeedPosts(ctx context.Context, limit int) ([]models.SocialPost, error)
}
