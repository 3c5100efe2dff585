// Package instagram scrapes instagram.com through the shared browser
// session. Publishing (carousels) goes through the Graph API in the
// cascade package; this client only covers discovery and engagement.
package instagram

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"github.com/glorenz/netbot/internal/models"
	"github.com/glorenz/netbot/internal/platform"
	"github.com/glorenz/netbot/internal/platform/browser"
)

const baseURL = "https://www.instagram.com"

type Client struct {
	session  *browser.Session
	username string
}

var _ platform.Client = (*Client)(nil)
var _ platform.ProfileSource = (*Client)(nil)

func NewClient(session *browser.Session, username string) *Client {
	return &Client{session: session, username: username}
}

func (c *Client) Platform() models.Platform {
	return models.PlatformInstagram
}

func (c *Client) Login(ctx context.Context) error {
	if err := c.session.LoadCookies("instagram"); err != nil {
		return fmt.Errorf("instagram: load cookies: %w", err)
	}

	page, err := c.session.NewPage(ctx, baseURL+"/")
	if err != nil {
		return err
	}
	defer page.Close()

	info, err := page.Info()
	if err != nil {
		return fmt.Errorf("instagram: page info: %w", err)
	}
	if strings.Contains(info.URL, "/accounts/login") {
		return fmt.Errorf("instagram: session expired, re-seed the cookie jar")
	}

	slog.Info("instagram session restored", "username", c.username)
	return nil
}

func (c *Client) Stop() {
	if err := c.session.SaveCookies("instagram"); err != nil {
		slog.Warn("instagram: save cookies failed", "error", err.Error())
	}
}

// GetUserLatestPosts lists the shortcodes from a profile grid. Metrics
// are not visible on the grid; GetPostDetails fills them in later for
// the few posts that survive sampling.
func (c *Client) GetUserLatestPosts(ctx context.Context, username string, limit int) ([]models.SocialPost, error) {
	page, err := c.session.NewPage(ctx, baseURL+"/"+url.PathEscape(username)+"/")
	if err != nil {
		return nil, err
	}
	defer page.Close()

	posts, err := c.collectShortcodes(page, limit)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Author = models.Author{
			Username:   username,
			Platform:   models.PlatformInstagram,
			ProfileURL: baseURL + "/" + username + "/",
		}
	}
	return posts, nil
}

func (c *Client) SearchPosts(ctx context.Context, query string, limit int) ([]models.SocialPost, error) {
	tag := strings.TrimPrefix(query, "#")
	page, err := c.session.NewPage(ctx, baseURL+"/explore/tags/"+url.PathEscape(tag)+"/")
	if err != nil {
		return nil, err
	}
	defer page.Close()

	return c.collectShortcodes(page, limit)
}

// GetPostDetails opens the post page and parses the caption, author and
// counters that the grid view omits.
func (c *Client) GetPostDetails(ctx context.Context, postID string) (*models.SocialPost, error) {
	page, err := c.openPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	post := &models.SocialPost{
		ID:        postID,
		Platform:  models.PlatformInstagram,
		URL:       baseURL + "/p/" + postID + "/",
		MediaType: "image",
		Metrics:   map[string]float64{},
	}

	if el, err := page.Timeout(10 * time.Second).Element(`header a[role="link"]`); err == nil {
		if handle, terr := el.Text(); terr == nil {
			handle = strings.TrimSpace(handle)
			post.Author = models.Author{
				Username:   handle,
				Platform:   models.PlatformInstagram,
				ProfileURL: baseURL + "/" + handle + "/",
			}
		}
	}

	if el, err := page.Element(`h1`); err == nil {
		if caption, terr := el.Text(); terr == nil {
			post.Content = strings.TrimSpace(caption)
		}
	}

	if el, err := page.Element(`section a[href$="/liked_by/"] span`); err == nil {
		if text, terr := el.Text(); terr == nil {
			post.LikeCount = parseCount(text)
		}
	}
	post.Metrics["likes"] = float64(post.LikeCount)

	comments, err := page.Elements(`ul ul div[role="button"] span`)
	if err == nil {
		post.CommentCount = len(comments)
		post.Metrics["comments"] = float64(post.CommentCount)
	}

	if _, err := page.Element(`video`); err == nil {
		post.MediaType = "video"
	}

	return post, nil
}

func (c *Client) LikePost(ctx context.Context, post *models.SocialPost) error {
	page, err := c.openPost(ctx, post.ID)
	if err != nil {
		return err
	}
	defer page.Close()

	btn, err := page.Timeout(10 * time.Second).Element(`section svg[aria-label="Like"]`)
	if err != nil {
		// An Unlike glyph means we already engaged.
		if _, uerr := page.Timeout(3 * time.Second).Element(`section svg[aria-label="Unlike"]`); uerr == nil {
			return nil
		}
		return fmt.Errorf("instagram: like button not found: %w", err)
	}
	parent, err := btn.Parent()
	if err != nil {
		return err
	}
	return parent.Click("left", 1)
}

func (c *Client) PostComment(ctx context.Context, post *models.SocialPost, text string) error {
	page, err := c.openPost(ctx, post.ID)
	if err != nil {
		return err
	}
	defer page.Close()

	box, err := page.Timeout(10 * time.Second).Element(`textarea[aria-label="Add a comment…"]`)
	if err != nil {
		return fmt.Errorf("instagram: comment box not found: %w", err)
	}
	if err := box.Click("left", 1); err != nil {
		return err
	}
	// Instagram swaps the textarea node on focus; re-query before typing.
	box, err = page.Timeout(5 * time.Second).Element(`textarea[aria-label="Add a comment…"]`)
	if err != nil {
		return fmt.Errorf("instagram: comment box lost focus: %w", err)
	}
	if err := box.Input(text); err != nil {
		return err
	}

	post_, err := page.Timeout(10 * time.Second).ElementR(`div[role="button"]`, "^Post$")
	if err != nil {
		return fmt.Errorf("instagram: post button not found: %w", err)
	}
	return post_.Click("left", 1)
}

func (c *Client) GetProfileData(ctx context.Context, username string) (*models.Profile, error) {
	page, err := c.session.NewPage(ctx, baseURL+"/"+url.PathEscape(username)+"/")
	if err != nil {
		return nil, err
	}
	defer page.Close()

	profile := &models.Profile{Username: username, Platform: models.PlatformInstagram}

	if el, err := page.Timeout(10 * time.Second).Element(`header section > div:last-child span`); err == nil {
		if bio, terr := el.Text(); terr == nil {
			profile.Bio = strings.TrimSpace(bio)
		}
	}
	if el, err := page.Element(`a[href$="/followers/"] span`); err == nil {
		if title, terr := el.Attribute("title"); terr == nil && title != nil {
			profile.FollowerCount = parseCount(*title)
		} else if text, terr := el.Text(); terr == nil {
			profile.FollowerCount = parseCount(text)
		}
	}

	return profile, nil
}

func (c *Client) openPost(ctx context.Context, shortcode string) (*rod.Page, error) {
	return c.session.NewPage(ctx, baseURL+"/p/"+url.PathEscape(shortcode)+"/")
}

func (c *Client) collectShortcodes(page *rod.Page, limit int) ([]models.SocialPost, error) {
	page.Mouse.Scroll(0, 1200, 3)
	time.Sleep(1500 * time.Millisecond)

	links, err := page.Timeout(15 * time.Second).Elements(`a[href^="/p/"], a[href^="/reel/"]`)
	if err != nil {
		return nil, fmt.Errorf("instagram: no post links found: %w", err)
	}

	seen := map[string]bool{}
	var posts []models.SocialPost
	for _, link := range links {
		if len(posts) >= limit {
			break
		}
		href, herr := link.Attribute("href")
		if herr != nil || href == nil {
			continue
		}
		code := shortcodeFromPath(*href)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		posts = append(posts, models.SocialPost{
			ID:        code,
			Platform:  models.PlatformInstagram,
			URL:       baseURL + *href,
			MediaType: "image",
			Metrics:   map[string]float64{},
		})
	}

	slog.Info("instagram posts collected", "count", len(posts))
	return posts, nil
}

func shortcodeFromPath(href string) string {
	parts := strings.Split(strings.Trim(href, "/"), "/")
	if len(parts) >= 2 && (parts[0] == "p" || parts[0] == "reel") {
		return parts[1]
	}
	return ""
}

func parseCount(raw string) int {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0
	}
	s = strings.Fields(s)[0]

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "K") || strings.HasSuffix(s, "k"):
		mult, s = 1000, s[:len(s)-1]
	case strings.HasSuffix(s, "M") || strings.HasSuffix(s, "m"):
		mult, s = 1_000_000, s[:len(s)-1]
	}

	var n float64
	if _, err := fmt.Sscanf(s, "%f", &n); err != nil {
		return 0
	}
	return int(n * mult)
}
