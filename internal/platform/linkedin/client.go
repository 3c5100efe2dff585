// Package linkedin scrapes LinkedIn through the shared browser session.
// There is no public API for feed reading, so everything here drives the
// web UI and is best-effort by nature.
package linkedin

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"github.com/glorenz/netbot/internal/models"
	"github.com/glorenz/netbot/internal/platform"
	"github.com/glorenz/netbot/internal/platform/browser"
)

const feedURL = "https://www.linkedin.com/feed/"

type Client struct {
	session  *browser.Session
	username string
	page     *rod.Page
}

var _ platform.Client = (*Client)(nil)
var _ platform.FeedSource = (*Client)(nil)

func NewClient(session *browser.Session, username string) *Client {
	return &Client{session: session, username: username}
}

func (c *Client) Platform() models.Platform {
	return models.PlatformLinkedin
}

// Login restores the persisted cookie jar and verifies the session by
// loading the feed. Interactive credential login is out of scope; the
// jar is seeded by a manual login helper.
func (c *Client) Login(ctx context.Context) error {
	if err := c.session.LoadCookies("linkedin"); err != nil {
		return fmt.Errorf("linkedin: load cookies: %w", err)
	}

	page, err := c.session.NewPage(ctx, feedURL)
	if err != nil {
		return err
	}
	c.page = page

	// A redirect to the login/authwall page means the cookies are stale.
	info, err := page.Info()
	if err != nil {
		return fmt.Errorf("linkedin: page info: %w", err)
	}
	if strings.Contains(info.URL, "/login") || strings.Contains(info.URL, "authwall") {
		return fmt.Errorf("linkedin: session expired, re-seed the cookie jar")
	}

	slog.Info("linkedin session restored", "username", c.username)
	return nil
}

func (c *Client) Stop() {
	if c.page != nil {
		c.page.Close()
		c.page = nil
	}
	if err := c.session.SaveCookies("linkedin"); err != nil {
		slog.Warn("linkedin: save cookies failed", "error", err.Error())
	}
}

// GetFeedPosts scrolls the home feed and parses visible post cards.
func (c *Client) GetFeedPosts(ctx context.Context, limit int) ([]models.SocialPost, error) {
	page, err := c.session.NewPage(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	return c.collectPosts(page, limit)
}

func (c *Client) SearchPosts(ctx context.Context, query string, limit int) ([]models.SocialPost, error) {
	searchURL := "https://www.linkedin.com/search/results/content/?keywords=" + url.QueryEscape(query)
	page, err := c.session.NewPage(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	return c.collectPosts(page, limit)
}

func (c *Client) GetUserLatestPosts(ctx context.Context, username string, limit int) ([]models.SocialPost, error) {
	activityURL := fmt.Sprintf("https://www.linkedin.com/in/%s/recent-activity/all/", url.PathEscape(username))
	page, err := c.session.NewPage(ctx, activityURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	return c.collectPosts(page, limit)
}

// GetPostDetails is not cheap on LinkedIn; the feed card already carries
// everything the pipeline needs, so this just echoes the feed parse for
// a single activity URN.
func (c *Client) GetPostDetails(ctx context.Context, postID string) (*models.SocialPost, error) {
	postURL := "https://www.linkedin.com/feed/update/" + url.PathEscape(postID) + "/"
	page, err := c.session.NewPage(ctx, postURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	posts, err := c.collectPosts(page, 1)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return &posts[0], nil
}

func (c *Client) LikePost(ctx context.Context, post *models.SocialPost) error {
	page, err := c.openPost(ctx, post)
	if err != nil {
		return err
	}
	defer page.Close()

	btn, err := page.Timeout(10 * time.Second).Element(`button[aria-label*="React Like"]`)
	if err != nil {
		return fmt.Errorf("linkedin: like button not found: %w", err)
	}
	return btn.Click("left", 1)
}

func (c *Client) PostComment(ctx context.Context, post *models.SocialPost, text string) error {
	page, err := c.openPost(ctx, post)
	if err != nil {
		return err
	}
	defer page.Close()

	box, err := page.Timeout(10 * time.Second).Element(`.comments-comment-box__form .ql-editor`)
	if err != nil {
		// The editor only appears after the comment button is pressed.
		btn, berr := page.Timeout(10 * time.Second).Element(`button[aria-label*="Comment"]`)
		if berr != nil {
			return fmt.Errorf("linkedin: comment box not found: %w", err)
		}
		if cerr := btn.Click("left", 1); cerr != nil {
			return cerr
		}
		box, err = page.Timeout(10 * time.Second).Element(`.comments-comment-box__form .ql-editor`)
		if err != nil {
			return fmt.Errorf("linkedin: comment editor not found: %w", err)
		}
	}

	if err := box.Input(text); err != nil {
		return err
	}

	submit, err := page.Timeout(10 * time.Second).Element(`button.comments-comment-box__submit-button--cr`)
	if err != nil {
		return fmt.Errorf("linkedin: submit button not found: %w", err)
	}
	return submit.Click("left", 1)
}

func (c *Client) openPost(ctx context.Context, post *models.SocialPost) (*rod.Page, error) {
	target := post.URL
	if target == "" {
		target = "https://www.linkedin.com/feed/update/" + url.PathEscape(post.ID) + "/"
	}
	return c.session.NewPage(ctx, target)
}

// collectPosts scrolls a couple of screens and parses every visible
// post card. Selector drift is expected; parse failures on individual
// cards are skipped, never fatal.
func (c *Client) collectPosts(page *rod.Page, limit int) ([]models.SocialPost, error) {
	for i := 0; i < 3; i++ {
		page.Mouse.Scroll(0, 2000, 4)
		time.Sleep(1500 * time.Millisecond)
	}

	cards, err := page.Timeout(15 * time.Second).Elements(`div.feed-shared-update-v2`)
	if err != nil {
		return nil, fmt.Errorf("linkedin: no post cards found: %w", err)
	}

	var posts []models.SocialPost
	for _, card := range cards {
		if len(posts) >= limit {
			break
		}
		post, ok := parseCard(card)
		if ok {
			posts = append(posts, post)
		}
	}

	slog.Info("linkedin posts collected", "count", len(posts))
	return posts, nil
}

func parseCard(card *rod.Element) (models.SocialPost, bool) {
	var post models.SocialPost
	post.Platform = models.PlatformLinkedin
	post.MediaType = "text"
	post.Metrics = map[string]float64{}

	urn, err := card.Attribute("data-urn")
	if err != nil || urn == nil || *urn == "" {
		return post, false
	}
	post.ID = *urn
	post.URL = "https://www.linkedin.com/feed/update/" + *urn + "/"

	if el, err := card.Element(`.update-components-text`); err == nil {
		if text, terr := el.Text(); terr == nil {
			post.Content = strings.TrimSpace(text)
		}
	}

	if el, err := card.Element(`.update-components-actor__title`); err == nil {
		if name, terr := el.Text(); terr == nil {
			post.Author.DisplayName = strings.TrimSpace(strings.Split(name, "\n")[0])
		}
	}
	if el, err := card.Element(`.update-components-actor__container a`); err == nil {
		if href, herr := el.Attribute("href"); herr == nil && href != nil {
			post.Author.ProfileURL = *href
			post.Author.Username = usernameFromProfileURL(*href)
		}
	}
	post.Author.Platform = models.PlatformLinkedin

	if el, err := card.Element(`.social-details-social-counts__reactions-count`); err == nil {
		if text, terr := el.Text(); terr == nil {
			post.LikeCount = parseCount(text)
		}
	}
	if el, err := card.Element(`.social-details-social-counts__comments`); err == nil {
		if text, terr := el.Text(); terr == nil {
			post.CommentCount = parseCount(text)
		}
	}

	post.Metrics["likes"] = float64(post.LikeCount)
	post.Metrics["comments"] = float64(post.CommentCount)

	if _, err := card.Element(`.update-components-image`); err == nil {
		post.MediaType = "image"
	}

	return post, true
}

// usernameFromProfileURL pulls the handle out of /in/<handle>/ or keeps
// the company path intact so the judge's company hard block can see it.
func usernameFromProfileURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	path := strings.Trim(u.Path, "/")
	if strings.HasPrefix(path, "in/") {
		return strings.TrimPrefix(path, "in/")
	}
	return path
}

// parseCount turns "1,234" / "1.2K" style counters into ints.
func parseCount(raw string) int {
	s := strings.TrimSpace(raw)
	if idx := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' }); idx > 0 {
		s = s[idx:]
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.Fields(s + " ")[0]

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "K") || strings.HasSuffix(s, "k"):
		mult, s = 1000, s[:len(s)-1]
	case strings.HasSuffix(s, "M") || strings.HasSuffix(s, "m"):
		mult, s = 1_000_000, s[:len(s)-1]
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(n * mult)
}
