// Package twitter scrapes X/Twitter through the shared browser session.
package twitter

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

const baseURL = "https://x.com"

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
	return models.PlatformTwitter
}

func (c *Client) Login(ctx context.Context) error {
	if err := c.session.LoadCookies("twitter"); err != nil {
		return fmt.Errorf("twitter: load cookies: %w", err)
	}

	page, err := c.session.NewPage(ctx, baseURL+"/home")
	if err != nil {
		return err
	}
	defer page.Close()

	info, err := page.Info()
	if err != nil {
		return fmt.Errorf("twitter: page info: %w", err)
	}
	if strings.Contains(info.URL, "/login") || strings.Contains(info.URL, "/i/flow") {
		return fmt.Errorf("twitter: session expired, re-seed the cookie jar")
	}

	slog.Info("twitter session restored", "username", c.username)
	return nil
}

func (c *Client) Stop() {
	if err := c.session.SaveCookies("twitter"); err != nil {
		slog.Warn("twitter: save cookies failed", "error", err.Error())
	}
}

func (c *Client) GetUserLatestPosts(ctx context.Context, username string, limit int) ([]models.SocialPost, error) {
	page, err := c.session.NewPage(ctx, baseURL+"/"+url.PathEscape(username))
	if err != nil {
		return nil, err
	}
	defer page.Close()

	return c.collectTweets(page, limit)
}

// SearchPosts runs a hashtag/keyword search on the Latest tab so the
// pipeline sees fresh conversations rather than week-old top tweets.
func (c *Client) SearchPosts(ctx context.Context, query string, limit int) ([]models.SocialPost, error) {
	searchURL := baseURL + "/search?q=" + url.QueryEscape(query) + "&src=typed_query&f=live"
	page, err := c.session.NewPage(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	return c.collectTweets(page, limit)
}

func (c *Client) GetPostDetails(ctx context.Context, postID string) (*models.SocialPost, error) {
	page, err := c.openStatus(ctx, postID)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	tweets, err := c.collectTweets(page, 5)
	if err != nil {
		return nil, err
	}
	if len(tweets) == 0 {
		return nil, nil
	}
	// First card on a status page is the tweet itself; the rest are the
	// replies the context builder wants to read.
	post := tweets[0]
	for _, reply := range tweets[1:] {
		post.Comments = append(post.Comments, models.Comment{
			ID:     reply.ID,
			Author: reply.Author,
			Text:   reply.Content,
		})
	}
	return &post, nil
}

func (c *Client) LikePost(ctx context.Context, post *models.SocialPost) error {
	page, err := c.openStatus(ctx, post.ID)
	if err != nil {
		return err
	}
	defer page.Close()

	btn, err := page.Timeout(10 * time.Second).Element(`button[data-testid="like"]`)
	if err != nil {
		// Already-liked tweets render an unlike button instead.
		if _, uerr := page.Timeout(3 * time.Second).Element(`button[data-testid="unlike"]`); uerr == nil {
			return nil
		}
		return fmt.Errorf("twitter: like button not found: %w", err)
	}
	return btn.Click("left", 1)
}

func (c *Client) PostComment(ctx context.Context, post *models.SocialPost, text string) error {
	page, err := c.openStatus(ctx, post.ID)
	if err != nil {
		return err
	}
	defer page.Close()

	box, err := page.Timeout(10 * time.Second).Element(`div[data-testid="tweetTextarea_0"]`)
	if err != nil {
		return fmt.Errorf("twitter: reply box not found: %w", err)
	}
	if err := box.Click("left", 1); err != nil {
		return err
	}
	if err := box.Input(text); err != nil {
		return err
	}

	send, err := page.Timeout(10 * time.Second).Element(`button[data-testid="tweetButton"]`)
	if err != nil {
		return fmt.Errorf("twitter: reply button not found: %w", err)
	}
	return send.Click("left", 1)
}

func (c *Client) GetProfileData(ctx context.Context, username string) (*models.Profile, error) {
	page, err := c.session.NewPage(ctx, baseURL+"/"+url.PathEscape(username))
	if err != nil {
		return nil, err
	}
	defer page.Close()

	profile := &models.Profile{Username: username, Platform: models.PlatformTwitter}

	if el, err := page.Timeout(10 * time.Second).Element(`div[data-testid="UserDescription"]`); err == nil {
		if bio, terr := el.Text(); terr == nil {
			profile.Bio = strings.TrimSpace(bio)
		}
	}
	if el, err := page.Element(`a[href$="/verified_followers"] span`); err == nil {
		if text, terr := el.Text(); terr == nil {
			profile.FollowerCount = parseCount(text)
		}
	}

	posts, err := c.collectTweets(page, 5)
	if err == nil {
		profile.RecentPosts = posts
	}
	return profile, nil
}

func (c *Client) openStatus(ctx context.Context, postID string) (*rod.Page, error) {
	// Status pages resolve regardless of the handle in the path.
	return c.session.NewPage(ctx, baseURL+"/i/status/"+url.PathEscape(postID))
}

func (c *Client) collectTweets(page *rod.Page, limit int) ([]models.SocialPost, error) {
	for i := 0; i < 2; i++ {
		page.Mouse.Scroll(0, 1500, 3)
		time.Sleep(1500 * time.Millisecond)
	}

	cards, err := page.Timeout(15 * time.Second).Elements(`article[data-testid="tweet"]`)
	if err != nil {
		return nil, fmt.Errorf("twitter: no tweet cards found: %w", err)
	}

	var posts []models.SocialPost
	for _, card := range cards {
		if len(posts) >= limit {
			break
		}
		post, ok := parseTweet(card)
		if ok {
			posts = append(posts, post)
		}
	}

	slog.Info("twitter posts collected", "count", len(posts))
	return posts, nil
}

func parseTweet(card *rod.Element) (models.SocialPost, bool) {
	var post models.SocialPost
	post.Platform = models.PlatformTwitter
	post.MediaType = "text"
	post.Metrics = map[string]float64{}

	// The permalink anchor carries both the status ID and the handle.
	link, err := card.Element(`a[href*="/status/"]`)
	if err != nil {
		return post, false
	}
	href, err := link.Attribute("href")
	if err != nil || href == nil {
		return post, false
	}
	handle, id, ok := parseStatusPath(*href)
	if !ok {
		return post, false
	}
	post.ID = id
	post.URL = baseURL + *href
	post.Author = models.Author{
		Username:   handle,
		Platform:   models.PlatformTwitter,
		ProfileURL: baseURL + "/" + handle,
	}

	if el, err := card.Element(`div[data-testid="tweetText"]`); err == nil {
		if text, terr := el.Text(); terr == nil {
			post.Content = strings.TrimSpace(text)
		}
	}

	post.CommentCount = countFromButton(card, "reply")
	post.ShareCount = countFromButton(card, "retweet")
	post.LikeCount = countFromButton(card, "like")

	post.Metrics["likes"] = float64(post.LikeCount)
	post.Metrics["reply_count"] = float64(post.CommentCount)
	post.Metrics["shares"] = float64(post.ShareCount)
	if el, err := card.Element(`a[href$="/analytics"]`); err == nil {
		if text, terr := el.Text(); terr == nil {
			post.Metrics["views"] = float64(parseCount(text))
		}
	}

	if _, err := card.Element(`div[data-testid="tweetPhoto"]`); err == nil {
		post.MediaType = "image"
	}

	return post, true
}

func countFromButton(card *rod.Element, testID string) int {
	btn, err := card.Element(`button[data-testid="` + testID + `"]`)
	if err != nil {
		return 0
	}
	text, err := btn.Text()
	if err != nil {
		return 0
	}
	return parseCount(text)
}

// parseStatusPath extracts (handle, id) from /<handle>/status/<id> paths.
func parseStatusPath(href string) (string, string, bool) {
	parts := strings.Split(strings.Trim(href, "/"), "/")
	for i, p := range parts {
		if p == "status" && i > 0 && i+1 < len(parts) {
			return parts[i-1], parts[i+1], true
		}
	}
	return "", "", false
}

func parseCount(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	s = strings.Fields(s)[0]
	s = strings.ReplaceAll(s, ",", "")

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
