// Package devto implements the Dev.to (Forem) REST client. Unlike the
// browser-driven networks, Dev.to exposes a proper API keyed by a
// per-account token.
package devto

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/glorenz/netbot/internal/models"
	"github.com/glorenz/netbot/internal/platform"
)

const baseURL = "https://dev.to/api"

var tagRe = regexp.MustCompile(`<.*?>`)

type Client struct {
	apiKey     string
	httpClient *http.Client
	username   string
}

var _ platform.Client = (*Client)(nil)
var _ platform.ProfileSource = (*Client)(nil)

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Platform() models.Platform {
	return models.PlatformDevto
}

// Login verifies the API key by fetching the authenticated user.
func (c *Client) Login(ctx context.Context) error {
	if c.apiKey == "" {
		return errors.New("devto: no API key provided")
	}

	var me struct {
		Username string `json:"username"`
	}
	if err := c.get(ctx, "/users/me", nil, &me); err != nil {
		return fmt.Errorf("devto: authentication failed: %w", err)
	}

	c.username = me.Username
	slog.Info("devto authenticated", "username", me.Username)
	return nil
}

func (c *Client) Stop() {
	// No session to tear down.
}

func (c *Client) GetUserLatestPosts(ctx context.Context, username string, limit int) ([]models.SocialPost, error) {
	params := url.Values{}
	params.Set("username", username)
	params.Set("per_page", strconv.Itoa(limit))

	var articles []article
	if err := c.get(ctx, "/articles", params, &articles); err != nil {
		return nil, err
	}

	return parseArticles(articles), nil
}

// SearchPosts treats the query as a tag and fetches fresh articles.
func (c *Client) SearchPosts(ctx context.Context, query string, limit int) ([]models.SocialPost, error) {
	params := url.Values{}
	params.Set("tag", query)
	params.Set("per_page", strconv.Itoa(limit))
	params.Set("state", "fresh")

	var articles []article
	if err := c.get(ctx, "/articles", params, &articles); err != nil {
		return nil, err
	}

	return parseArticles(articles), nil
}

// GetPostDetails fetches the full article body plus recent comments for
// ghostwriter context. Body is capped to keep the prompt window sane.
func (c *Client) GetPostDetails(ctx context.Context, postID string) (*models.SocialPost, error) {
	var a article
	if err := c.get(ctx, "/articles/"+postID, nil, &a); err != nil {
		return nil, err
	}

	post := a.toPost()
	if len(post.Content) == 0 {
		post.Content = a.Title + "\n" + a.Description
	}
	if len(a.BodyMarkdown) > 0 {
		body := a.BodyMarkdown
		if len(body) > 5000 {
			body = body[:5000]
		}
		post.Content = body
	}

	comments, err := c.fetchComments(ctx, postID, 5)
	if err != nil {
		slog.Warn("devto: failed to fetch comments", "post_id", postID, "error", err.Error())
	}
	post.Comments = comments

	return &post, nil
}

func (c *Client) LikePost(ctx context.Context, post *models.SocialPost) error {
	id, err := strconv.Atoi(post.ID)
	if err != nil {
		return fmt.Errorf("devto: non-numeric article id %q", post.ID)
	}

	payload := map[string]any{
		"reactable_id":   id,
		"reactable_type": "Article",
		"category":       "like",
	}

	status, body, err := c.post(ctx, "/reactions", payload)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusOK || status == http.StatusCreated:
		return nil
	case status == http.StatusUnprocessableEntity:
		// Already reacted; treat as success.
		slog.Info("devto: already liked", "post_id", post.ID)
		return nil
	default:
		return fmt.Errorf("devto: like failed (%d): %s", status, body)
	}
}

func (c *Client) PostComment(ctx context.Context, post *models.SocialPost, text string) error {
	id, err := strconv.Atoi(post.ID)
	if err != nil {
		return fmt.Errorf("devto: non-numeric article id %q", post.ID)
	}

	payload := map[string]any{
		"comment": map[string]any{
			"body_markdown":    text,
			"commentable_id":   id,
			"commentable_type": "Article",
		},
	}

	status, body, err := c.post(ctx, "/comments", payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return fmt.Errorf("devto: comment failed (%d): %s", status, body)
	}
	return nil
}

func (c *Client) GetProfileData(ctx context.Context, username string) (*models.Profile, error) {
	params := url.Values{}
	params.Set("url", username)

	var u struct {
		Username string `json:"username"`
		Summary  string `json:"summary"`
	}
	if err := c.get(ctx, "/users/by_username", params, &u); err != nil {
		return nil, err
	}

	posts, err := c.GetUserLatestPosts(ctx, username, 5)
	if err != nil {
		posts = nil
	}

	return &models.Profile{
		Username:    u.Username,
		Platform:    models.PlatformDevto,
		Bio:         u.Summary,
		RecentPosts: posts,
	}, nil
}

func (c *Client) fetchComments(ctx context.Context, articleID string, limit int) ([]models.Comment, error) {
	params := url.Values{}
	params.Set("a_id", articleID)

	var raw []struct {
		IDCode   string `json:"id_code"`
		BodyHTML string `json:"body_html"`
		User     struct {
			Username string `json:"username"`
			UserID   int64  `json:"user_id"`
		} `json:"user"`
	}
	if err := c.get(ctx, "/comments", params, &raw); err != nil {
		return nil, err
	}

	var comments []models.Comment
	for _, rc := range raw {
		if len(comments) >= limit {
			break
		}
		comments = append(comments, models.Comment{
			ID: rc.IDCode,
			Author: models.Author{
				Username: rc.User.Username,
				Platform: models.PlatformDevto,
				ID:       strconv.FormatInt(rc.User.UserID, 10),
			},
			Text: stripHTML(rc.BodyHTML),
		})
	}
	return comments, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("devto: GET %s returned %d", path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, "", err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	var sb strings.Builder
	buf := make([]byte, 512)
	for {
		n, readErr := resp.Body.Read(buf)
		sb.Write(buf[:n])
		if readErr != nil || sb.Len() > 2048 {
			break
		}
	}

	return resp.StatusCode, sb.String(), nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("User-Agent", "NetBot/2.0")
}

type article struct {
	TypeOf               string   `json:"type_of"`
	ID                   int64    `json:"id"`
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	BodyMarkdown         string   `json:"body_markdown"`
	URL                  string   `json:"url"`
	CoverImage           string   `json:"cover_image"`
	PublicReactionsCount int      `json:"public_reactions_count"`
	CommentsCount        int      `json:"comments_count"`
	TagList              []string `json:"tag_list"`
	User                 struct {
		Username string `json:"username"`
		Name     string `json:"name"`
		UserID   int64  `json:"user_id"`
	} `json:"user"`
}

func (a *article) toPost() models.SocialPost {
	author := models.Author{
		Username:    a.User.Username,
		Platform:    models.PlatformDevto,
		ID:          strconv.FormatInt(a.User.UserID, 10),
		DisplayName: a.User.Name,
		ProfileURL:  "https://dev.to/" + a.User.Username,
	}

	post := models.SocialPost{
		ID:           strconv.FormatInt(a.ID, 10),
		Platform:     models.PlatformDevto,
		Author:       author,
		Content:      a.Title + "\n" + a.Description,
		URL:          a.URL,
		MediaType:    "text",
		LikeCount:    a.PublicReactionsCount,
		CommentCount: a.CommentsCount,
		Metrics: map[string]float64{
			"likes":         float64(a.PublicReactionsCount),
			"comment_count": float64(a.CommentsCount),
		},
	}
	if a.CoverImage != "" {
		post.MediaURLs = []string{a.CoverImage}
		post.MediaType = "image"
	}
	return post
}

func parseArticles(articles []article) []models.SocialPost {
	var posts []models.SocialPost
	for i := range articles {
		if articles[i].TypeOf != "" && articles[i].TypeOf != "article" {
			continue
		}
		posts = append(posts, articles[i].toPost())
	}
	return posts
}

func stripHTML(raw string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(raw, ""))
}
