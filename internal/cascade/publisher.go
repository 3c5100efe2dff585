package cascade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const graphBaseURL = "https://graph.instagram.com/v21.0"

// Publisher drives the Instagram Graph API publish flow. Carousels are
// a 3-step protocol: per-slide item containers, a carousel container,
// then publish.
type Publisher struct {
	// mu guards accessToken: the cron-driven refresh swaps it while the
	// worker goroutine builds publish payloads.
	mu          sync.Mutex
	accessToken string

	accountID  string
	baseURL    string
	refreshURL string
	httpClient *http.Client

	// sleep is swappable in tests; Graph containers need processing
	// time between steps.
	sleep func(d time.Duration)
}

func NewPublisher(accessToken, accountID string) *Publisher {
	return &Publisher{
		accessToken: accessToken,
		accountID:   accountID,
		baseURL:     graphBaseURL,
		refreshURL:  "https://graph.instagram.com",
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		sleep:       time.Sleep,
	}
}

func (p *Publisher) token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accessToken
}

func (p *Publisher) configured() error {
	if p.token() == "" || p.accountID == "" {
		return fmt.Errorf("instagram publisher: missing access token or account id")
	}
	return nil
}

// PublishCarousel runs the 3-step flow and returns the published media
// ID. At least two slides are required.
func (p *Publisher) PublishCarousel(ctx context.Context, imageURLs []string, caption string) (string, error) {
	if err := p.configured(); err != nil {
		return "", err
	}
	if len(imageURLs) < 2 {
		return "", fmt.Errorf("a carousel requires at least 2 images, got %d", len(imageURLs))
	}

	slog.Info("publishing carousel", "slides", len(imageURLs))

	itemIDs := make([]string, 0, len(imageURLs))
	for i, url := range imageURLs {
		id, err := p.createContainer(ctx, map[string]any{
			"image_url":        url,
			"is_carousel_item": true,
			"access_token":     p.token(),
		})
		if err != nil {
			return "", fmt.Errorf("item container %d: %w", i+1, err)
		}
		itemIDs = append(itemIDs, id)
		p.sleep(time.Second)
	}

	carouselID, err := p.createContainer(ctx, map[string]any{
		"media_type":   "CAROUSEL",
		"children":     strings.Join(itemIDs, ","),
		"caption":      caption,
		"access_token": p.token(),
	})
	if err != nil {
		return "", fmt.Errorf("carousel container: %w", err)
	}

	// Give the Graph servers time to process the containers.
	p.sleep(10 * time.Second)

	mediaID, err := p.publishContainer(ctx, carouselID)
	if err != nil {
		return "", err
	}
	slog.Info("carousel published", "media_id", mediaID)
	return mediaID, nil
}

// PublishSingleImage publishes a fixed single-image post.
func (p *Publisher) PublishSingleImage(ctx context.Context, imageURL, caption string) (string, error) {
	if err := p.configured(); err != nil {
		return "", err
	}

	containerID, err := p.createContainer(ctx, map[string]any{
		"image_url":    imageURL,
		"caption":      caption,
		"access_token": p.token(),
	})
	if err != nil {
		return "", fmt.Errorf("media container: %w", err)
	}

	p.sleep(5 * time.Second)

	mediaID, err := p.publishContainer(ctx, containerID)
	if err != nil {
		return "", err
	}
	slog.Info("single image published", "media_id", mediaID)
	return mediaID, nil
}

// RefreshToken exchanges the current long-lived token for a fresh one
// and swaps it in. Returns the new expiry.
func (p *Publisher) RefreshToken(ctx context.Context) (time.Time, error) {
	if err := p.configured(); err != nil {
		return time.Time{}, err
	}

	url := fmt.Sprintf(
		"%s/refresh_access_token?grant_type=ig_refresh_token&access_token=%s",
		p.refreshURL, p.token(),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return time.Time{}, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("refresh token: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return time.Time{}, fmt.Errorf("parse refresh response: %w", err)
	}
	if result.AccessToken == "" {
		return time.Time{}, fmt.Errorf("refresh returned empty token")
	}

	p.mu.Lock()
	p.accessToken = result.AccessToken
	p.mu.Unlock()
	expiresAt := time.Now().Add(time.Second * time.Duration(result.ExpiresIn))
	slog.Info("instagram access token refreshed", "expires_at", expiresAt)
	return expiresAt, nil
}

func (p *Publisher) createContainer(ctx context.Context, payload map[string]any) (string, error) {
	return p.post(ctx, fmt.Sprintf("%s/%s/media", p.baseURL, p.accountID), payload)
}

func (p *Publisher) publishContainer(ctx context.Context, containerID string) (string, error) {
	return p.post(ctx, fmt.Sprintf("%s/%s/media_publish", p.baseURL, p.accountID), map[string]any{
		"creation_id":  containerID,
		"access_token": p.token(),
	})
}

func (p *Publisher) post(ctx context.Context, url string, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("graph request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("graph api status %d: %s", resp.StatusCode, respBody)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("graph api returned no id")
	}
	return result.ID, nil
}
