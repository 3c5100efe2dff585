// Package browser manages the shared Chrome session used by the
// scrape-based platform clients: launch or remote attach via Rod,
// stealth page creation, and cookie persistence between runs.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/glorenz/netbot/pkg/utils"
)

type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome. Empty means
	// launch a local headless Chrome.
	RemoteURL string
	// CookiesDir holds one cookie jar file per network.
	CookiesDir string
	Headless   bool
	// Secret, when set, encrypts cookie jars at rest with AES-GCM.
	// Must be 16, 24 or 32 bytes.
	Secret []byte
}

type Session struct {
	cfg     Config
	browser *rod.Browser
	lnch    *launcher.Launcher
}

func NewSession(cfg Config) *Session {
	if cfg.CookiesDir == "" {
		cfg.CookiesDir = "data/cookies"
	}
	return &Session{cfg: cfg}
}

// Start launches Chrome (or attaches to a remote instance).
func (s *Session) Start(ctx context.Context) error {
	wsURL := s.cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().Headless(s.cfg.Headless)
		l = l.Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		s.lnch = l
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("browser: connect: %w", err)
	}

	s.browser = b
	slog.Info("browser session started", "remote", s.cfg.RemoteURL != "")
	return nil
}

// NewPage opens a stealth page and navigates to the URL.
func (s *Session) NewPage(ctx context.Context, pageURL string) (*rod.Page, error) {
	if s.browser == nil {
		return nil, fmt.Errorf("browser: session not started")
	}

	page, err := stealth.Page(s.browser)
	if err != nil {
		return nil, fmt.Errorf("browser: create page: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		slog.Warn("browser: wait load timeout", "url", pageURL, "error", err.Error())
	}

	return page, nil
}

// LoadCookies restores a network's cookie jar into the browser. Missing
// jar files are not an error; the caller falls through to a fresh login.
func (s *Session) LoadCookies(network string) error {
	path := filepath.Join(s.cfg.CookiesDir, network+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if len(s.cfg.Secret) > 0 {
		// Jars written before encryption was enabled are plain JSON.
		if plain, err := utils.Open(data, s.cfg.Secret); err == nil {
			data = plain
		}
	}

	var cookies []*proto.NetworkCookieParam
	if err := json.Unmarshal(data, &cookies); err != nil {
		return fmt.Errorf("browser: bad cookie jar %s: %w", path, err)
	}

	return s.browser.SetCookies(cookies)
}

// SaveCookies snapshots the browser's cookies into the network's jar.
func (s *Session) SaveCookies(network string) error {
	cookies, err := s.browser.GetCookies()
	if err != nil {
		return err
	}

	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			Expires:  c.Expires,
		})
	}

	data, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return err
	}

	if len(s.cfg.Secret) > 0 {
		sealed, err := utils.Seal(data, s.cfg.Secret)
		if err != nil {
			return fmt.Errorf("browser: encrypt cookie jar: %w", err)
		}
		data = sealed
	}

	if err := os.MkdirAll(s.cfg.CookiesDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.cfg.CookiesDir, network+".json"), data, 0o600)
}

// Close shuts down Chrome.
func (s *Session) Close() {
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			slog.Warn("browser: close failed", "error", err.Error())
		}
		s.browser = nil
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
		s.lnch = nil
	}
}
