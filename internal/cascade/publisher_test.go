package cascade

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type graphCall struct {
	path    string
	payload map[string]any
}

func newTestPublisher(t *testing.T, calls *[]graphCall) *Publisher {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		*calls = append(*calls, graphCall{path: r.URL.Path, payload: payload})
		fmt.Fprintf(w, `{"id":"container-%d"}`, len(*calls))
	}))
	t.Cleanup(srv.Close)

	p := NewPublisher("token", "acct")
	p.baseURL = srv.URL
	p.sleep = func(d time.Duration) {}
	return p
}

func TestPublishCarouselThreeStepFlow(t *testing.T) {
	var calls []graphCall
	p := newTestPublisher(t, &calls)

	mediaID, err := p.PublishCarousel(context.Background(), []string{"https://cdn/a.png", "https://cdn/b.png"}, "caption text")
	require.NoError(t, err)
	assert.Equal(t, "container-4", mediaID)

	require.Len(t, calls, 4)

	// Two item containers.
	assert.Equal(t, "/acct/media", calls[0].path)
	assert.Equal(t, "https://cdn/a.png", calls[0].payload["image_url"])
	assert.Equal(t, true, calls[0].payload["is_carousel_item"])
	assert.Equal(t, "https://cdn/b.png", calls[1].payload["image_url"])

	// Carousel container referencing the items.
	assert.Equal(t, "/acct/media", calls[2].path)
	assert.Equal(t, "CAROUSEL", calls[2].payload["media_type"])
	assert.Equal(t, "container-1,container-2", calls[2].payload["children"])
	assert.Equal(t, "caption text", calls[2].payload["caption"])

	// Publish step.
	assert.Equal(t, "/acct/media_publish", calls[3].path)
	assert.Equal(t, "container-3", calls[3].payload["creation_id"])
}

func TestPublishCarouselRequiresTwoImages(t *testing.T) {
	var calls []graphCall
	p := newTestPublisher(t, &calls)

	_, err := p.PublishCarousel(context.Background(), []string{"https://cdn/a.png"}, "caption")
	assert.ErrorContains(t, err, "at least 2 images")
	assert.Empty(t, calls)
}

func TestPublishSingleImage(t *testing.T) {
	var calls []graphCall
	p := newTestPublisher(t, &calls)

	mediaID, err := p.PublishSingleImage(context.Background(), "https://cdn/cover.png", "today's take")
	require.NoError(t, err)
	assert.Equal(t, "container-2", mediaID)

	require.Len(t, calls, 2)
	assert.Equal(t, "https://cdn/cover.png", calls[0].payload["image_url"])
	assert.Equal(t, "today's take", calls[0].payload["caption"])
	assert.Equal(t, "container-1", calls[1].payload["creation_id"])
}

func TestPublisherRequiresCredentials(t *testing.T) {
	p := NewPublisher("", "")

	_, err := p.PublishSingleImage(context.Background(), "https://cdn/x.png", "caption")
	assert.ErrorContains(t, err, "missing access token")
}

func TestTokenRefreshDuringPublish(t *testing.T) {
	var refreshes atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/refresh_access_token" {
			n := refreshes.Add(1)
			fmt.Fprintf(w, `{"access_token":"token-%d","expires_in":5184000}`, n)
			return
		}
		fmt.Fprint(w, `{"id":"container-1"}`)
	}))
	t.Cleanup(srv.Close)

	p := NewPublisher("token-0", "acct")
	p.baseURL = srv.URL
	p.refreshURL = srv.URL
	p.sleep = func(d time.Duration) {}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			if _, err := p.RefreshToken(context.Background()); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			if _, err := p.PublishSingleImage(context.Background(), "https://cdn/x.png", "caption"); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	wg.Wait()

	assert.Equal(t, "token-20", p.token())
}

func TestPublisherGraphError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"invalid image"}}`)
	}))
	t.Cleanup(srv.Close)

	p := NewPublisher("token", "acct")
	p.baseURL = srv.URL
	p.sleep = func(d time.Duration) {}

	_, err := p.PublishSingleImage(context.Background(), "https://cdn/x.png", "caption")
	assert.ErrorContains(t, err, "status 400")
}
