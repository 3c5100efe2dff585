package cascade

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorenz/netbot/internal/brain"
	"github.com/glorenz/netbot/internal/models"
)

type fakeGen struct {
	byLayer  map[string]any
	errLayer map[string]error
	requests []brain.Request
}

func (f *fakeGen) GenerateText(ctx context.Context, req brain.Request) (string, error) {
	f.requests = append(f.requests, req)
	if err := f.errLayer[req.Layer]; err != nil {
		return "", err
	}
	if v, ok := f.byLayer[req.Layer].(string); ok {
		return v, nil
	}
	return "", nil
}

func (f *fakeGen) GenerateJSON(ctx context.Context, req brain.Request, out any) error {
	f.requests = append(f.requests, req)
	if err := f.errLayer[req.Layer]; err != nil {
		return err
	}
	raw, err := json.Marshal(f.byLayer[req.Layer])
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

type fakeCascadeRepo struct {
	themes      map[string]*models.MonthlyTheme
	topics      map[int]*models.WeeklyTopic
	briefs      map[string]*models.DailyBrief
	themeTitles []string
	updated     []*models.DailyBrief
}

func newFakeCascadeRepo() *fakeCascadeRepo {
	return &fakeCascadeRepo{
		themes: map[string]*models.MonthlyTheme{},
		topics: map[int]*models.WeeklyTopic{},
		briefs: map[string]*models.DailyBrief{},
	}
}

func themeKey(year, month int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

func (f *fakeCascadeRepo) GetTheme(ctx context.Context, year, month int) (*models.MonthlyTheme, error) {
	return f.themes[themeKey(year, month)], nil
}

func (f *fakeCascadeRepo) CreateTheme(ctx context.Context, t *models.MonthlyTheme) error {
	t.ID = int64(len(f.themes) + 1)
	f.themes[themeKey(t.Year, t.Month)] = t
	return nil
}

func (f *fakeCascadeRepo) ListThemeTitles(ctx context.Context, limit int) ([]string, error) {
	return f.themeTitles, nil
}

func (f *fakeCascadeRepo) GetTopic(ctx context.Context, year, week int) (*models.WeeklyTopic, error) {
	return f.topics[year*100+week], nil
}

func (f *fakeCascadeRepo) CreateTopic(ctx context.Context, t *models.WeeklyTopic) error {
	t.ID = int64(len(f.topics) + 1)
	f.topics[t.Year*100+t.WeekNumber] = t
	return nil
}

func (f *fakeCascadeRepo) GetBrief(ctx context.Context, date time.Time) (*models.DailyBrief, error) {
	return f.briefs[date.Format("2006-01-02")], nil
}

func (f *fakeCascadeRepo) CreateBrief(ctx context.Context, b *models.DailyBrief) error {
	b.ID = int64(len(f.briefs) + 1)
	f.briefs[b.BriefDate.Format("2006-01-02")] = b
	return nil
}

func (f *fakeCascadeRepo) UpdateBrief(ctx context.Context, b *models.DailyBrief) error {
	f.updated = append(f.updated, b)
	f.briefs[b.BriefDate.Format("2006-01-02")] = b
	return nil
}

func TestEnsureThemeGeneratesOnceAndCaches(t *testing.T) {
	gen := &fakeGen{byLayer: map[string]any{
		"roadmapper": map[string]string{
			"theme":       "Distributed Systems in Practice",
			"description": "Consensus, queues and failure modes",
		},
	}}
	repo := newFakeCascadeRepo()
	repo.themeTitles = []string{"Go Concurrency Deep Dive"}
	s := NewStrategists(gen, repo, "planner-model")

	theme, err := s.EnsureTheme(context.Background(), 2026, time.March)
	require.NoError(t, err)
	assert.Equal(t, "Distributed Systems in Practice", theme.Theme)
	assert.Equal(t, 2026, theme.Year)
	assert.Equal(t, 3, theme.Month)

	// Past titles land in the anti-repetition guardrail.
	require.Len(t, gen.requests, 1)
	assert.Contains(t, gen.requests[0].Prompt, "Go Concurrency Deep Dive")

	again, err := s.EnsureTheme(context.Background(), 2026, time.March)
	require.NoError(t, err)
	assert.Equal(t, theme.ID, again.ID)
	assert.Len(t, gen.requests, 1, "cached theme must not trigger a second model call")
}

func TestEnsureTopicReusesExisting(t *testing.T) {
	gen := &fakeGen{byLayer: map[string]any{}}
	repo := newFakeCascadeRepo()
	repo.topics[2026*100+12] = &models.WeeklyTopic{ID: 7, Year: 2026, WeekNumber: 12, Topic: "Idempotent consumers"}
	s := NewStrategists(gen, repo, "planner-model")

	topic, err := s.EnsureTopic(context.Background(), &models.MonthlyTheme{ID: 1}, 2026, 12)
	require.NoError(t, err)
	assert.Equal(t, "Idempotent consumers", topic.Topic)
	assert.Empty(t, gen.requests)
}

func TestGenerateBriefingCoercesUnknownFormat(t *testing.T) {
	gen := &fakeGen{byLayer: map[string]any{
		"briefer": map[string]any{
			"format":            "video_reel",
			"content_angle":     "Why retries need jitter",
			"key_points":        []string{"thundering herd", "backoff curves"},
			"visual_suggestion": "a wave of arrows hitting a wall",
		},
	}}
	s := NewStrategists(gen, newFakeCascadeRepo(), "planner-model")

	briefing, err := s.GenerateBriefing(context.Background(), &models.WeeklyTopic{Topic: "Resilient clients", Angle: "practical"})
	require.NoError(t, err)
	assert.Equal(t, "fixed_image", briefing.Format)
	assert.Equal(t, "Why retries need jitter", briefing.ContentAngle)
}

func TestWriteCaptionAppendsHashtags(t *testing.T) {
	gen := &fakeGen{byLayer: map[string]any{
		"copywriter": map[string]string{
			"caption":  "Stop treating retries as free.",
			"hashtags": "#golang #backend",
		},
	}}
	c := NewCopywriter(gen, "writer-model")

	caption, err := c.WriteCaption(context.Background(), &Briefing{
		ContentAngle: "Why retries need jitter",
		KeyPoints:    []string{"thundering herd"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Stop treating retries as free.\n\n#golang #backend", caption)
}
