package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorenz/netbot/internal/models"
	"github.com/glorenz/netbot/internal/notify"
)

// reportRecords answers funnel counts from a scripted table keyed by
// platform and first status (empty key means all statuses).
type reportRecords struct {
	fakeRecords
	counts map[string]int
}

func (f *reportRecords) CountSince(ctx context.Context, platform models.Platform, statuses []string, since time.Time) (int, error) {
	key := string(platform)
	if len(statuses) > 0 {
		key += ":" + statuses[0]
	}
	return f.counts[key], nil
}

type fakeLLMLogs struct {
	in, out int
}

func (f *fakeLLMLogs) Create(ctx context.Context, l *models.LLMLog) error { return nil }

func (f *fakeLLMLogs) TokenUsageSince(ctx context.Context, since time.Time) (int, int, error) {
	return f.in, f.out, nil
}

type fakeReports struct {
	saved *models.CycleReport
}

func (f *fakeReports) Upsert(ctx context.Context, rep *models.CycleReport) error {
	f.saved = rep
	return nil
}

func (f *fakeReports) GetByDate(ctx context.Context, date time.Time) (*models.CycleReport, error) {
	return f.saved, nil
}

type fakeNotifier struct {
	sent []string
}

func (f *fakeNotifier) Send(text string) (string, error) {
	f.sent = append(f.sent, text)
	return "msg-42", nil
}

func (f *fakeNotifier) Confirm(ctx context.Context, title, body string) (notify.Action, error) {
	return notify.ActionApprove, nil
}

func TestPublishBuildsFunnelAndPersists(t *testing.T) {
	records := &reportRecords{
		fakeRecords: *newFakeRecords(),
		counts: map[string]int{
			"twitter":           12,
			"twitter:skipped":   7,
			"twitter:rejected":  3,
			"twitter:commented": 1,
		},
	}
	reports := &fakeReports{}
	notifier := &fakeNotifier{}

	r := NewReporter(records, &fakeLLMLogs{in: 1200, out: 340}, reports, notifier)
	r.Publish(context.Background(), []models.Platform{models.PlatformTwitter})

	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "<b>twitter</b>: 12 seen | 7 skipped | 3 rejected | 1 commented")
	assert.Contains(t, notifier.sent[0], "🪙 Tokens: 1200 in / 340 out")

	require.NotNil(t, reports.saved)
	assert.Equal(t, "msg-42", reports.saved.TelegramMessageID)
	assert.Contains(t, reports.saved.Metrics, `"input_tokens":1200`)
	assert.Equal(t, notifier.sent[0], reports.saved.Summary)
}

func TestFormatSummaryHeader(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	m := &reportMetrics{Funnel: []funnelRow{{Platform: models.PlatformDevto, Seen: 2}}}

	got := formatSummary(m, date)

	assert.Contains(t, got, "2026-03-14")
	assert.Contains(t, got, "<b>devto</b>: 2 seen")
}
