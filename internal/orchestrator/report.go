package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glorenz/netbot/internal/models"
	"github.com/glorenz/netbot/internal/notify"
	"github.com/glorenz/netbot/internal/repository"
)

// Reporter assembles the daily funnel snapshot (seen → skipped →
// rejected → commented), persists it, and pushes a summary to the
// operator channel.
type Reporter struct {
	records  repository.DiscoveryRepository
	llmLogs  repository.LLMLogRepository
	reports  repository.ReportRepository
	notifier notify.Notifier
}

func NewReporter(records repository.DiscoveryRepository, llmLogs repository.LLMLogRepository, reports repository.ReportRepository, notifier notify.Notifier) *Reporter {
	return &Reporter{records: records, llmLogs: llmLogs, reports: reports, notifier: notifier}
}

type funnelRow struct {
	Platform  models.Platform `json:"platform"`
	Seen      int             `json:"seen"`
	Skipped   int             `json:"skipped"`
	Rejected  int             `json:"rejected"`
	Commented int             `json:"commented"`
}

type reportMetrics struct {
	Funnel       []funnelRow `json:"funnel"`
	InputTokens  int         `json:"input_tokens"`
	OutputTokens int         `json:"output_tokens"`
}

// Publish builds today's report, upserts it, and notifies the operator.
// Failures are logged; reporting never disturbs the cycle loop.
func (r *Reporter) Publish(ctx context.Context, platforms []models.Platform) {
	since := startOfDay(time.Now())
	metrics := reportMetrics{}

	for _, p := range platforms {
		row := funnelRow{Platform: p}
		row.Seen = r.count(ctx, p, nil, since)
		row.Skipped = r.count(ctx, p, []string{models.DiscoveryStatusSkipped}, since)
		row.Rejected = r.count(ctx, p, []string{models.DiscoveryStatusRejected}, since)
		row.Commented = r.count(ctx, p, []string{models.DiscoveryStatusCommented}, since)
		metrics.Funnel = append(metrics.Funnel, row)
	}

	in, out, err := r.llmLogs.TokenUsageSince(ctx, since)
	if err != nil {
		slog.Warn("token usage lookup failed", "error", err.Error())
	}
	metrics.InputTokens = in
	metrics.OutputTokens = out

	summary := formatSummary(&metrics, since)
	messageID, err := r.notifier.Send(summary)
	if err != nil {
		slog.Warn("report notification failed", "error", err.Error())
	}

	blob, err := json.Marshal(metrics)
	if err != nil {
		slog.Warn("report metrics marshal failed", "error", err.Error())
		return
	}
	rep := &models.CycleReport{
		CycleDate:         since,
		Metrics:           string(blob),
		Summary:           summary,
		TelegramMessageID: messageID,
	}
	if err := r.reports.Upsert(ctx, rep); err != nil {
		slog.Warn("report persistence failed", "error", err.Error())
	}
}

func (r *Reporter) count(ctx context.Context, p models.Platform, statuses []string, since time.Time) int {
	n, err := r.records.CountSince(ctx, p, statuses, since)
	if err != nil {
		slog.Warn("funnel count failed", "platform", p, "error", err.Error())
		return 0
	}
	return n
}

func formatSummary(m *reportMetrics, date time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>📊 Daily Report — %s</b>\n\n", date.Format("2006-01-02"))
	for _, row := range m.Funnel {
		fmt.Fprintf(&sb, "<b>%s</b>: %d seen | %d skipped | %d rejected | %d commented\n",
			row.Platform, row.Seen, row.Skipped, row.Rejected, row.Commented)
	}
	fmt.Fprintf(&sb, "\n🪙 Tokens: %d in / %d out", m.InputTokens, m.OutputTokens)
	return sb.String()
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
