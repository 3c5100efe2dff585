// Package orchestrator drives the engagement cycle across the enabled
// networks and produces the daily funnel report.
package orchestrator

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/glorenz/netbot/internal/agent"
	"github.com/glorenz/netbot/internal/discovery"
	"github.com/glorenz/netbot/internal/models"
	"github.com/glorenz/netbot/internal/platform"
	"github.com/glorenz/netbot/internal/repository"
)

const candidatesPerCycle = 5

// Network bundles one platform's client and discovery strategy.
type Network struct {
	Name      string
	Client    platform.Client
	Discovery discovery.Strategy
}

// Config is the controller's pacing and safety policy.
type Config struct {
	DailyInteractionLimit int
	MinSleep              time.Duration
	MaxSleep              time.Duration
	DryRun                bool
}

// CycleStats is the per-cycle funnel summary handed to the reporter.
type CycleStats struct {
	StartedAt  time.Time
	FinishedAt time.Time
	PerNetwork map[string]NetworkStats
}

type NetworkStats struct {
	Candidates int
	Approved   int
	Commented  int
	Skipped    bool // daily limit already reached
}

// Controller runs one network after another, sequentially. Browser
// sessions and daily budgets are not safe for parallel use, so there is
// no per-network concurrency by design.
type Controller struct {
	networks     []Network
	agent        *agent.SocialAgent
	records      repository.DiscoveryRepository
	interactions repository.InteractionRepository
	stats        repository.DailyStatsRepository
	events       repository.EventRepository
	cfg          Config
	rng          *rand.Rand

	// sleep is swappable in tests; production uses sleepContext.
	sleep func(ctx context.Context, d time.Duration)
}

func NewController(networks []Network, socialAgent *agent.SocialAgent, records repository.DiscoveryRepository, interactions repository.InteractionRepository, stats repository.DailyStatsRepository, events repository.EventRepository, cfg Config, rng *rand.Rand) *Controller {
	return &Controller{
		networks:     networks,
		agent:        socialAgent,
		records:      records,
		interactions: interactions,
		stats:        stats,
		events:       events,
		cfg:          cfg,
		rng:          rng,
		sleep:        sleepContext,
	}
}

// RunCycle executes a single engagement pass: per network, check the
// daily budget, discover, judge all, rank, then act on at most one
// post. Per-network errors never abort the cycle.
func (c *Controller) RunCycle(ctx context.Context) CycleStats {
	stats := CycleStats{
		StartedAt:  time.Now(),
		PerNetwork: make(map[string]NetworkStats),
	}
	slog.Info("cycle started", "networks", len(c.networks))

	for _, net := range c.networks {
		if ctx.Err() != nil {
			break
		}
		stats.PerNetwork[net.Name] = c.runNetwork(ctx, net)
	}

	stats.FinishedAt = time.Now()
	slog.Info("cycle finished", "duration", stats.FinishedAt.Sub(stats.StartedAt).Round(time.Second))
	return stats
}

func (c *Controller) runNetwork(ctx context.Context, net Network) NetworkStats {
	var ns NetworkStats
	platformName := net.Discovery.Platform()

	count, err := c.stats.GetDailyCount(ctx, platformName)
	if err != nil {
		slog.Warn("daily count lookup failed", "network", net.Name, "error", err.Error())
	}
	if count >= c.cfg.DailyInteractionLimit {
		slog.Info("daily limit reached", "network", net.Name, "count", count, "limit", c.cfg.DailyInteractionLimit)
		ns.Skipped = true
		return ns
	}

	slog.Info("discovery started", "network", net.Name)
	candidates, err := net.Discovery.FindCandidates(ctx, candidatesPerCycle)
	if err != nil {
		slog.Error("discovery failed", "network", net.Name, "error", err.Error())
		c.events.Log(ctx, "error", "discovery", net.Name+": "+err.Error())
		return ns
	}
	ns.Candidates = len(candidates)
	if len(candidates) == 0 {
		slog.Info("no candidates found", "network", net.Name)
		return ns
	}

	approved := c.agent.JudgeAll(ctx, candidates)
	ns.Approved = len(approved)
	if len(approved) == 0 {
		return ns
	}

	ranked := agent.RankByVirality(approved)
	for i := range ranked {
		post := &ranked[i].Post
		slog.Info("analyzing candidate", "network", net.Name, "rank", i+1, "post_id", post.ID,
			"score", agent.ViralityScore(post))

		decision := c.agent.DecideAndComment(ctx, post, &ranked[i].Verdict, net.Client)
		if !decision.ShouldAct {
			slog.Info("decision: skip", "post_id", post.ID, "reason", decision.Reasoning)
			c.updateStatus(ctx, post, models.DiscoveryStatusRejected, decision.Reasoning)
			continue
		}

		if c.execute(ctx, net, post, &decision) {
			ns.Commented++
			// One interaction per network per cycle.
			break
		}
	}
	return ns
}

// execute performs the like+comment pair and records the outcome.
// Returns true when an interaction was persisted.
func (c *Controller) execute(ctx context.Context, net Network, post *models.SocialPost, decision *models.ActionDecision) bool {
	slog.Info("decision: act", "post_id", post.ID, "confidence", decision.ConfidenceScore, "comment", decision.Content)

	if c.cfg.DryRun {
		slog.Warn("dry run: comment not posted", "post_id", post.ID)
		c.updateStatus(ctx, post, models.DiscoveryStatusApproved, "[Dry Run] "+decision.Reasoning)
		return false
	}

	if err := net.Client.LikePost(ctx, post); err != nil {
		slog.Warn("like failed", "post_id", post.ID, "error", err.Error())
	}
	c.sleep(ctx, time.Duration(1000+c.rng.Intn(1000))*time.Millisecond)

	if err := net.Client.PostComment(ctx, post, decision.Content); err != nil {
		slog.Error("comment failed", "post_id", post.ID, "error", err.Error())
		c.events.Log(ctx, "error", "orchestrator", "comment failed on "+post.ID+": "+err.Error())
		return false
	}

	inserted, err := c.interactions.Create(ctx, &models.Interaction{
		PostID:      post.ID,
		Username:    post.Author.Username,
		CommentText: decision.Content,
		Platform:    post.Platform,
		Metadata:    map[string]string{"reasoning": decision.Reasoning},
	})
	if err != nil {
		slog.Error("failed to log interaction", "post_id", post.ID, "error", err.Error())
	}
	if !inserted && err == nil {
		// Lost a duplicate race; the comment went out but another writer
		// owns the record.
		slog.Warn("interaction already recorded", "post_id", post.ID)
	}

	c.updateStatus(ctx, post, models.DiscoveryStatusCommented, decision.Reasoning)
	if err := c.stats.Increment(ctx, post.Platform); err != nil {
		slog.Warn("daily counter increment failed", "platform", post.Platform, "error", err.Error())
	}

	pause := c.cfg.MinSleep
	if c.cfg.MaxSleep > c.cfg.MinSleep {
		pause += time.Duration(c.rng.Int63n(int64(c.cfg.MaxSleep - c.cfg.MinSleep)))
	}
	slog.Info("interaction successful", "post_id", post.ID, "pause", pause.Round(time.Second))
	c.sleep(ctx, pause)
	return true
}

func (c *Controller) updateStatus(ctx context.Context, post *models.SocialPost, status, reasoning string) {
	if err := c.records.UpdateStatus(ctx, post.ID, post.Platform, status, reasoning); err != nil {
		slog.Warn("status update failed", "post_id", post.ID, "error", err.Error())
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
