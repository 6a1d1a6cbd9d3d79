package heartbeat

import (
	"context"
	"time"

	"github.com/ojashyadav101/lucy-sub000/internal/telemetry"
	"github.com/ojashyadav101/lucy-sub000/internal/workspace"
)

// tickInterval is how often the heartbeat loop scans for due checks
// (spec §4.8.2: "a system cron ticks every 30 s").
const tickInterval = 30 * time.Second

// consecutiveFailureLimit is how many consecutive evaluator errors move a
// heartbeat to the error status, after which it stops being checked until
// reactivated.
const consecutiveFailureLimit = 3

// Alerter posts a triggered heartbeat's alert to its configured channel.
type Alerter interface {
	Alert(ctx context.Context, workspaceID, channel, detail string) error
}

// Loop drives the heartbeat evaluation cycle.
type Loop struct {
	Store      workspace.Store
	Evaluators map[string]Evaluator
	Alerter    Alerter
	Logger     telemetry.Logger
	clock      func() time.Time
}

// NewLoop constructs a Loop. Each due heartbeat is evaluated by
// evaluators[doc.Kind]; heartbeats whose kind has no entry are skipped.
func NewLoop(store workspace.Store, evaluators map[string]Evaluator, alerter Alerter, logger telemetry.Logger) *Loop {
	return &Loop{Store: store, Evaluators: evaluators, Alerter: alerter, Logger: logger, clock: time.Now}
}

// Run ticks every 30s until ctx is cancelled, evaluating every active,
// due heartbeat across every workspace.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	l.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

func (l *Loop) tick(ctx context.Context) {
	workspaces, err := l.Store.ListWorkspaces(ctx)
	if err != nil {
		if l.Logger != nil {
			l.Logger.Warn(ctx, "heartbeat: failed to list workspaces", "error", err)
		}
		return
	}
	now := l.clock()
	for _, ws := range workspaces {
		docs, err := l.Store.ListHeartbeats(ctx, ws)
		if err != nil {
			continue
		}
		for _, doc := range docs {
			if !isDue(doc, now) {
				continue
			}
			l.evaluateOne(ctx, ws, doc, now)
		}
	}
}

// isDue reports whether a heartbeat should be checked now (spec §4.8.2:
// "selects heartbeats where lastChecked + interval <= now AND status ==
// active").
func isDue(doc workspace.HeartbeatDoc, now time.Time) bool {
	if doc.Status != "active" {
		return false
	}
	return !doc.LastChecked.Add(time.Duration(doc.IntervalSeconds) * time.Second).After(now)
}

func (l *Loop) evaluateOne(ctx context.Context, workspaceID string, doc workspace.HeartbeatDoc, now time.Time) {
	evaluator, ok := l.Evaluators[doc.Kind]
	if !ok {
		return
	}

	result, err := evaluator.Evaluate(ctx, doc.Config)
	doc.LastChecked = now

	if err != nil {
		doc.ConsecutiveFailures++
		doc.LastResult = err.Error()
		if doc.ConsecutiveFailures >= consecutiveFailureLimit {
			doc.Status = "error"
		}
		l.persist(ctx, workspaceID, doc)
		return
	}

	doc.ConsecutiveFailures = 0
	doc.LastResult = result.Detail

	if result.Triggered && now.Sub(doc.LastAlerted) >= time.Duration(doc.CooldownSeconds)*time.Second {
		if err := l.Alerter.Alert(ctx, workspaceID, doc.AlertChannel, result.Detail); err != nil && l.Logger != nil {
			l.Logger.Warn(ctx, "heartbeat: alert delivery failed", "slug", doc.Slug, "error", err)
		} else {
			doc.LastAlerted = now
		}
	}

	l.persist(ctx, workspaceID, doc)
}

func (l *Loop) persist(ctx context.Context, workspaceID string, doc workspace.HeartbeatDoc) {
	if err := l.Store.PutHeartbeat(ctx, workspaceID, doc); err != nil && l.Logger != nil {
		l.Logger.Warn(ctx, "heartbeat: failed to persist check result", "slug", doc.Slug, "error", err)
	}
}
