package cron

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ojashyadav101/lucy-sub000/internal/telemetry"
	"github.com/ojashyadav101/lucy-sub000/internal/workspace"
)

// AgentRunner executes a scheduled instruction through Lucy's agent loop
// (spec §4.8.1 step 5: "invoke the same agent loop with is-scheduled=true
// context"). It is a narrow function-shaped interface so this package does
// not need to depend on agentloop's full Context/Planner wiring; cmd/lucy
// supplies the concrete implementation.
type AgentRunner interface {
	RunScheduled(ctx context.Context, workspaceID, instruction string) (string, error)
}

// ScriptRunner executes a `type: script` job's body in the sandboxed
// execution environment (spec §6), and also evaluates a job's
// conditionScript.
type ScriptRunner interface {
	RunScript(ctx context.Context, workspaceID, script string) (string, error)
}

// Delivery posts a cron's output to its configured destination.
type Delivery interface {
	DeliverToChannel(ctx context.Context, workspaceID, channel, text string) error
	DeliverToUser(ctx context.Context, workspaceID, userID, text string) error
}

// fixedFraming is prepended to every scheduled instruction (spec §4.8.1
// step 4).
const fixedFraming = "You are running a scheduled task. Respond only with the work product or HEARTBEAT_OK; do not ask clarifying questions."

// fixedRules is appended after a job's LEARNINGS (spec §4.8.1 step 4: "a
// fixed set of rules").
const fixedRules = "Rules: no clarifying questions, no sample or placeholder data, self-validate your output before finishing, return HEARTBEAT_OK if there is nothing to report, and do not create or modify cron jobs from inside a running cron."

// Deps bundles a RunJob invocation's collaborators.
type Deps struct {
	Store    workspace.Store
	Agents   AgentRunner
	Scripts  ScriptRunner
	Delivery Delivery
	Process  func(text string) string
	Logger   telemetry.Logger
}

// RunJob executes one firing of a cron document end to end: dependency
// and condition gating, instruction assembly, execution, HEARTBEAT_OK
// suppression, delivery, max-runs self-deletion, and retry-with-backoff
// on failure (spec §4.8.1 steps 1-9).
func RunJob(ctx context.Context, deps Deps, workspaceID string, doc workspace.CronDoc, now time.Time) error {
	if doc.DependsOn != "" {
		dep, err := deps.Store.GetCron(ctx, workspaceID, doc.DependsOn)
		if err != nil || dep.LastSuccessDate != jobDate(doc, now) {
			return nil
		}
	}

	if doc.ConditionScript != "" {
		result, err := deps.Scripts.RunScript(ctx, workspaceID, doc.ConditionScript)
		if err != nil || isFalsy(result) {
			return nil
		}
	}

	learnings, _ := deps.Store.LoadLearnings(ctx, workspaceID, doc.Slug)
	instruction := buildInstruction(doc, learnings)

	operation := func() (string, error) {
		if doc.Type == "script" {
			return deps.Scripts.RunScript(ctx, workspaceID, doc.Description)
		}
		return deps.Agents.RunScheduled(ctx, workspaceID, instruction)
	}

	response, err := runWithRetry(operation, doc.Retries)
	if err != nil {
		if doc.NotifyOnFailure {
			_ = deps.Delivery.DeliverToUser(ctx, workspaceID, doc.RequestingUser,
				fmt.Sprintf("scheduled job %q failed after %d attempt(s): %v", doc.Title, doc.Retries+1, err))
		}
		return err
	}

	doc.RunCount++
	doc.LastSuccessDate = jobDate(doc, now)
	doc.UpdatedAt = now
	if err := deps.Store.PutCron(ctx, workspaceID, doc); err != nil && deps.Logger != nil {
		deps.Logger.Warn(ctx, "cron: failed to persist run bookkeeping", "slug", doc.Slug, "error", err)
	}

	if suppressDelivery(response) {
		return finalizeMaxRuns(ctx, deps, workspaceID, doc)
	}

	processed := response
	if deps.Process != nil {
		processed = deps.Process(response)
	}
	if err := deliver(ctx, deps.Delivery, workspaceID, doc, processed); err != nil && deps.Logger != nil {
		deps.Logger.Warn(ctx, "cron: delivery failed", "slug", doc.Slug, "error", err)
	}

	return finalizeMaxRuns(ctx, deps, workspaceID, doc)
}

func finalizeMaxRuns(ctx context.Context, deps Deps, workspaceID string, doc workspace.CronDoc) error {
	if doc.MaxRuns > 0 && doc.RunCount >= doc.MaxRuns {
		return deps.Store.DeleteCron(ctx, workspaceID, doc.Slug)
	}
	return nil
}

func buildInstruction(doc workspace.CronDoc, learnings string) string {
	var b strings.Builder
	b.WriteString(fixedFraming)
	b.WriteString("\n\n")
	b.WriteString(doc.Description)
	if learnings != "" {
		b.WriteString("\n\nPrior learnings:\n")
		b.WriteString(learnings)
	}
	b.WriteString("\n\n")
	b.WriteString(fixedRules)
	return b.String()
}

// suppressDelivery implements spec §4.8.1 step 6: delivery is skipped
// entirely when the stripped-uppercase response is empty, equals SKIP,
// equals HEARTBEAT_OK, or starts with HEARTBEAT_OK.
func suppressDelivery(response string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(response))
	return normalized == "" || normalized == "SKIP" || strings.HasPrefix(normalized, "HEARTBEAT_OK")
}

func isFalsy(result string) bool {
	switch strings.ToLower(strings.TrimSpace(result)) {
	case "", "false", "0", "no", "null":
		return true
	default:
		return false
	}
}

func deliver(ctx context.Context, d Delivery, workspaceID string, doc workspace.CronDoc, text string) error {
	if doc.DeliveryMode == "directMessage" {
		return d.DeliverToUser(ctx, workspaceID, doc.RequestingUser, text)
	}
	return d.DeliverToChannel(ctx, workspaceID, doc.DeliveryChannel, text)
}

// runWithRetry retries operation with exponential backoff up to maxRetries
// additional attempts beyond the first (spec §4.8.1 step 9).
func runWithRetry(operation func() (string, error), maxRetries int) (string, error) {
	var result string
	attempts := 0
	wrapped := func() error {
		attempts++
		out, err := operation()
		if err != nil {
			return err
		}
		result = out
		return nil
	}

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(maxRetries))
	err := backoff.Retry(wrapped, b)
	return result, err
}

// jobDate returns the date (YYYY-MM-DD) of now in the job's timezone, used
// to evaluate DependsOn and to stamp LastSuccessDate.
func jobDate(doc workspace.CronDoc, now time.Time) string {
	loc, err := time.LoadLocation(doc.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return now.In(loc).Format("2006-01-02")
}
