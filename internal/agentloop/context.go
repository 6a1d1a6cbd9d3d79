package agentloop

import (
	"context"
	"time"

	"github.com/ojashyadav101/lucy-sub000/internal/ratelimit"
	"github.com/ojashyadav101/lucy-sub000/internal/telemetry"
	"github.com/ojashyadav101/lucy-sub000/internal/tools"
	"github.com/ojashyadav101/lucy-sub000/internal/trace"
)

// Context bundles everything a single Run call needs to reach the LLM,
// tools, and rate limiter — the engine.WorkflowContext equivalent for
// Lucy's single in-process engine, narrowed to what the turn algorithm
// actually dereferences (no activity/signal/future machinery, since there
// is only ever one engine backend).
type Context struct {
	Go         context.Context
	Request    RequestContext
	Registry   tools.Registry
	Limiter    *ratelimit.Limiter
	Record     *trace.Record
	Logger     telemetry.Logger
	Dispatcher Dispatcher
	Notifier   Notifier

	start time.Time
}

// Deadline reports the wall-clock moment this run's ABSOLUTE_MAX_SECONDS
// cap expires.
func (c *Context) Deadline(caps Caps) time.Time {
	return c.start.Add(caps.AbsoluteMaxDuration)
}

// Elapsed returns time spent so far in this run.
func (c *Context) Elapsed() time.Duration {
	return time.Since(c.start)
}

// Notifier posts user-facing chat messages the loop emits mid-run: progress
// lines, approval requests, and terminal notices. Implemented by the chat
// transport collaborator (out of scope per spec §1).
type Notifier interface {
	PostProgress(ctx context.Context, rc RequestContext, text string) error
	PostApprovalRequest(ctx context.Context, rc RequestContext, call tools.Call) (ApprovalOutcome, error)
	PostNotice(ctx context.Context, rc RequestContext, text string) error
}

// ApprovalOutcome is the resolution of a destructive-action HITL gate (spec
// §4.6 item 8).
type ApprovalOutcome string

const (
	ApprovalApproved ApprovalOutcome = "approved"
	ApprovalRejected ApprovalOutcome = "rejected"
	ApprovalExpired  ApprovalOutcome = "expired"
)

// NewContext constructs a run Context, stamping the wall-clock start used
// by Deadline/Elapsed.
func NewContext(goCtx context.Context, rc RequestContext, registry tools.Registry, limiter *ratelimit.Limiter, record *trace.Record, log telemetry.Logger, dispatcher Dispatcher, notifier Notifier) *Context {
	return &Context{
		Go:         goCtx,
		Request:    rc,
		Registry:   registry,
		Limiter:    limiter,
		Record:     record,
		Logger:     log,
		Dispatcher: dispatcher,
		Notifier:   notifier,
		start:      time.Now(),
	}
}
