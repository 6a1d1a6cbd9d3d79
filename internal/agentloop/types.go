// Package agentloop implements Lucy's bounded multi-turn LLM/tool execution
// engine (spec §4.6), grounded on the teacher's engine/planner/reminder
// split: the cooperative-cancellation execution shape of
// runtime/agent/engine, the exactly-one-of-ToolCalls-or-FinalResponse
// planner contract of runtime/agent/planner, and the
// wrap-in-<system-reminder> injection convention of
// runtime/agent/reminder/inject.go — condensed from the teacher's
// Temporal-workflow-replay scale to a single in-process goroutine per run.
package agentloop

import (
	"time"

	"github.com/ojashyadav101/lucy-sub000/internal/model"
	"github.com/ojashyadav101/lucy-sub000/internal/tools"
)

// ModelTier is one rung of Lucy's escalation ladder (spec §4.6: "Escalation
// order (monotonic): fast -> default -> code -> research -> frontier").
type ModelTier string

const (
	TierFast     ModelTier = "fast"
	TierDefault  ModelTier = "default"
	TierCode     ModelTier = "code"
	TierResearch ModelTier = "research"
	TierFrontier ModelTier = "frontier"
)

// tierOrder gives each tier its position on the monotonic escalation ladder.
var tierOrder = map[ModelTier]int{
	TierFast:     0,
	TierDefault:  1,
	TierCode:     2,
	TierResearch: 3,
	TierFrontier: 4,
}

// Escalate returns the next tier up from t, or t itself if already at the
// top. Escalation never downgrades (spec §4.6).
func (t ModelTier) Escalate() ModelTier {
	switch t {
	case TierFast:
		return TierDefault
	case TierDefault:
		return TierCode
	case TierCode:
		return TierResearch
	default:
		return TierFrontier
	}
}

// Before reports whether t is strictly earlier on the escalation ladder
// than other.
func (t ModelTier) Before(other ModelTier) bool {
	return tierOrder[t] < tierOrder[other]
}

// Caps bounds a single run's soft limits (spec §4.6 "Soft limits").
type Caps struct {
	MaxToolTurns               int
	MaxContextMessages         int
	ToolResultMaxChars         int
	ToolResultSummaryThreshold int
	MaxPayloadChars            int
	AbsoluteMaxDuration        time.Duration
	PerToolNameCap             int
}

// DefaultCaps returns the spec's default top-level run caps.
func DefaultCaps() Caps {
	return Caps{
		MaxToolTurns:               50,
		MaxContextMessages:         40,
		ToolResultMaxChars:         16_000,
		ToolResultSummaryThreshold: 8_000,
		MaxPayloadChars:            120_000,
		AbsoluteMaxDuration:        14_400 * time.Second,
		PerToolNameCap:             4,
	}
}

// DelegateCaps returns the narrower caps a sub-agent delegation runs under
// (spec §4.6: "its own ... turn cap (default 10), payload cap (80,000), and
// wall-clock (120 s)").
func DelegateCaps() Caps {
	c := DefaultCaps()
	c.MaxToolTurns = 10
	c.MaxPayloadChars = 80_000
	c.AbsoluteMaxDuration = 120 * time.Second
	return c
}

// RequestContext carries the identifiers and flags that travel with every
// call the loop makes (LLM, tool, supervisor), mirroring the teacher's
// run.Context.
type RequestContext struct {
	WorkspaceID string
	ChannelID   string
	ThreadID    string
	UserID      string
	IsScheduled bool
	TaskID      string
}

// PlanResult is the planner's decision for a turn: exactly one of ToolCalls
// or FinalResponse is populated, matching the teacher's PlanResult contract.
type PlanResult struct {
	ToolCalls     []tools.Call
	FinalResponse string
	RetryHint     *RetryHint
}

// RetryHint lets the planner attach a retry suggestion to a turn, grounded
// on the teacher's planner.RetryHint and narrowed to two fields. Run itself
// does not read it.
type RetryHint struct {
	RestrictToTool tools.ID
	Message        string
}

// Planner is Lucy's LLM decision contract. PlanStart/PlanResume map to the
// teacher's identically named methods: PlanStart begins a run, PlanResume
// continues after tool results are folded back in.
type Planner interface {
	PlanStart(ctx *Context, messages []*model.Message, tier ModelTier) (PlanResult, error)
	PlanResume(ctx *Context, messages []*model.Message, tier ModelTier) (PlanResult, error)
}

// SupervisorDecision is the six-letter checkpoint outcome (spec §4.7).
type SupervisorDecision string

const (
	DecisionContinue  SupervisorDecision = "CONTINUE"
	DecisionIntervene SupervisorDecision = "INTERVENE"
	DecisionReplan    SupervisorDecision = "REPLAN"
	DecisionEscalate  SupervisorDecision = "ESCALATE"
	DecisionAskUser   SupervisorDecision = "ASK_USER"
	DecisionAbort     SupervisorDecision = "ABORT"
)

// CheckpointResult is a supervisor checkpoint's outcome for a turn.
type CheckpointResult struct {
	Decision  SupervisorDecision
	Guidance  string
	NewPlan   string
	Question  string
}

// Supervisor is the narrow contract the loop calls into at checkpoints;
// plan creation/full evaluation semantics live in package supervisor.
type Supervisor interface {
	Evaluate(ctx *Context, report TurnReport) (CheckpointResult, error)
}

// TurnReport summarizes recent turns for a supervisor checkpoint (spec
// §4.7's TurnReport, narrowed to a single rollup of the run so far rather
// than a last-3-turns slice; the loop keeps no per-turn history and builds
// this report from its running counters).
type TurnReport struct {
	Turn             int
	TotalErrors      int
	ConsecutiveErrors int
	ElapsedSeconds   float64
	ResponseLen      int
	CurrentModel     ModelTier
	LastToolName     string
	LastToolHadError bool
}

// Outcome is the terminal result of a Run call.
type Outcome struct {
	Text      string
	Cancelled bool
	Partial   bool
	ToolCalls int
}
