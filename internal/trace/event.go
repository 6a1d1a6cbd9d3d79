// Package trace records per-Task execution traces — spans, token usage, and
// the model-tier chain a run escalated through — and fans out structured
// trace events to subscribers (in-process persistence, optional external
// dashboards) using a synchronous, fail-fast bus modeled on the teacher's
// hook event bus.
package trace

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of lifecycle moment a trace.Event reports.
type EventType string

const (
	// EventTurnStarted marks the start of one agent-loop turn.
	EventTurnStarted EventType = "turn_started"
	// EventToolDispatched marks a tool call being dispatched (internal,
	// delegation, or external).
	EventToolDispatched EventType = "tool_dispatched"
	// EventModelEscalated marks a model-tier escalation mid-run.
	EventModelEscalated EventType = "model_escalated"
	// EventCheckpointDecision marks a Supervisor.Evaluate decision.
	EventCheckpointDecision EventType = "checkpoint_decision"
	// EventRunTerminal marks the run's final outcome (returned, aborted,
	// cancelled, or exhausted).
	EventRunTerminal EventType = "run_terminal"
)

// Event is a single structured trace moment published to the Bus.
type Event struct {
	Type      EventType
	TaskID    string
	Timestamp time.Time

	// Turn is set for EventTurnStarted.
	Turn int
	// ToolName, ToolKind ("internal"|"delegation"|"external") are set for
	// EventToolDispatched.
	ToolName string
	ToolKind string
	// FromModel, ToModel are set for EventModelEscalated.
	FromModel string
	ToModel   string
	// Decision is set for EventCheckpointDecision (one of the six
	// Supervisor decision strings).
	Decision string
	// Outcome, PromptTokens, CompletionTokens are set for EventRunTerminal.
	Outcome          string
	PromptTokens     int
	CompletionTokens int
}

// NewEvent stamps a new Event with a fresh timestamp for the given task.
func NewEvent(taskID string, typ EventType) Event {
	return Event{Type: typ, TaskID: taskID, Timestamp: time.Now()}
}

// Span records a single open/close interval within a Task's execution,
// named after the operation it covers (e.g. "llm_call", "tool:lucy_slack_post").
type Span struct {
	ID       string
	Name     string
	Start    time.Time
	End      time.Time
	Err      error
	Children []*Span
}

// Duration returns the span's wall-clock length, zero if still open.
func (s *Span) Duration() time.Duration {
	if s.End.IsZero() {
		return 0
	}
	return s.End.Sub(s.Start)
}

// Record is the accumulated trace for one Task: its span tree, the model
// tiers it escalated through, total token usage, and the tool calls it made.
type Record struct {
	TaskID     string
	Intent     string
	Spans      []*Span
	ModelChain []string
	ToolCalls  []string

	PromptTokens     int
	CompletionTokens int
}

// NewRecord constructs an empty Record for a task, seeding the model chain
// with the starting tier.
func NewRecord(taskID, intent, startingModel string) *Record {
	return &Record{
		TaskID:     taskID,
		Intent:     intent,
		ModelChain: []string{startingModel},
	}
}

// OpenSpan appends and returns a new open span.
func (r *Record) OpenSpan(name string) *Span {
	s := &Span{ID: uuid.NewString(), Name: name, Start: time.Now()}
	r.Spans = append(r.Spans, s)
	return s
}

// CloseSpan closes s, recording err if non-nil.
func (r *Record) CloseSpan(s *Span, err error) {
	s.End = time.Now()
	s.Err = err
}

// RecordEscalation appends a new tier to the model chain if it differs from
// the current tier (escalation is monotonic and sticky, so duplicates are
// never appended).
func (r *Record) RecordEscalation(tier string) {
	if len(r.ModelChain) > 0 && r.ModelChain[len(r.ModelChain)-1] == tier {
		return
	}
	r.ModelChain = append(r.ModelChain, tier)
}

// RecordToolCall appends a tool name to the call history.
func (r *Record) RecordToolCall(name string) {
	r.ToolCalls = append(r.ToolCalls, name)
}

// AddUsage accumulates token usage onto the record's running total.
func (r *Record) AddUsage(prompt, completion int) {
	r.PromptTokens += prompt
	r.CompletionTokens += completion
}
