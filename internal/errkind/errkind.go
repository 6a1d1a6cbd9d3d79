// Package errkind defines the closed error taxonomy used across the agent
// loop, supervisor, and degradation formatter (spec §7).
package errkind

// Kind categorizes a failure so policy and the degradation formatter can
// decide how to react without parsing free-form error strings.
type Kind string

const (
	// LLMTransient covers LLM 429/5xx and other transient provider errors.
	// Policy: retry with backoff up to 3 times, then escalate model tier.
	LLMTransient Kind = "llm-transient"
	// LLMMalformed covers empty or garbage LLM output.
	// Policy: nudge once, then escalate model tier.
	LLMMalformed Kind = "llm-malformed"
	// ToolAuth covers a tool returning unauthorized.
	// Policy: surface connection-required message; never retried.
	ToolAuth Kind = "tool-auth"
	// ToolTransient covers tool 5xx/connection/timeout errors.
	// Policy: retry at most once; surfaced as retryable in the tool result.
	ToolTransient Kind = "tool-transient"
	// ToolFatal covers tool 4xx errors that are not auth failures.
	// Policy: surfaced as fatal in the tool result; the LLM is left to adapt.
	ToolFatal Kind = "tool-fatal"
	// ArgumentParse covers tool arguments that failed to parse/validate.
	// Policy: a parse-error marker is appended so the LLM retries with
	// corrected arguments.
	ArgumentParse Kind = "argument-parse"
	// UnknownTool covers an LLM call to a name outside the allow-list.
	// Policy: rejected immediately with an unknown-tool marker.
	UnknownTool Kind = "unknown-tool"
	// StuckLoop covers loop/stuck detection breaking the agent loop.
	// Policy: escalate tier once and collect a partial result.
	StuckLoop Kind = "stuck-loop"
	// Cancelled covers user- or wall-clock-driven cancellation. Terminal.
	Cancelled Kind = "cancelled"
	// ApprovalExpired covers an HITL approval that timed out.
	ApprovalExpired Kind = "approval-expired"
	// ValidationError covers invalid cron expressions or bad configuration,
	// rejected at creation time with an actionable message.
	ValidationError Kind = "validation-error"
	// TenantIsolation covers an attempted cross-tenant access. Fatal; never
	// executed; always logged.
	TenantIsolation Kind = "tenant-isolation"
	// Unknown is the fallback when no other kind applies.
	Unknown Kind = "unknown"
)

// Retryable reports whether a fresh attempt is ever appropriate for this
// kind, independent of any retry budget already spent. ToolAuth,
// UnknownTool, Cancelled, ApprovalExpired, ValidationError, and
// TenantIsolation are never retried.
func (k Kind) Retryable() bool {
	switch k {
	case LLMTransient, LLMMalformed, ToolTransient, ArgumentParse, StuckLoop:
		return true
	default:
		return false
	}
}
