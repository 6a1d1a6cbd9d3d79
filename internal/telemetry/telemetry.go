// Package telemetry defines the logging, metrics, and tracing contracts used
// throughout Lucy's core. Every component accepts these interfaces rather than
// a concrete logging/metrics library so call sites stay agnostic of the
// production backend (clue/OTEL) versus the no-op backend used in tests.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type (
	// Logger emits structured log messages scoped to a request or run.
	// keyvals follows the (k1, v1, k2, v2, ...) convention; odd-length slices
	// pair the trailing key with a nil value.
	Logger interface {
		Debug(ctx context.Context, msg string, keyvals ...any)
		Info(ctx context.Context, msg string, keyvals ...any)
		Warn(ctx context.Context, msg string, keyvals ...any)
		Error(ctx context.Context, msg string, keyvals ...any)
	}

	// Metrics records counters, timers, and gauges. tags follows the
	// (k1, v1, k2, v2, ...) dimension convention.
	Metrics interface {
		IncCounter(name string, value float64, tags ...string)
		RecordTimer(name string, duration time.Duration, tags ...string)
		RecordGauge(name string, value float64, tags ...string)
	}

	// Tracer opens spans for observability. Start both opens a span and
	// returns a context carrying it; Span retrieves whatever span (possibly
	// no-op) is already bound to ctx.
	Tracer interface {
		Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span)
		Span(ctx context.Context) Span
	}

	// Span is a single observability span within a trace.
	Span interface {
		End(opts ...trace.SpanEndOption)
		AddEvent(name string, keyvals ...any)
		SetStatus(code codes.Code, description string)
		RecordError(err error, opts ...trace.EventOption)
	}

	// ToolTelemetry captures structured observability metadata gathered
	// during a single tool execution: duration, token counts (when the tool
	// is itself an LLM call, e.g. a sub-agent), and the model used, if any.
	ToolTelemetry struct {
		// Duration is the wall-clock time the tool call took to execute.
		Duration time.Duration
		// Model names the model tier or id used, empty for non-LLM tools.
		Model string
		// PromptTokens and CompletionTokens are non-zero only for agent-as-tool
		// delegations, where the nested run consumed LLM tokens.
		PromptTokens     int
		CompletionTokens int
	}
)
