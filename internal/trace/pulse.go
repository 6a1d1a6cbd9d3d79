package trace

import (
	"context"
	"encoding/json"
	"fmt"

	clientspulse "github.com/ojashyadav101/lucy-sub000/features/stream/pulse/clients/pulse"

	"github.com/ojashyadav101/lucy-sub000/internal/telemetry"
)

// pulseSubscriber republishes trace events onto a Pulse (Redis stream) so any
// external dashboard can subscribe without touching the in-process Store.
// Grounded on the teacher's RuntimeStreams/Sink publishing shape, narrowed
// from a generic stream.Event envelope to trace.Event's own JSON encoding.
type pulseSubscriber struct {
	stream clientspulse.Stream
	log    telemetry.Logger
}

// NewPulseSubscriber constructs a Subscriber that publishes every trace
// event onto the named Pulse stream. Failures to publish are logged and
// swallowed rather than returned: a dashboard republish failure must never
// halt the agent loop that is the actual source of truth (the in-process
// Store subscriber still records the event regardless).
func NewPulseSubscriber(client clientspulse.Client, streamName string, log telemetry.Logger) (Subscriber, error) {
	stream, err := client.Stream(streamName)
	if err != nil {
		return nil, fmt.Errorf("trace: open pulse stream %q: %w", streamName, err)
	}
	return &pulseSubscriber{stream: stream, log: log}, nil
}

func (p *pulseSubscriber) HandleEvent(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Warn(ctx, "trace: failed to marshal event for pulse republish", "task_id", event.TaskID, "error", err.Error())
		return nil
	}
	if _, err := p.stream.Add(ctx, string(event.Type), payload); err != nil {
		p.log.Warn(ctx, "trace: failed to publish event to pulse", "task_id", event.TaskID, "error", err.Error())
	}
	return nil
}
