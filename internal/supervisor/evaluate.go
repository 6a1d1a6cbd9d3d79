package supervisor

import (
	"fmt"
	"strings"

	"github.com/ojashyadav101/lucy-sub000/internal/agentloop"
	"github.com/ojashyadav101/lucy-sub000/internal/errkind"
	"github.com/ojashyadav101/lucy-sub000/internal/model"
	"github.com/ojashyadav101/lucy-sub000/internal/ratelimit"
	"github.com/ojashyadav101/lucy-sub000/internal/telemetry"
	"github.com/ojashyadav101/lucy-sub000/internal/toolerrors"
)

// Supervisor is Lucy's cheap meta-LLM checkpoint (spec §4.7): it creates
// plans ahead of complex tasks and evaluates progress at checkpoints,
// grounded on features/policy/basic/engine.go's allow/block + retry-hint
// Decide — the six-letter decision enum itself has no teacher analogue and
// is built directly from spec.md §4.7's table.
type Supervisor struct {
	Client    model.Client
	FastModel string
	Limiter   *ratelimit.Limiter
	Logger    telemetry.Logger
}

// New constructs a Supervisor. fastModel names the provider model string the
// `fast` tier resolves to; both CreatePlan and EvaluateProgress use it.
func New(client model.Client, fastModel string, limiter *ratelimit.Limiter, logger telemetry.Logger) *Supervisor {
	return &Supervisor{Client: client, FastModel: fastModel, Limiter: limiter, Logger: logger}
}

var _ agentloop.Supervisor = (*Supervisor)(nil)

const evaluateSystemPrompt = `You are monitoring an in-progress AI agent task. Given a short status report, ` +
	`respond with exactly one letter on the first line, chosen from:
C - CONTINUE: the agent is on track, no intervention needed
I - INTERVENE: inject corrective guidance (give the guidance on the following lines)
R - REPLAN: discard the plan and regenerate one (give the new plan on the following lines)
E - ESCALATE: advance to the next model tier
A - ASK_USER: pause and ask the user a clarifying question (give the question on the following lines)
X - ABORT: stop the task gracefully
Respond with the letter alone unless instructed above to add more lines.`

// Evaluate implements agentloop.Supervisor, mapping a TurnReport to one of
// the six checkpoint decisions (spec §4.7's EvaluateProgress).
func (s *Supervisor) Evaluate(ctx *agentloop.Context, report agentloop.TurnReport) (agentloop.CheckpointResult, error) {
	if s.Limiter != nil {
		s.Limiter.AcquireModel(ctx.Go, s.FastModel, 1, 0)
	}
	resp, err := s.Client.Complete(ctx.Go, &model.Request{
		Model: s.FastModel,
		Messages: []*model.Message{
			model.TextMessage(model.RoleSystem, evaluateSystemPrompt),
			model.TextMessage(model.RoleUser, formatTurnReport(report)),
		},
		Temperature: 0,
		MaxTokens:   300,
	})
	if err != nil {
		return agentloop.CheckpointResult{}, toolerrors.NewWithCause(errkind.LLMTransient, "evaluate progress", err)
	}
	return parseDecision(resp.Content), nil
}

func formatTurnReport(r agentloop.TurnReport) string {
	return fmt.Sprintf(
		"turn=%d total_errors=%d consecutive_errors=%d elapsed_seconds=%.0f response_len=%d "+
			"current_model=%s last_tool=%s last_tool_had_error=%t",
		r.Turn, r.TotalErrors, r.ConsecutiveErrors, r.ElapsedSeconds, r.ResponseLen,
		r.CurrentModel, r.LastToolName, r.LastToolHadError,
	)
}

// parseDecision maps the model's single-letter answer (plus any following
// lines) onto a CheckpointResult. An unrecognized or empty first letter
// defaults to CONTINUE rather than stalling the loop on a malformed reply.
func parseDecision(content string) agentloop.CheckpointResult {
	lines := strings.SplitN(strings.TrimSpace(content), "\n", 2)
	letter := strings.ToUpper(strings.TrimSpace(lines[0]))
	rest := ""
	if len(lines) > 1 {
		rest = strings.TrimSpace(lines[1])
	}

	switch firstLetter(letter) {
	case "I":
		return agentloop.CheckpointResult{Decision: agentloop.DecisionIntervene, Guidance: rest}
	case "R":
		return agentloop.CheckpointResult{Decision: agentloop.DecisionReplan, NewPlan: rest}
	case "E":
		return agentloop.CheckpointResult{Decision: agentloop.DecisionEscalate}
	case "A":
		return agentloop.CheckpointResult{Decision: agentloop.DecisionAskUser, Question: rest}
	case "X":
		return agentloop.CheckpointResult{Decision: agentloop.DecisionAbort}
	default:
		return agentloop.CheckpointResult{Decision: agentloop.DecisionContinue}
	}
}

func firstLetter(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
