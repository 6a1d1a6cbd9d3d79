package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ojashyadav101/lucy-sub000/internal/errkind"
	"github.com/ojashyadav101/lucy-sub000/internal/model"
	"github.com/ojashyadav101/lucy-sub000/internal/toolerrors"
)

// PlanStep is one step of a TaskPlan, grounded on spec.md §4.7's
// TaskPlan{goal, steps[{description, expectedTool?}], successCriteria}.
type PlanStep struct {
	Description  string `json:"description"`
	ExpectedTool string `json:"expected_tool,omitempty"`
}

// TaskPlan is the Supervisor's up-front decomposition of a complex task.
type TaskPlan struct {
	Goal            string     `json:"goal"`
	Steps           []PlanStep `json:"steps"`
	SuccessCriteria string     `json:"success_criteria"`
}

// SystemMessage renders the plan as the system message injected ahead of the
// agent loop, framed in a designated tag following the same
// wrap-in-angle-bracket-tag convention as <system-reminder>.
func (p TaskPlan) SystemMessage() string {
	var b strings.Builder
	b.WriteString("<task-plan>\n")
	fmt.Fprintf(&b, "Goal: %s\n", p.Goal)
	for i, step := range p.Steps {
		fmt.Fprintf(&b, "%d. %s", i+1, step.Description)
		if step.ExpectedTool != "" {
			fmt.Fprintf(&b, " (expected tool: %s)", step.ExpectedTool)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Success criteria: %s\n", p.SuccessCriteria)
	b.WriteString("</task-plan>")
	return b.String()
}

// skipPlanIntents is the closed set of intents that never need a plan (spec
// §4.7: "Intent set that always skips").
var skipPlanIntents = map[string]struct{}{
	"greeting":     {},
	"confirmation": {},
	"followup":     {},
	"status":       {},
	"fast":         {},
}

// NeedsPlan reports whether CreatePlan should run ahead of the agent loop:
// complex intents require a plan unless the message is short (spec §4.7:
// "Complex intents require plans unless the message is under 8 words").
func NeedsPlan(intent, message string) bool {
	if _, skip := skipPlanIntents[intent]; skip {
		return false
	}
	return len(strings.Fields(message)) >= 8
}

const createPlanSystemPrompt = `You are a planning assistant. Given a user's request, decompose it into a ` +
	`short ordered list of concrete steps toward the goal. Respond with a single JSON object matching ` +
	`{"goal": string, "steps": [{"description": string, "expected_tool": string}], "success_criteria": string}. ` +
	`Keep step descriptions terse and name an expected tool only when obvious. Respond with JSON only.`

// CreatePlan calls the fast model tier to produce a TaskPlan for a complex
// task, grounded on the teacher's planner.Planner.PlanStart shape narrowed
// to a single non-tool-calling completion.
func (s *Supervisor) CreatePlan(ctx context.Context, message string) (TaskPlan, error) {
	if s.Limiter != nil {
		s.Limiter.AcquireModel(ctx, s.FastModel, 1, 0)
	}
	resp, err := s.Client.Complete(ctx, &model.Request{
		Model: s.FastModel,
		Messages: []*model.Message{
			model.TextMessage(model.RoleSystem, createPlanSystemPrompt),
			model.TextMessage(model.RoleUser, message),
		},
		Temperature: 0,
		MaxTokens:   600,
	})
	if err != nil {
		return TaskPlan{}, toolerrors.NewWithCause(errkind.LLMTransient, "create plan", err)
	}

	var plan TaskPlan
	if err := json.Unmarshal([]byte(extractJSONObject(resp.Content)), &plan); err != nil {
		return TaskPlan{}, toolerrors.NewWithCause(errkind.LLMMalformed, "parse task plan", err)
	}
	return plan, nil
}

// extractJSONObject trims any prose surrounding a JSON object in a model
// response down to the object itself, tolerating models that wrap their
// answer in a code fence despite being asked not to.
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return text
	}
	return text[start : end+1]
}
