package task

import "time"

// StepKind is the closed set of TaskStep types.
type StepKind string

const (
	StepLLMCall      StepKind = "llm_call"
	StepToolUse      StepKind = "tool_use"
	StepApprovalWait StepKind = "approval_wait"
	StepSubAgent     StepKind = "sub_agent"
)

// TaskStep is one ordered unit of work recorded against a Task.
type TaskStep struct {
	Sequence  int
	Kind      StepKind
	StartedAt time.Time
	EndedAt   time.Time
	Result    string
	Error     string
}

// Finish records the step's end time and outcome. Exactly one of result or
// errMsg should be non-empty; both being set is not rejected since a step
// may produce a partial result alongside an error.
func (s *TaskStep) Finish(now time.Time, result, errMsg string) {
	s.EndedAt = now
	s.Result = result
	s.Error = errMsg
}

// Duration returns how long the step ran. It returns zero if the step has
// not finished yet.
func (s *TaskStep) Duration() time.Duration {
	if s.EndedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}
