package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTransition_CreatedToRunningToCompleted(t *testing.T) {
	now := time.Now()
	tk := New("t1", "ws1", "chat", "default", PriorityNormal, "u1", "th1", now)

	require.NoError(t, tk.Transition(StateRunning, now))
	require.NoError(t, tk.Transition(StateCompleted, now))
	require.Equal(t, StateCompleted, tk.State)
}

func TestTransition_ThroughPendingApproval(t *testing.T) {
	now := time.Now()
	tk := New("t1", "ws1", "tool_use", "default", PriorityHigh, "u1", "th1", now)

	require.NoError(t, tk.Transition(StatePendingApproval, now))
	require.NoError(t, tk.Transition(StateRunning, now))
	require.NoError(t, tk.Transition(StateCompleted, now))
}

func TestTransition_RejectsMoveFromTerminalState(t *testing.T) {
	now := time.Now()
	tk := New("t1", "ws1", "chat", "default", PriorityNormal, "u1", "th1", now)
	require.NoError(t, tk.Transition(StateRunning, now))
	require.NoError(t, tk.Transition(StateFailed, now))

	err := tk.Transition(StateRunning, now)
	require.Error(t, err)
	require.Equal(t, StateFailed, tk.State)
}

func TestTransition_RejectsSkippingRunning(t *testing.T) {
	now := time.Now()
	tk := New("t1", "ws1", "chat", "default", PriorityNormal, "u1", "th1", now)
	err := tk.Transition(StateCompleted, now)
	require.Error(t, err)
}

func TestTransition_RejectsBackwardsMove(t *testing.T) {
	now := time.Now()
	tk := New("t1", "ws1", "chat", "default", PriorityNormal, "u1", "th1", now)
	require.NoError(t, tk.Transition(StateRunning, now))
	err := tk.Transition(StateCreated, now)
	require.Error(t, err)
}

func TestState_IsTerminal(t *testing.T) {
	require.True(t, StateCompleted.IsTerminal())
	require.True(t, StateCancelled.IsTerminal())
	require.False(t, StateRunning.IsTerminal())
	require.False(t, StateCreated.IsTerminal())
}

func TestAddStep_AssignsSequentialNumbers(t *testing.T) {
	now := time.Now()
	tk := New("t1", "ws1", "chat", "default", PriorityNormal, "u1", "th1", now)
	tk.AddStep(&TaskStep{Kind: StepLLMCall, StartedAt: now})
	tk.AddStep(&TaskStep{Kind: StepToolUse, StartedAt: now})

	require.Equal(t, 0, tk.Steps[0].Sequence)
	require.Equal(t, 1, tk.Steps[1].Sequence)
}

func TestTaskStep_DurationZeroUntilFinished(t *testing.T) {
	now := time.Now()
	step := &TaskStep{StartedAt: now}
	require.Equal(t, time.Duration(0), step.Duration())

	step.Finish(now.Add(5*time.Second), "ok", "")
	require.Equal(t, 5*time.Second, step.Duration())
}
