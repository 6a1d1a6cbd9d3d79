package heartbeat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ojashyadav101/lucy-sub000/internal/workspace"
)

type fakeHBStore struct {
	workspace.Store
	workspaces []string
	heartbeats map[string][]workspace.HeartbeatDoc
	put        []workspace.HeartbeatDoc
}

func (s *fakeHBStore) ListWorkspaces(ctx context.Context) ([]string, error) {
	return s.workspaces, nil
}

func (s *fakeHBStore) ListHeartbeats(ctx context.Context, workspaceID string) ([]workspace.HeartbeatDoc, error) {
	return s.heartbeats[workspaceID], nil
}

func (s *fakeHBStore) PutHeartbeat(ctx context.Context, workspaceID string, doc workspace.HeartbeatDoc) error {
	s.put = append(s.put, doc)
	return nil
}

type fakeEvaluator struct {
	result Evaluation
	err    error
}

func (e fakeEvaluator) Evaluate(ctx context.Context, config map[string]any) (Evaluation, error) {
	return e.result, e.err
}

type fakeAlerter struct {
	alerts int
}

func (a *fakeAlerter) Alert(ctx context.Context, workspaceID, channel, detail string) error {
	a.alerts++
	return nil
}

func TestIsDue_TrueWhenIntervalElapsedAndActive(t *testing.T) {
	now := time.Now()
	doc := workspace.HeartbeatDoc{Status: "active", IntervalSeconds: 60, LastChecked: now.Add(-2 * time.Minute)}
	require.True(t, isDue(doc, now))
}

func TestIsDue_FalseWhenNotYetDue(t *testing.T) {
	now := time.Now()
	doc := workspace.HeartbeatDoc{Status: "active", IntervalSeconds: 600, LastChecked: now}
	require.False(t, isDue(doc, now))
}

func TestIsDue_FalseWhenStatusNotActive(t *testing.T) {
	now := time.Now()
	doc := workspace.HeartbeatDoc{Status: "error", IntervalSeconds: 1, LastChecked: now.Add(-time.Hour)}
	require.False(t, isDue(doc, now))
}

func TestLoop_AlertsWhenTriggeredAndCooldownElapsed(t *testing.T) {
	store := &fakeHBStore{
		workspaces: []string{"ws1"},
		heartbeats: map[string][]workspace.HeartbeatDoc{
			"ws1": {{Slug: "disk", Kind: "custom", Status: "active", IntervalSeconds: 1, CooldownSeconds: 60}},
		},
	}
	alerter := &fakeAlerter{}
	loop := NewLoop(store, map[string]Evaluator{"custom": fakeEvaluator{result: Evaluation{Triggered: true, Detail: "disk full"}}}, alerter, nil)
	loop.clock = func() time.Time { return time.Now() }

	loop.tick(context.Background())
	require.Equal(t, 1, alerter.alerts)
	require.Len(t, store.put, 1)
	require.True(t, store.put[0].LastAlerted.After(time.Time{}))
}

func TestLoop_RespectsAlertCooldown(t *testing.T) {
	now := time.Now()
	store := &fakeHBStore{
		workspaces: []string{"ws1"},
		heartbeats: map[string][]workspace.HeartbeatDoc{
			"ws1": {{Slug: "disk", Kind: "custom", Status: "active", IntervalSeconds: 1, CooldownSeconds: 3600, LastAlerted: now}},
		},
	}
	alerter := &fakeAlerter{}
	loop := NewLoop(store, map[string]Evaluator{"custom": fakeEvaluator{result: Evaluation{Triggered: true}}}, alerter, nil)
	loop.clock = func() time.Time { return now }

	loop.tick(context.Background())
	require.Equal(t, 0, alerter.alerts)
}

func TestLoop_ThreeConsecutiveErrorsSetsStatusError(t *testing.T) {
	store := &fakeHBStore{
		workspaces: []string{"ws1"},
		heartbeats: map[string][]workspace.HeartbeatDoc{
			"ws1": {{Slug: "flaky", Kind: "custom", Status: "active", IntervalSeconds: 1, ConsecutiveFailures: 2}},
		},
	}
	loop := NewLoop(store, map[string]Evaluator{"custom": fakeEvaluator{err: context.DeadlineExceeded}}, &fakeAlerter{}, nil)
	loop.clock = func() time.Time { return time.Now() }

	loop.tick(context.Background())
	require.Len(t, store.put, 1)
	require.Equal(t, "error", store.put[0].Status)
	require.Equal(t, 3, store.put[0].ConsecutiveFailures)
}

func TestLoop_SuccessResetsConsecutiveFailures(t *testing.T) {
	store := &fakeHBStore{
		workspaces: []string{"ws1"},
		heartbeats: map[string][]workspace.HeartbeatDoc{
			"ws1": {{Slug: "recovered", Kind: "custom", Status: "active", IntervalSeconds: 1, ConsecutiveFailures: 2}},
		},
	}
	loop := NewLoop(store, map[string]Evaluator{"custom": fakeEvaluator{result: Evaluation{Triggered: false}}}, &fakeAlerter{}, nil)
	loop.clock = func() time.Time { return time.Now() }

	loop.tick(context.Background())
	require.Equal(t, 0, store.put[0].ConsecutiveFailures)
}

func TestLoop_SkipsNonDueHeartbeats(t *testing.T) {
	store := &fakeHBStore{
		workspaces: []string{"ws1"},
		heartbeats: map[string][]workspace.HeartbeatDoc{
			"ws1": {{Slug: "quiet", Kind: "custom", Status: "active", IntervalSeconds: 600, LastChecked: time.Now()}},
		},
	}
	loop := NewLoop(store, map[string]Evaluator{"custom": fakeEvaluator{}}, &fakeAlerter{}, nil)
	loop.tick(context.Background())
	require.Empty(t, store.put)
}
