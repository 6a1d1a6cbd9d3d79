package agentloop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ojashyadav101/lucy-sub000/internal/errkind"
	"github.com/ojashyadav101/lucy-sub000/internal/ratelimit"
	"github.com/ojashyadav101/lucy-sub000/internal/telemetry"
	"github.com/ojashyadav101/lucy-sub000/internal/toolerrors"
	"github.com/ojashyadav101/lucy-sub000/internal/tools"
)

// fakeDispatcher records which of the three dispatch kinds was invoked.
type fakeDispatcher struct {
	called string
	err    *toolerrors.ToolError
}

func (f *fakeDispatcher) DispatchInternal(*Context, tools.Call, tools.Spec) (string, *toolerrors.ToolError) {
	f.called = "internal"
	return "internal result", f.err
}
func (f *fakeDispatcher) DispatchDelegated(*Context, tools.Call, tools.Spec) (string, *toolerrors.ToolError) {
	f.called = "delegated"
	return "delegated result", f.err
}
func (f *fakeDispatcher) DispatchExternal(*Context, tools.Call, tools.Spec) (string, *toolerrors.ToolError) {
	f.called = "external"
	return "external result", f.err
}

// fakeNotifier records approval decisions without touching chat.
type fakeNotifier struct {
	outcome ApprovalOutcome
}

func (f *fakeNotifier) PostProgress(context.Context, RequestContext, string) error { return nil }
func (f *fakeNotifier) PostApprovalRequest(context.Context, RequestContext, tools.Call) (ApprovalOutcome, error) {
	return f.outcome, nil
}
func (f *fakeNotifier) PostNotice(context.Context, RequestContext, string) error { return nil }

func newTestContext(registry tools.Registry, dispatcher Dispatcher, notifier Notifier, limiter *ratelimit.Limiter) *Context {
	return NewContext(context.Background(), RequestContext{WorkspaceID: "ws1"}, registry, limiter, nil, telemetry.NewNoopLogger(), dispatcher, notifier)
}

func TestIsDestructive(t *testing.T) {
	require.True(t, isDestructive("lucy_slack_delete_message"))
	require.True(t, isDestructive("lucy_gmail_send_email"))
	require.False(t, isDestructive("lucy_slack_read_channel"))
}

func TestDispatchOne_UnknownToolRejectedWithoutCallingDispatcher(t *testing.T) {
	reg := tools.NewStaticRegistry(nil)
	disp := &fakeDispatcher{}
	ctx := newTestContext(reg, disp, nil, nil)

	result := dispatchOne(ctx, tools.Call{ID: "1", Name: "lucy_nonexistent"})
	require.NotNil(t, result.Error)
	require.Equal(t, errkind.UnknownTool, result.Error.Kind)
	require.Empty(t, disp.called)
}

func TestDispatchOne_RoutesByDispatchKind(t *testing.T) {
	reg := tools.NewStaticRegistry([]tools.Spec{
		{Name: "lucy_workspace_note", Dispatch: tools.DispatchInternal},
	})
	disp := &fakeDispatcher{}
	ctx := newTestContext(reg, disp, nil, nil)

	result := dispatchOne(ctx, tools.Call{ID: "1", Name: "lucy_workspace_note"})
	require.Nil(t, result.Error)
	require.Equal(t, "internal", disp.called)
	require.Equal(t, "internal result", result.Content)
}

func TestDispatchOne_RejectsInvalidArguments(t *testing.T) {
	reg := tools.NewStaticRegistry([]tools.Spec{
		{Name: "lucy_slack_post_message", Dispatch: tools.DispatchExternal, ArgSchema: []byte(`{"type":"object","required":["channel"]}`)},
	})
	disp := &fakeDispatcher{}
	ctx := newTestContext(reg, disp, nil, nil)

	result := dispatchOne(ctx, tools.Call{ID: "1", Name: "lucy_slack_post_message", ArgumentsJS: []byte(`{}`)})
	require.NotNil(t, result.Error)
	require.Equal(t, errkind.ArgumentParse, result.Error.Kind)
	require.Empty(t, disp.called)
}

func TestDispatchOne_DestructiveToolRequiresApproval(t *testing.T) {
	reg := tools.NewStaticRegistry([]tools.Spec{
		{Name: "lucy_slack_delete_message", Dispatch: tools.DispatchExternal, Destructive: true},
	})
	disp := &fakeDispatcher{}
	notifier := &fakeNotifier{outcome: ApprovalRejected}
	ctx := newTestContext(reg, disp, notifier, nil)

	result := dispatchOne(ctx, tools.Call{ID: "1", Name: "lucy_slack_delete_message"})
	require.NotNil(t, result.Error)
	require.Equal(t, errkind.Cancelled, result.Error.Kind)
	require.Empty(t, disp.called)
}

func TestDispatchOne_DestructiveToolProceedsOnApproval(t *testing.T) {
	reg := tools.NewStaticRegistry([]tools.Spec{
		{Name: "lucy_slack_delete_message", Dispatch: tools.DispatchExternal, Destructive: true},
	})
	disp := &fakeDispatcher{}
	notifier := &fakeNotifier{outcome: ApprovalApproved}
	ctx := newTestContext(reg, disp, notifier, nil)

	result := dispatchOne(ctx, tools.Call{ID: "1", Name: "lucy_slack_delete_message"})
	require.Nil(t, result.Error)
	require.Equal(t, "external", disp.called)
}

func TestDispatchAll_RunsConcurrentlyAndPreservesOrder(t *testing.T) {
	reg := tools.NewStaticRegistry([]tools.Spec{
		{Name: "lucy_a", Dispatch: tools.DispatchInternal},
		{Name: "lucy_b", Dispatch: tools.DispatchDelegated, DelegateAgentID: "lucy.research"},
	})
	disp := &fakeDispatcher{}
	ctx := newTestContext(reg, disp, nil, nil)

	results := dispatchAll(ctx, []tools.Call{
		{ID: "1", Name: "lucy_a"},
		{ID: "2", Name: "lucy_b"},
	})
	require.Len(t, results, 2)
	require.Equal(t, "1", results[0].CallID)
	require.Equal(t, "2", results[1].CallID)
}

func TestDispatchAll_CancelledContextShortCircuits(t *testing.T) {
	reg := tools.NewStaticRegistry([]tools.Spec{{Name: "lucy_a", Dispatch: tools.DispatchInternal}})
	disp := &fakeDispatcher{}
	goCtx, cancel := context.WithCancel(context.Background())
	cancel()
	ctx := NewContext(goCtx, RequestContext{}, reg, nil, nil, telemetry.NewNoopLogger(), disp, nil)

	results := dispatchAll(ctx, []tools.Call{{ID: "1", Name: "lucy_a"}})
	require.NotNil(t, results[0].Error)
	require.Equal(t, errkind.Cancelled, results[0].Error.Kind)
}
