package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	schemas []ToolSchema
	err     error
}

func (f *fakeCatalog) Search(ctx context.Context, useCase string) ([]ToolSchema, error) {
	return f.schemas, f.err
}

type fakeConnections struct {
	status ConnectionStatus
	err    error
}

func (f *fakeConnections) Status(ctx context.Context, workspaceID, service string) (ConnectionStatus, error) {
	return f.status, f.err
}
func (f *fakeConnections) Connect(ctx context.Context, workspaceID, service string) (ConnectionStatus, error) {
	return ConnectionStatus{Service: service, Connected: true, AuthURL: "https://auth.example/" + service}, f.err
}
func (f *fakeConnections) Disconnect(ctx context.Context, workspaceID, service string) error {
	return f.err
}

type fakeSandbox struct {
	result SandboxResult
	err    error
}

func (f *fakeSandbox) RunCode(ctx context.Context, code string) (SandboxResult, error) {
	return f.result, f.err
}
func (f *fakeSandbox) RunBash(ctx context.Context, cmd string) (SandboxResult, error) {
	return f.result, f.err
}

type fakeExecutor struct {
	fail map[string]bool
}

func (f *fakeExecutor) Execute(ctx context.Context, tool string, params map[string]any) (map[string]any, error) {
	if f.fail[tool] {
		return nil, errors.New("boom")
	}
	return map[string]any{"ok": true, "tool": tool}, nil
}

func TestProvider_SearchTools(t *testing.T) {
	catalog := &fakeCatalog{schemas: []ToolSchema{{Name: "lucy_slack_post_message", UseCases: []string{"notify"}}}}
	p := NewProvider("ws1", catalog, nil, nil, nil)

	resp, err := p.Handle(context.Background(), Request{Tool: MetaSearchTools, Params: map[string]any{"useCase": "notify"}})
	require.NoError(t, err)
	tools := resp.Result["tools"].([]map[string]any)
	require.Len(t, tools, 1)
	require.Equal(t, "lucy_slack_post_message", tools[0]["name"])
}

func TestProvider_SearchTools_NoCatalogReturnsSoftError(t *testing.T) {
	p := NewProvider("ws1", nil, nil, nil, nil)
	resp, err := p.Handle(context.Background(), Request{Tool: MetaSearchTools})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Error)
}

func TestProvider_ManageConnections_StatusDefaultsWhenOpEmpty(t *testing.T) {
	conns := &fakeConnections{status: ConnectionStatus{Service: "github", Connected: true}}
	p := NewProvider("ws1", nil, conns, nil, nil)

	resp, err := p.Handle(context.Background(), Request{Tool: MetaManageConnections, Params: map[string]any{"service": "github"}})
	require.NoError(t, err)
	require.Equal(t, true, resp.Result["connected"])
}

func TestProvider_ManageConnections_Connect(t *testing.T) {
	conns := &fakeConnections{}
	p := NewProvider("ws1", nil, conns, nil, nil)

	resp, err := p.Handle(context.Background(), Request{Tool: MetaManageConnections, Params: map[string]any{"op": "connect", "service": "jira"}})
	require.NoError(t, err)
	require.Contains(t, resp.Result["authUrl"], "jira")
}

func TestProvider_ManageConnections_UnknownOp(t *testing.T) {
	p := NewProvider("ws1", nil, &fakeConnections{}, nil, nil)
	resp, err := p.Handle(context.Background(), Request{Tool: MetaManageConnections, Params: map[string]any{"op": "teleport"}})
	require.NoError(t, err)
	require.Contains(t, resp.Error, "unknown connection op")
}

func TestProvider_MultiExecute_RunsAllCallsAndPreservesOrder(t *testing.T) {
	exec := &fakeExecutor{fail: map[string]bool{"b": true}}
	p := NewProvider("ws1", nil, nil, nil, exec)

	resp, err := p.Handle(context.Background(), Request{Tool: MetaMultiExecute, Params: map[string]any{
		"calls": []any{
			map[string]any{"tool": "a", "params": map[string]any{}},
			map[string]any{"tool": "b", "params": map[string]any{}},
			map[string]any{"tool": "c", "params": map[string]any{}},
		},
	}})
	require.NoError(t, err)

	results := resp.Result["results"].([]any)
	require.Len(t, results, 3)
	require.Equal(t, "a", results[0].(map[string]any)["tool"])
	require.NotEmpty(t, results[1].(map[string]any)["error"])
	require.Equal(t, "c", results[2].(map[string]any)["tool"])
}

func TestProvider_RemoteWorkbench_ReturnsSandboxContract(t *testing.T) {
	sandbox := &fakeSandbox{result: SandboxResult{Stdout: "hi", ExitCode: 0, ElapsedMs: 12}}
	p := NewProvider("ws1", nil, nil, sandbox, nil)

	resp, err := p.Handle(context.Background(), Request{Tool: MetaRemoteWorkbench, Params: map[string]any{"code": "print('hi')"}})
	require.NoError(t, err)
	require.Equal(t, "hi", resp.Result["stdout"])
	require.Equal(t, 0, resp.Result["exitCode"])
}

func TestProvider_RemoteBash_ReturnsSandboxContract(t *testing.T) {
	sandbox := &fakeSandbox{result: SandboxResult{Stderr: "not found", ExitCode: 127}}
	p := NewProvider("ws1", nil, nil, sandbox, nil)

	resp, err := p.Handle(context.Background(), Request{Tool: MetaRemoteBash, Params: map[string]any{"cmd": "nope"}})
	require.NoError(t, err)
	require.Equal(t, 127, resp.Result["exitCode"])
	require.Equal(t, "not found", resp.Result["stderr"])
}

func TestProvider_UnknownTool(t *testing.T) {
	p := NewProvider("ws1", nil, nil, nil, nil)
	_, err := p.Handle(context.Background(), Request{Tool: "not_a_real_tool"})
	require.ErrorIs(t, err, ErrUnknownTool)
}
