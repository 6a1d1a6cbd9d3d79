package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ToolSchema describes one external tool as surfaced by search_tools.
type ToolSchema struct {
	Name        string
	Description string
	UseCases    []string
}

// ToolCatalog answers search_tools by use case. A real implementation
// backs this with the connected-service registry; tests use a static
// slice.
type ToolCatalog interface {
	Search(ctx context.Context, useCase string) ([]ToolSchema, error)
}

// ConnectionOp is the verb manage_connections accepts.
type ConnectionOp string

const (
	ConnectionOpStatus     ConnectionOp = "status"
	ConnectionOpConnect    ConnectionOp = "connect"
	ConnectionOpDisconnect ConnectionOp = "disconnect"
)

// ConnectionStatus is one service's OAuth/connection state.
type ConnectionStatus struct {
	Service   string
	Connected bool
	AuthURL   string
}

// ConnectionManager implements manage_connections against whatever
// credential store backs connected services for a workspace.
type ConnectionManager interface {
	Status(ctx context.Context, workspaceID, service string) (ConnectionStatus, error)
	Connect(ctx context.Context, workspaceID, service string) (ConnectionStatus, error)
	Disconnect(ctx context.Context, workspaceID, service string) error
}

// SandboxResult is the sandbox contract spec §6 names: "accepts source
// text and environment; returns {stdout, stderr, exitCode, elapsedMs}".
type SandboxResult struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	ElapsedMs int64
}

// Sandbox runs untrusted source text or shell commands in an isolated
// environment for remote_workbench and remote_bash.
type Sandbox interface {
	RunCode(ctx context.Context, code string) (SandboxResult, error)
	RunBash(ctx context.Context, cmd string) (SandboxResult, error)
}

// Executor performs a single tool call outside the meta-tool surface,
// used by multi_execute to fan a batch of calls out in parallel. This is
// the same shape as tools.Dispatch's external/delegated paths, kept as a
// narrow interface so this package does not import the whole agent loop.
type Executor interface {
	Execute(ctx context.Context, tool string, params map[string]any) (map[string]any, error)
}

// Provider implements the five meta-tools as a single gateway.Handler,
// dispatching on Request.Tool. Wire it as the Server's WithProvider to
// get a middleware-composable entry point, or call it directly in tests.
type Provider struct {
	WorkspaceID string
	Catalog     ToolCatalog
	Connections ConnectionManager
	Sandbox     Sandbox
	Executor    Executor
	now         func() time.Time
}

// NewProvider builds a Provider. Any of Catalog, Connections, Sandbox, or
// Executor may be nil; calls routed to a nil collaborator fail with
// ErrUnknownTool-free, tool-specific errors rather than panicking.
func NewProvider(workspaceID string, catalog ToolCatalog, conns ConnectionManager, sandbox Sandbox, exec Executor) *Provider {
	return &Provider{WorkspaceID: workspaceID, Catalog: catalog, Connections: conns, Sandbox: sandbox, Executor: exec, now: time.Now}
}

// Handle implements Handler, dispatching req to the matching meta-tool.
func (p *Provider) Handle(ctx context.Context, req Request) (Response, error) {
	switch req.Tool {
	case MetaSearchTools:
		return p.searchTools(ctx, req.Params)
	case MetaManageConnections:
		return p.manageConnections(ctx, req.Params)
	case MetaMultiExecute:
		return p.multiExecute(ctx, req.Params)
	case MetaRemoteWorkbench:
		return p.remoteWorkbench(ctx, req.Params)
	case MetaRemoteBash:
		return p.remoteBash(ctx, req.Params)
	default:
		return Response{}, ErrUnknownTool
	}
}

func (p *Provider) searchTools(ctx context.Context, params map[string]any) (Response, error) {
	if p.Catalog == nil {
		return Response{Error: "tool catalog unavailable"}, nil
	}
	useCase, _ := params["useCase"].(string)
	schemas, err := p.Catalog.Search(ctx, useCase)
	if err != nil {
		return Response{}, fmt.Errorf("gateway: search_tools: %w", err)
	}
	matches := make([]map[string]any, 0, len(schemas))
	for _, s := range schemas {
		matches = append(matches, map[string]any{"name": s.Name, "description": s.Description, "useCases": s.UseCases})
	}
	return Response{Result: map[string]any{"tools": matches}}, nil
}

func (p *Provider) manageConnections(ctx context.Context, params map[string]any) (Response, error) {
	if p.Connections == nil {
		return Response{Error: "connection manager unavailable"}, nil
	}
	op, _ := params["op"].(string)
	service, _ := params["service"].(string)

	var (
		status ConnectionStatus
		err    error
	)
	switch ConnectionOp(op) {
	case ConnectionOpConnect:
		status, err = p.Connections.Connect(ctx, p.WorkspaceID, service)
	case ConnectionOpDisconnect:
		err = p.Connections.Disconnect(ctx, p.WorkspaceID, service)
		status = ConnectionStatus{Service: service, Connected: false}
	case ConnectionOpStatus, "":
		status, err = p.Connections.Status(ctx, p.WorkspaceID, service)
	default:
		return Response{Error: fmt.Sprintf("unknown connection op %q", op)}, nil
	}
	if err != nil {
		return Response{}, fmt.Errorf("gateway: manage_connections: %w", err)
	}
	return Response{Result: map[string]any{
		"service":   status.Service,
		"connected": status.Connected,
		"authUrl":   status.AuthURL,
	}}, nil
}

type executeCall struct {
	Tool   string
	Params map[string]any
}

// multiExecute runs a batch of tool calls in parallel and returns one
// result per call, preserving input order (spec §6: "parallel results").
// A single call's failure does not abort the others.
func (p *Provider) multiExecute(ctx context.Context, params map[string]any) (Response, error) {
	if p.Executor == nil {
		return Response{Error: "executor unavailable"}, nil
	}
	raw, _ := params["calls"].([]any)
	calls := make([]executeCall, 0, len(raw))
	for _, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		tool, _ := m["tool"].(string)
		toolParams, _ := m["params"].(map[string]any)
		calls = append(calls, executeCall{Tool: tool, Params: toolParams})
	}

	results := make([]map[string]any, len(calls))
	var wg sync.WaitGroup
	for i, c := range calls {
		wg.Add(1)
		go func(i int, c executeCall) {
			defer wg.Done()
			out, err := p.Executor.Execute(ctx, c.Tool, c.Params)
			if err != nil {
				results[i] = map[string]any{"tool": c.Tool, "error": err.Error()}
				return
			}
			results[i] = map[string]any{"tool": c.Tool, "result": out}
		}(i, c)
	}
	wg.Wait()

	out := make([]any, len(results))
	for i, r := range results {
		out[i] = r
	}
	return Response{Result: map[string]any{"results": out}}, nil
}

func (p *Provider) remoteWorkbench(ctx context.Context, params map[string]any) (Response, error) {
	if p.Sandbox == nil {
		return Response{Error: "sandbox unavailable"}, nil
	}
	code, _ := params["code"].(string)
	start := p.now()
	result, err := p.Sandbox.RunCode(ctx, code)
	if err != nil {
		return Response{}, fmt.Errorf("gateway: remote_workbench: %w", err)
	}
	if result.ElapsedMs == 0 {
		result.ElapsedMs = p.now().Sub(start).Milliseconds()
	}
	return sandboxResponse(result), nil
}

func (p *Provider) remoteBash(ctx context.Context, params map[string]any) (Response, error) {
	if p.Sandbox == nil {
		return Response{Error: "sandbox unavailable"}, nil
	}
	cmd, _ := params["cmd"].(string)
	start := p.now()
	result, err := p.Sandbox.RunBash(ctx, cmd)
	if err != nil {
		return Response{}, fmt.Errorf("gateway: remote_bash: %w", err)
	}
	if result.ElapsedMs == 0 {
		result.ElapsedMs = p.now().Sub(start).Milliseconds()
	}
	return sandboxResponse(result), nil
}

func sandboxResponse(r SandboxResult) Response {
	return Response{Result: map[string]any{
		"stdout":    r.Stdout,
		"stderr":    r.Stderr,
		"exitCode":  r.ExitCode,
		"elapsedMs": r.ElapsedMs,
	}}
}
