// Command lucy runs the coworker agent execution engine: the message
// pipeline, agent loop, supervisor, scheduling fabric, and gateway wired
// together as one process.
//
// Wiring order mirrors the teacher's cmd/demo/main.go: construct the
// runtime collaborators bottom-up (telemetry, stores, clients), register
// the agent-facing surface on top of them, then start serving.
//
// # Configuration
//
// Environment variables are documented in package config.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"google.golang.org/grpc"

	"github.com/ojashyadav101/lucy-sub000/internal/agentloop"
	"github.com/ojashyadav101/lucy-sub000/internal/config"
	"github.com/ojashyadav101/lucy-sub000/internal/errkind"
	"github.com/ojashyadav101/lucy-sub000/internal/gateway"
	"github.com/ojashyadav101/lucy-sub000/internal/model"
	"github.com/ojashyadav101/lucy-sub000/internal/queue"
	"github.com/ojashyadav101/lucy-sub000/internal/ratelimit"
	"github.com/ojashyadav101/lucy-sub000/internal/scheduler/cron"
	"github.com/ojashyadav101/lucy-sub000/internal/scheduler/heartbeat"
	"github.com/ojashyadav101/lucy-sub000/internal/supervisor"
	"github.com/ojashyadav101/lucy-sub000/internal/telemetry"
	"github.com/ojashyadav101/lucy-sub000/internal/tools"
	"github.com/ojashyadav101/lucy-sub000/internal/toolerrors"
	"github.com/ojashyadav101/lucy-sub000/internal/workspace"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1) Configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 2) Telemetry. clue-backed in production; swap for the noop triplet
	// in tests via the same constructors.
	logger := telemetry.NewClueLogger()
	metrics := telemetry.NewClueMetrics()

	// 3) Workspace store. Filesystem-backed unless a Mongo URI is set.
	store, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}

	// 4) Rate limiter, shared across the agent loop, supervisor, and
	// scheduling fabric.
	limiter := ratelimit.New(logger, metrics)

	// 5) LLM client. Anthropic is preferred; OpenAI is the fallback when
	// only an OpenAI key is configured.
	llmClient, err := newModelClient(cfg)
	if err != nil {
		return err
	}

	// 6) Request queue — the front door every inbound chat event and
	// scheduled job enters through.
	q := queue.New(ctx, queue.Config{Workers: cfg.QueueWorkers, PerWorkspaceMaxDepth: cfg.QueuePerWorkspaceMaxDepth, GlobalMaxDepth: cfg.QueueGlobalMaxDepth}, logger)
	defer q.Shutdown(0)

	// 7) Gateway — the remote integration broker's gRPC entry point.
	provider := gatewayProvider(cfg)
	gatewaySrv, err := gateway.NewServer(gateway.WithProvider(provider.Handle))
	if err != nil {
		return err
	}
	grpcSrv := grpc.NewServer()
	gateway.RegisterServer(grpcSrv, gatewaySrv)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}
	go func() {
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Warn(ctx, "gateway: grpc server stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		grpcSrv.GracefulStop()
	}()

	// 8) Supervisor — checkpoint evaluation shared by every agent loop run.
	super := supervisor.New(llmClient, cfg.ModelFast, limiter, logger)

	// 9) Scheduling fabric.
	cronDeps := cron.Deps{
		Store:    store,
		Agents:   agentRunner{client: llmClient, limiter: limiter, super: super, logger: logger},
		Scripts:  scriptRunner{sandbox: provider},
		Delivery: chatDelivery{logger: logger},
		Process:  func(s string) string { return s },
		Logger:   logger,
	}
	cronScheduler := cron.New(cronDeps, nil)
	go cronScheduler.Run(ctx)

	heartbeatLoop := heartbeat.NewLoop(store, heartbeatEvaluators(), chatAlerter{logger: logger}, logger)
	go heartbeatLoop.Run(ctx)

	logger.Info(ctx, "lucy: started", "grpcAddr", cfg.GRPCAddr, "workspaceRoot", cfg.WorkspaceRoot)

	<-ctx.Done()
	logger.Info(ctx, "lucy: shutting down")
	return nil
}

func newStore(ctx context.Context, cfg config.Config) (workspace.Store, error) {
	if cfg.MongoURI != "" {
		client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("config: connect to mongo: %w", err)
		}
		return workspace.NewMongoStore(ctx, client, "lucy")
	}
	return workspace.NewFSStore(cfg.WorkspaceRoot)
}

func newModelClient(cfg config.Config) (model.Client, error) {
	if cfg.AnthropicKey != "" {
		return model.NewAnthropicClientFromAPIKey(cfg.AnthropicKey, 4096, 0.3)
	}
	return model.NewOpenAIClientFromAPIKey(cfg.OpenAIKey, 0.3)
}

// gatewayProvider constructs the in-process meta-tool provider. Catalog,
// connection manager, sandbox, and executor collaborators are each a
// deployment-specific integration (the search index, OAuth broker,
// sandbox runtime, and tool registry); wiring real implementations in is
// the same kind of boundary the teacher's demo draws with its
// stubPlanner — illustrative wiring standing in for a production
// integration layer this command does not itself own.
func gatewayProvider(cfg config.Config) *gateway.Provider {
	return gateway.NewProvider(cfg.WorkspaceRoot, nil, nil, nil, nil)
}

func heartbeatEvaluators() map[string]heartbeat.Evaluator {
	return map[string]heartbeat.Evaluator{
		"api-health":       heartbeat.APIHealthEvaluator{},
		"page-content":     heartbeat.PageContentEvaluator{},
		"metric-threshold": heartbeat.MetricThresholdEvaluator{},
	}
}

// agentRunner adapts agentloop.Run into cron.AgentRunner for scheduled
// agent-type cron jobs.
type agentRunner struct {
	client  model.Client
	limiter *ratelimit.Limiter
	super   *supervisor.Supervisor
	logger  telemetry.Logger
}

func (r agentRunner) RunScheduled(ctx context.Context, workspaceID, instruction string) (string, error) {
	rc := agentloop.RequestContext{WorkspaceID: workspaceID, IsScheduled: true}
	aCtx := agentloop.NewContext(ctx, rc, tools.NewStaticRegistry(nil), r.limiter, nil, r.logger, noopDispatcher{}, silentNotifier{})
	messages := []*model.Message{model.TextMessage(model.RoleUser, instruction)}
	outcome := agentloop.Run(aCtx, modelPlanner{client: r.client, model: "default"}, r.super, instruction, messages, agentloop.TierDefault, agentloop.DefaultCaps(), "", 0)
	return outcome.Text, nil
}

// modelPlanner adapts a bare model.Client into agentloop.Planner for the
// common case where a turn's tool calls, if any, come straight back from
// the LLM response with no intermediate planning step. A production
// planner would additionally inject the system prompt package prompt
// assembles and the per-tool schemas package tools exposes; this command
// wires the minimal path, the same illustrative-stub boundary the
// teacher's cmd/demo draws with its stubPlanner.
type modelPlanner struct {
	client model.Client
	model  string
}

func (p modelPlanner) PlanStart(ctx *agentloop.Context, messages []*model.Message, tier agentloop.ModelTier) (agentloop.PlanResult, error) {
	return p.plan(ctx, messages)
}

func (p modelPlanner) PlanResume(ctx *agentloop.Context, messages []*model.Message, tier agentloop.ModelTier) (agentloop.PlanResult, error) {
	return p.plan(ctx, messages)
}

func (p modelPlanner) plan(ctx *agentloop.Context, messages []*model.Message) (agentloop.PlanResult, error) {
	resp, err := p.client.Complete(ctx.Go, &model.Request{Model: p.model, Messages: messages, MaxTokens: 4096})
	if err != nil {
		return agentloop.PlanResult{}, err
	}
	if len(resp.ToolCalls) == 0 {
		return agentloop.PlanResult{FinalResponse: resp.Content}, nil
	}
	calls := make([]tools.Call, 0, len(resp.ToolCalls))
	for _, tc := range resp.ToolCalls {
		argsJS, _ := json.Marshal(tc.Arguments)
		calls = append(calls, tools.Call{ID: tc.ID, Name: tools.ID(tc.Name), ArgumentsJS: argsJS})
	}
	return agentloop.PlanResult{ToolCalls: calls}, nil
}

// noopDispatcher rejects every tool call as unavailable. Real internal,
// delegated, and external dispatch wiring (the workspace/cron/heartbeat
// tool handlers, sub-agent registry, and gateway.RemoteClient) is
// deployment-specific and assembled by whatever embeds this command.
type noopDispatcher struct{}

func (noopDispatcher) DispatchInternal(ctx *agentloop.Context, call tools.Call, spec tools.Spec) (string, *toolerrors.ToolError) {
	return "", toolerrors.New(errkind.ToolFatal, "no internal tool handlers wired")
}

func (noopDispatcher) DispatchDelegated(ctx *agentloop.Context, call tools.Call, spec tools.Spec) (string, *toolerrors.ToolError) {
	return "", toolerrors.New(errkind.ToolFatal, "no delegated agent registry wired")
}

func (noopDispatcher) DispatchExternal(ctx *agentloop.Context, call tools.Call, spec tools.Spec) (string, *toolerrors.ToolError) {
	return "", toolerrors.New(errkind.ToolFatal, "no external gateway client wired")
}

// silentNotifier drops progress/approval/notice posts. The real
// implementation is the chat transport collaborator, out of scope per
// spec §1.
type silentNotifier struct{}

func (silentNotifier) PostProgress(ctx context.Context, rc agentloop.RequestContext, text string) error {
	return nil
}

func (silentNotifier) PostApprovalRequest(ctx context.Context, rc agentloop.RequestContext, call tools.Call) (agentloop.ApprovalOutcome, error) {
	return agentloop.ApprovalRejected, nil
}

func (silentNotifier) PostNotice(ctx context.Context, rc agentloop.RequestContext, text string) error {
	return nil
}

// scriptRunner adapts the gateway sandbox into cron.ScriptRunner for
// script-type cron jobs (a CronDoc's Description holds the script body
// when Type == "script").
type scriptRunner struct {
	sandbox *gateway.Provider
}

func (s scriptRunner) RunScript(ctx context.Context, workspaceID, script string) (string, error) {
	resp, err := s.sandbox.Handle(ctx, gateway.Request{Tool: gateway.MetaRemoteBash, Params: map[string]any{"cmd": script}})
	if err != nil {
		return "", err
	}
	if stdout, ok := resp.Result["stdout"].(string); ok {
		return stdout, nil
	}
	return "", nil
}

// chatDelivery and chatAlerter are stand-ins for the out-of-scope chat
// transport (spec §1); they log instead of posting to a real channel,
// matching the boundary agentloop.Notifier's doc comment already draws.
type chatDelivery struct{ logger telemetry.Logger }

func (c chatDelivery) DeliverToChannel(ctx context.Context, workspaceID, channelID, text string) error {
	c.logger.Info(ctx, "cron: delivery", "workspace", workspaceID, "channel", channelID, "text", text)
	return nil
}

func (c chatDelivery) DeliverToUser(ctx context.Context, workspaceID, userID, text string) error {
	c.logger.Info(ctx, "cron: delivery", "workspace", workspaceID, "user", userID, "text", text)
	return nil
}

type chatAlerter struct{ logger telemetry.Logger }

func (c chatAlerter) Alert(ctx context.Context, workspaceID, channel, detail string) error {
	c.logger.Warn(ctx, "heartbeat: alert", "workspace", workspaceID, "channel", channel, "detail", detail)
	return nil
}
