package agentloop

import (
	"encoding/json"

	"github.com/ojashyadav101/lucy-sub000/internal/model"
	"github.com/ojashyadav101/lucy-sub000/internal/tools"
)

// RunDelegate executes a sub-agent inline in the caller's goroutine under
// DelegateCaps, grounded on the teacher's agent-as-tool inline-execution
// pattern (tools.ToolSpec.IsAgentTool/AgentID): delegation is not a new
// queue slot, just a nested Run call sharing the parent's Context.
//
// The sub-agent gets its own Planner (resolved by the caller from
// spec.DelegateAgentID) and its own tool Registry, narrowed to whatever
// subset that sub-agent is allowed to call; it never sees the parent's
// full toolset.
func RunDelegate(ctx *Context, planner Planner, registry tools.Registry, dispatcher Dispatcher, instruction string) Outcome {
	sub := &Context{
		Go:         ctx.Go,
		Request:    ctx.Request,
		Registry:   registry,
		Limiter:    ctx.Limiter,
		Record:     ctx.Record,
		Logger:     ctx.Logger,
		Dispatcher: dispatcher,
		Notifier:   nil, // sub-agents never post directly to chat
	}
	sub.start = ctx.start
	messages := []*model.Message{model.TextMessage(model.RoleUser, instruction)}
	return Run(sub, planner, nil, instruction, messages, TierDefault, DelegateCaps(), "", 0)
}

// delegateCallArgument extracts the free-text instruction a delegation call
// carries, grounded on the teacher's generic Payload shape (delegation
// tools take a single "instruction" field rather than a structured schema).
func delegateCallArgument(call tools.Call) string {
	var args struct {
		Instruction string `json:"instruction"`
	}
	_ = json.Unmarshal(call.ArgumentsJS, &args)
	return args.Instruction
}
