package agentloop

import (
	"strings"
	"sync"

	"github.com/ojashyadav101/lucy-sub000/internal/errkind"
	"github.com/ojashyadav101/lucy-sub000/internal/toolerrors"
	"github.com/ojashyadav101/lucy-sub000/internal/tools"
)

// Dispatcher executes a single tool call once it has cleared argument
// validation, rate limiting, and (if destructive) HITL approval. Lucy's
// three concrete dispatch kinds (internal handler registry, sub-agent
// delegation, external gateway) each implement one method; dispatchOne
// picks the method from the tool's Spec.Dispatch kind.
type Dispatcher interface {
	DispatchInternal(ctx *Context, call tools.Call, spec tools.Spec) (string, *toolerrors.ToolError)
	DispatchDelegated(ctx *Context, call tools.Call, spec tools.Spec) (string, *toolerrors.ToolError)
	DispatchExternal(ctx *Context, call tools.Call, spec tools.Spec) (string, *toolerrors.ToolError)
}

// destructiveVerbs is the set from spec §4.6 item 8 whose presence in a
// tool name triggers the HITL approval gate.
var destructiveVerbs = []string{
	"delete", "remove", "cancel", "send", "forward", "archive", "destroy",
	"revoke", "unsubscribe",
}

func isDestructive(name tools.ID) bool {
	s := strings.ToLower(string(name))
	for _, v := range destructiveVerbs {
		if strings.Contains(s, v) {
			return true
		}
	}
	return false
}

// dispatchOne validates arguments, applies the destructive-action guard,
// acquires the appropriate rate-limit buckets, and routes the call to the
// Dispatcher by its Spec.Dispatch kind (spec §4.6: "Tool dispatch
// (three-way)").
func dispatchOne(ctx *Context, call tools.Call) tools.Result {
	spec, ok := ctx.Registry.Lookup(call.Name)
	if !ok {
		return tools.Result{
			CallID: call.ID,
			Error:  toolerrors.New(errkind.UnknownTool, "tool "+string(call.Name)+" is not in the allowed toolset"),
		}
	}

	if len(spec.ArgSchema) > 0 {
		if verr := tools.ValidateArguments(call.Name, spec.ArgSchema, call.ArgumentsJS); verr != nil {
			return tools.Result{CallID: call.ID, Error: verr}
		}
	}

	if (spec.Destructive || isDestructive(call.Name)) && ctx.Notifier != nil {
		outcome, err := ctx.Notifier.PostApprovalRequest(ctx.Go, ctx.Request, call)
		if err != nil {
			return tools.Result{CallID: call.ID, Error: toolerrors.NewWithCause(errkind.ToolTransient, "approval request failed", err)}
		}
		switch outcome {
		case ApprovalRejected:
			return tools.Result{CallID: call.ID, Error: toolerrors.New(errkind.Cancelled, "action rejected by user")}
		case ApprovalExpired:
			return tools.Result{CallID: call.ID, Error: toolerrors.New(errkind.ApprovalExpired, "approval request timed out")}
		}
	}

	if ctx.Limiter != nil && spec.Dispatch == tools.DispatchExternal {
		if !ctx.Limiter.AcquireAPI(ctx.Go, string(call.Name), 1, 0) {
			return tools.Result{CallID: call.ID, Error: toolerrors.New(errkind.ToolTransient, "external API rate limit exceeded")}
		}
		if spec.ModelFamily != "" && !ctx.Limiter.AcquireModel(ctx.Go, spec.ModelFamily, 1, 0) {
			return tools.Result{CallID: call.ID, Error: toolerrors.New(errkind.LLMTransient, "model rate limit exceeded")}
		}
	}

	var (
		content string
		terr    *toolerrors.ToolError
	)
	switch spec.Dispatch {
	case tools.DispatchDelegated:
		content, terr = ctx.Dispatcher.DispatchDelegated(ctx, call, spec)
	case tools.DispatchExternal:
		content, terr = ctx.Dispatcher.DispatchExternal(ctx, call, spec)
	default:
		content, terr = ctx.Dispatcher.DispatchInternal(ctx, call, spec)
	}
	return tools.Result{CallID: call.ID, Content: content, Error: terr}
}

// dispatchAll runs every call from a single LLM turn concurrently (spec
// §4.6 item 7: "Parallel tool execution... results are stitched back in
// call order"), stitching results back into the calls' original order
// regardless of completion order.
func dispatchAll(ctx *Context, calls []tools.Call) []tools.Result {
	results := make([]tools.Result, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call tools.Call) {
			defer wg.Done()
			select {
			case <-ctx.Go.Done():
				results[i] = tools.Result{CallID: call.ID, Error: toolerrors.New(errkind.Cancelled, "run cancelled")}
			default:
				results[i] = dispatchOne(ctx, call)
			}
		}(i, call)
	}
	wg.Wait()
	return results
}

