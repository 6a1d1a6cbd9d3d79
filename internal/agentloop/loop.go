package agentloop

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ojashyadav101/lucy-sub000/internal/model"
	"github.com/ojashyadav101/lucy-sub000/internal/tools"
)

// progressPool is drawn from at turn 3 and every 5 turns thereafter (spec
// §4.6 item 6). A cold/empty pool falls back to a single hardcoded line,
// matching the fast-path fallback convention of the message pipeline.
var progressPool = []string{
	"Still working on this — %s",
	"Making progress, one moment — %s",
	"Continuing to dig into this — %s",
}

func progressLine(turn int, userMessage string) string {
	hint := userMessage
	if len(hint) > 60 {
		hint = hint[:60]
	}
	if len(progressPool) == 0 {
		return fmt.Sprintf("Still working on this — %s", hint)
	}
	line := progressPool[turn%len(progressPool)]
	return fmt.Sprintf(line, hint)
}

// runState tracks the mutable bookkeeping the turn algorithm threads
// through each iteration of Run.
type runState struct {
	tier               ModelTier
	turn               int
	emptyResponses     int
	signatureCounts    map[string]int
	perToolCounts      map[tools.ID]int
	consecutiveErrTool int
	totalErrors        int
	consecutiveErrors  int
	lastCheckpointTurn int
	lastCheckpointTime time.Time
	plan               string
	totalToolCalls     int
	lastToolName       string
	lastToolHadError   bool
}

func newRunState(tier ModelTier) *runState {
	return &runState{
		tier:            tier,
		signatureCounts: make(map[string]int),
		perToolCounts:   make(map[tools.ID]int),
	}
}

// maxRetryDepth bounds Run's self-recursion to the single additional
// attempt spec §4.6 allows ("Retries up to one additional attempt on
// unrecovered failure").
const maxRetryDepth = 1

// Run executes the bounded multi-turn loop (spec §4.6's Run contract). It
// returns the assistant's final text, or a humanized partial-result summary
// if the loop broke early. retryDepth is a recursion counter: on
// unrecovered failure (a failed quality/verification gate) Run invokes
// itself once more with retryDepth+1 and failureContext set to a summary
// of what went wrong, then accepts whatever comes back.
func Run(ctx *Context, planner Planner, supervisor Supervisor, userMessage string, messages []*model.Message, startTier ModelTier, caps Caps, failureContext string, retryDepth int) Outcome {
	if failureContext != "" {
		messages = injectSystemMessage(messages, "Previous attempt failed: "+failureContext+". Try a different approach.")
	}

	state := newRunState(startTier)
	deadline := ctx.Deadline(caps)

	for {
		if time.Now().After(deadline) {
			return Outcome{Text: humanizePartial(state, "the time budget for this request ran out"), Partial: true}
		}
		select {
		case <-ctx.Go.Done():
			return Outcome{Cancelled: true, Partial: true}
		default:
		}

		state.turn++
		var (
			result PlanResult
			err    error
		)
		if state.turn == 1 {
			result, err = planner.PlanStart(ctx, messages, state.tier)
		} else {
			result, err = planner.PlanResume(ctx, messages, state.tier)
		}
		if err != nil {
			return Outcome{Text: humanizePartial(state, "the assistant failed to respond"), Partial: true}
		}

		// Step 2: empty-response handling.
		if result.FinalResponse == "" && len(result.ToolCalls) == 0 {
			state.emptyResponses++
			if state.emptyResponses == 1 {
				messages = injectUserMessage(messages, "please continue")
				continue
			}
			state.tier = state.tier.Escalate()
			messages = injectSystemMessage(messages, "The previous turn produced no content or tool calls; try again with more care.")
			continue
		}

		// Step 3: narration detection.
		if result.FinalResponse != "" && len(result.ToolCalls) == 0 && looksLikeNarration(result.FinalResponse) {
			messages = injectSystemMessage(messages, "Call the tool directly instead of describing the action you intend to take.")
			continue
		}

		// Step 4: termination.
		if result.FinalResponse != "" && len(result.ToolCalls) == 0 {
			return finalizeWithGates(ctx, planner, supervisor, userMessage, messages, state, caps, result.FinalResponse, retryDepth)
		}

		// Step 5: loop detection.
		if broke, partial := applyLoopDetection(state, result.ToolCalls); broke {
			return Outcome{Text: humanizePartial(state, partial), Partial: true, ToolCalls: state.totalToolCalls}
		}

		// Step 6: progress messages.
		if ctx.Notifier != nil && (state.turn == 3 || (state.turn > 3 && (state.turn-3)%5 == 0)) {
			_ = ctx.Notifier.PostProgress(ctx.Go, ctx.Request, progressLine(state.turn, userMessage))
		}

		// Record the assistant's tool-call message in history before
		// dispatch so the next turn (and any provider requiring tool_use
		// to be immediately followed by tool_result) sees it.
		messages = append(messages, assistantToolCallMessage(result.ToolCalls))

		// Step 7: parallel tool dispatch.
		results := dispatchAll(ctx, result.ToolCalls)
		state.totalToolCalls += len(result.ToolCalls)

		pairs := make([]toolCallWithResult, len(result.ToolCalls))
		for i, call := range result.ToolCalls {
			pairs[i] = toolCallWithResult{call: call, result: results[i]}
			if results[i].Error != nil {
				state.totalErrors++
				state.consecutiveErrors++
				state.lastToolHadError = true
			} else {
				state.consecutiveErrors = 0
				state.lastToolHadError = false
			}
			state.lastToolName = string(call.Name)

			// Step 13: mid-loop tier shifts.
			if isCodeExecutionTool(call.Name) && state.tier.Before(TierCode) {
				state.tier = TierCode
			}
			if isEditFileTool(call.Name) {
				state.perToolCounts["__edit_file_calls"]++
				if state.perToolCounts["__edit_file_calls"] >= 2 && state.tier.Before(TierFrontier) {
					state.tier = TierFrontier
				}
			}
		}

		// Step 9: tool-result folding.
		messages = appendToolResults(messages, pairs, caps)

		// Step 10: payload trimming.
		messages = trimPayload(messages, caps)

		// Step 11: stuck detection.
		if stuckOnConsecutiveErrors(pairs) {
			state.consecutiveErrTool++
			if state.consecutiveErrTool >= 3 {
				messages = injectSystemMessage(messages, "Multiple consecutive tool calls have failed; reconsider the approach.")
				state.tier = state.tier.Escalate()
				state.consecutiveErrTool = 0
			}
		} else {
			state.consecutiveErrTool = 0
		}

		// Step 12: supervisor checkpoint.
		if supervisor != nil && state.turn >= 2 && (state.turn-state.lastCheckpointTurn >= 3 || time.Since(state.lastCheckpointTime) >= 60*time.Second) {
			decision, outcome, done := runCheckpoint(ctx, supervisor, state, messages)
			if done {
				return outcome
			}
			messages = decision.messages
			state.lastCheckpointTurn = state.turn
			state.lastCheckpointTime = time.Now()
		}

		// Step 14: context window management.
		messages = trimContextWindow(messages, caps)

		// Step 15 (checked at top of loop next iteration): wall-clock cap.
		if state.turn >= caps.MaxToolTurns {
			return Outcome{Text: humanizePartial(state, "the maximum number of tool turns was reached"), Partial: true, ToolCalls: state.totalToolCalls}
		}
	}
}

type checkpointOutcome struct {
	messages []*model.Message
}

// runCheckpoint applies a supervisor decision, returning either an updated
// message list to continue the loop with, or a terminal Outcome when the
// decision is ASK_USER or ABORT.
func runCheckpoint(ctx *Context, supervisor Supervisor, state *runState, messages []*model.Message) (checkpointOutcome, Outcome, bool) {
	report := TurnReport{
		Turn:              state.turn,
		TotalErrors:       state.totalErrors,
		ConsecutiveErrors: state.consecutiveErrors,
		ElapsedSeconds:    ctx.Elapsed().Seconds(),
		CurrentModel:      state.tier,
		LastToolName:      state.lastToolName,
		LastToolHadError:  state.lastToolHadError,
	}
	cp, err := supervisor.Evaluate(ctx, report)
	if err != nil {
		return checkpointOutcome{messages: messages}, Outcome{}, false
	}
	switch cp.Decision {
	case DecisionIntervene:
		messages = injectSystemMessage(messages, cp.Guidance)
	case DecisionReplan:
		state.plan = cp.NewPlan
		state.consecutiveErrors = 0
		messages = injectSystemMessage(messages, "Updated plan:\n"+cp.NewPlan)
	case DecisionEscalate:
		state.tier = state.tier.Escalate()
	case DecisionAskUser:
		if ctx.Notifier != nil {
			_ = ctx.Notifier.PostNotice(ctx.Go, ctx.Request, cp.Question)
		}
		return checkpointOutcome{}, Outcome{Text: cp.Question, Partial: true, ToolCalls: state.totalToolCalls}, true
	case DecisionAbort:
		return checkpointOutcome{}, Outcome{Text: humanizePartial(state, "the task was stopped"), Partial: true, ToolCalls: state.totalToolCalls}, true
	}
	return checkpointOutcome{messages: messages}, Outcome{}, false
}

// applyLoopDetection implements spec §4.6 item 5: hash-signature repeats
// and per-tool-name caps.
func applyLoopDetection(state *runState, calls []tools.Call) (broke bool, reason string) {
	for _, call := range calls {
		sig := callSignature(call)
		state.signatureCounts[sig]++
		if state.signatureCounts[sig] >= 3 {
			return true, "the same tool call was repeated without making progress"
		}
		if !exemptFromPerToolCap(call.Name) {
			state.perToolCounts[call.Name]++
			if state.perToolCounts[call.Name] > 4 {
				return true, "one tool was called too many times without reaching a result"
			}
		}
	}
	return false, ""
}

func stuckOnConsecutiveErrors(pairs []toolCallWithResult) bool {
	if len(pairs) == 0 {
		return false
	}
	for _, p := range pairs {
		if !resultHasErrorMarker(p.result.Content, p.result.Error != nil) {
			return false
		}
	}
	return true
}

// finalizeWithGates applies the post-loop quality and verification gates
// (spec §4.6) before returning a terminal Outcome.
func finalizeWithGates(ctx *Context, planner Planner, supervisor Supervisor, userMessage string, messages []*model.Message, state *runState, caps Caps, finalText string, retryDepth int) Outcome {
	if retryDepth >= maxRetryDepth {
		return Outcome{Text: finalText, ToolCalls: state.totalToolCalls}
	}
	if state.tier != TierFrontier {
		if score := qualityScore(userMessage, finalText); score <= 6 {
			messages = injectSystemMessage(messages, "The previous response may be low quality; reconsider and improve it before finalizing.")
			state.tier = state.tier.Escalate()
			return Run(ctx, planner, supervisor, userMessage, messages, state.tier, caps, "low confidence response ("+strconv.Itoa(score)+"/10)", retryDepth+1)
		}
	}
	if needs, issue := needsVerification(userMessage, finalText); needs {
		return Run(ctx, planner, supervisor, userMessage, messages, state.tier.Escalate(), caps, issue, retryDepth+1)
	}
	return Outcome{Text: finalText, ToolCalls: state.totalToolCalls}
}

// humanizePartial produces the partial-result summary: the reason the loop
// stopped plus the last tool attempted (humanized) — never raw tool names,
// paths, or JSON beyond the humanized label. The text carries neither the
// total tool-call count (that is Outcome.ToolCalls) nor an error hint
// drawn from the last tool result.
func humanizePartial(state *runState, reason string) string {
	last := humanizeToolName(state.lastToolName)
	if last == "" {
		return reason + "."
	}
	return reason + ". Last step attempted: " + last + "."
}

func humanizeToolName(name string) string {
	if name == "" {
		return ""
	}
	n := strings.TrimPrefix(name, "lucy_")
	n = strings.ReplaceAll(n, "_", " ")
	return n
}
