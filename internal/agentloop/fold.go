package agentloop

import (
	"encoding/json"
	"fmt"

	"github.com/ojashyadav101/lucy-sub000/internal/model"
	"github.com/ojashyadav101/lucy-sub000/internal/tools"
)

// assistantToolCallMessage renders the planner's requested tool calls as
// the assistant-role message a provider expects to precede their
// tool-result messages.
func assistantToolCallMessage(calls []tools.Call) *model.Message {
	parts := make([]model.Part, 0, len(calls))
	for _, c := range calls {
		var args map[string]any
		_ = json.Unmarshal(c.ArgumentsJS, &args)
		parts = append(parts, model.ToolUsePart{ID: c.ID, Name: string(c.Name), Arguments: args})
	}
	return &model.Message{Role: model.RoleAssistant, Parts: parts}
}

// toolCallWithResult pairs a dispatched call with its result so
// appendToolResults can stitch results back in the original call order.
type toolCallWithResult struct {
	call   tools.Call
	result tools.Result
}

// foldToolResult truncates a single tool result to the per-call cap and
// summarizes it in-place once it crosses the summary threshold (spec §4.6
// item 9).
func foldToolResult(content string, caps Caps) string {
	if len(content) > caps.ToolResultSummaryThreshold {
		content = summarizeResult(content, caps.ToolResultSummaryThreshold)
	}
	if len(content) > caps.ToolResultMaxChars {
		content = content[:caps.ToolResultMaxChars] + "\n...(truncated)"
	}
	return content
}

// summarizeResult collapses an over-threshold result to a short in-place
// summary rather than emitting the full payload: the opening slice plus a
// byte-count note. A model-driven summarizer would read better but adds an
// LLM round trip to every large tool result; this zero-cost heuristic is
// the one spec §4.6 actually calls for ("summarized in-place").
func summarizeResult(content string, threshold int) string {
	head := content
	if len(head) > threshold/2 {
		head = head[:threshold/2]
	}
	return fmt.Sprintf("%s\n...(%d more characters omitted)", head, len(content)-len(head))
}

// appendToolResults stitches dispatch results back into the conversation in
// call order as tool-role messages (spec §4.6 items 7/9).
func appendToolResults(messages []*model.Message, calls []toolCallWithResult, caps Caps) []*model.Message {
	for _, cr := range calls {
		content := cr.result.Content
		isError := cr.result.Error != nil
		if isError {
			content = cr.result.Error.Error()
		}
		content = foldToolResult(content, caps)
		messages = append(messages, &model.Message{
			Role: model.RoleTool,
			Parts: []model.Part{model.ToolResultPart{
				ToolUseID: cr.result.CallID,
				Content:   content,
				IsError:   isError,
			}},
		})
	}
	return messages
}

// trimPayload drops oldest non-system tool-role messages until the total
// character count is under MAX_PAYLOAD_CHARS (spec §4.6 item 10).
func trimPayload(messages []*model.Message, caps Caps) []*model.Message {
	for payloadChars(messages) > caps.MaxPayloadChars {
		idx := firstDroppableToolMessage(messages)
		if idx < 0 {
			break
		}
		messages = append(messages[:idx], messages[idx+1:]...)
	}
	return messages
}

// trimContextWindow drops oldest non-system messages once the message
// count exceeds MAX_CONTEXT_MESSAGES (spec §4.6 item 14).
func trimContextWindow(messages []*model.Message, caps Caps) []*model.Message {
	for len(messages) > caps.MaxContextMessages {
		idx := firstDroppableMessage(messages)
		if idx < 0 {
			break
		}
		messages = append(messages[:idx], messages[idx+1:]...)
	}
	return messages
}

func payloadChars(messages []*model.Message) int {
	total := 0
	for _, m := range messages {
		for _, p := range m.Parts {
			switch v := p.(type) {
			case model.TextPart:
				total += len(v.Text)
			case model.ToolResultPart:
				total += len(v.Content)
			case model.ToolUsePart:
				total += len(v.Name)
			}
		}
	}
	return total
}

func firstDroppableToolMessage(messages []*model.Message) int {
	for i, m := range messages {
		if m.Role == model.RoleTool {
			return i
		}
	}
	return -1
}

func firstDroppableMessage(messages []*model.Message) int {
	for i, m := range messages {
		if m.Role != model.RoleSystem {
			return i
		}
	}
	return -1
}
