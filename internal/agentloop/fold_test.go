package agentloop

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ojashyadav101/lucy-sub000/internal/model"
	"github.com/ojashyadav101/lucy-sub000/internal/toolerrors"
	"github.com/ojashyadav101/lucy-sub000/internal/tools"
)

func TestFoldToolResult_PassesThroughShortContent(t *testing.T) {
	caps := DefaultCaps()
	require.Equal(t, "short result", foldToolResult("short result", caps))
}

func TestFoldToolResult_SummarizesAboveThreshold(t *testing.T) {
	caps := DefaultCaps()
	big := strings.Repeat("x", caps.ToolResultSummaryThreshold+1000)
	out := foldToolResult(big, caps)
	require.Less(t, len(out), len(big))
	require.Contains(t, out, "more characters omitted")
}

func TestFoldToolResult_TruncatesAboveMaxChars(t *testing.T) {
	caps := Caps{ToolResultSummaryThreshold: 1_000_000, ToolResultMaxChars: 100}
	big := strings.Repeat("y", 500)
	out := foldToolResult(big, caps)
	require.Contains(t, out, "(truncated)")
	require.LessOrEqual(t, len(out), 100+len("\n...(truncated)"))
}

func TestAssistantToolCallMessage_RendersOneUsePartPerCall(t *testing.T) {
	calls := []tools.Call{
		{ID: "1", Name: "lucy_slack_post_message", ArgumentsJS: []byte(`{"channel":"C1"}`)},
		{ID: "2", Name: "lucy_search_web", ArgumentsJS: []byte(`{"query":"q"}`)},
	}
	msg := assistantToolCallMessage(calls)
	require.Equal(t, model.RoleAssistant, msg.Role)
	require.Len(t, msg.Parts, 2)
	use, ok := msg.Parts[0].(model.ToolUsePart)
	require.True(t, ok)
	require.Equal(t, "lucy_slack_post_message", use.Name)
	require.Equal(t, "C1", use.Arguments["channel"])
}

func TestAppendToolResults_MarksErrorContentFromToolError(t *testing.T) {
	caps := DefaultCaps()
	pairs := []toolCallWithResult{
		{call: tools.Call{ID: "1"}, result: tools.Result{CallID: "1", Error: toolerrors.New("tool-fatal", "not found")}},
		{call: tools.Call{ID: "2"}, result: tools.Result{CallID: "2", Content: "ok"}},
	}
	messages := appendToolResults(nil, pairs, caps)
	require.Len(t, messages, 2)

	first := messages[0].Parts[0].(model.ToolResultPart)
	require.True(t, first.IsError)
	require.Contains(t, first.Content, "not found")

	second := messages[1].Parts[0].(model.ToolResultPart)
	require.False(t, second.IsError)
	require.Equal(t, "ok", second.Content)
}

func TestTrimPayload_DropsOldestToolMessagesUntilUnderCap(t *testing.T) {
	caps := Caps{MaxPayloadChars: 10}
	messages := []*model.Message{
		model.TextMessage(model.RoleSystem, "system prompt stays"),
		{Role: model.RoleTool, Parts: []model.Part{model.ToolResultPart{Content: "aaaaaaaaaa"}}},
		{Role: model.RoleTool, Parts: []model.Part{model.ToolResultPart{Content: "bbbbbbbbbb"}}},
	}
	out := trimPayload(messages, caps)
	require.LessOrEqual(t, payloadChars(out), caps.MaxPayloadChars+10)
	require.Less(t, len(out), len(messages))
}

func TestTrimContextWindow_KeepsSystemMessages(t *testing.T) {
	caps := Caps{MaxContextMessages: 2}
	messages := []*model.Message{
		model.TextMessage(model.RoleSystem, "system"),
		model.TextMessage(model.RoleUser, "one"),
		model.TextMessage(model.RoleAssistant, "two"),
		model.TextMessage(model.RoleUser, "three"),
	}
	out := trimContextWindow(messages, caps)
	require.LessOrEqual(t, len(out), caps.MaxContextMessages)
	require.Equal(t, model.RoleSystem, out[0].Role)
}
