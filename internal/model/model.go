// Package model defines the provider-agnostic message and request/response
// types the agent loop and tool dispatcher speak, plus the Client interface
// each provider adapter (Anthropic, OpenAI) implements underneath it.
package model

import "context"

// ConversationRole is the role of a message within a conversation.
type ConversationRole string

const (
	RoleSystem    ConversationRole = "system"
	RoleUser      ConversationRole = "user"
	RoleAssistant ConversationRole = "assistant"
	RoleTool      ConversationRole = "tool"
)

type (
	// Part is implemented by every message content block. Lucy only needs
	// text and tool call/result parts — the teacher's multimodal parts
	// (images, documents, citations) have no Lucy tool surface that
	// produces or consumes them, so they are not carried forward here.
	Part interface{ isPart() }

	// TextPart is a plain text content block.
	TextPart struct{ Text string }

	// ToolUsePart is an assistant-issued tool call.
	ToolUsePart struct {
		ID        string
		Name      string
		Arguments map[string]any
	}

	// ToolResultPart is a tool-role message's result for a prior ToolUsePart,
	// matched by ToolUseID.
	ToolResultPart struct {
		ToolUseID string
		Content   string
		IsError   bool
	}
)

func (TextPart) isPart()       {}
func (ToolUsePart) isPart()    {}
func (ToolResultPart) isPart() {}

// Message is one turn in the conversation.
type Message struct {
	Role  ConversationRole
	Parts []Part
}

// TextMessage is a convenience constructor for a single-text-part message.
func TextMessage(role ConversationRole, text string) *Message {
	return &Message{Role: role, Parts: []Part{TextPart{Text: text}}}
}

// ToolSpec describes a callable tool in provider-agnostic form. Providers
// translate this into their own function/tool-calling schema.
type ToolSpec struct {
	Name        string
	Description string
	// Schema is a JSON Schema object (as produced by tools.Spec.Schema)
	// describing the tool's argument shape.
	Schema map[string]any
}

// Usage reports token consumption for a single Complete call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Request is a single completion request sent to a provider.
type Request struct {
	Model       string
	Messages    []*Message
	Tools       []ToolSpec
	Temperature float64
	MaxTokens   int
}

// Response is a provider's reply to a Request.
type Response struct {
	Content   string
	ToolCalls []ToolUsePart
	Usage     Usage
	// StopReason is the provider's own reason the turn ended, passed through
	// as given: Anthropic reports "end_turn" | "tool_use" | "max_tokens" |
	// "stop_sequence"; OpenAI reports its finish_reason ("stop" |
	// "tool_calls" | "length" | "content_filter").
	StopReason string
}

// Client is the provider-agnostic interface the agent loop calls against.
// Anthropic and OpenAI adapters each implement this by translating
// Request/Response to and from their native wire formats.
type Client interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}
