// Package model's anthropic.go adapts Client to the Anthropic Claude
// Messages API, grounded on features/model/anthropic/client.go: the same
// MessagesClient seam (so callers can inject the real SDK client or a test
// double), the same prepareRequest/translateResponse split, narrowed from
// the teacher's full multimodal/thinking/tool-choice surface to the
// TextPart/ToolUsePart/ToolResultPart shape Lucy's agent loop actually
// produces.
package model

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicMessagesClient captures the subset of the Anthropic SDK used by
// the adapter, satisfied by *sdk.MessageService or a test double.
type AnthropicMessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// AnthropicClient implements Client against Claude Messages.
type AnthropicClient struct {
	msg         AnthropicMessagesClient
	maxTokens   int
	temperature float64
}

// NewAnthropicClient builds an adapter over an injected Messages client.
func NewAnthropicClient(msg AnthropicMessagesClient, maxTokens int, temperature float64) (*AnthropicClient, error) {
	if msg == nil {
		return nil, errors.New("model: anthropic messages client is required")
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicClient{msg: msg, maxTokens: maxTokens, temperature: temperature}, nil
}

// NewAnthropicClientFromAPIKey constructs a client from a bare API key using
// the SDK's default HTTP transport.
func NewAnthropicClientFromAPIKey(apiKey string, maxTokens int, temperature float64) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("model: anthropic api key is required")
	}
	c := sdk.NewClient(option.WithAPIKey(apiKey))
	return NewAnthropicClient(&c.Messages, maxTokens, temperature)
}

// Complete implements Client.
func (c *AnthropicClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("model: messages are required")
	}
	params, err := c.encodeRequest(req)
	if err != nil {
		return nil, err
	}
	msg, err := c.msg.New(ctx, params)
	if err != nil {
		if isAnthropicRateLimited(err) {
			return nil, NewProviderError("anthropic", "messages.new", 429, ProviderErrorKindRateLimited, "", "", "", true, err)
		}
		return nil, fmt.Errorf("model: anthropic messages.new: %w", err)
	}
	return decodeAnthropicResponse(msg), nil
}

func (c *AnthropicClient) encodeRequest(req *Request) (sdk.MessageNewParams, error) {
	modelID := req.Model
	if modelID == "" {
		return sdk.MessageNewParams{}, errors.New("model: request model identifier is required")
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	var system []sdk.TextBlockParam
	var messages []sdk.MessageParam
	for _, m := range req.Messages {
		if m == nil {
			continue
		}
		if m.Role == RoleSystem {
			for _, p := range m.Parts {
				if t, ok := p.(TextPart); ok && t.Text != "" {
					system = append(system, sdk.TextBlockParam{Text: t.Text})
				}
			}
			continue
		}
		blocks := encodeAnthropicBlocks(m.Parts)
		if len(blocks) == 0 {
			continue
		}
		messages = append(messages, sdk.MessageParam{
			Role:    anthropicRole(m.Role),
			Content: blocks,
		})
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(modelID),
		MaxTokens: int64(maxTokens),
		Messages:  messages,
	}
	if len(system) > 0 {
		params.System = system
	}
	if len(req.Tools) > 0 {
		params.Tools = encodeAnthropicTools(req.Tools)
	}
	temp := req.Temperature
	if temp == 0 {
		temp = c.temperature
	}
	if temp > 0 {
		params.Temperature = sdk.Float(temp)
	}
	return params, nil
}

func anthropicRole(r ConversationRole) sdk.MessageParamRole {
	if r == RoleUser || r == RoleTool {
		return sdk.MessageParamRoleUser
	}
	return sdk.MessageParamRoleAssistant
}

func encodeAnthropicBlocks(parts []Part) []sdk.ContentBlockParamUnion {
	blocks := make([]sdk.ContentBlockParamUnion, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case TextPart:
			if v.Text != "" {
				blocks = append(blocks, sdk.NewTextBlock(v.Text))
			}
		case ToolUsePart:
			blocks = append(blocks, sdk.NewToolUseBlock(v.ID, v.Arguments, v.Name))
		case ToolResultPart:
			blocks = append(blocks, sdk.NewToolResultBlock(v.ToolUseID, v.Content, v.IsError))
		}
	}
	return blocks
}

func encodeAnthropicTools(tools []ToolSpec) []sdk.ToolUnionParam {
	out := make([]sdk.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, sdk.ToolUnionParamOfTool(sdk.ToolInputSchemaParam{
			Properties: t.Schema["properties"],
		}, t.Name))
	}
	return out
}

func decodeAnthropicResponse(msg *sdk.Message) *Response {
	resp := &Response{
		Usage: Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
		},
		StopReason: string(msg.StopReason),
	}
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case sdk.TextBlock:
			resp.Content += v.Text
		case sdk.ToolUseBlock:
			args, _ := v.Input.(map[string]any)
			resp.ToolCalls = append(resp.ToolCalls, ToolUsePart{ID: v.ID, Name: v.Name, Arguments: args})
		}
	}
	return resp
}

func isAnthropicRateLimited(err error) bool {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
