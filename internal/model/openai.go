// openai.go adapts Client to the OpenAI Chat Completions API, grounded on
// features/model/openai/client.go's shape (a ChatClient seam, New/NewFromAPIKey
// constructors, Complete translating model.Request/Response). The teacher's
// adapter is built on github.com/sashabaranov/go-openai; this one targets the
// official github.com/openai/openai-go SDK instead, since that is the client
// carried in go.mod (the pack's other repos standardize on the official SDK).
package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIChatClient captures the subset of the OpenAI SDK used by the adapter.
type OpenAIChatClient interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAIClient implements Client against OpenAI Chat Completions.
type OpenAIClient struct {
	chat        OpenAIChatClient
	temperature float64
}

// NewOpenAIClient builds an adapter over an injected chat-completions client.
func NewOpenAIClient(chat OpenAIChatClient, temperature float64) (*OpenAIClient, error) {
	if chat == nil {
		return nil, errors.New("model: openai chat client is required")
	}
	return &OpenAIClient{chat: chat, temperature: temperature}, nil
}

// NewOpenAIClientFromAPIKey constructs a client from a bare API key.
func NewOpenAIClientFromAPIKey(apiKey string, temperature float64) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("model: openai api key is required")
	}
	c := openai.NewClient(option.WithAPIKey(apiKey))
	return NewOpenAIClient(&c.Chat.Completions, temperature)
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("model: messages are required")
	}
	if req.Model == "" {
		return nil, errors.New("model: request model identifier is required")
	}
	params := openai.ChatCompletionNewParams{
		Model:    req.Model,
		Messages: encodeOpenAIMessages(req.Messages),
	}
	if len(req.Tools) > 0 {
		params.Tools = encodeOpenAITools(req.Tools)
	}
	temp := req.Temperature
	if temp == 0 {
		temp = c.temperature
	}
	if temp > 0 {
		params.Temperature = openai.Float(temp)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := c.chat.New(ctx, params)
	if err != nil {
		if isOpenAIRateLimited(err) {
			return nil, NewProviderError("openai", "chat.completions.new", 429, ProviderErrorKindRateLimited, "", "", "", true, err)
		}
		return nil, fmt.Errorf("model: openai chat.completions.new: %w", err)
	}
	return decodeOpenAIResponse(completion), nil
}

func encodeOpenAIMessages(msgs []*Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		text := joinText(m.Parts)
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(text))
		case RoleUser:
			out = append(out, openai.UserMessage(text))
		case RoleTool:
			for _, p := range m.Parts {
				if tr, ok := p.(ToolResultPart); ok {
					out = append(out, openai.ToolMessage(tr.Content, tr.ToolUseID))
				}
			}
		case RoleAssistant:
			assistantMsg := openai.AssistantMessage(text)
			for _, p := range m.Parts {
				if tu, ok := p.(ToolUsePart); ok {
					args, _ := json.Marshal(tu.Arguments)
					assistantMsg.OfAssistant.ToolCalls = append(assistantMsg.OfAssistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
						ID: tu.ID,
						Function: openai.ChatCompletionMessageToolCallFunctionParam{
							Name:      tu.Name,
							Arguments: string(args),
						},
					})
				}
			}
			out = append(out, assistantMsg)
		}
	}
	return out
}

func joinText(parts []Part) string {
	var s string
	for _, p := range parts {
		if t, ok := p.(TextPart); ok {
			s += t.Text
		}
	}
	return s
}

func encodeOpenAITools(tools []ToolSpec) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters:  t.Schema,
		}))
	}
	return out
}

func decodeOpenAIResponse(completion *openai.ChatCompletion) *Response {
	resp := &Response{
		Usage: Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
		},
	}
	if len(completion.Choices) == 0 {
		return resp
	}
	choice := completion.Choices[0]
	resp.Content = choice.Message.Content
	resp.StopReason = string(choice.FinishReason)
	for _, call := range choice.Message.ToolCalls {
		var args map[string]any
		_ = json.Unmarshal([]byte(call.Function.Arguments), &args)
		resp.ToolCalls = append(resp.ToolCalls, ToolUsePart{ID: call.ID, Name: call.Function.Name, Arguments: args})
	}
	return resp
}

func isOpenAIRateLimited(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
