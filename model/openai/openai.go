// Package openai implements model.Gateway over the OpenAI Chat Completions
// API (including function/tool calling). It adapts the runtime's normalized
// Request/Response structures into the SDK's message format and back, and
// surfaces handoff targets as the synthetic transfer function.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"github.com/aeropilot-ai/aeropilot/core"
	"github.com/aeropilot-ai/aeropilot/model"
)

// Options configure the OpenAI gateway adapter. Fields mirror a subset of
// Chat Completion parameters; per-agent model.Settings override them
// request by request.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Gateway wraps the OpenAI Chat Completions API behind model.Gateway.
type Gateway struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI gateway using the official client (API key from
// the environment).
func New(optFns ...func(o *Options)) *Gateway {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a new OpenAI gateway from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Gateway {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gateway{client: client, opts: opts}
}

// Generate implements model.Gateway.
func (g *Gateway) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	toolResponses, order := collectToolResponses(req)
	messages := buildMessages(req, toolResponses, order)
	params := g.buildParams(req, messages)

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, &model.CallError{Provider: "openai", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &model.CallError{Provider: "openai", Err: fmt.Errorf("no choices returned")}
	}

	ch0 := resp.Choices[0]
	parts := make([]core.Part, 0, len(ch0.Message.ToolCalls)+1)
	if ch0.Message.Content != "" {
		parts = append(parts, core.TextPart{Text: ch0.Message.Content})
	}
	for _, tc := range ch0.Message.ToolCalls {
		fc := core.FunctionCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}
		if h, ok := model.DecodeTransferCall(fc); ok {
			parts = append(parts, core.HandoffPart{Handoff: h})
			continue
		}
		parts = append(parts, core.FunctionCallPart{FunctionCall: fc})
	}

	return &model.Response{
		Content:      core.Content{Role: "assistant", Parts: parts},
		FinishReason: ch0.FinishReason,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// Info returns metadata describing this OpenAI gateway.
func (g *Gateway) Info() model.Info {
	return model.Info{
		Name:          g.opts.Model,
		Provider:      "openai",
		SupportsTools: true,
	}
}

// collectToolResponses indexes tool (function) responses by id preserving first-seen order.
func collectToolResponses(req model.Request) (map[string]string, []string) {
	responses := map[string]string{}
	order := []string{}
	for _, c := range req.Contents {
		if c.Role != "tool" {
			continue
		}
		for _, p := range c.Parts {
			fr, ok := p.(core.FunctionResponsePart)
			if !ok || fr.FunctionResponse.ID == "" {
				continue
			}
			if _, exists := responses[fr.FunctionResponse.ID]; exists {
				continue
			}
			var text string
			if s, ok := fr.FunctionResponse.Response.(string); ok {
				text = s
			} else if fr.FunctionResponse.Error != "" {
				text = fmt.Sprintf("error: %s", fr.FunctionResponse.Error)
			} else if data, err := json.Marshal(fr.FunctionResponse.Response); err == nil {
				text = string(data)
			} else {
				text = fmt.Sprintf("%v", fr.FunctionResponse.Response)
			}
			responses[fr.FunctionResponse.ID] = text
			order = append(order, fr.FunctionResponse.ID)
		}
	}
	return responses, order
}

// buildMessages converts normalized contents into OpenAI chat messages while
// attaching matching tool responses immediately after assistant tool calls.
func buildMessages(
	req model.Request,
	toolResponses map[string]string,
	order []string,
) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion

	instructions := req.Instructions
	if req.OutputSchema != nil {
		if data, err := json.Marshal(req.OutputSchema); err == nil {
			instructions += "\n\nRespond only with a JSON object matching this schema:\n" + string(data)
		}
	}
	if instructions != "" {
		messages = append(messages, openai.SystemMessage(instructions))
	}

	for _, c := range req.Contents {
		if c.Role == "tool" {
			continue
		}
		var textBuilder strings.Builder
		for _, p := range c.Parts {
			if tp, ok := p.(core.TextPart); ok {
				textBuilder.WriteString(tp.Text)
			}
		}
		text := textBuilder.String()
		switch c.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(text))
		case "user":
			messages = append(messages, openai.UserMessage(text))
		case "assistant":
			toolCalls, callIDs := extractToolCalls(c)
			if len(toolCalls) == 0 {
				messages = append(messages, openai.AssistantMessage(text))
				continue
			}
			messages = append(
				messages,
				openai.ChatCompletionMessageParamUnion{OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role:      "assistant",
					ToolCalls: toolCalls,
				}},
			)
			for _, id := range callIDs {
				if id == "" {
					continue
				}
				if resp, ok := toolResponses[id]; ok {
					messages = append(messages, openai.ToolMessage(resp, id))
					delete(toolResponses, id)
				}
			}
		default:
			if text != "" {
				messages = append(messages, openai.UserMessage(text))
			}
		}
	}
	for _, id := range order {
		if resp, ok := toolResponses[id]; ok {
			messages = append(messages, openai.ToolMessage(resp, id))
		}
	}
	return messages
}

// extractToolCalls extracts tool call parts and returns OpenAI formatted tool calls + ordered IDs.
func extractToolCalls(c core.Content) ([]openai.ChatCompletionMessageToolCallParam, []string) {
	var toolCalls []openai.ChatCompletionMessageToolCallParam
	var callIDs []string
	for _, p := range c.Parts {
		if fc, ok := p.(core.FunctionCallPart); ok {
			toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
				ID:   fc.FunctionCall.ID,
				Type: "function",
				Function: openai.ChatCompletionMessageToolCallFunctionParam{
					Name:      fc.FunctionCall.Name,
					Arguments: fc.FunctionCall.Arguments,
				},
			})
			callIDs = append(callIDs, fc.FunctionCall.ID)
		}
	}
	return toolCalls, callIDs
}

// buildParams assembles the OpenAI request parameters including tool and
// transfer definitions, applying per-agent settings over adapter defaults.
func (g *Gateway) buildParams(
	req model.Request,
	messages []openai.ChatCompletionMessageParamUnion,
) openai.ChatCompletionNewParams {
	modelName := g.opts.Model
	if req.Settings.Model != "" {
		modelName = req.Settings.Model
	}
	temperature := g.opts.Temperature
	if req.Settings.Temperature != 0 {
		temperature = req.Settings.Temperature
	}
	maxTokens := g.opts.MaxCompletionTokens
	if req.Settings.MaxTokens != 0 {
		maxTokens = req.Settings.MaxTokens
	}

	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               modelName,
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(maxTokens),
	}

	defs := make([]model.ToolDefinition, 0, len(req.Tools)+1)
	defs = append(defs, req.Tools...)
	if len(req.Handoffs) > 0 {
		defs = append(defs, model.TransferToolDefinition(req.Handoffs))
	}
	if len(defs) == 0 {
		return params
	}

	tools := make([]openai.ChatCompletionToolParam, len(defs))
	for i, tdef := range defs {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        tdef.Name,
				Description: openai.String(tdef.Description),
				Parameters:  tdef.Parameters,
			},
		}
	}
	params.Tools = tools
	return params
}
