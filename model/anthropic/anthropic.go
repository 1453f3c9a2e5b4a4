// Package anthropic implements model.Gateway over the Anthropic Messages API
// (with tool calling). Handoff targets are surfaced as the synthetic transfer
// function and decoded back into handoff parts.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/aeropilot-ai/aeropilot/core"
	"github.com/aeropilot-ai/aeropilot/model"
)

// Options configures the Anthropic gateway adapter (temperature, model id,
// max tokens, API key). Per-agent model.Settings override them per request.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Gateway wraps the Anthropic Messages API behind model.Gateway.
type Gateway struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic gateway using the official client.
func New(optFns ...func(o *Options)) *Gateway {
	opts := defaultOptions(optFns)

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Gateway{
		client: &client,
		opts:   opts,
	}
}

// NewFromClient creates a new Anthropic gateway from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Gateway {
	return &Gateway{
		client: client,
		opts:   defaultOptions(optFns),
	}
}

func defaultOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return opts
}

// Generate implements model.Gateway.
func (g *Gateway) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	modelID := g.opts.Model
	if req.Settings.Model != "" {
		modelID = anthropic.Model(req.Settings.Model)
	}
	temperature := g.opts.Temperature
	if req.Settings.Temperature != 0 {
		temperature = req.Settings.Temperature
	}
	maxTokens := g.opts.MaxTokens
	if req.Settings.MaxTokens != 0 {
		maxTokens = req.Settings.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       modelID,
		Messages:    g.buildMessages(req.Contents),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
	}

	if systemBlocks := g.buildSystem(req); len(systemBlocks) > 0 {
		params.System = systemBlocks
	}

	defs := make([]model.ToolDefinition, 0, len(req.Tools)+1)
	defs = append(defs, req.Tools...)
	if len(req.Handoffs) > 0 {
		defs = append(defs, model.TransferToolDefinition(req.Handoffs))
	}
	if len(defs) > 0 {
		params.Tools = g.buildTools(defs)
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return nil, &model.CallError{Provider: "anthropic", Err: err}
	}

	var parts []core.Part

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			textBlock := block.AsText()
			if textBlock.Text != "" {
				parts = append(parts, core.TextPart{Text: textBlock.Text})
			}
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := ""
			if toolBlock.Input != nil {
				if argsBytes, err := json.Marshal(toolBlock.Input); err == nil {
					args = string(argsBytes)
				}
			}
			fc := core.FunctionCall{
				ID:        toolBlock.ID,
				Name:      toolBlock.Name,
				Arguments: args,
			}
			if h, ok := model.DecodeTransferCall(fc); ok {
				parts = append(parts, core.HandoffPart{Handoff: h})
				continue
			}
			parts = append(parts, core.FunctionCallPart{FunctionCall: fc})
		}
	}

	finishReason := "stop"
	if resp.StopReason != "" {
		finishReason = string(resp.StopReason)
	}

	return &model.Response{
		Content:      core.Content{Role: "assistant", Parts: parts},
		FinishReason: finishReason,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}, nil
}

// buildSystem assembles the system blocks from resolved instructions plus the
// structured output directive when a schema is declared.
func (g *Gateway) buildSystem(req model.Request) []anthropic.TextBlockParam {
	var systemBlocks []anthropic.TextBlockParam

	if req.Instructions != "" {
		systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: req.Instructions})
	}

	if req.OutputSchema != nil {
		if data, err := json.Marshal(req.OutputSchema); err == nil {
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{
				Text: "Respond only with a JSON object matching this schema:\n" + string(data),
			})
		}
	}

	for _, c := range req.Contents {
		if c.Role != "system" {
			continue
		}
		for _, p := range c.Parts {
			if tp, ok := p.(core.TextPart); ok && tp.Text != "" {
				systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: tp.Text})
			}
		}
	}

	return systemBlocks
}

// buildMessages converts normalized contents to Anthropic message format.
func (g *Gateway) buildMessages(contents []core.Content) []anthropic.MessageParam {
	var messages []anthropic.MessageParam

	// Track tool responses so they can be embedded after their tool calls.
	toolResponses := make(map[string]string)
	for _, c := range contents {
		if c.Role != "tool" {
			continue
		}
		for _, p := range c.Parts {
			fr, ok := p.(core.FunctionResponsePart)
			if !ok || fr.FunctionResponse.ID == "" {
				continue
			}
			if respStr, ok := fr.FunctionResponse.Response.(string); ok {
				toolResponses[fr.FunctionResponse.ID] = respStr
			} else {
				toolResponses[fr.FunctionResponse.ID] = fmt.Sprintf("%v", fr.FunctionResponse.Response)
			}
		}
	}

	for _, c := range contents {
		if c.Role == "system" || c.Role == "tool" {
			continue // System handled separately, tool responses embedded
		}

		switch c.Role {
		case "assistant":
			content := g.buildAssistantContent(c.Parts, toolResponses)
			if len(content) > 0 {
				messages = append(messages, anthropic.NewAssistantMessage(content...))
			}
		default:
			// user and unknown roles
			content := g.buildUserContent(c.Parts)
			if len(content) > 0 {
				messages = append(messages, anthropic.NewUserMessage(content...))
			}
		}
	}

	return messages
}

// buildUserContent builds content blocks for user messages.
func (g *Gateway) buildUserContent(parts []core.Part) []anthropic.ContentBlockParamUnion {
	var content []anthropic.ContentBlockParamUnion

	for _, p := range parts {
		if tp, ok := p.(core.TextPart); ok && tp.Text != "" {
			content = append(content, anthropic.NewTextBlock(tp.Text))
		}
	}

	return content
}

// buildAssistantContent builds content blocks for assistant messages,
// embedding matching tool results immediately after each tool use block.
func (g *Gateway) buildAssistantContent(
	parts []core.Part,
	toolResponses map[string]string,
) []anthropic.ContentBlockParamUnion {
	var content []anthropic.ContentBlockParamUnion
	var toolCallIDs []string

	for _, p := range parts {
		switch part := p.(type) {
		case core.TextPart:
			if part.Text != "" {
				content = append(content, anthropic.NewTextBlock(part.Text))
			}
		case core.FunctionCallPart:
			var input interface{}
			if part.FunctionCall.Arguments != "" {
				if err := json.Unmarshal([]byte(part.FunctionCall.Arguments), &input); err != nil {
					input = part.FunctionCall.Arguments // fallback to string
				}
			}

			content = append(content, anthropic.NewToolUseBlock(
				part.FunctionCall.ID,
				input,
				part.FunctionCall.Name,
			))
			toolCallIDs = append(toolCallIDs, part.FunctionCall.ID)
		}
	}

	for _, id := range toolCallIDs {
		if resp, ok := toolResponses[id]; ok {
			content = append(content, anthropic.NewToolResultBlock(id, resp, false))
			delete(toolResponses, id)
		}
	}

	return content
}

// buildTools converts tool definitions to Anthropic tool format.
func (g *Gateway) buildTools(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	anthropicTools := make([]anthropic.ToolUnionParam, len(tools))

	for i, t := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}

		if t.Parameters != nil {
			if properties, exists := t.Parameters["properties"]; exists {
				inputSchema.Properties = properties
			}
			if required, exists := t.Parameters["required"]; exists {
				if reqSlice, ok := required.([]string); ok {
					inputSchema.Required = reqSlice
				} else if reqInterface, ok := required.([]interface{}); ok {
					var reqStrings []string
					for _, r := range reqInterface {
						if s, ok := r.(string); ok {
							reqStrings = append(reqStrings, s)
						}
					}
					inputSchema.Required = reqStrings
				}
			}
		}

		anthropicTools[i] = anthropic.ToolUnionParamOfTool(inputSchema, t.Name)
	}

	return anthropicTools
}

// Info returns metadata describing this Anthropic gateway.
func (g *Gateway) Info() model.Info {
	return model.Info{
		Name:          string(g.opts.Model),
		Provider:      "anthropic",
		SupportsTools: true,
	}
}
