package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when AGENT_MODEL is unset.
const DefaultAnthropicModel = anthropic.ModelClaude3_7SonnetLatest

// AnthropicBackend drives the Anthropic Messages API with SSE streaming.
type AnthropicBackend struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropic returns a backend using the API key from the env (SDK default).
// Extra request options are exposed for tests to swap the HTTP transport.
func NewAnthropic(model string, opts ...option.RequestOption) *AnthropicBackend {
	c := anthropic.NewClient(opts...)
	m := DefaultAnthropicModel
	if model != "" {
		m = anthropic.Model(model)
	}
	return &AnthropicBackend{client: &c, model: m}
}

func (b *AnthropicBackend) StreamStep(ctx context.Context, req StepRequest, onText func(string)) (StepResult, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     b.model,
		MaxTokens: maxTokens,
		Messages:  buildAnthropicMessages(req.Messages),
	}
	if s := collectSystem(req); s != "" {
		params.System = []anthropic.TextBlockParam{{Text: s}}
	}
	if len(req.Tools) > 0 {
		params.Tools = buildAnthropicTools(req.Tools)
	}

	stream := b.client.Messages.NewStreaming(ctx, params)
	msg := anthropic.Message{}
	var text strings.Builder
	for stream.Next() {
		event := stream.Current()
		if err := msg.Accumulate(event); err != nil {
			return StepResult{}, err
		}
		if variant, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
			if delta, ok := variant.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
				text.WriteString(delta.Text)
				if onText != nil {
					onText(delta.Text)
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return StepResult{}, err
	}

	res := StepResult{Text: text.String(), StopReason: string(msg.StopReason)}
	for _, block := range msg.Content {
		if tu, ok := block.AsAny().(anthropic.ToolUseBlock); ok {
			res.ToolCalls = append(res.ToolCalls, ToolCall{
				ID:    tu.ID,
				Name:  tu.Name,
				Input: json.RawMessage(tu.JSON.Input.Raw()),
			})
		}
	}
	return res, nil
}

// collectSystem joins the explicit system field with any system-role messages;
// the Messages API takes system framing as a request parameter, not a message.
func collectSystem(req StepRequest) string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(req.System); s != "" {
		parts = append(parts, s)
	}
	for _, m := range req.Messages {
		if m.Role == RoleSystem && strings.TrimSpace(m.Text) != "" {
			parts = append(parts, strings.TrimSpace(m.Text))
		}
	}
	return strings.Join(parts, "\n\n")
}

func buildAnthropicMessages(messages []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	// The Messages API requires the opening message to be user role. A recency
	// window can cut the history so an assistant message (or a tool result
	// whose tool_use was dropped) would lead; skip those until real user input.
	seenUser := false
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			// System framing travels via params.System, never as a message.
			continue
		case RoleAssistant:
			if !seenUser {
				continue
			}
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.ToolCalls)+1)
			if msg.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Text))
			}
			for _, call := range msg.ToolCalls {
				input := call.Input
				if len(input) == 0 {
					input = json.RawMessage("{}")
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{OfToolUse: &anthropic.ToolUseBlockParam{
					Type:  "tool_use",
					ID:    call.ID,
					Name:  call.Name,
					Input: input,
				}})
			}
			if len(blocks) == 0 {
				continue
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		case RoleTool:
			if !seenUser {
				continue
			}
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Results))
			for _, r := range msg.Results {
				blocks = append(blocks, anthropic.NewToolResultBlock(r.ID, r.Content, r.IsError))
			}
			if len(blocks) == 0 {
				continue
			}
			out = append(out, anthropic.NewUserMessage(blocks...))
		default:
			if msg.Text == "" {
				continue
			}
			seenUser = true
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Text)))
		}
	}
	return out
}

func buildAnthropicTools(specs []ToolSpec) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(specs))
	for _, t := range specs {
		schema := anthropic.ToolInputSchemaParam{}
		if props, ok := t.InputSchema["properties"]; ok {
			schema.Properties = props
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: schema,
		}})
	}
	return out
}
