package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// DefaultOpenAIModel is used when AGENT_MODEL is unset.
const DefaultOpenAIModel = openai.ChatModelGPT4o

// OpenAIBackend drives an OpenAI-compatible Chat Completions endpoint.
// Responses arrive whole; the text is surfaced as a single fragment so the
// step contract matches the streaming backend.
type OpenAIBackend struct {
	client openai.Client
	model  openai.ChatModel
}

// NewOpenAI returns a backend using the API key from the env (SDK default).
func NewOpenAI(model string, opts ...option.RequestOption) *OpenAIBackend {
	m := DefaultOpenAIModel
	if model != "" {
		m = openai.ChatModel(model)
	}
	return &OpenAIBackend{client: openai.NewClient(opts...), model: m}
}

func (b *OpenAIBackend) StreamStep(ctx context.Context, req StepRequest, onText func(string)) (StepResult, error) {
	params := openai.ChatCompletionNewParams{
		Model:    b.model,
		Messages: buildOpenAIMessages(req),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(req.MaxTokens)
	}
	if len(req.Tools) > 0 {
		params.Tools = buildOpenAITools(req.Tools)
	}

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return StepResult{}, err
	}
	if len(resp.Choices) == 0 {
		return StepResult{StopReason: "stop"}, nil
	}

	choice := resp.Choices[0]
	res := StepResult{Text: choice.Message.Content, StopReason: string(choice.FinishReason)}
	if res.Text != "" && onText != nil {
		onText(res.Text)
	}
	for _, tc := range choice.Message.ToolCalls {
		args := strings.TrimSpace(tc.Function.Arguments)
		if args == "" {
			args = "{}"
		}
		res.ToolCalls = append(res.ToolCalls, ToolCall{
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: json.RawMessage(args),
		})
	}
	return res, nil
}

func buildOpenAIMessages(req StepRequest) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if s := strings.TrimSpace(req.System); s != "" {
		out = append(out, openai.SystemMessage(s))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			if msg.Text != "" {
				out = append(out, openai.SystemMessage(msg.Text))
			}
		case RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				if msg.Text != "" {
					out = append(out, openai.AssistantMessage(msg.Text))
				}
				continue
			}
			calls := make([]openai.ChatCompletionMessageToolCallParam, 0, len(msg.ToolCalls))
			for _, call := range msg.ToolCalls {
				args := string(call.Input)
				if !json.Valid([]byte(args)) {
					args = "{}"
				}
				calls = append(calls, openai.ChatCompletionMessageToolCallParam{
					ID: call.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      call.Name,
						Arguments: args,
					},
				})
			}
			assistant := openai.ChatCompletionAssistantMessageParam{ToolCalls: calls}
			if msg.Text != "" {
				assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{OfString: openai.String(msg.Text)}
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		case RoleTool:
			for _, r := range msg.Results {
				content := r.Content
				if content == "" {
					content = "{}"
				}
				out = append(out, openai.ToolMessage(content, r.ID))
			}
		default:
			if msg.Text != "" {
				out = append(out, openai.UserMessage(msg.Text))
			}
		}
	}
	return out
}

func buildOpenAITools(specs []ToolSpec) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(specs))
	for _, t := range specs {
		fn := shared.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
		}
		if len(t.InputSchema) > 0 {
			fn.Parameters = shared.FunctionParameters(t.InputSchema)
		}
		out = append(out, openai.ChatCompletionToolParam{Function: fn})
	}
	return out
}
