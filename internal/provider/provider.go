// Package provider abstracts the model backends behind a neutral message
// model so the runner can drive either one through the same step contract.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Env vars selecting the backend and model at startup.
const (
	EnvBackend = "AGENT_BACKEND"
	EnvModel   = "AGENT_MODEL"
)

// Role labels a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is the backend-neutral view of one conversation entry.
// Assistant messages may carry tool calls; tool messages carry the results
// being fed back to the model within the same turn.
type Message struct {
	Role      Role
	Text      string
	ToolCalls []ToolCall
	Results   []ToolResult
}

// ToolCall is a model-issued request to invoke a named tool.
type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// ToolResult is the outcome of one tool call, fed back mid-turn.
type ToolResult struct {
	ID      string
	Name    string
	Content string
	IsError bool
}

// ToolSpec declares a tool to the model. InputSchema is a full JSON Schema
// document (type/properties/required) as a generic map.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// StepRequest is one inference call within a turn.
type StepRequest struct {
	System    string
	Messages  []Message
	Tools     []ToolSpec
	MaxTokens int64
}

// StepResult is what the model produced for one step. A step with no tool
// calls is terminal for the turn.
type StepResult struct {
	Text       string
	ToolCalls  []ToolCall
	StopReason string
}

// Backend runs one inference step, invoking onText for each incremental text
// fragment as it arrives. Implementations must call onText in order and only
// from the calling goroutine.
type Backend interface {
	StreamStep(ctx context.Context, req StepRequest, onText func(string)) (StepResult, error)
}

const defaultMaxTokens = int64(4096)

// FromEnv selects a backend from AGENT_BACKEND (default "anthropic") with the
// model from AGENT_MODEL. An unrecognized selector is a configuration fault.
func FromEnv() (Backend, error) {
	sel := strings.ToLower(strings.TrimSpace(os.Getenv(EnvBackend)))
	if sel == "" {
		sel = "anthropic"
	}
	model := strings.TrimSpace(os.Getenv(EnvModel))
	switch sel {
	case "anthropic":
		return NewAnthropic(model), nil
	case "openai":
		return NewOpenAI(model), nil
	default:
		return nil, fmt.Errorf("unknown %s %q (supported: anthropic, openai)", EnvBackend, sel)
	}
}
