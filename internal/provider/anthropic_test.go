package provider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/MykalMachon/skilled-agent/internal/provider"
)

func sseBody(events ...[2]string) []byte {
	var b strings.Builder
	for _, ev := range events {
		b.WriteString("event: " + ev[0] + "\n")
		b.WriteString("data: " + ev[1] + "\n\n")
	}
	return []byte(b.String())
}

func textStreamBody() []byte {
	return sseBody(
		[2]string{"message_start", `{"type":"message_start","message":{"id":"msg_01","type":"message","role":"assistant","model":"claude-3-7-sonnet-latest","content":[],"stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":12,"output_tokens":1}}}`},
		[2]string{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`},
		[2]string{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}`},
		[2]string{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":", world."}}`},
		[2]string{"content_block_stop", `{"type":"content_block_stop","index":0}`},
		[2]string{"message_delta", `{"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},"usage":{"output_tokens":6}}`},
		[2]string{"message_stop", `{"type":"message_stop"}`},
	)
}

func toolUseStreamBody() []byte {
	return sseBody(
		[2]string{"message_start", `{"type":"message_start","message":{"id":"msg_02","type":"message","role":"assistant","model":"claude-3-7-sonnet-latest","content":[],"stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":20,"output_tokens":1}}}`},
		[2]string{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`},
		[2]string{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Checking the directory."}}`},
		[2]string{"content_block_stop", `{"type":"content_block_stop","index":0}`},
		[2]string{"content_block_start", `{"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"toolu_01","name":"list_files","input":{}}}`},
		[2]string{"content_block_delta", `{"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"{\"path\":"}}`},
		[2]string{"content_block_delta", `{"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"\"notes\"}"}}`},
		[2]string{"content_block_stop", `{"type":"content_block_stop","index":1}`},
		[2]string{"message_delta", `{"type":"message_delta","delta":{"stop_reason":"tool_use","stop_sequence":null},"usage":{"output_tokens":9}}`},
		[2]string{"message_stop", `{"type":"message_stop"}`},
	)
}

func newAnthropicForTest(t *testing.T, ft *fakeTransport) *provider.AnthropicBackend {
	t.Helper()
	return provider.NewAnthropic("",
		option.WithAPIKey("test-key"),
		option.WithHTTPClient(&http.Client{Transport: ft}),
	)
}

func TestAnthropicStreamStep_TextFragmentsInOrder(t *testing.T) {
	ft := &fakeTransport{respStatus: 200, respBody: textStreamBody(), contentType: "text/event-stream"}
	backend := newAnthropicForTest(t, ft)

	var fragments []string
	res, err := backend.StreamStep(context.Background(), provider.StepRequest{
		Messages: []provider.Message{{Role: provider.RoleUser, Text: "hi"}},
	}, func(s string) { fragments = append(fragments, s) })
	if err != nil {
		t.Fatalf("StreamStep: %v", err)
	}
	if res.Text != "Hello, world." {
		t.Fatalf("text = %q", res.Text)
	}
	if joined := strings.Join(fragments, ""); joined != res.Text {
		t.Fatalf("fragments %q do not reassemble into %q", joined, res.Text)
	}
	if len(fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(fragments))
	}
	if len(res.ToolCalls) != 0 {
		t.Fatalf("unexpected tool calls: %v", res.ToolCalls)
	}
	if res.StopReason != "end_turn" {
		t.Fatalf("stop reason = %q", res.StopReason)
	}
}

func TestAnthropicStreamStep_ParsesToolUse(t *testing.T) {
	ft := &fakeTransport{respStatus: 200, respBody: toolUseStreamBody(), contentType: "text/event-stream"}
	backend := newAnthropicForTest(t, ft)

	res, err := backend.StreamStep(context.Background(), provider.StepRequest{
		Messages: []provider.Message{{Role: provider.RoleUser, Text: "list my notes"}},
	}, nil)
	if err != nil {
		t.Fatalf("StreamStep: %v", err)
	}
	if len(res.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(res.ToolCalls))
	}
	call := res.ToolCalls[0]
	if call.ID != "toolu_01" || call.Name != "list_files" {
		t.Fatalf("call = %+v", call)
	}
	var input struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(call.Input, &input); err != nil {
		t.Fatalf("input %q: %v", call.Input, err)
	}
	if input.Path != "notes" {
		t.Fatalf("input path = %q", input.Path)
	}
	if res.StopReason != "tool_use" {
		t.Fatalf("stop reason = %q", res.StopReason)
	}
}

func TestAnthropicStreamStep_WindowedHistoryOpensWithUser(t *testing.T) {
	// A recency window over a long history can leave an assistant message (and
	// the tool results of a dropped tool_use) at the front. The request must
	// still open with user input.
	captured := &capture{}
	ft := &fakeTransport{respStatus: 200, respBody: textStreamBody(), contentType: "text/event-stream", captured: captured}
	backend := newAnthropicForTest(t, ft)

	req := provider.StepRequest{
		Messages: []provider.Message{
			{Role: provider.RoleAssistant, Text: "an older reply"},
			{Role: provider.RoleTool, Results: []provider.ToolResult{{ID: "toolu_00", Name: "read_file", Content: "stale"}}},
			{Role: provider.RoleUser, Text: "a question"},
			{Role: provider.RoleAssistant, Text: "an answer"},
			{Role: provider.RoleUser, Text: "latest"},
		},
	}
	if _, err := backend.StreamStep(context.Background(), req, nil); err != nil {
		t.Fatalf("StreamStep: %v", err)
	}

	var body struct {
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(captured.body, &body); err != nil {
		t.Fatalf("request body: %v", err)
	}
	wantRoles := []string{"user", "assistant", "user"}
	if len(body.Messages) != len(wantRoles) {
		t.Fatalf("messages = %+v", body.Messages)
	}
	for i, want := range wantRoles {
		if body.Messages[i].Role != want {
			t.Fatalf("message %d role = %q, want %q", i, body.Messages[i].Role, want)
		}
	}
}

func TestAnthropicStreamStep_RequestShape(t *testing.T) {
	cap := &capture{}
	ft := &fakeTransport{respStatus: 200, respBody: textStreamBody(), contentType: "text/event-stream", captured: cap}
	backend := newAnthropicForTest(t, ft)

	req := provider.StepRequest{
		System: "You are a filesystem assistant.",
		Messages: []provider.Message{
			{Role: provider.RoleSystem, Text: "Skills: demo"},
			{Role: provider.RoleUser, Text: "hello"},
			{Role: provider.RoleAssistant, Text: "", ToolCalls: []provider.ToolCall{{ID: "toolu_09", Name: "read_file", Input: json.RawMessage(`{"path":"a.txt"}`)}}},
			{Role: provider.RoleTool, Results: []provider.ToolResult{{ID: "toolu_09", Name: "read_file", Content: "contents"}}},
		},
		Tools: []provider.ToolSpec{{
			Name:        "read_file",
			Description: "Read a file.",
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{"path": map[string]any{"type": "string"}}},
		}},
	}
	if _, err := backend.StreamStep(context.Background(), req, nil); err != nil {
		t.Fatalf("StreamStep: %v", err)
	}

	var body struct {
		Model     string `json:"model"`
		MaxTokens int64  `json:"max_tokens"`
		System    []struct {
			Text string `json:"text"`
		} `json:"system"`
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(cap.body, &body); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if body.MaxTokens != 4096 {
		t.Fatalf("max_tokens = %d", body.MaxTokens)
	}
	if len(body.System) != 1 || !strings.Contains(body.System[0].Text, "filesystem assistant") {
		t.Fatalf("system = %+v", body.System)
	}
	if !strings.Contains(body.System[0].Text, "Skills: demo") {
		t.Fatalf("system-role message not folded into system param: %+v", body.System)
	}
	// System-role entries never travel as messages.
	wantRoles := []string{"user", "assistant", "user"}
	if len(body.Messages) != len(wantRoles) {
		t.Fatalf("messages = %+v", body.Messages)
	}
	for i, want := range wantRoles {
		if body.Messages[i].Role != want {
			t.Fatalf("message %d role = %q, want %q", i, body.Messages[i].Role, want)
		}
	}
	if len(body.Tools) != 1 || body.Tools[0].Name != "read_file" {
		t.Fatalf("tools = %+v", body.Tools)
	}
}
