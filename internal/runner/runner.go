package runner

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/MykalMachon/skilled-agent/internal/provider"
	"github.com/MykalMachon/skilled-agent/internal/telemetry"
	"github.com/MykalMachon/skilled-agent/internal/windowing"
	"github.com/MykalMachon/skilled-agent/memory"
	"github.com/MykalMachon/skilled-agent/tools"
)

// MaxSteps bounds the number of inference calls within one turn. Reaching it
// is a soft cutoff: the turn completes with whatever text accumulated.
const MaxSteps = 10

// budgetNotice closes a turn whose step budget ran out before any text arrived,
// so the assistant message is never empty.
const budgetNotice = "(step budget reached before a final answer; ask me to continue)"

// Runner drives one conversational turn at a time against a model backend,
// dispatching tool calls and merging tool activity with streamed text.
type Runner struct {
	Backend provider.Backend
	Tools   []tools.ToolDefinition
	Conv    *memory.Conversation
	System  string
	Out     io.Writer

	byName map[string]*tools.ToolDefinition
	specs  []provider.ToolSpec
}

func New(backend provider.Backend, toolDefs []tools.ToolDefinition, conv *memory.Conversation, system string, out io.Writer) *Runner {
	r := &Runner{
		Backend: backend,
		Tools:   toolDefs,
		Conv:    conv,
		System:  system,
		Out:     out,
		byName:  make(map[string]*tools.ToolDefinition, len(toolDefs)),
	}
	for i := range toolDefs {
		r.byName[toolDefs[i].Name] = &toolDefs[i]
		r.specs = append(r.specs, provider.ToolSpec{
			Name:        toolDefs[i].Name,
			Description: toolDefs[i].Description,
			InputSchema: toolDefs[i].SchemaMap(),
		})
	}
	return r
}

// activityKind tags the two discrete tool events on the activity channel.
type activityKind string

const (
	toolRequested activityKind = "tool_call"
	toolCompleted activityKind = "tool_result"
)

type activityEvent struct {
	Kind    activityKind
	Tool    string
	Preview string
}

// RunTurn executes one full turn: append the user message, drive the model
// through up to MaxSteps inference steps with tool dispatch in between, and
// append the final assistant text. Tool activity and streamed text are drained
// concurrently and both are fully consumed before the turn completes.
//
// The turn always closes the conversation pair: on a mid-turn backend fault
// the accumulated text (or a brief failure note) is still appended, and the
// fault is returned for the caller to surface.
func (r *Runner) RunTurn(ctx context.Context, user string) error {
	turnID, ok := telemetry.TurnIDFromContext(ctx)
	if !ok {
		turnID = telemetry.NewTurnID()
		ctx = telemetry.WithTurnID(ctx, turnID)
	}
	telemetry.Emit("turn_started", map[string]any{"turn_id": turnID})
	telemetry.EmitTurnFeatures(ctx, user)

	if err := r.Conv.AppendUser(user); err != nil {
		return err
	}

	// Candidate message list for the first step: system anchor, then the
	// full history snapshot (which already ends with the new user message).
	working := make([]provider.Message, 0, r.Conv.Len()+1)
	working = append(working, provider.Message{Role: provider.RoleSystem, Text: r.System})
	for _, m := range r.Conv.Snapshot() {
		working = append(working, provider.Message{Role: provider.Role(m.Role), Text: m.Text})
	}

	// One turn, two event channels: discrete tool activity and incremental
	// text. Two drain goroutines, joined before the turn is marked complete.
	activityCh := make(chan activityEvent, 16)
	tokenCh := make(chan string, 64)
	var assistant strings.Builder
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for ev := range activityCh {
			fmt.Fprintf(r.Out, "\n\x1b[92m%s\x1b[0m %s(%s)\n", ev.Kind, ev.Tool, ev.Preview)
		}
	}()
	go func() {
		defer wg.Done()
		for frag := range tokenCh {
			fmt.Fprint(r.Out, frag)
			assistant.WriteString(frag)
		}
	}()

	var turnErr error
	steps := 0
	stopReason := ""
	for steps < MaxSteps {
		steps++

		window, stats := windowing.PrepareSendWindow(working)
		telemetry.Emit("window_prepared", map[string]any{
			"turn_id":  turnID,
			"step":     steps,
			"total":    stats.Total,
			"kept":     stats.Kept,
			"dropped":  stats.Dropped,
			"windowed": stats.Windowed,
		})

		res, err := r.Backend.StreamStep(ctx, provider.StepRequest{
			Messages: window,
			Tools:    r.specs,
		}, func(frag string) { tokenCh <- frag })
		if err != nil {
			turnErr = err
			break
		}
		stopReason = res.StopReason

		working = append(working, provider.Message{
			Role:      provider.RoleAssistant,
			Text:      res.Text,
			ToolCalls: res.ToolCalls,
		})
		if len(res.ToolCalls) == 0 {
			break // terminal: the model stopped without requesting tools
		}

		results := make([]provider.ToolResult, 0, len(res.ToolCalls))
		for _, call := range res.ToolCalls {
			activityCh <- activityEvent{Kind: toolRequested, Tool: call.Name, Preview: compactPreview(string(call.Input))}
			out, isErr := r.execTool(ctx, call)
			activityCh <- activityEvent{Kind: toolCompleted, Tool: call.Name, Preview: compactPreview(out)}
			results = append(results, provider.ToolResult{
				ID:      call.ID,
				Name:    call.Name,
				Content: out,
				IsError: isErr,
			})
		}
		working = append(working, provider.Message{Role: provider.RoleTool, Results: results})
	}

	close(activityCh)
	close(tokenCh)
	wg.Wait()
	fmt.Fprintln(r.Out)

	final := assistant.String()
	if strings.TrimSpace(final) == "" {
		if turnErr != nil {
			final = "(the model request failed before producing a reply)"
		} else {
			final = budgetNotice
		}
	}
	if err := r.Conv.AppendAssistant(final); err != nil {
		return err
	}

	telemetry.Emit("turn_completed", map[string]any{
		"turn_id":     turnID,
		"steps":       steps,
		"chars":       len(final),
		"stop_reason": stopReason,
	})
	return turnErr
}

// execTool dispatches one model-requested call through the fixed tool table.
// Expected failures are already descriptive result strings; handler errors
// become error-flagged results so the model can see and react to them.
func (r *Runner) execTool(ctx context.Context, call provider.ToolCall) (string, bool) {
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	start := time.Now()
	emit := func(outputSize int, errStr string) {
		fields := map[string]any{
			"tool_name":   call.Name,
			"duration_ms": time.Since(start).Milliseconds(),
			"input_size":  len(call.Input),
			"output_size": outputSize,
			"turn_id":     turnID,
		}
		if errStr != "" {
			fields["error"] = errStr
		} else {
			fields["error"] = nil
		}
		telemetry.Emit("tool_exec", fields)
	}

	def, ok := r.byName[call.Name]
	if !ok {
		emit(0, "tool not found")
		return "tool not found", true
	}

	resp, err := def.Function(ctx, call.Input)
	if err != nil {
		// Keep the detailed message for the model; telemetry gets a generic
		// marker to avoid leaking payloads.
		emit(0, "tool error")
		return err.Error(), true
	}
	emit(len(resp), "")
	return resp, false
}

const previewRunes = 80

// compactPreview collapses whitespace and caps the result for one-line
// activity annotations.
func compactPreview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= previewRunes {
		return s
	}
	return string(r[:previewRunes]) + "…"
}
