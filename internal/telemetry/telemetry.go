// Package telemetry emits JSONL observability events, gated by env.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EnvObserve enables JSONL emission when set to "1".
const EnvObserve = "AGENT_OBSERVE_JSON"

const eventsDir = ".agent"
const eventsFile = "events.jsonl"

// ObserveEnabled reports whether JSONL emission is on.
func ObserveEnabled() bool {
	return os.Getenv(EnvObserve) == "1"
}

// Emit writes a single JSON line to .agent/events.jsonl when AGENT_OBSERVE_JSON=1.
// It augments fields with RFC3339Nano time and the event name. Emission
// failures are reported on stderr and never interrupt the turn.
func Emit(name string, fields map[string]any) {
	if !ObserveEnabled() {
		return
	}

	// Shallow copy so callers' maps aren't mutated.
	m := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		m[k] = v
	}
	m["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: marshal: %v\n", err)
		return
	}

	if err := os.MkdirAll(eventsDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: mkdir %s: %v\n", eventsDir, err)
		return
	}

	path := filepath.Join(eventsDir, eventsFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: open %s: %v\n", path, err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: write %s: %v\n", path, err)
	}
}
