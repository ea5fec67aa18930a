package telemetry

import (
	"context"

	"github.com/MykalMachon/skilled-agent/internal/metrics"
)

// EmitTurnFeatures records size features of the operator input opening a turn.
func EmitTurnFeatures(ctx context.Context, user string) {
	if !ObserveEnabled() {
		return
	}
	turnID, _ := TurnIDFromContext(ctx)
	f := metrics.CountFeatures(user)
	Emit("turn_features", map[string]any{
		"turn_id": turnID,
		"user": map[string]any{
			"bytes": f.Bytes,
			"runes": f.Runes,
			"words": f.Words,
			"lines": f.Lines,
		},
	})
}
