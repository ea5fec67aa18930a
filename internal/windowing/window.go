// Package windowing bounds the message view sent to the model on each step.
package windowing

import "github.com/MykalMachon/skilled-agent/internal/provider"

// KeepRecent is the number of trailing messages retained alongside the
// anchoring first message.
const KeepRecent = 8

// Stats summarizes the result of window preparation for telemetry.
type Stats struct {
	Total    int
	Kept     int
	Dropped  int
	Windowed bool
}

// PrepareSendWindow returns the message view for the upcoming step.
//
// When the candidate list is longer than KeepRecent it is rewritten to the
// first message (the system anchor) followed by the most recent KeepRecent
// messages, with empty slots filtered out; otherwise it passes through
// unmodified. This is a recency-biased window, not a summarizer: content from
// the truncated middle is not visible to the model on later steps.
func PrepareSendWindow(msgs []provider.Message) ([]provider.Message, Stats) {
	if len(msgs) <= KeepRecent {
		return msgs, Stats{Total: len(msgs), Kept: len(msgs)}
	}

	out := make([]provider.Message, 0, KeepRecent+1)
	for _, m := range append([]provider.Message{msgs[0]}, msgs[len(msgs)-KeepRecent:]...) {
		if m.Role == "" {
			continue
		}
		out = append(out, m)
	}
	return out, Stats{
		Total:    len(msgs),
		Kept:     len(out),
		Dropped:  len(msgs) - len(out),
		Windowed: true,
	}
}
