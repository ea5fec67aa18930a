// Package runner drives one conversational turn at a time: it exchanges
// messages with the selected model backend and dispatches tool calls.
//
// Invariants:
//   - a tool call request and its result stay adjacent within the turn;
//   - both the tool-activity channel and the text-token channel are fully
//     drained before the turn completes;
//   - the conversation log gains exactly one user and one assistant message
//     per turn, in that order.
//
// Flow:
//
//	user(text) -> assistant(tool calls) -> tool(results) -> ... -> assistant(text)
package runner
