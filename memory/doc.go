// Package memory holds the in-process conversation log.
//
// Model:
//   - Only final text messages are stored (role + text). Tool blocks are transient.
//   - Roles strictly alternate starting with user; the turn executor is the sole writer.
//   - Nothing survives a process restart.
package memory
