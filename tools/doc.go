// Package tools defines tool contracts and implementations.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Skill tools: run_script (skills-root confined, 10s timeout),
//     list_files (non-recursive), read_file (denylist + size cap).
//   - Expected failures (missing target, bad permissions, timeout, oversize)
//     are returned as result strings the model can react to; only policy
//     violations and unexpected I/O faults surface as errors.
package tools
