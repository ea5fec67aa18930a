// Package safety provides path policy for model-chosen tool inputs.
package safety

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// ToolError is a machine-readable error body for surfacing back to the agent as JSON.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error returns a compact, single-line JSON string to keep tool_result payloads small.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// ResolveSkillsRoot makes the skills root absolute, resolving symlinks where
// possible so later boundary checks are reliable.
func ResolveSkillsRoot(root string) (string, error) {
	if root == "" {
		root = "skills"
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("abs(skillsRoot): %w", err)
	}
	if r, err := filepath.EvalSymlinks(abs); err == nil {
		abs = r
	}
	return abs, nil
}

// ValidateScriptPath checks that path names a script lexically confined to
// absRoot and nested at least two levels below it (<root>/<skill>/<subpath...>),
// so scripts always live under an explicit skill subfolder. It rejects any
// upward-traversal segment. On success it returns the absolute target path.
func ValidateScriptPath(absRoot, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ToolError{Code: "ERR_SCRIPT_PATH_EMPTY", Message: "script path must not be empty"}
	}

	// Normalize separators before any structural checks.
	normalized := filepath.FromSlash(path)
	for _, seg := range strings.Split(filepath.ToSlash(normalized), "/") {
		if seg == ".." {
			return "", ToolError{Code: "ERR_PATH_TRAVERSAL", Message: "script path must not contain upward traversal"}
		}
	}

	candidate := filepath.Clean(normalized)
	if !filepath.IsAbs(candidate) {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			return "", fmt.Errorf("abs(%q): %w", path, err)
		}
		candidate = abs
	}

	rel, err := filepath.Rel(absRoot, candidate)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ToolError{Code: "ERR_PATH_OUTSIDE_SKILLS_ROOT", Message: "script path resolves outside the skills root"}
	}

	// Require <skill>/<subpath...>: running straight out of the skill
	// directory (or the root itself) is not allowed.
	if len(strings.Split(filepath.ToSlash(rel), "/")) < 2 {
		return "", ToolError{Code: "ERR_SCRIPT_NOT_NESTED", Message: "scripts must live under a subfolder of a skill directory"}
	}

	return candidate, nil
}

// Binary image/document extensions that read_file refuses to load.
var deniedReadExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {},
	".bmp": {}, ".webp": {}, ".avif": {}, ".pdf": {},
}

// Path segments that mark version-control internals or dependency caches.
var deniedReadSegments = map[string]struct{}{
	".git": {}, "node_modules": {}, "vendor": {},
}

// DeniedReadReason reports whether path is on the read denylist: environment
// secret files, version-control internals, dependency caches, and binary
// image/pdf extensions. This is a sensitivity/content-type filter, not a
// sandbox; callers must check it before touching the filesystem.
func DeniedReadReason(path string) (string, bool) {
	normalized := filepath.ToSlash(filepath.Clean(filepath.FromSlash(path)))

	base := normalized
	if i := strings.LastIndex(normalized, "/"); i >= 0 {
		base = normalized[i+1:]
	}
	if base == ".env" || strings.HasPrefix(base, ".env.") {
		return "reading environment files is not allowed", true
	}

	for _, seg := range strings.Split(normalized, "/") {
		if _, ok := deniedReadSegments[seg]; ok {
			return fmt.Sprintf("reading inside %s/ is not allowed", seg), true
		}
	}

	if ext := strings.ToLower(filepath.Ext(base)); ext != "" {
		if _, ok := deniedReadExtensions[ext]; ok {
			return fmt.Sprintf("binary files (%s) cannot be read as text", ext), true
		}
	}

	return "", false
}
