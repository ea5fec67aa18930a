package fsops

import (
	"errors"
	"fmt"
	"os"

	"github.com/MykalMachon/skilled-agent/internal/safety"
)

// MaxReadBytes bounds the size of a file read_file will load, keeping
// worst-case step latency and memory predictable.
const MaxReadBytes = 1_000_000

// ReadFile returns the full text content of path. Denylisted paths are
// rejected before any filesystem access. A missing file returns "File not
// found"; a file larger than MaxReadBytes returns a too-large message instead
// of its content. Other I/O failures propagate as errors.
func ReadFile(path string) (string, error) {
	if reason, denied := safety.DeniedReadReason(path); denied {
		return "", safety.ToolError{Code: "ERR_DENIED_READ", Message: reason}
	}

	fi, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return "File not found", nil
	}
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return "", safety.ToolError{Code: "ERR_NOT_A_FILE", Message: "path is a directory"}
	}
	if fi.Size() > MaxReadBytes {
		return fmt.Sprintf("File is too large to read (%d bytes, limit %d)", fi.Size(), MaxReadBytes), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
