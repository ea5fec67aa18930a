package fsops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/MykalMachon/skilled-agent/internal/safety"
)

// ScriptTimeout bounds the wall-clock time of one script invocation.
const ScriptTimeout = 10 * time.Second

// RunScript validates path against the skills root, then runs the target as an
// isolated child process with a hard timeout and captured stderr.
//
// Expected conditions come back as result strings the model can react to:
//   - missing target: "Script not found"
//   - non-executable target: "Script is not executable"
//   - timeout: a timeout message; the child is killed, never left running
//   - non-zero exit: exit code plus captured stderr
//
// On success, stdout is the return value verbatim. Policy violations and
// unexpected I/O faults propagate as errors.
func RunScript(ctx context.Context, path string, args []string) (string, error) {
	root, err := SkillsRoot()
	if err != nil {
		return "", err
	}

	abs, err := safety.ValidateScriptPath(root, path)
	if err != nil {
		return "", err
	}

	fi, err := os.Stat(abs)
	if errors.Is(err, os.ErrNotExist) {
		return "Script not found", nil
	}
	if err != nil {
		return "", err
	}
	if fi.IsDir() || fi.Mode()&0o111 == 0 {
		return "Script is not executable", nil
	}

	ctx, cancel := context.WithTimeout(ctx, ScriptTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, abs, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Sprintf("Script timed out after %s", ScriptTimeout), nil
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return fmt.Sprintf("Script failed with exit code %d: %s",
				exitErr.ExitCode(), strings.TrimSpace(stderr.String())), nil
		}
		return "", runErr
	}
	return stdout.String(), nil
}
