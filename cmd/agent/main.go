package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/MykalMachon/skilled-agent/internal/fsops"
	"github.com/MykalMachon/skilled-agent/internal/provider"
	"github.com/MykalMachon/skilled-agent/internal/runner"
	"github.com/MykalMachon/skilled-agent/internal/skills"
	"github.com/MykalMachon/skilled-agent/memory"
	"github.com/MykalMachon/skilled-agent/tools"
)

func main() {
	// Unknown backend selector is a fatal configuration fault: abort before
	// any conversation loop begins.
	backend, err := provider.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	root, err := fsops.SkillsRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	descs, err := skills.Load(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	system := skills.BuildSystemPrompt(root, descs)

	conv := memory.New()
	r := runner.New(backend, tools.Registry(), conv, system, os.Stdout)

	// Graceful shutdown on Ctrl-C (SIGINT) / SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		<-sigch
		fmt.Println("\nExiting...")
		cancel()
	}()

	fmt.Printf("Agent ready with %d skill(s). Ctrl-C to quit.\n", len(descs))

	if err := repl(ctx, r, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "warning: stdin read error: %v\n", err)
	}
}

// repl drives the prompt/read/execute loop until EOF or cancellation.
// A blank line re-prompts without starting a turn, so the transcript
// only ever grows from real input.
func repl(ctx context.Context, r *runner.Runner, in io.Reader, out, errOut io.Writer) error {
	scanner := bufio.NewScanner(in)

	// stdin reader goroutine -> lines into channel
	inputCh := make(chan string)
	go func() {
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
		close(inputCh)
	}()

	for {
		fmt.Fprint(out, "\x1b[94mYou\x1b[0m: ")
		var (
			user string
			ok   bool
		)
		select {
		case <-ctx.Done():
			return nil
		case user, ok = <-inputCh:
			if !ok {
				return scanner.Err()
			}
		}
		if strings.TrimSpace(user) == "" {
			continue
		}

		fmt.Fprint(out, "\x1b[93mAgent\x1b[0m: ")
		if err := r.RunTurn(ctx, user); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
	}
}
