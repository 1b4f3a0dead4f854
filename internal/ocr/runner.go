package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

const defaultWaitDelay = 3 * time.Second

// Runner is a subprocess-backed engine. The runner command receives
// `file <path>` as its trailing arguments and must print a JSON payload on
// stdout. Cancelling the context kills the process, so a timed-out attempt
// never leaves the engine running.
type Runner struct {
	Command string
	Args    []string
	// WaitDelay bounds how long Run waits for pipe teardown after the
	// process is killed. Zero means defaultWaitDelay.
	WaitDelay time.Duration
}

// NewRunner constructs a subprocess engine for the given command.
func NewRunner(command string, args ...string) *Runner {
	return &Runner{Command: command, Args: args}
}

// Run executes the engine process and decodes its stdout.
func (r *Runner) Run(ctx context.Context, path string) (*RawResult, error) {
	if r.Command == "" {
		return nil, fmt.Errorf("ocr runner command not configured")
	}

	argv := append(append([]string(nil), r.Args...), "file", path)
	cmd := exec.CommandContext(ctx, r.Command, argv...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	delay := r.WaitDelay
	if delay <= 0 {
		delay = defaultWaitDelay
	}
	cmd.WaitDelay = delay

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ocr runner: %w (stderr: %s)", err, truncate(stderr.String(), 200))
	}

	res, err := DecodeRawResult(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	return res, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ Engine = (*Runner)(nil)
