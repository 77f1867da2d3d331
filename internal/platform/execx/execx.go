// Package execx runs external tools with a wall-clock timeout and captures
// their output for diagnostics.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single tool invocation when none is configured.
const DefaultTimeout = 5 * time.Minute

// Command is a single process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string // working directory; empty means the current one
}

// String renders the command line for logs and errors.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes commands. Implementations must return a *ToolError for any
// command that did not exit zero.
type Runner interface {
	Run(ctx context.Context, c Command) (Result, error)
}

// ToolError describes a failed invocation, carrying both output streams verbatim.
type ToolError struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Err      error
}

func (e *ToolError) Error() string {
	var b strings.Builder
	switch {
	case e.TimedOut:
		fmt.Fprintf(&b, "%s timed out", e.Command)
	case e.ExitCode >= 0:
		fmt.Fprintf(&b, "%s failed with exit code %d", e.Command, e.ExitCode)
	default:
		fmt.Fprintf(&b, "%s failed: %v", e.Command, e.Err)
	}
	if s := strings.TrimSpace(e.Stdout); s != "" {
		fmt.Fprintf(&b, "\nstdout: %s", s)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&b, "\nstderr: %s", s)
	}
	return b.String()
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// CommandRunner is the os/exec backed Runner.
type CommandRunner struct {
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a CommandRunner. A non-positive timeout selects DefaultTimeout.
func New(timeout time.Duration, logger *slog.Logger) *CommandRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &CommandRunner{timeout: timeout, logger: logger}
}

// Run executes c, blocking until it exits or the timeout expires. On expiry the
// process is killed and the returned ToolError has TimedOut set.
func (r *CommandRunner) Run(ctx context.Context, c Command) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	//nolint:gosec // G204: commands are fixed tool invocations built by adapters
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running command", "command", c.String(), "dir", c.Dir, "timeout", r.timeout)
	start := time.Now()
	err := cmd.Run()

	res := Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode(err),
	}
	if err == nil {
		r.logger.Debug("command completed", "command", c.Name, "duration", time.Since(start), "outputSize", stdout.Len())
		return res, nil
	}

	te := &ToolError{
		Command:  c.String(),
		ExitCode: res.ExitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Err:      err,
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		te.TimedOut = errors.Is(ctxErr, context.DeadlineExceeded)
		te.Err = ctxErr
	}
	r.logger.Debug("command failed", "command", c.Name, "exitCode", te.ExitCode, "timedOut", te.TimedOut)
	return res, te
}

// LookPath resolves a tool binary on PATH.
func LookPath(name string) (string, error) {
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s binary not found: %w", name, err)
	}
	return p, nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
