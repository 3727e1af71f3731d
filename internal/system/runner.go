package system

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/localrivet/notesmcp/internal/errortypes"
)

const (
	// DefaultCommandTimeout bounds a single platform command.
	DefaultCommandTimeout = 10 * time.Second

	// DefaultWaitDelay is how long Run waits for output pipes held open by
	// forked children once the command itself has exited or been killed.
	DefaultWaitDelay = time.Second

	// DefaultStartGrace is how long Start watches a launched program for an
	// early failing exit.
	DefaultStartGrace = 300 * time.Millisecond
)

// Output is what a finished command printed.
type Output struct {
	Stdout string
	Stderr string
}

// Runner executes platform commands.
type Runner interface {
	// Run waits for the command. A non-nil error means it could not start,
	// exited with a non-zero status or ran past the timeout.
	Run(ctx context.Context, name string, args ...string) (Output, error)

	// Start launches a program that may stay in the foreground, such as a
	// settings window, and does not wait for it to finish. A non-nil error
	// means it could not start or failed right away.
	Start(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands on the host with os/exec.
type ExecRunner struct {
	Timeout    time.Duration
	WaitDelay  time.Duration
	StartGrace time.Duration
}

// NewExecRunner creates an ExecRunner; a non-positive timeout uses DefaultCommandTimeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &ExecRunner{
		Timeout:    timeout,
		WaitDelay:  DefaultWaitDelay,
		StartGrace: DefaultStartGrace,
	}
}

// Run executes the command and captures trimmed stdout and stderr.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = r.WaitDelay

	err := cmd.Run()
	if errors.Is(err, exec.ErrWaitDelay) && ctx.Err() == nil {
		// exited cleanly; only a forked child kept the pipes open
		err = nil
	}
	out := Output{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}
	if err != nil {
		if out.Stderr == "" {
			out.Stderr = err.Error()
		}
		return out, errortypes.ExternalError(err, "command failed").
			WithField("command", name)
	}
	return out, nil
}

// Start launches the program detached from the caller's deadline. The
// process is reaped in the background.
func (r *ExecRunner) Start(ctx context.Context, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return errortypes.ExternalError(err, "command failed to start").
			WithField("command", name)
	}

	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
	}()

	grace := time.NewTimer(r.StartGrace)
	defer grace.Stop()

	select {
	case err := <-exited:
		if err != nil {
			return errortypes.ExternalError(err, "command failed").
				WithField("command", name)
		}
		return nil
	case <-grace.C:
		return nil
	case <-ctx.Done():
		return nil
	}
}
