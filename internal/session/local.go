package session

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Local executes commands on the operator machine through the shell, so the
// same command strings work against a Session and a Local runner. It backs
// the VPN reachability probe and local device enumeration.
type Local struct {
	timeout time.Duration
}

// NewLocal creates a local runner with the given per-command timeout.
func NewLocal(timeout time.Duration) *Local {
	return &Local{timeout: timeout}
}

// Run executes the command with "sh -c", bounded by the configured timeout.
func (l *Local) Run(ctx context.Context, command string) (ExecResult, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ExecResult{}, &CommandError{Command: command, Timeout: true, Err: ctx.Err()}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, &CommandError{Command: command, Err: err}
	}
	return result, nil
}
