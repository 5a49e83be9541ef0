// Package session establishes remote command channels to edge hosts,
// upgrading password logins to key-based authentication along the way.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"
)

// AuthMethod identifies how a session authenticated.
type AuthMethod string

const (
	AuthKey      AuthMethod = "key"
	AuthPassword AuthMethod = "password"
	AuthLocal    AuthMethod = "local" // host addressed as localhost, no ssh involved
)

// ExecResult carries the captured outcome of one command. A non-zero exit
// code is a result, not an error.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes a shell command and returns its captured output. Both the
// remote Session and the local runner satisfy it, so checks do not care
// where a command runs.
type Runner interface {
	Run(ctx context.Context, command string) (ExecResult, error)
}

// Session is a live command channel to one host. It is owned by a single
// worker and must not be shared across hosts.
type Session struct {
	host    string
	client  *ssh.Client
	auth    AuthMethod
	timeout time.Duration
	logger  zerolog.Logger
}

func newSession(host string, client *ssh.Client, auth AuthMethod, timeout time.Duration, logger zerolog.Logger) *Session {
	return &Session{
		host:    host,
		client:  client,
		auth:    auth,
		timeout: timeout,
		logger:  logger,
	}
}

// AuthMethod returns the authentication method the session is using.
func (s *Session) AuthMethod() AuthMethod {
	return s.auth
}

// Run executes a command on the remote host, bounded by the configured
// per-command timeout. A timeout yields a CommandError and leaves the
// session usable for further commands.
func (s *Session) Run(ctx context.Context, command string) (ExecResult, error) {
	channel, err := s.client.NewSession()
	if err != nil {
		return ExecResult{}, &CommandError{Command: command, Err: fmt.Errorf("failed to open channel: %w", err)}
	}
	defer channel.Close()

	var stdout, stderr bytes.Buffer
	channel.Stdout = &stdout
	channel.Stderr = &stderr

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- channel.Run(command) }()

	select {
	case <-ctx.Done():
		// Closing the channel unblocks the goroutine; partial output is
		// discarded because the buffers are still being written to.
		s.logger.Debug().Str("command", command).Dur("timeout", s.timeout).Msg("command timed out")
		return ExecResult{}, &CommandError{Command: command, Timeout: true, Err: ctx.Err()}
	case err := <-done:
		result := ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}
		if err != nil {
			var exitErr *ssh.ExitError
			if errors.As(err, &exitErr) {
				result.ExitCode = exitErr.ExitStatus()
				return result, nil
			}
			return result, &CommandError{Command: command, Err: err}
		}
		return result, nil
	}
}

// Close releases the underlying connection.
func (s *Session) Close() error {
	return s.client.Close()
}
