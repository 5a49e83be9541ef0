package session

import "fmt"

// ConnectError reports a host that could not be reached or authenticated.
// It is fatal for the affected host only, never for the whole run.
type ConnectError struct {
	Host  string   // inventory name
	Err   error    // underlying dial or auth failure
	Hints []string // operator guidance, rendered in reports
}

// Error implements the error interface.
func (e *ConnectError) Error() string {
	return fmt.Sprintf("cannot connect to %s: %v", e.Host, e.Err)
}

// Unwrap returns the underlying failure.
func (e *ConnectError) Unwrap() error {
	return e.Err
}

// CommandError reports a remote or local command that could not produce a
// usable result. Timeout distinguishes deadline expiry from transport
// failures; a non-zero exit status is not an error.
type CommandError struct {
	Command string
	Timeout bool
	Err     error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("command %q timed out", e.Command)
	}
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

// Unwrap returns the underlying failure.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// connectHints builds the standard guidance attached to connection failures.
func connectHints(username, hostname string) []string {
	return []string{
		"Verify the host is powered on and reachable (ping, VPN status)",
		"Check the username and password in the inventory file",
		"Ensure SSH is enabled on the remote host",
		fmt.Sprintf("Try manually: ssh %s@%s", username, hostname),
	}
}
