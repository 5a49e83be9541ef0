package session

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// scriptedHost emulates the remote side of key installation: it keeps an
// in-memory authorized_keys file and answers the three commands the
// bootstrap issues.
type scriptedHost struct {
	authorizedKeys string
	commands       []string
	failSetup      bool
	failAppend     bool
}

func (h *scriptedHost) Run(_ context.Context, command string) (ExecResult, error) {
	h.commands = append(h.commands, command)
	switch {
	case strings.HasPrefix(command, "mkdir -p ~/.ssh"):
		if h.failSetup {
			return ExecResult{ExitCode: 1, Stderr: "mkdir: permission denied"}, nil
		}
		return ExecResult{}, nil
	case command == "cat ~/.ssh/authorized_keys":
		return ExecResult{Stdout: h.authorizedKeys}, nil
	case strings.HasPrefix(command, "echo '"):
		if h.failAppend {
			return ExecResult{ExitCode: 1, Stderr: "write error"}, nil
		}
		start := strings.Index(command, "'") + 1
		end := strings.LastIndex(command, "'")
		h.authorizedKeys += command[start:end] + "\n"
		return ExecResult{}, nil
	}
	return ExecResult{ExitCode: 127, Stderr: "unknown command"}, nil
}

func (h *scriptedHost) appendCount() int {
	count := 0
	for _, cmd := range h.commands {
		if strings.HasPrefix(cmd, "echo '") {
			count++
		}
	}
	return count
}

// ============================================================================
// installAuthorizedKey Tests
// ============================================================================

func TestInstallAuthorizedKey_AppendsExactlyOnce(t *testing.T) {
	pub := testPublicKey(t)
	host := &scriptedHost{}

	if err := installAuthorizedKey(context.Background(), host, pub, "generated-by-diagnostic"); err != nil {
		t.Fatalf("installAuthorizedKey() error = %v", err)
	}
	if !hasKeyMaterial(host.authorizedKeys, pub) {
		t.Fatal("key material was not written to authorized_keys")
	}
	if host.appendCount() != 1 {
		t.Fatalf("append count = %d, want 1", host.appendCount())
	}

	// Running the bootstrap again against the same host must not duplicate
	// the entry.
	if err := installAuthorizedKey(context.Background(), host, pub, "generated-by-diagnostic"); err != nil {
		t.Fatalf("installAuthorizedKey() second call error = %v", err)
	}
	if host.appendCount() != 1 {
		t.Errorf("append count after second call = %d, want 1", host.appendCount())
	}
	if n := strings.Count(host.authorizedKeys, "ssh-ed25519"); n != 1 {
		t.Errorf("authorized_keys holds %d entries, want 1", n)
	}
}

func TestInstallAuthorizedKey_MatchesForeignComment(t *testing.T) {
	pub := testPublicKey(t)
	host := &scriptedHost{
		authorizedKeys: authorizedKeyLine(pub, "operator@laptop") + "\n",
	}

	if err := installAuthorizedKey(context.Background(), host, pub, "generated-by-diagnostic"); err != nil {
		t.Fatalf("installAuthorizedKey() error = %v", err)
	}
	if host.appendCount() != 0 {
		t.Errorf("append count = %d, want 0 when material already present", host.appendCount())
	}
}

func TestInstallAuthorizedKey_PreservesOtherKeys(t *testing.T) {
	pub := testPublicKey(t)
	other := testPublicKey(t)
	host := &scriptedHost{
		authorizedKeys: authorizedKeyLine(other, "operator@laptop") + "\n",
	}

	if err := installAuthorizedKey(context.Background(), host, pub, "generated-by-diagnostic"); err != nil {
		t.Fatalf("installAuthorizedKey() error = %v", err)
	}
	if !hasKeyMaterial(host.authorizedKeys, pub) {
		t.Error("new key material missing")
	}
	if !hasKeyMaterial(host.authorizedKeys, other) {
		t.Error("pre-existing key was lost")
	}
}

func TestInstallAuthorizedKey_SetupFailure(t *testing.T) {
	host := &scriptedHost{failSetup: true}

	err := installAuthorizedKey(context.Background(), host, testPublicKey(t), "generated-by-diagnostic")
	if err == nil {
		t.Fatal("expected error when .ssh preparation fails")
	}
	if !strings.Contains(err.Error(), "prepare remote .ssh") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestInstallAuthorizedKey_AppendFailure(t *testing.T) {
	host := &scriptedHost{failAppend: true}

	err := installAuthorizedKey(context.Background(), host, testPublicKey(t), "generated-by-diagnostic")
	if err == nil {
		t.Fatal("expected error when append fails")
	}
	if !strings.Contains(err.Error(), "append") {
		t.Errorf("unexpected error: %v", err)
	}
}

// ============================================================================
// Error type Tests
// ============================================================================

func TestConnectError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &ConnectError{
		Host:  "gateway-01",
		Err:   cause,
		Hints: connectHints("edge", "192.168.1.20"),
	}

	if !strings.Contains(err.Error(), "gateway-01") {
		t.Errorf("message should name the host: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("Unwrap() should expose the underlying failure")
	}
	if len(err.Hints) != 4 {
		t.Fatalf("hint count = %d, want 4", len(err.Hints))
	}
	if want := "Try manually: ssh edge@192.168.1.20"; err.Hints[3] != want {
		t.Errorf("last hint = %q, want %q", err.Hints[3], want)
	}
}

func TestCommandError(t *testing.T) {
	timeout := &CommandError{Command: "free -b", Timeout: true}
	if !strings.Contains(timeout.Error(), "timed out") {
		t.Errorf("timeout message = %q", timeout.Error())
	}

	cause := errors.New("session channel closed")
	failed := &CommandError{Command: "free -b", Err: cause}
	if !strings.Contains(failed.Error(), "failed") {
		t.Errorf("failure message = %q", failed.Error())
	}
	if !errors.Is(failed, cause) {
		t.Error("Unwrap() should expose the underlying failure")
	}
}
