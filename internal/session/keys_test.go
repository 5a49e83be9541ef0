package session

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

// ============================================================================
// EnsureKeypair Tests
// ============================================================================

func TestEnsureKeypair_GeneratesOnce(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "keys", "id_ed25519")

	first, err := EnsureKeypair(keyPath, "generated-by-diagnostic")
	if err != nil {
		t.Fatalf("EnsureKeypair() error = %v", err)
	}
	if !first.Generated {
		t.Error("first call should generate the keypair")
	}

	privBytes, err := os.ReadFile(first.PrivatePath)
	if err != nil {
		t.Fatalf("failed to read private key: %v", err)
	}

	info, err := os.Stat(first.PrivatePath)
	if err != nil {
		t.Fatalf("failed to stat private key: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("private key mode = %o, want 600", perm)
	}

	// A second call must detect the existing key and skip generation.
	second, err := EnsureKeypair(keyPath, "generated-by-diagnostic")
	if err != nil {
		t.Fatalf("EnsureKeypair() second call error = %v", err)
	}
	if second.Generated {
		t.Error("second call should not regenerate the keypair")
	}

	privAfter, err := os.ReadFile(second.PrivatePath)
	if err != nil {
		t.Fatalf("failed to re-read private key: %v", err)
	}
	if !bytes.Equal(privBytes, privAfter) {
		t.Error("private key content changed on second call")
	}
	if !bytes.Equal(first.PublicKey.Marshal(), second.PublicKey.Marshal()) {
		t.Error("public key material changed on second call")
	}
}

func TestEnsureKeypair_LoadableBySigner(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "id_ed25519")

	pair, err := EnsureKeypair(keyPath, "generated-by-diagnostic")
	if err != nil {
		t.Fatalf("EnsureKeypair() error = %v", err)
	}

	signer, err := loadSigner(keyPath)
	if err != nil {
		t.Fatalf("loadSigner() error = %v", err)
	}
	if signer == nil {
		t.Fatal("loadSigner() returned nil for existing key")
	}
	if !bytes.Equal(signer.PublicKey().Marshal(), pair.PublicKey.Marshal()) {
		t.Error("signer public key does not match the generated pair")
	}
}

func TestEnsureKeypair_PublicKeyComment(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "id_ed25519")

	if _, err := EnsureKeypair(keyPath, "generated-by-diagnostic"); err != nil {
		t.Fatalf("EnsureKeypair() error = %v", err)
	}

	data, err := os.ReadFile(keyPath + ".pub")
	if err != nil {
		t.Fatalf("failed to read public key: %v", err)
	}
	_, comment, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		t.Fatalf("public key file is not valid authorized_keys format: %v", err)
	}
	if comment != "generated-by-diagnostic" {
		t.Errorf("comment = %q, want generated-by-diagnostic", comment)
	}
}

// ============================================================================
// loadSigner Tests
// ============================================================================

func TestLoadSigner_MissingFile(t *testing.T) {
	signer, err := loadSigner(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Errorf("loadSigner() error = %v, want nil for missing file", err)
	}
	if signer != nil {
		t.Error("loadSigner() should return nil signer for missing file")
	}
}

func TestLoadSigner_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken")
	if err := os.WriteFile(path, []byte("not a key"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := loadSigner(path); err == nil {
		t.Error("loadSigner() should fail on unparseable key material")
	}
}

// ============================================================================
// ExpandPath Tests
// ============================================================================

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	got, err := ExpandPath("~/.ssh/id_ed25519")
	if err != nil {
		t.Fatalf("ExpandPath() error = %v", err)
	}
	if got != filepath.Join(home, ".ssh", "id_ed25519") {
		t.Errorf("ExpandPath() = %s, want under %s", got, home)
	}

	abs, err := ExpandPath("/etc/keys/id")
	if err != nil {
		t.Fatalf("ExpandPath() error = %v", err)
	}
	if abs != "/etc/keys/id" {
		t.Errorf("absolute path should pass through, got %s", abs)
	}
}

// ============================================================================
// Key material matching Tests
// ============================================================================

func testPublicKey(t *testing.T) ssh.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("failed to wrap key: %v", err)
	}
	return sshPub
}

func TestHasKeyMaterial(t *testing.T) {
	pub := testPublicKey(t)
	other := testPublicKey(t)

	line := authorizedKeyLine(pub, "generated-by-diagnostic")

	tests := []struct {
		name     string
		content  string
		expected bool
	}{
		{
			name:     "empty file",
			content:  "",
			expected: false,
		},
		{
			name:     "exact line present",
			content:  line + "\n",
			expected: true,
		},
		{
			name:     "same material different comment",
			content:  authorizedKeyLine(pub, "someone@workstation") + "\n",
			expected: true,
		},
		{
			name:     "different key only",
			content:  authorizedKeyLine(other, "generated-by-diagnostic") + "\n",
			expected: false,
		},
		{
			name:     "present among noise",
			content:  "# managed keys\ngarbage line\n" + line + "\n",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasKeyMaterial(tt.content, pub); got != tt.expected {
				t.Errorf("hasKeyMaterial() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAuthorizedKeyLine(t *testing.T) {
	pub := testPublicKey(t)

	line := authorizedKeyLine(pub, "generated-by-diagnostic")
	if !strings.HasSuffix(line, " generated-by-diagnostic") {
		t.Errorf("line should end with the comment, got %q", line)
	}
	if strings.Contains(line, "\n") {
		t.Error("line should not contain a newline")
	}

	parsed, comment, _, _, err := ssh.ParseAuthorizedKey([]byte(line))
	if err != nil {
		t.Fatalf("line is not parseable: %v", err)
	}
	if comment != "generated-by-diagnostic" {
		t.Errorf("comment = %q", comment)
	}
	if !bytes.Equal(parsed.Marshal(), pub.Marshal()) {
		t.Error("parsed material differs from input")
	}
}
