package session

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
)

// Keypair describes a local private/public key file pair.
type Keypair struct {
	PrivatePath string
	PublicPath  string
	PublicKey   ssh.PublicKey
	Generated   bool // true when this call created the files
}

// ExpandPath resolves a leading "~" against the user home directory.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

// EnsureKeypair returns the keypair at path, generating an ed25519 pair only
// when no key exists there yet. Existing key files are never overwritten, so
// repeated calls are idempotent.
func EnsureKeypair(path, comment string) (*Keypair, error) {
	privPath, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	pubPath := privPath + ".pub"

	if fileExists(privPath) && fileExists(pubPath) {
		pub, err := readPublicKey(pubPath)
		if err != nil {
			return nil, err
		}
		return &Keypair{PrivatePath: privPath, PublicPath: pubPath, PublicKey: pub}, nil
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(privPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}

	block, err := ssh.MarshalPrivateKey(priv, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to encode private key: %w", err)
	}
	if err := os.WriteFile(privPath, pem.EncodeToMemory(block), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write private key: %w", err)
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to derive public key: %w", err)
	}
	if err := os.WriteFile(pubPath, []byte(authorizedKeyLine(sshPub, comment)+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write public key: %w", err)
	}

	return &Keypair{PrivatePath: privPath, PublicPath: pubPath, PublicKey: sshPub, Generated: true}, nil
}

// loadSigner parses the private key at path. A missing file yields
// (nil, nil) so callers can fall through to password authentication.
func loadSigner(path string) (ssh.Signer, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read private key %s: %w", path, err)
	}
	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key %s: %w", path, err)
	}
	return signer, nil
}

// readPublicKey parses an authorized-keys formatted public key file.
func readPublicKey(path string) (ssh.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key %s: %w", path, err)
	}
	pub, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key %s: %w", path, err)
	}
	return pub, nil
}

// authorizedKeyLine renders a public key as a single authorized_keys entry.
func authorizedKeyLine(pub ssh.PublicKey, comment string) string {
	line := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(pub)))
	if comment != "" {
		line += " " + comment
	}
	return line
}

// hasKeyMaterial reports whether any authorized_keys line carries the same
// key material. Comments and options on existing entries are ignored.
func hasKeyMaterial(authorizedKeys string, pub ssh.PublicKey) bool {
	want := pub.Marshal()
	for _, line := range strings.Split(authorizedKeys, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parsed, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line))
		if err != nil {
			continue
		}
		if bytes.Equal(parsed.Marshal(), want) {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
