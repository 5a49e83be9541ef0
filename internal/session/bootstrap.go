package session

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"

	"github.com/2easy4marcus/ssh-agent/internal/config"
	"github.com/2easy4marcus/ssh-agent/internal/inventory"
)

// bootstrapState names a position in the connection bootstrap.
type bootstrapState string

const (
	stateInit               bootstrapState = "init"
	stateTryKeyAuth         bootstrapState = "try_key_auth"
	stateTryPasswordAuth    bootstrapState = "try_password_auth"
	stateEnsureLocalKeypair bootstrapState = "ensure_local_keypair"
	stateInstallRemoteKey   bootstrapState = "install_remote_key"
	stateReady              bootstrapState = "ready"
	stateFailed             bootstrapState = "failed"
)

// Dialer opens diagnostic sessions. A host that only offers password
// authentication gets the local public key installed so the next run can
// authenticate with the key directly.
type Dialer struct {
	cfg    config.SSHConfig
	logger zerolog.Logger
}

// NewDialer creates a Dialer with the given transport settings.
func NewDialer(cfg config.SSHConfig, logger zerolog.Logger) *Dialer {
	return &Dialer{
		cfg:    cfg,
		logger: logger.With().Str("component", "session").Logger(),
	}
}

// Open establishes a session for the profile by walking the bootstrap state
// machine: key auth first, then password auth followed by a best-effort key
// install. Exactly one authentication method is active on the returned
// session. Failures are scoped to this host.
func (d *Dialer) Open(ctx context.Context, profile *inventory.HostProfile) (*Session, error) {
	logger := d.logger.With().Str("host", profile.Name).Logger()
	conn := profile.Connection

	keyPath := conn.SSHKeyPath
	if keyPath == "" {
		keyPath = d.cfg.KeyPath
	}

	state := stateInit
	logger.Debug().Str("state", string(state)).Msg("bootstrap")

	// TryKeyAuth
	state = stateTryKeyAuth
	logger.Debug().Str("state", string(state)).Str("key_path", keyPath).Msg("bootstrap")
	signer, err := loadSigner(keyPath)
	if err != nil {
		logger.Warn().Err(err).Msg("unusable private key, falling back to password")
	}
	if signer != nil {
		client, dialErr := d.dial(ctx, conn, ssh.PublicKeys(signer))
		if dialErr == nil {
			state = stateReady
			logger.Debug().Str("state", string(state)).Str("auth", string(AuthKey)).Msg("bootstrap")
			return newSession(profile.Name, client, AuthKey, d.cfg.CommandTimeout, logger), nil
		}
		logger.Debug().Err(dialErr).Msg("key auth failed")
	}

	// TryPasswordAuth
	if conn.Password == "" {
		state = stateFailed
		logger.Debug().Str("state", string(state)).Msg("bootstrap")
		return nil, &ConnectError{
			Host:  profile.Name,
			Err:   fmt.Errorf("no authentication method available for %s", conn.Address()),
			Hints: connectHints(conn.Username, conn.Hostname),
		}
	}
	state = stateTryPasswordAuth
	logger.Debug().Str("state", string(state)).Msg("bootstrap")
	client, dialErr := d.dial(ctx, conn, ssh.Password(conn.Password))
	if dialErr != nil {
		state = stateFailed
		logger.Debug().Str("state", string(state)).Msg("bootstrap")
		return nil, &ConnectError{
			Host:  profile.Name,
			Err:   dialErr,
			Hints: connectHints(conn.Username, conn.Hostname),
		}
	}
	sess := newSession(profile.Name, client, AuthPassword, d.cfg.CommandTimeout, logger)

	// EnsureLocalKeypair and InstallRemoteKey are best effort: a failure
	// leaves the password session usable and is retried on the next run.
	state = stateEnsureLocalKeypair
	logger.Debug().Str("state", string(state)).Msg("bootstrap")
	pair, err := EnsureKeypair(keyPath, d.cfg.KeyComment)
	if err != nil {
		logger.Warn().Err(err).Msg("could not prepare local keypair")
		return sess, nil
	}
	if pair.Generated {
		logger.Info().Str("path", pair.PrivatePath).Msg("generated local keypair")
	}

	state = stateInstallRemoteKey
	logger.Debug().Str("state", string(state)).Msg("bootstrap")
	if err := installAuthorizedKey(ctx, sess, pair.PublicKey, d.cfg.KeyComment); err != nil {
		logger.Warn().Err(err).Msg("could not install public key on host")
	} else {
		logger.Info().Str("host", profile.Name).Msg("public key installed for future runs")
	}

	state = stateReady
	logger.Debug().Str("state", string(state)).Str("auth", string(AuthPassword)).Msg("bootstrap")
	return sess, nil
}

// dial performs the TCP connect and SSH handshake with the given auth
// method. Edge hosts are reached over a VPN overlay, so host keys are
// accepted on first contact.
func (d *Dialer) dial(ctx context.Context, conn inventory.ConnectionSpec, auth ssh.AuthMethod) (*ssh.Client, error) {
	clientCfg := &ssh.ClientConfig{
		User:            conn.Username,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         d.cfg.ConnectTimeout,
	}

	addr := conn.Address()
	netConn, err := (&net.Dialer{Timeout: d.cfg.ConnectTimeout}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	// Bound the handshake as well; NewClientConn does not honor the
	// ClientConfig timeout on its own.
	if d.cfg.ConnectTimeout > 0 {
		netConn.SetDeadline(time.Now().Add(d.cfg.ConnectTimeout))
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, clientCfg)
	if err != nil {
		netConn.Close()
		return nil, fmt.Errorf("handshake with %s: %w", addr, err)
	}
	netConn.SetDeadline(time.Time{})

	return ssh.NewClient(sshConn, chans, reqs), nil
}

// installAuthorizedKey appends the public key to the remote authorized_keys
// unless an entry with the same key material is already present.
func installAuthorizedKey(ctx context.Context, runner Runner, pub ssh.PublicKey, comment string) error {
	setup := "mkdir -p ~/.ssh && chmod 700 ~/.ssh && touch ~/.ssh/authorized_keys && chmod 600 ~/.ssh/authorized_keys"
	res, err := runner.Run(ctx, setup)
	if err != nil {
		return fmt.Errorf("failed to prepare remote .ssh directory: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("failed to prepare remote .ssh directory: %s", strings.TrimSpace(res.Stderr))
	}

	res, err = runner.Run(ctx, "cat ~/.ssh/authorized_keys")
	if err != nil {
		return fmt.Errorf("failed to read remote authorized_keys: %w", err)
	}
	if hasKeyMaterial(res.Stdout, pub) {
		return nil
	}

	line := authorizedKeyLine(pub, comment)
	res, err = runner.Run(ctx, fmt.Sprintf("echo '%s' >> ~/.ssh/authorized_keys", line))
	if err != nil {
		return fmt.Errorf("failed to append to remote authorized_keys: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("failed to append to remote authorized_keys: %s", strings.TrimSpace(res.Stderr))
	}
	return nil
}
