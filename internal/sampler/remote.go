package sampler

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// DefaultProbeTimeout bounds a single remote probe. A remote read crosses the
// network, so unlike the local file source it gets a deadline; a probe that
// exceeds it publishes the sentinel for that tick.
const DefaultProbeTimeout = time.Second

// SSHSourceConfig configures a remote counter source.
type SSHSourceConfig struct {
	// Host is the remote address in host or host:port form.
	Host string
	// User is the SSH login user.
	User string
	// KeyFile is the path to a private key used for public-key auth.
	KeyFile string
	// CounterPath is the counter file path on the remote host.
	CounterPath string
	// ProbeTimeout bounds a single probe. Zero means DefaultProbeTimeout.
	ProbeTimeout time.Duration
}

// SSHSource probes a counter file on a remote host over SSH. The client
// connection is established once at construction and held until Close; each
// probe runs in a fresh session.
type SSHSource struct {
	cfg    SSHSourceConfig
	mu     sync.Mutex
	client *ssh.Client
}

// DialSSHSource connects to the remote host and returns a source for its
// counter file. A failed dial or auth setup wraps ErrResourceUnavailable,
// matching the local source's fatal-at-startup contract.
func DialSSHSource(cfg SSHSourceConfig) (*SSHSource, error) {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}

	key, err := os.ReadFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("%w: read key %s: %v", ErrResourceUnavailable, cfg.KeyFile, err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: parse key %s: %v", ErrResourceUnavailable, cfg.KeyFile, err)
	}

	addr := cfg.Host
	if !strings.Contains(addr, ":") {
		addr += ":22"
	}

	sshConfig := &ssh.ClientConfig{
		User: cfg.User,
		Auth: []ssh.AuthMethod{ssh.PublicKeys(signer)},
		// TODO: SECURITY - replace with knownhosts.New once a known_hosts
		// location is configurable.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         cfg.ProbeTimeout,
	}

	client, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrResourceUnavailable, addr, err)
	}

	return &SSHSource{cfg: cfg, client: client}, nil
}

// Probe reads the remote counter file. The read is bounded by the configured
// probe timeout so a stalled connection cannot wedge the sampling loop.
func (s *SSHSource) Probe() (string, error) {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()

	if client == nil {
		return "", fmt.Errorf("probe %s: source closed", s.cfg.CounterPath)
	}

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("session to %s: %w", s.cfg.Host, err)
	}
	defer session.Close()

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := session.Output("cat " + shellQuote(s.cfg.CounterPath))
		done <- result{out, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("reading remote %s: %w", s.cfg.CounterPath, r.err)
		}
		return string(r.out), nil
	case <-time.After(s.cfg.ProbeTimeout):
		_ = session.Signal(ssh.SIGKILL)
		return "", fmt.Errorf("reading remote %s: probe timed out after %v", s.cfg.CounterPath, s.cfg.ProbeTimeout)
	}
}

// Close tears down the SSH connection. Safe to call multiple times.
func (s *SSHSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

// shellQuote single-quotes a path for use in a remote command.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
