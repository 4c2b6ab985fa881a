package proxy

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/tornago"
)

// defaultTorStartupTimeout is how long Start waits for Tor to bootstrap.
const defaultTorStartupTimeout = 3 * time.Minute

// EmbeddedTor manages a Tor daemon launched through tornago. It gives
// `webpulse scan --tor` a SOCKS5 endpoint for .onion audits without an
// external Tor installation.
//
// Bootstrapping takes one to three minutes: Tor has to download directory
// information and build circuits before the SOCKS port accepts traffic.
type EmbeddedTor struct {
	process        *tornago.TorProcess
	socksAddr      string
	startupTimeout time.Duration
}

// EmbeddedTorOption configures an EmbeddedTor.
type EmbeddedTorOption func(*EmbeddedTor)

// WithStartupTimeout sets the maximum time to wait for Tor to bootstrap.
func WithStartupTimeout(timeout time.Duration) EmbeddedTorOption {
	return func(e *EmbeddedTor) {
		e.startupTimeout = timeout
	}
}

// NewEmbeddedTor creates a manager. Call Start to launch the daemon.
func NewEmbeddedTor(opts ...EmbeddedTorOption) *EmbeddedTor {
	e := &EmbeddedTor{
		startupTimeout: defaultTorStartupTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the daemon and blocks until it has bootstrapped or the
// startup timeout passes.
func (e *EmbeddedTor) Start(ctx context.Context) error {
	// ":0" lets the OS pick free ports.
	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(e.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create Tor launch config: %w", err)
	}

	process, err := tornago.StartTorDaemon(launchCfg)
	if err != nil {
		return fmt.Errorf("failed to start embedded Tor daemon: %w", err)
	}

	if err := ctx.Err(); err != nil {
		_ = process.Stop() //nolint:errcheck // best effort cleanup
		return err
	}

	e.process = process
	e.socksAddr = process.SocksAddr()
	return nil
}

// Stop shuts the daemon down. It is safe on an unstarted instance and safe
// to call more than once.
func (e *EmbeddedTor) Stop() error {
	if e.process == nil {
		return nil
	}
	err := e.process.Stop()
	e.process = nil
	e.socksAddr = ""
	return err
}

// SocksAddr returns the daemon's SOCKS5 address, or "" when not running.
func (e *EmbeddedTor) SocksAddr() string {
	return e.socksAddr
}

// IsRunning reports whether the daemon is running.
func (e *EmbeddedTor) IsRunning() bool {
	return e.process != nil
}

// NewClient returns a SOCKS5 client for the running daemon.
func (e *EmbeddedTor) NewClient() (*Client, error) {
	if !e.IsRunning() {
		return nil, ErrTorNotRunning
	}
	return NewClient(e.socksAddr)
}
