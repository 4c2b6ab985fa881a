package proxy

import "errors"

// Proxy connectivity errors.
//
// Design decision: We define specific errors rather than wrapping all
// failures generically, so the CLI can tell "nothing listens there" apart
// from "something listens but is not a SOCKS5 proxy".
var (
	// ErrNotSOCKS5 is returned when the configured address responds but does
	// not speak SOCKS5, e.g. an HTTP proxy listening on the expected port.
	ErrNotSOCKS5 = errors.New("proxy is not a SOCKS5 proxy")

	// ErrCannotConnect is returned when no TCP connection to the proxy can
	// be established.
	ErrCannotConnect = errors.New("cannot connect to proxy")

	// ErrTimeout is returned when the proxy does not answer in time.
	ErrTimeout = errors.New("timeout connecting to proxy")

	// ErrInvalidAddress is returned when the proxy address is not host:port.
	ErrInvalidAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrTorNotRunning is returned when a client is requested from an
	// embedded Tor daemon that has not been started.
	ErrTorNotRunning = errors.New("embedded Tor daemon is not running")

	// ErrInvalidOnionAddress is returned for hosts ending in .onion that are
	// not valid v3 addresses.
	ErrInvalidOnionAddress = errors.New("invalid onion address")

	// ErrV2AddressDeprecated is returned for v2 onion addresses, which
	// stopped working in October 2021.
	ErrV2AddressDeprecated = errors.New("v2 onion addresses are deprecated and no longer functional")
)

// Status is the result of probing a SOCKS5 proxy.
type Status int

const (
	// StatusOK indicates a working SOCKS5 proxy.
	StatusOK Status = iota

	// StatusWrongType indicates something answered that is not SOCKS5.
	StatusWrongType

	// StatusCannotConnect indicates no connection could be made.
	StatusCannotConnect

	// StatusTimeout indicates the probe timed out.
	StatusTimeout
)

// String returns a human-readable description of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWrongType:
		return "wrong type (not SOCKS5)"
	case StatusCannotConnect:
		return "cannot connect"
	case StatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Err returns the error matching this status, or nil for StatusOK.
func (s Status) Err() error {
	switch s {
	case StatusOK:
		return nil
	case StatusWrongType:
		return ErrNotSOCKS5
	case StatusCannotConnect:
		return ErrCannotConnect
	case StatusTimeout:
		return ErrTimeout
	default:
		return errors.New("unknown proxy status")
	}
}
