package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

// Kind classifies a fetch failure.
type Kind int

const (
	// KindGeneric covers every transport failure that is neither a timeout
	// nor a connection failure, e.g. TLS handshake or protocol errors.
	KindGeneric Kind = iota

	// KindTimeout means the fetch exceeded the configured timeout.
	KindTimeout

	// KindConnect means no connection to the host could be established,
	// including DNS resolution failures.
	KindConnect
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnect:
		return "connect"
	default:
		return "generic"
	}
}

// Reason lengths kept in user-facing messages.
const (
	connectReasonMax = 100
	genericReasonMax = 120
)

// Error is a classified fetch failure. Its message is displayed to users.
type Error struct {
	Kind Kind
	URL  string
	Err  error

	msg string
}

// Error returns the user-facing message.
func (e *Error) Error() string {
	return e.msg
}

// Unwrap returns the underlying transport error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newTimeoutError(rawURL string, timeout time.Duration, err error) *Error {
	return &Error{
		Kind: KindTimeout,
		URL:  rawURL,
		Err:  err,
		msg:  "Request timed out after " + timeout.String(),
	}
}

func newConnectError(rawURL string, err error) *Error {
	return &Error{
		Kind: KindConnect,
		URL:  rawURL,
		Err:  err,
		msg:  fmt.Sprintf("Could not connect to %s: %s", rawURL, truncate(reason(err), connectReasonMax)),
	}
}

func newGenericError(rawURL string, err error) *Error {
	return &Error{
		Kind: KindGeneric,
		URL:  rawURL,
		Err:  err,
		msg:  "Fetch failed: " + truncate(reason(err), genericReasonMax),
	}
}

// classify maps a transport error onto an *Error.
func classify(rawURL string, timeout time.Duration, err error) *Error {
	if isTimeout(err) {
		return newTimeoutError(rawURL, timeout, err)
	}
	if isConnectFailure(err) {
		return newConnectError(rawURL, err)
	}
	return newGenericError(rawURL, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectFailure(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	// Upstream failures behind a SOCKS5 proxy carry the proxy command as Op.
	return errors.As(err, &opErr) && opErr.Op == "socks connect"
}

// reason strips the *url.Error wrapper, which repeats the method and URL.
func reason(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	return err.Error()
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// URL normalization errors.
var (
	// ErrEmptyURL is returned for blank input.
	ErrEmptyURL = errors.New("url is empty")

	// ErrUnsupportedScheme is returned for schemes other than http and https.
	ErrUnsupportedScheme = errors.New("unsupported url scheme")

	// ErrInvalidURL is returned when the url or its host cannot be parsed.
	ErrInvalidURL = errors.New("invalid url")
)
