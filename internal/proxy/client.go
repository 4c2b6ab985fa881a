package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	xproxy "golang.org/x/net/proxy"
)

// checkTimeout bounds the SOCKS5 handshake probe. It is a connectivity
// check only, so it is much shorter than the fetch timeout.
const checkTimeout = 2 * time.Second

// Client dials TCP connections through a SOCKS5 proxy.
//
// Design decision: We don't connect to the proxy in the constructor. A
// Client can be created before the proxy is up, and CheckConnection is the
// explicit way to verify it.
type Client struct {
	// address is the SOCKS5 proxy address in "host:port" format.
	address string

	// dialer is cached so every connection reuses it.
	dialer xproxy.Dialer
}

// NewClient creates a client for the SOCKS5 proxy at address.
// The address must be "host:port"; it is validated but not contacted.
func NewClient(address string) (*Client, error) {
	if !isValidAddress(address) {
		return nil, ErrInvalidAddress
	}

	// Tor and most local SOCKS5 proxies don't require auth.
	dialer, err := xproxy.SOCKS5("tcp", address, nil, xproxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	return &Client{
		address: address,
		dialer:  dialer,
	}, nil
}

// isValidAddress checks for a non-empty host and a port in 1..65535.
func isValidAddress(address string) bool {
	host, port, found := strings.Cut(address, ":")
	if !found || host == "" || strings.Contains(port, ":") {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil || port[0] == '+' || port[0] == '-' {
		return false
	}
	return n >= 1 && n <= 65535
}

// Address returns the configured proxy address.
func (c *Client) Address() string {
	return c.address
}

// DialContext dials address through the proxy.
// It is shaped to plug into http.Transport.DialContext.
func (c *Client) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if cd, ok := c.dialer.(xproxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, address)
	}

	type dialResult struct {
		conn net.Conn
		err  error
	}
	resultCh := make(chan dialResult, 1)

	go func() {
		conn, err := c.dialer.Dial(network, address)
		resultCh <- dialResult{conn, err}
	}()

	select {
	case result := <-resultCh:
		return result.conn, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SOCKS5 protocol constants
const (
	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5AuthNoAccept = 0xFF
	socks5CmdConnect   = 0x01
	socks5AddrTypeName = 0x03

	// probeHost is a name the proxy is asked to CONNECT to during the
	// probe. The connection is allowed to fail; only the reply shape counts.
	probeHost = "example.com"
)

// CheckConnection probes the proxy with a SOCKS5 handshake and a CONNECT
// request. Any well-formed SOCKS5 reply, including a failure code, counts
// as StatusOK.
func (c *Client) CheckConnection(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.address)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return StatusTimeout
		}
		return StatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkTimeout)); err != nil {
		return StatusCannotConnect
	}

	// Greeting: version, one method, no auth.
	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return StatusCannotConnect
	}

	authResp := make([]byte, 2)
	if _, err := io.ReadFull(conn, authResp); err != nil {
		if isTimeout(err) {
			return StatusTimeout
		}
		return StatusWrongType
	}
	if authResp[0] != socks5Version {
		return StatusWrongType
	}
	if authResp[1] == socks5AuthNoAccept || authResp[1] != socks5AuthNone {
		return StatusWrongType
	}

	const probePort = 80
	req := []byte{
		socks5Version,
		socks5CmdConnect,
		0x00, // reserved
		socks5AddrTypeName,
		byte(len(probeHost)),
	}
	req = append(req, probeHost...)
	req = append(req, byte(probePort>>8), byte(probePort&0xFF))

	if _, err := conn.Write(req); err != nil {
		return StatusCannotConnect
	}

	// version + reply + reserved + address type
	connectResp := make([]byte, 4)
	if _, err := io.ReadFull(conn, connectResp); err != nil {
		if isTimeout(err) {
			return StatusTimeout
		}
		return StatusWrongType
	}
	if connectResp[0] != socks5Version {
		return StatusWrongType
	}
	return StatusOK
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
