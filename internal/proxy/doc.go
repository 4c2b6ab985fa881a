// Package proxy provides optional SOCKS5 connectivity for the fetcher.
//
// Most audits connect directly. When a SOCKS5 proxy is configured, or when
// the target is a .onion site, the fetcher dials through a Client from
// this package instead. An embedded Tor daemon (via tornago) can supply the
// SOCKS5 endpoint so that onion sites are auditable without an external
// Tor installation.
//
// The package also validates v3 onion addresses, which URL normalization
// uses to reject malformed .onion hosts before any network I/O happens.
package proxy
