// Package fetcher retrieves the markup of the page under audit.
//
// The fetch is the only network operation of a scan and the only step with
// an externally imposed wall-clock bound. A Client sends a fixed,
// browser-like header set, follows redirects, skips certificate
// verification, decodes compressed bodies and converts the body to UTF-8.
//
// Transport failures are classified into *Error values whose messages are
// shown to end users verbatim. An HTTP error status is not a failure: the
// markup of error pages is still audited and the caller records the status.
//
// Design decision: Certificate verification is disabled. Audited sites are
// third-party and often have expired or self-signed certificates; the
// audit reports on the markup, not on the TLS setup.
package fetcher
