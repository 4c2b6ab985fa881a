package fetcher

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/webpulse/internal/proxy"
)

// schemePattern matches an explicit "scheme://" prefix.
var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*://`)

// NormalizeURL turns user input into an absolute URL the pipeline accepts.
// Surrounding whitespace is trimmed and https:// is prepended when no scheme
// is given. Only http and https are accepted, and .onion hosts must be valid
// v3 addresses.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}
	if !schemePattern.MatchString(raw) {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, reason(err))
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	if proxy.IsOnionHost(host) {
		if err := proxy.ValidateOnionHost(host); err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
		}
	}

	return u.String(), nil
}

// IsOnionURL reports whether the URL points at a .onion host.
func IsOnionURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return proxy.IsOnionHost(u.Hostname())
}
