package fetcher

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/nao1215/webpulse/internal/proxy"
)

// Request defaults.
const (
	// DefaultTimeout bounds the whole fetch, body included.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxBodySize caps how much decoded markup is read.
	DefaultMaxBodySize int64 = 10 * 1024 * 1024

	// DefaultUserAgent identifies the audit bot.
	DefaultUserAgent = "Mozilla/5.0 (compatible; WebPulseBot/2.0; +https://webpulse.ai/bot)"

	// maxRedirects matches net/http's default policy, made explicit.
	maxRedirects = 10
)

// Fixed request headers besides the User-Agent.
const (
	headerAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	headerAcceptLanguage = "en-US,en;q=0.5"
	headerAcceptEncoding = "gzip, deflate"
)

// Response is the outcome of a successful retrieval. A 4xx or 5xx status
// is still a Response.
type Response struct {
	// Markup is the decoded (UTF-8) body.
	Markup []byte

	// StatusCode is the status of the final response after redirects.
	StatusCode int

	// ElapsedMs is the wall time of the fetch, rounded to 0.1ms.
	ElapsedMs float64

	// FinalURL is the URL after redirects.
	FinalURL string

	// ContentType is the Content-Type header of the final response.
	ContentType string
}

// SiteOptions are extra request settings for one host.
type SiteOptions struct {
	Headers map[string]string
	Cookie  string
}

// SiteLookup returns the settings for a host. It is consulted for every
// request, redirects included.
type SiteLookup func(host string) SiteOptions

// Client retrieves pages.
//
// Design decision: We don't set http.Client.Timeout. The timeout is a
// context deadline created per Fetch, which lets us tell our own timeout
// apart from the caller cancelling.
type Client struct {
	httpClient  *http.Client
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
	socks       *proxy.Client
	sites       SiteLookup
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxBodySize caps the decoded body size.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithProxy routes every connection through a SOCKS5 proxy.
func WithProxy(p *proxy.Client) Option {
	return func(c *Client) {
		c.socks = p
	}
}

// WithSites injects per-host headers and cookies.
func WithSites(lookup SiteLookup) Option {
	return func(c *Client) {
		c.sites = lookup
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = c.newHTTPClient()
	return c
}

// Timeout returns the configured fetch timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

func (c *Client) newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   c.timeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // audited sites may have broken certificates
		},
		TLSHandshakeTimeout: c.timeout,
		MaxIdleConns:        10,
		IdleConnTimeout:     30 * time.Second,
		// Accept-Encoding is set explicitly, so net/http would not decode
		// the body anyway. readBody does it.
		DisableCompression: true,
	}
	if c.socks != nil {
		transport.Proxy = nil
		transport.DialContext = c.socks.DialContext
	}

	var rt http.RoundTripper = transport
	if c.sites != nil {
		rt = &siteTransport{base: transport, lookup: c.sites}
	}

	return &http.Client{
		Transport: rt,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

// Fetch retrieves rawURL. Transport failures return an *Error. If ctx
// itself is cancelled, ctx.Err() is returned unclassified.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	start := time.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, newGenericError(rawURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", headerAccept)
	req.Header.Set("Accept-Language", headerAcceptLanguage)
	req.Header.Set("Accept-Encoding", headerAcceptEncoding)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(ctx, rawURL, err)
	}
	defer resp.Body.Close()

	markup, err := c.readBody(resp)
	if err != nil {
		return nil, c.fail(ctx, rawURL, err)
	}

	elapsed := float64(time.Since(start)) / float64(time.Millisecond)

	return &Response{
		Markup:      markup,
		StatusCode:  resp.StatusCode,
		ElapsedMs:   math.Round(elapsed*10) / 10,
		FinalURL:    resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func (c *Client) fail(ctx context.Context, rawURL string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return classify(rawURL, c.timeout, err)
}

// readBody decodes Content-Encoding, applies the size cap and converts the
// body to UTF-8 using the declared or sniffed charset.
func (c *Client) readBody(resp *http.Response) ([]byte, error) {
	body, err := decodeContent(resp.Body, resp.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	limited := io.LimitReader(body, c.maxBodySize)
	utf8Reader, err := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(utf8Reader)
}

// decodeContent wraps r according to the Content-Encoding header.
// Unknown encodings pass through untouched.
func decodeContent(r io.Reader, encoding string) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(r)
		if errors.Is(err, io.EOF) {
			return io.NopCloser(strings.NewReader("")), nil
		}
		return gz, err
	case "deflate":
		return newDeflateReader(r)
	default:
		return io.NopCloser(r), nil
	}
}

// newDeflateReader handles both zlib-wrapped deflate, which the standard
// asks for, and raw deflate, which many servers send instead.
func newDeflateReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	header, _ := br.Peek(2) //nolint:errcheck // short bodies are handled below
	if len(header) == 0 {
		return io.NopCloser(br), nil
	}
	if len(header) == 2 && header[0]&0x0f == 8 && (uint16(header[0])<<8|uint16(header[1]))%31 == 0 {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}

// siteTransport injects per-host headers and cookies into every request.
type siteTransport struct {
	base   http.RoundTripper
	lookup SiteLookup
}

// RoundTrip implements http.RoundTripper.
func (t *siteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	opts := t.lookup(req.URL.Hostname())
	if opts.Cookie == "" && len(opts.Headers) == 0 {
		return t.base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	if opts.Cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+opts.Cookie)
		} else {
			clone.Header.Set("Cookie", opts.Cookie)
		}
	}
	for key, value := range opts.Headers {
		clone.Header.Set(key, value)
	}
	return t.base.RoundTrip(clone)
}
