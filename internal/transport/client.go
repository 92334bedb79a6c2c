package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// checkProxyTimeout bounds the SOCKS5 greeting in CheckConnection.
const checkProxyTimeout = 2 * time.Second

// maxRedirects is the number of redirects followed before giving up.
const maxRedirects = 10

// Client builds HTTP clients for downloading word lists.
type Client struct {
	// proxyAddress is the SOCKS5 proxy in "host:port" format, empty for direct.
	proxyAddress string

	// dialer is the SOCKS5 dialer, nil for direct connections.
	dialer proxy.Dialer

	// timeout is the overall timeout of each HTTP request.
	timeout time.Duration

	// userAgent is sent with every request when non-empty.
	userAgent string
}

// NewClient creates a Client. An empty proxyAddress means direct
// connections; otherwise proxyAddress must be "host:port" of a SOCKS5 proxy.
//
// No connection is made here. Call CheckConnection to verify the proxy.
func NewClient(proxyAddress string, timeout time.Duration, userAgent string) (*Client, error) {
	c := &Client{
		proxyAddress: proxyAddress,
		timeout:      timeout,
		userAgent:    userAgent,
	}

	if proxyAddress == "" {
		return c, nil
	}

	if !isValidProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	// Tor's SOCKS port does not require authentication.
	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	c.dialer = dialer

	return c, nil
}

// isValidProxyAddress checks if the address is in valid "host:port" format.
func isValidProxyAddress(address string) bool {
	host, port, found := strings.Cut(address, ":")
	if !found || host == "" || strings.Contains(port, ":") {
		return false
	}

	portNum, err := strconv.Atoi(port)
	if err != nil || strings.HasPrefix(port, "+") || strings.HasPrefix(port, "-") {
		return false
	}
	return portNum >= 1 && portNum <= 65535
}

// ProxyAddress returns the configured proxy address, empty for direct.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// UsesProxy reports whether connections go through a SOCKS5 proxy.
func (c *Client) UsesProxy() bool {
	return c.dialer != nil
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// DialContext establishes a TCP connection, through the proxy if configured.
func (c *Client) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if c.dialer == nil {
		var d net.Dialer
		return d.DialContext(ctx, network, address)
	}
	if cd, ok := c.dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, address)
	}
	return c.dialer.Dial(network, address)
}

// NewHTTPClient creates an HTTP client for downloading word lists.
//
// Direct clients keep the default transport settings, including proxies from
// the environment. Proxied clients dial every connection through SOCKS5 and
// disable compression, as response sizes can leak content over Tor.
func (c *Client) NewHTTPClient() *http.Client {
	var base http.RoundTripper
	if c.dialer == nil {
		base = http.DefaultTransport.(*http.Transport).Clone()
	} else {
		base = &http.Transport{
			DialContext:         c.DialContext,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     30 * time.Second,
			DisableCompression:  true,
		}
	}

	if c.userAgent != "" {
		base = &userAgentTransport{base: base, userAgent: c.userAgent}
	}

	return &http.Client{
		Transport: base,
		Timeout:   c.timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// userAgentTransport sets the User-Agent header on every request,
// redirects included.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}

// SOCKS5 protocol constants
const (
	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5AuthNoAccept = 0xFF
)

// CheckConnection verifies that the configured proxy speaks SOCKS5 and
// accepts unauthenticated clients. Direct clients always report OK.
func (c *Client) CheckConnection(ctx context.Context) ProxyStatus {
	if c.dialer == nil {
		return ProxyStatusOK
	}

	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddress)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	// Greeting: version, one method, "no authentication".
	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return ProxyStatusCannotConnect
	}

	// Reply: version, selected method.
	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}

	if resp[0] != socks5Version || resp[1] == socks5AuthNoAccept || resp[1] != socks5AuthNone {
		return ProxyStatusWrongType
	}
	return ProxyStatusOK
}
