// Package transport provides the HTTP clients used to download word lists.
//
// A Client either connects directly or routes every connection through a
// SOCKS5 proxy (golang.org/x/net/proxy). The proxy is typically a Tor SOCKS
// port, either an existing daemon or one started on demand with EmbeddedTor,
// so that word lists hosted on onion services can be imported as well.
//
// The package is designed to be used with dependency injection: create a
// Client and hand its HTTP client to the source loader rather than relying
// on http.DefaultClient.
package transport
