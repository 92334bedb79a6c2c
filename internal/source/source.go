package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/nao1215/rainbow/internal/digest"
)

// Source is a word list read fully into memory.
type Source struct {
	// Location is the path or URL the list was read from.
	Location string

	// Lines are the lines of the list in order, blank lines included.
	Lines []string

	// Checksum is the SHA3-256 fingerprint of the raw bytes, before decoding.
	Checksum string

	// Size is the number of raw bytes read.
	Size int64
}

// loader holds the options for a Load call.
type loader struct {
	httpClient   *http.Client
	maxBodySize  int64
	encodingName string
	strictUTF8   bool
}

// Option configures Load.
type Option func(*loader)

// WithHTTPClient sets the client used for URL locations.
// If not set, http.DefaultClient is used.
func WithHTTPClient(client *http.Client) Option {
	return func(l *loader) {
		l.httpClient = client
	}
}

// WithMaxBodySize limits how many bytes are read from a URL.
// Zero or a negative value means no limit.
func WithMaxBodySize(n int64) Option {
	return func(l *loader) {
		l.maxBodySize = n
	}
}

// WithEncoding decodes the raw bytes from the named character set (any
// WHATWG encoding label such as "latin1" or "windows-1252") into UTF-8.
// An empty name reads the bytes as UTF-8, replacing invalid sequences
// with U+FFFD.
func WithEncoding(name string) Option {
	return func(l *loader) {
		l.encodingName = name
	}
}

// WithStrictUTF8 keeps the bytes of a list read as UTF-8 untouched, so
// invalid sequences reach the pipeline as bad lines instead of being
// replaced. It has no effect when WithEncoding names a character set.
func WithStrictUTF8(strict bool) Option {
	return func(l *loader) {
		l.strictUTF8 = strict
	}
}

// IsURL reports whether location is fetched over HTTP rather than read from disk.
func IsURL(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load reads the word list at location. Every failure is returned as *Error.
func Load(ctx context.Context, location string, opts ...Option) (*Source, error) {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.httpClient == nil {
		l.httpClient = http.DefaultClient
	}

	src, err := l.load(ctx, location)
	if err != nil {
		return nil, &Error{Location: location, Err: err}
	}
	return src, nil
}

// load does the work of Load without wrapping errors.
func (l *loader) load(ctx context.Context, location string) (*Source, error) {
	enc, encName, err := l.encoding()
	if err != nil {
		return nil, err
	}

	var raw []byte
	if IsURL(location) {
		raw, err = l.fetch(ctx, location)
	} else {
		raw, err = os.ReadFile(location) //nolint:gosec // User-provided word list path is intentional
	}
	if err != nil {
		return nil, err
	}

	text := raw
	if enc != nil {
		text, _, err = transform.Bytes(enc.NewDecoder(), raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s text: %w", encName, err)
		}
	}

	return &Source{
		Location: location,
		Lines:    SplitLines(string(text)),
		Checksum: digest.Fingerprint(raw),
		Size:     int64(len(raw)),
	}, nil
}

// encoding returns the decoder for the list and its name for error messages.
// A nil encoding means the bytes are used as they are.
func (l *loader) encoding() (encoding.Encoding, string, error) {
	if l.encodingName != "" {
		enc, err := htmlindex.Get(l.encodingName)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %q", ErrUnknownEncoding, l.encodingName)
		}
		return enc, l.encodingName, nil
	}
	if l.strictUTF8 {
		return nil, "", nil
	}
	return unicode.UTF8, "utf-8", nil
}

// fetch downloads url and returns the whole body.
func (l *loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	var body io.Reader = resp.Body
	if l.maxBodySize > 0 {
		// One extra byte tells a body of exactly the limit from a larger one.
		body = io.LimitReader(resp.Body, l.maxBodySize+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if l.maxBodySize > 0 && int64(len(data)) > l.maxBodySize {
		return nil, fmt.Errorf("%w (%d bytes)", ErrBodyTooLarge, l.maxBodySize)
	}

	return data, nil
}

// LoadAll loads several word lists with at most concurrency downloads in
// flight and returns them in the order of locations. The first failure
// cancels the remaining loads and is returned.
func LoadAll(ctx context.Context, locations []string, concurrency int, opts ...Option) ([]*Source, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	sources := make([]*Source, len(locations))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, location := range locations {
		g.Go(func() error {
			src, err := Load(ctx, location, opts...)
			if err != nil {
				return err
			}
			sources[i] = src
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var srcErr *Error
		if errors.As(err, &srcErr) {
			return nil, srcErr
		}
		return nil, err
	}
	return sources, nil
}

// byteOrderMark is stripped from the start of a list.
const byteOrderMark = "\uFEFF"

// SplitLines splits text on "\n". A "\r" before the newline is dropped, and a
// final newline does not produce a trailing empty line. Blank lines in the
// middle are kept so the pipeline can count them.
func SplitLines(text string) []string {
	text = strings.TrimPrefix(text, byteOrderMark)
	if text == "" {
		return nil
	}

	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
