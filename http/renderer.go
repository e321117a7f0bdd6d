// Package http provides HTTP-based implementations of patscan.Renderer and
// patscan.Locator. The renderer does not execute JavaScript and suits pages
// served fully rendered.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mrtoronto/patscan"
)

// DefaultTimeout is the default timeout for HTTP requests.
const DefaultTimeout = 30 * time.Second

// Ensure Renderer implements patscan.Renderer at compile time.
var _ patscan.Renderer = (*Renderer)(nil)

// Ensure Session implements patscan.Session at compile time.
var _ patscan.Session = (*Session)(nil)

// Renderer retrieves pages with plain HTTP requests and decomposes the
// markup without a browser. Renderer is safe for concurrent use.
type Renderer struct {
	client     *http.Client
	decomposer patscan.Decomposer
	timeout    time.Duration
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		r.timeout = d
	}
}

// NewRenderer creates a new Renderer turning markup into documents with
// decomposer.
func NewRenderer(decomposer patscan.Decomposer, opts ...Option) *Renderer {
	r := &Renderer{
		decomposer: decomposer,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.client = &http.Client{
		Timeout: r.timeout,
	}

	return r
}

// Open returns a new Session. It never fails unless ctx is done.
func (r *Renderer) Open(ctx context.Context) (patscan.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Session{client: r.client, decomposer: r.decomposer}, nil
}

// Session holds the markup of the last page navigated to.
type Session struct {
	client     *http.Client
	decomposer patscan.Decomposer
	markup     string
	loaded     bool
}

// Navigate retrieves url.
func (s *Session) Navigate(ctx context.Context, url string) error {
	body, err := get(ctx, s.client, url)
	if err != nil {
		return err
	}
	s.markup = body
	s.loaded = true
	return nil
}

// Snapshot decomposes the markup of the last page navigated to.
func (s *Session) Snapshot(ctx context.Context) (*patscan.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.loaded {
		return nil, patscan.Errorf(patscan.EINVALID, "no page loaded")
	}
	return s.decomposer.Decompose(s.markup)
}

// Close releases resources. For HTTP sessions this is a no-op since
// http.Client doesn't require explicit cleanup.
func (s *Session) Close() error {
	return nil
}

func get(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}
