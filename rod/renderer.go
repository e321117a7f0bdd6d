// Package rod renders patent pages in headless Chrome.
package rod

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/mrtoronto/patscan"
)

// Ensure Renderer implements patscan.Renderer at compile time.
var _ patscan.Renderer = (*Renderer)(nil)

// Ensure Session implements patscan.Session at compile time.
var _ patscan.Session = (*Session)(nil)

// DefaultNavigationTimeout bounds a single navigation including page load.
const DefaultNavigationTimeout = 60 * time.Second

// Renderer starts a fresh Chrome process for every session.
// Renderer is safe for concurrent use by multiple goroutines.
type Renderer struct {
	headless bool
	bin      string
	timeout  time.Duration
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithHeadless sets whether Chrome runs without a window.
// Defaults to true.
func WithHeadless(headless bool) Option {
	return func(r *Renderer) {
		r.headless = headless
	}
}

// WithBin sets the Chrome executable. By default rod looks up a local
// browser and downloads one if none is found.
func WithBin(path string) Option {
	return func(r *Renderer) {
		r.bin = path
	}
}

// WithNavigationTimeout sets the maximum duration of a navigation.
// Defaults to DefaultNavigationTimeout.
func WithNavigationTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		r.timeout = d
	}
}

// NewRenderer creates a new Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		headless: true,
		timeout:  DefaultNavigationTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open launches Chrome and opens a blank page. When the browser started but
// could not be connected to, the partial session is returned along with the
// error and must be closed by the caller.
func (r *Renderer) Open(ctx context.Context) (patscan.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := launcher.New().
		Context(ctx).
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(r.headless)
	if r.bin != "" {
		l = l.Bin(r.bin)
	}

	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	s := &Session{launcher: l, timeout: r.timeout}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return s, fmt.Errorf("connecting to browser: %w", err)
	}
	s.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return s, fmt.Errorf("opening page: %w", err)
	}
	s.page = page

	return s, nil
}

// Session is one Chrome process with a single page.
type Session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	timeout  time.Duration

	closeOnce sync.Once
	closeErr  error
}

// Navigate loads url and waits for the load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.page == nil {
		return patscan.Errorf(patscan.EINTERNAL, "session has no page")
	}

	page := s.page.Context(ctx)
	if s.timeout > 0 {
		page = page.Timeout(s.timeout)
		defer page.CancelTimeout()
	}

	if err := page.Navigate(url); err != nil {
		return err
	}
	return page.WaitLoad()
}

// Snapshot reads the rendered markup and the innerText of the page parts.
func (s *Session) Snapshot(ctx context.Context) (*patscan.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.page == nil {
		return nil, patscan.Errorf(patscan.EINTERNAL, "session has no page")
	}

	page := s.page.Context(ctx)

	html, err := page.HTML()
	if err != nil {
		return nil, err
	}
	doc := &patscan.RawDocument{Content: html}

	if doc.Blocks, err = texts(page, patscan.BlockSelector); err != nil {
		return nil, err
	}
	if doc.Cells, err = texts(page, patscan.CellSelector); err != nil {
		return nil, err
	}
	if doc.Paragraphs, err = texts(page, patscan.ParagraphSelector); err != nil {
		return nil, err
	}

	has, el, err := page.Has(patscan.ReferenceTableSelector)
	if err != nil {
		return nil, err
	}
	if has {
		if doc.ReferenceTable, err = el.Text(); err != nil {
			return nil, err
		}
		doc.HasReferenceTable = true
	}

	doc.Normalize()
	return doc, nil
}

func texts(page *rod.Page, selector string) ([]string, error) {
	els, err := page.Elements(selector)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(els))
	for _, el := range els {
		text, err := el.Text()
		if err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, nil
}

// Close shuts the page and browser down and kills the Chrome process.
// Close is safe to call multiple times.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.page != nil {
			errs = append(errs, s.page.Close())
		}
		if s.browser != nil {
			errs = append(errs, s.browser.Close())
		}
		if s.launcher != nil {
			s.launcher.Kill()
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}
