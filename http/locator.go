package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mrtoronto/patscan"
)

// URL templates of the USPTO full-text database. {keyword} is replaced by
// the escaped search keyword and {ordinal} by the result position.
const (
	DefaultSearchURL   = "http://patft.uspto.gov/netacgi/nph-Parser?Sect1=PTO2&Sect2=HITOFF&p=1&u=%2Fnetahtml%2FPTO%2Fsearch-bool.html&r=0&f=S&l=50&TERM1={keyword}&FIELD1=&co1=AND&TERM2=&FIELD2=&d=PTXT"
	DefaultDocumentURL = "http://patft.uspto.gov/netacgi/nph-Parser?Sect1=PTO2&Sect2=HITOFF&p=1&u=%2Fnetahtml%2FPTO%2Fsearch-bool.html&r={ordinal}&f=G&l=50&co1=AND&d=PTXT&s1={keyword}&OS={keyword}&RS={keyword}"
)

// resultCountPattern finds the result count on a search result page.
var resultCountPattern = regexp.MustCompile(`DOCS: (\d+)`)

// Ensure Locator implements patscan.Locator at compile time.
var _ patscan.Locator = (*Locator)(nil)

// Locator discovers patent pages by running a boolean search and reading
// the reported result count.
type Locator struct {
	client      *http.Client
	searchURL   string
	documentURL string
	timeout     time.Duration
}

// LocatorOption configures a Locator.
type LocatorOption func(*Locator)

// WithSearchURL sets the search URL template.
// Defaults to DefaultSearchURL.
func WithSearchURL(template string) LocatorOption {
	return func(l *Locator) {
		l.searchURL = template
	}
}

// WithDocumentURL sets the document URL template.
// Defaults to DefaultDocumentURL.
func WithDocumentURL(template string) LocatorOption {
	return func(l *Locator) {
		l.documentURL = template
	}
}

// WithSearchTimeout sets the timeout of the search request.
// Defaults to DefaultTimeout.
func WithSearchTimeout(d time.Duration) LocatorOption {
	return func(l *Locator) {
		l.timeout = d
	}
}

// NewLocator creates a new Locator.
func NewLocator(opts ...LocatorOption) *Locator {
	l := &Locator{
		searchURL:   DefaultSearchURL,
		documentURL: DefaultDocumentURL,
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}

	l.client = &http.Client{
		Timeout: l.timeout,
	}

	return l
}

// Locate runs the search for keyword and returns one reference per
// reported result, in result order. Each ordinal is read back from the
// r=<n> parameter of the generated document URL; a document template
// without one is EINVALID.
func (l *Locator) Locate(ctx context.Context, keyword string) ([]patscan.Reference, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	searchURL := expand(l.searchURL, keyword, 0)
	body, err := get(ctx, l.client, searchURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, 0, ctxErr
		}
		return nil, 0, patscan.Errorf(patscan.EUNAVAILABLE, "discovery unavailable: %v", err)
	}

	total, err := ResultCount(body)
	if err != nil {
		return nil, 0, err
	}

	refs := make([]patscan.Reference, 0, total)
	for i := 1; i <= total; i++ {
		ref, err := patscan.ParseReference(expand(l.documentURL, keyword, i))
		if err != nil {
			return nil, 0, fmt.Errorf("document template: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, total, nil
}

// ResultCount reads the result count from a search result page.
func ResultCount(page string) (int, error) {
	m := resultCountPattern.FindStringSubmatch(page)
	if m == nil {
		return 0, patscan.Errorf(patscan.EUNAVAILABLE, "discovery unavailable: no result count on search page")
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, patscan.Errorf(patscan.EUNAVAILABLE, "discovery unavailable: invalid result count %q", m[1])
	}
	return n, nil
}

func expand(template, keyword string, ordinal int) string {
	return strings.NewReplacer(
		"{keyword}", url.QueryEscape(keyword),
		"{ordinal}", strconv.Itoa(ordinal),
	).Replace(template)
}
