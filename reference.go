package patscan

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

// ordinalPattern recovers the result position embedded in a document URL.
var ordinalPattern = regexp.MustCompile(`[?&]r=(\d+)`)

// Reference locates one candidate document in a search result set.
type Reference struct {
	URL     string
	Ordinal int
}

// ParseReference builds a Reference from a document URL, recovering the
// ordinal from its r=<n> query parameter.
func ParseReference(url string) (Reference, error) {
	m := ordinalPattern.FindStringSubmatch(url)
	if m == nil {
		return Reference{}, Errorf(EINVALID, "no result position in %q", url)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Reference{}, Errorf(EINVALID, "invalid result position in %q: %v", url, err)
	}
	return Reference{URL: url, Ordinal: n}, nil
}

// RecordKey returns the dataset key for a keyword and result position.
func RecordKey(keyword string, ordinal int) string {
	return fmt.Sprintf("%s_%06d", keyword, ordinal)
}

// Key returns the dataset key of the reference under keyword.
func (r Reference) Key(keyword string) string {
	return RecordKey(keyword, r.Ordinal)
}

// Window selects a contiguous slice of a result set.
// Start is 1-based; a Count of zero selects everything from Start on.
type Window struct {
	Start int
	Count int
}

// Apply returns the references inside the window. Start values below 1
// are treated as 1.
func (w Window) Apply(refs []Reference) []Reference {
	start := w.Start
	if start < 1 {
		start = 1
	}
	lo := start - 1
	if lo >= len(refs) {
		return nil
	}
	hi := len(refs)
	if w.Count > 0 && w.Count < hi-lo {
		hi = lo + w.Count
	}
	return refs[lo:hi]
}

// Locator discovers the documents matching a search keyword.
type Locator interface {
	// Locate returns the ordered references for keyword and the result count
	// reported by the search. Returns EUNAVAILABLE if the search cannot be
	// reached or its result count cannot be read.
	Locate(ctx context.Context, keyword string) (refs []Reference, total int, err error)
}
