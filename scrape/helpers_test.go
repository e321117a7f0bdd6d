package scrape_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mrtoronto/patscan"
	"github.com/mrtoronto/patscan/mock"
	"github.com/mrtoronto/patscan/scrape"
)

// site serves patent pages to mock sessions and records what was asked.
type site struct {
	mu        sync.Mutex
	pages     map[string]*patscan.RawDocument
	failures  map[string]int
	navigated []string
	opened    int
	closed    int
}

func newSite() *site {
	return &site{
		pages:    make(map[string]*patscan.RawDocument),
		failures: make(map[string]int),
	}
}

// add serves a page whose patent block carries number. An empty number
// yields a page without a document number.
func (s *site) add(ref patscan.Reference, number string) {
	s.pages[ref.URL] = &patscan.RawDocument{
		Content: "<html><body><i>Primary Examiner:</i> Smith; Jane\n</body></html>",
		Blocks:  []string{"", "United States Patent\n" + number, "Inventors:\nDoe; John"},
	}
}

func (s *site) fetched() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.navigated...)
}

func (s *site) renderer() *mock.Renderer {
	return &mock.Renderer{
		OpenFn: func(context.Context) (patscan.Session, error) {
			s.mu.Lock()
			s.opened++
			s.mu.Unlock()
			return s.session(), nil
		},
	}
}

func (s *site) session() *mock.Session {
	var current string
	return &mock.Session{
		NavigateFn: func(_ context.Context, url string) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.navigated = append(s.navigated, url)
			if s.failures[url] > 0 {
				s.failures[url]--
				return errors.New("render unavailable")
			}
			if _, ok := s.pages[url]; !ok {
				return errors.New("render unavailable")
			}
			current = url
			return nil
		},
		SnapshotFn: func(context.Context) (*patscan.RawDocument, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			doc := *s.pages[current]
			doc.Blocks = append([]string(nil), doc.Blocks...)
			return &doc, nil
		},
		CloseFn: func() error {
			s.mu.Lock()
			s.closed++
			s.mu.Unlock()
			return nil
		},
	}
}

func ref(ordinal int) patscan.Reference {
	return patscan.Reference{
		URL:     fmt.Sprintf("https://patft.example.com/netacgi/nph-Parser?s1=widget&r=%d&f=G", ordinal),
		Ordinal: ordinal,
	}
}

// fastRetriever retries without waiting.
func fastRetriever(r patscan.Renderer) *scrape.Retriever {
	return scrape.NewRetriever(r,
		scrape.WithRetryPolicy(scrape.RetryPolicy{Delays: []time.Duration{0, 0}}),
		scrape.WithSettle(0),
	)
}

type limiterFunc func(ctx context.Context, rawURL string) error

func (f limiterFunc) Wait(ctx context.Context, rawURL string) error {
	return f(ctx, rawURL)
}
