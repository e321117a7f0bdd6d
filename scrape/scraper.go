package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mrtoronto/patscan"
)

// Request describes one scraping run.
type Request struct {
	Keyword string

	// Start is the 1-based position of the first result to process.
	// Values below 1 mean 1.
	Start int

	// Count caps the number of results processed. Zero processes every
	// result from Start on.
	Count int
}

// Result holds the outcome of a scraping run.
type Result struct {
	// Records are the records extracted by this run, including stubs and
	// records without a document number.
	Records patscan.Dataset

	// Added lists the keys merged into the persisted dataset.
	Added []string

	// Total is the result count reported by the search.
	Total int

	// Size is the number of records in the persisted dataset after the
	// merge, or -1 when no store is configured.
	Size int

	Stats *patscan.Stats
}

// Scraper runs the whole flow for a keyword: discovery, retrieval and
// extraction, then the merge into Store when one is configured.
type Scraper struct {
	Locator  patscan.Locator
	Pipeline *Pipeline
	Store    patscan.DatasetStore
	Logger   *slog.Logger
}

// Run scrapes the results of req. A discovery failure aborts the run before
// anything is retrieved. An unreadable dataset is logged and replaced.
func (s *Scraper) Run(ctx context.Context, req Request) (*Result, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if strings.TrimSpace(req.Keyword) == "" {
		return nil, patscan.Errorf(patscan.EINVALID, "keyword required")
	}
	if req.Start < 1 {
		logger.Warn("start position must be >= 1, using 1", "start", req.Start)
		req.Start = 1
	}
	if req.Count < 0 {
		return nil, patscan.Errorf(patscan.EINVALID, "result count must be >= 0")
	}

	refs, total, err := s.Locator.Locate(ctx, req.Keyword)
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}

	prior := patscan.Dataset{}
	if s.Store != nil {
		d, err := s.Store.Load(ctx)
		if err != nil {
			logger.Warn("ignoring unreadable dataset", "err", err)
		} else if d != nil {
			prior = d
		}
	}

	records, stats, err := s.Pipeline.Process(ctx, Batch{
		Keyword:    req.Keyword,
		References: refs,
		Window:     patscan.Window{Start: req.Start, Count: req.Count},
		Prior:      prior,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{Records: records, Total: total, Size: -1, Stats: stats}
	if s.Store == nil {
		return res, nil
	}

	res.Added = prior.Merge(records)
	res.Size = len(prior)
	if err := s.Store.Save(ctx, prior); err != nil {
		return nil, fmt.Errorf("saving dataset: %w", err)
	}
	logger.Info("dataset saved", "added", len(res.Added), "size", len(prior))
	return res, nil
}
