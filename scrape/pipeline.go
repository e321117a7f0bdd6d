// Package scrape turns keyword search results into patent records.
// It coordinates retrieval of each result page, field extraction and the
// incremental merge into a persisted dataset.
package scrape

import (
	"context"
	"log/slog"

	"github.com/mrtoronto/patscan"
	"github.com/mrtoronto/patscan/bloom"
	"github.com/mrtoronto/patscan/extract"
	"golang.org/x/sync/errgroup"
)

// keyFalsePositiveRate bounds the chance of a distinct key being taken for
// a duplicate.
const keyFalsePositiveRate = 1e-9

// Batch is the input of one pipeline pass.
type Batch struct {
	Keyword    string
	References []patscan.Reference
	Window     patscan.Window

	// Prior is the dataset from earlier runs, if any. References it already
	// satisfies are not retrieved again.
	Prior patscan.Dataset
}

// Pipeline retrieves and extracts the references of a batch.
type Pipeline struct {
	Retriever *Retriever
	Extractor patscan.Extractor

	// Dumps receives the flattened content of documents without claims.
	Dumps patscan.DumpWriter

	// Concurrency is the number of references processed at once.
	// Values below 1 mean 1.
	Concurrency int

	Progress patscan.ProgressFunc
	Logger   *slog.Logger
}

// outcome holds the result of processing a single reference.
type outcome struct {
	ref        patscan.Reference
	key        string
	retrieval  Retrieval
	extraction *patscan.Extraction
	dumped     bool
}

// Process returns the records of the references inside the batch window,
// keyed by record key. Only the first reference for a key is processed. Pages that cannot be retrieved yield stub records.
// Stats describe the pass. Process fails only when a render session cannot
// be started or ctx is done; partial results are discarded then.
func (p *Pipeline) Process(ctx context.Context, b Batch) (patscan.Dataset, *patscan.Stats, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	selected := b.Window.Apply(b.References)
	stats := patscan.NewStats()
	stats.Selected = len(selected)

	// References sharing a record key would overwrite each other's record.
	seen := bloom.NewFilter(uint(max(len(selected), 1)), keyFalsePositiveRate)
	unique := make([]patscan.Reference, 0, len(selected))
	for _, ref := range selected {
		key := ref.Key(b.Keyword)
		if seen.TestAndAdd(key) {
			stats.Duplicates++
			logger.Warn("dropping reference with duplicate key", "key", key, "url", ref.URL)
			continue
		}
		unique = append(unique, ref)
	}
	total := len(unique)

	satisfied := func(string, string) bool { return false }
	if b.Prior != nil {
		satisfied = b.Prior.Satisfied()
	}

	completed := 0
	var todo []patscan.Reference
	for _, ref := range unique {
		key := ref.Key(b.Keyword)
		if !satisfied(key, ref.URL) {
			todo = append(todo, ref)
			continue
		}
		stats.Skipped++
		completed++
		logger.Debug("skipping satisfied reference", "key", key, "url", ref.URL)
		p.report(patscan.Progress{Reference: ref, Key: key, Completed: completed, Total: total, Skipped: true})
	}

	concurrency := p.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	resultCh := make(chan outcome, len(todo))
	var fatal error

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for _, ref := range todo {
			g.Go(func() error {
				o, err := p.process(gctx, b.Keyword, ref, logger)
				if err != nil {
					return err
				}
				resultCh <- o
				return nil
			})
		}
		fatal = g.Wait()
		close(resultCh)
	}()

	records := make(patscan.Dataset, len(todo))
	for o := range resultCh {
		completed++
		records[o.key] = o.extraction.Record
		stats.Attempts += o.retrieval.Attempts

		if o.retrieval.OK() {
			stats.Fetched++
			stats.AddMisses(o.extraction.Misses)
			logger.Debug("extracted record",
				"key", o.key,
				"document_number", o.extraction.Record.DocumentNumber,
				"misses", o.extraction.Misses,
			)
		} else {
			stats.Failed++
			logger.Warn("retrieval failed",
				"key", o.key,
				"url", o.ref.URL,
				"attempts", o.retrieval.Attempts,
				"err", o.retrieval.Err,
			)
		}
		if o.dumped {
			stats.Dumps++
		}

		p.report(patscan.Progress{
			Reference: o.ref,
			Key:       o.key,
			Completed: completed,
			Total:     total,
			Error:     o.retrieval.Err,
		})
	}

	if fatal != nil {
		return nil, stats, fatal
	}
	return records, stats, nil
}

func (p *Pipeline) process(ctx context.Context, keyword string, ref patscan.Reference, logger *slog.Logger) (outcome, error) {
	if err := ctx.Err(); err != nil {
		return outcome{}, err
	}

	o := outcome{ref: ref, key: ref.Key(keyword)}
	r, err := p.Retriever.Retrieve(ctx, ref)
	if err != nil {
		return outcome{}, err
	}
	o.retrieval = r

	if !r.OK() {
		o.extraction = &patscan.Extraction{Record: patscan.NewStubRecord(ref)}
		return o, nil
	}

	o.extraction = p.Extractor.Extract(ref, r.Document)
	if p.Dumps != nil && !o.extraction.Record.HasClaims() {
		if err := p.Dumps.WriteDump(ctx, o.key, extract.Flatten(r.Document.Content)); err != nil {
			logger.Warn("writing claims dump", "key", o.key, "err", err)
		} else {
			o.dumped = true
		}
	}
	return o, nil
}

func (p *Pipeline) report(event patscan.Progress) {
	if p.Progress != nil {
		p.Progress(event)
	}
}
