package main

import (
	"fmt"
	"time"

	"github.com/mrtoronto/patscan"
	"github.com/mrtoronto/patscan/extract"
	"github.com/mrtoronto/patscan/fs"
	"github.com/mrtoronto/patscan/prometheus"
	"github.com/mrtoronto/patscan/scrape"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	cfg := deps.Config
	if c.Concurrency > 0 {
		cfg.Scrape.Concurrency = c.Concurrency
	}

	opts := []scrape.RetrieverOption{
		scrape.WithRetryPolicy(cfg.RetryPolicy()),
		scrape.WithSettle(cfg.Retry.Settle),
		scrape.WithLogger(deps.Logger),
	}
	if cfg.Scrape.Rate > 0 {
		opts = append(opts, scrape.WithLimiter(scrape.NewHostLimiter(cfg.Scrape.Rate)))
	}

	pipeline := &scrape.Pipeline{
		Retriever:   scrape.NewRetriever(deps.Renderer, opts...),
		Extractor:   extract.NewAssembler(),
		Concurrency: cfg.Scrape.Concurrency,
		Logger:      deps.Logger,
		Progress: func(p patscan.Progress) {
			switch {
			case p.Skipped:
				fmt.Fprintf(deps.Stdout, "  [%d/%d] %s (already stored)\n", p.Completed, p.Total, p.Key)
			case p.Error != nil:
				fmt.Fprintf(deps.Stderr, "  [%d/%d] skip %s: %s\n", p.Completed, p.Total, p.Reference.URL, patscan.ErrorMessage(p.Error))
			default:
				fmt.Fprintf(deps.Stdout, "  [%d/%d] %s\n", p.Completed, p.Total, p.Key)
			}
		},
	}
	if c.DumpDir != "" {
		pipeline.Dumps = fs.NewDumpWriter(c.DumpDir)
	}

	scraper := &scrape.Scraper{
		Locator:  deps.Locator,
		Pipeline: pipeline,
		Store:    deps.Store,
		Logger:   deps.Logger,
	}

	var metrics *prometheus.Metrics
	if c.MetricsFile != "" {
		metrics = prometheus.NewMetrics()
	}

	deps.Logger.Info("starting scrape", "keyword", c.Keyword, "config", cfg.String())
	start := time.Now()
	res, err := scraper.Run(deps.Ctx, scrape.Request{Keyword: c.Keyword, Start: c.Start, Count: c.Count})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", patscan.ErrorMessage(err))
		if metrics != nil {
			metrics.ObserveFailure(time.Since(start))
			c.writeMetrics(deps, metrics)
		}
		return err
	}

	if metrics != nil {
		metrics.ObserveRun(res.Stats, len(res.Added), res.Size, time.Since(start))
		c.writeMetrics(deps, metrics)
	}

	if c.Print {
		data, err := fs.Encode(res.Records)
		if err != nil {
			return fmt.Errorf("encoding records: %w", err)
		}
		if _, err := deps.Stdout.Write(data); err != nil {
			return err
		}
	}

	fmt.Fprintf(deps.Stdout, "Found %d results for %q\n", res.Total, c.Keyword)
	fmt.Fprintf(deps.Stdout, "  Fetched %d, failed %d, skipped %d (%d attempts)\n",
		res.Stats.Fetched, res.Stats.Failed, res.Stats.Skipped, res.Stats.Attempts)
	if res.Stats.Duplicates > 0 {
		fmt.Fprintf(deps.Stdout, "  Dropped %d results repeating an earlier position\n", res.Stats.Duplicates)
	}
	if res.Stats.Dumps > 0 {
		fmt.Fprintf(deps.Stdout, "  Dumped %d pages without claims to %s\n", res.Stats.Dumps, c.DumpDir)
	}
	if res.Size >= 0 {
		fmt.Fprintf(deps.Stdout, "  Added %d records (%d stored)\n", len(res.Added), res.Size)
	}
	return nil
}

// writeMetrics reports a failed metrics write without failing the run.
func (c *ScrapeCmd) writeMetrics(deps *Dependencies, m *prometheus.Metrics) {
	if err := m.WriteTextfile(c.MetricsFile); err != nil {
		deps.Logger.Warn("writing metrics", "path", c.MetricsFile, "err", err)
	}
}
