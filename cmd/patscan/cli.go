package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/mrtoronto/patscan"
	"github.com/mrtoronto/patscan/config"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Config   config.Config
	Logger   *slog.Logger
	Locator  patscan.Locator
	Renderer patscan.Renderer

	// Store is nil when the run keeps no dataset.
	Store patscan.DatasetStore
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Out     string `short:"o" default:"patents.json" help:"Dataset file (.json, or .db/.sqlite for SQLite)"`
	NoStore bool   `name:"no-store" help:"Do not read or write a dataset; same as --out ''"`
	Config  string `help:"Configuration file (YAML, TOML or JSON)" type:"path"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Scrape ScrapeCmd `cmd:"" default:"withargs" help:"Scrape the search results for a keyword (default)"`
	Show   ShowCmd   `cmd:"" help:"Print the stored dataset"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	Keyword     string `arg:"" help:"Search keyword"`
	Start       int    `short:"s" default:"1" help:"Position of the first result to process"`
	Count       int    `short:"n" default:"0" help:"Number of results to process (0 for all)"`
	Renderer    string `short:"r" enum:"rod,http" default:"rod" help:"Page renderer: rod (headless Chrome) or http"`
	Concurrency int    `short:"c" default:"0" help:"Concurrent page limit (0 uses the configured value)"`
	DumpDir     string `name:"dump-dir" help:"Write the text of pages without claims to this directory" type:"path"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this file" type:"path"`
	Print       bool   `short:"p" help:"Print the extracted records as JSON"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	Keys bool `short:"k" help:"Print record keys only"`
}
