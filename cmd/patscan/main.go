package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/mrtoronto/patscan"
	"github.com/mrtoronto/patscan/config"
	"github.com/mrtoronto/patscan/fs"
	"github.com/mrtoronto/patscan/goquery"
	pathttp "github.com/mrtoronto/patscan/http"
	"github.com/mrtoronto/patscan/rod"
	patslog "github.com/mrtoronto/patscan/slog"
	"github.com/mrtoronto/patscan/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database used by the SQLite dataset store, if selected.
	DB *sqlite.DB

	// Services for end-to-end testing. When set, Run uses them instead of
	// building adapters from configuration.
	Locator  patscan.Locator
	Renderer patscan.Renderer
	Store    patscan.DatasetStore
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("patscan"),
		kong.Description("Extract patent metadata from keyword search results."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no keyword specified. Run 'patscan --help' for usage")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Check %s or the %s_* environment variables\n", configName(cli.Config), config.EnvPrefix)
		return err
	}
	deps.Config = cfg

	level, _ := cfg.LogLevel()
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).
		With("run", uuid.NewString())

	out := cli.Out
	if cli.NoStore {
		out = ""
	}
	store, err := m.openStore(out)
	if err != nil {
		return err
	}
	defer m.Close()
	if store != nil {
		deps.Store = patslog.NewLoggingStore(store, deps.Logger)
	}

	if kongCtx.Command() == "show" {
		return kongCtx.Run(deps)
	}

	locator := m.Locator
	if locator == nil {
		locator = pathttp.NewLocator(
			pathttp.WithSearchURL(cfg.Search.URL),
			pathttp.WithDocumentURL(cfg.Search.DocumentURL),
			pathttp.WithSearchTimeout(cfg.HTTP.Timeout),
		)
	}
	deps.Locator = patslog.NewLoggingLocator(locator, deps.Logger)

	renderer := m.Renderer
	if renderer == nil {
		renderer = newRenderer(cli.Scrape.Renderer, cfg)
	}
	deps.Renderer = patslog.NewLoggingRenderer(renderer, deps.Logger)

	return kongCtx.Run(deps)
}

// openStore picks the dataset store from the extension of path: SQLite for
// .db and .sqlite, JSON otherwise. An empty path means no store.
func (m *Main) openStore(path string) (patscan.DatasetStore, error) {
	if path == "" {
		return nil, nil
	}
	if m.Store != nil {
		return m.Store, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite":
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		m.DB = sqlite.NewDB(path)
		if err := m.DB.Open(); err != nil {
			return nil, fmt.Errorf("failed to open database at %q: %w", path, err)
		}
		return sqlite.NewDatasetStore(m.DB), nil
	default:
		return fs.NewDatasetStore(fs.DatasetPath(path)), nil
	}
}

func newRenderer(kind string, cfg config.Config) patscan.Renderer {
	if kind == "http" {
		return pathttp.NewRenderer(goquery.NewDecomposer(), pathttp.WithTimeout(cfg.HTTP.Timeout))
	}
	return rod.NewRenderer(
		rod.WithHeadless(cfg.Browser.Headless),
		rod.WithBin(cfg.Browser.Bin),
	)
}

func configName(path string) string {
	if path == "" {
		return "the configuration"
	}
	return path
}
