package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/vhoang/nhatot"
	"github.com/vhoang/nhatot/crawl"
	nhcsv "github.com/vhoang/nhatot/csv"
	"github.com/vhoang/nhatot/goquery"
	nhhttp "github.com/vhoang/nhatot/http"
	"github.com/vhoang/nhatot/rod"
	"github.com/vhoang/nhatot/sqlite"
)

func main() {
	// Missing .env is fine; flags and real env still apply.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Endpoint string `short:"u" default:"ws://localhost:3000" env:"NHATOT_BROWSER_URL" help:"Browser automation service endpoint"`
	Pages    int    `short:"p" default:"5" help:"Maximum number of pages to crawl (1-50)"`
	Output   string `short:"o" help:"CSV output path (default: timestamp-derived name)"`
	DB       string `env:"NHATOT_DB" help:"Optional SQLite database to also write listings to"`
	BaseURL  string `default:"${baseurl}" help:"Listing page URL to start from"`
	Static   bool   `help:"Fetch over plain HTTP instead of a browser session"`
	Quiet    bool   `short:"q" help:"Only log warnings and errors"`
	Verbose  bool   `short:"v" help:"Log debug details"`
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("nhatot"),
		kong.Description("Crawl nhatot.com property listings through a remote browser session"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Vars{"baseurl": crawl.DefaultBaseURL},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	if cli.Pages < 1 || cli.Pages > 50 {
		return nhatot.Errorf(nhatot.EINVALID, "pages must be between 1 and 50")
	}

	logger := newLogger(stderr, cli)

	// Connect to the render collaborator. This is the only fatal fault:
	// without a session there is nothing to crawl.
	var browser nhatot.Browser
	if cli.Static {
		browser = nhhttp.NewBrowser()
	} else {
		b, err := rod.Connect(cli.Endpoint)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: start a browserless service or pass --endpoint")
			return err
		}
		browser = b
	}
	defer func() {
		if err := browser.Close(); err != nil {
			logger.Warn("browser close failed", "err", err)
		}
	}()

	crawler := &crawl.Crawler{
		Browser:   rod.NewLoggingBrowser(browser, logger),
		Extractor: goquery.NewExtractor(goquery.WithLogger(logger)),
		Logger:    logger,
		BaseURL:   cli.BaseURL,
		MaxPages:  cli.Pages,
	}

	res, runErr := crawler.Run(ctx)

	// Persist whatever was accumulated, on every path that has records.
	if len(res.Listings) > 0 {
		if err := persist(ctx, cli, logger, res); err != nil {
			return err
		}
	}

	switch {
	case res.Outcome == crawl.OutcomeInterrupted:
		return fmt.Errorf("crawl interrupted: %w", runErr)
	case runErr != nil:
		return runErr
	case len(res.Listings) == 0:
		return nhatot.Errorf(nhatot.ENOTFOUND, "no listings extracted")
	}
	return nil
}

// persist writes the run's listings to CSV and, when configured, SQLite.
func persist(ctx context.Context, cli *CLI, logger *slog.Logger, res *crawl.Result) error {
	writer := nhcsv.NewWriter(cli.Output)
	writers := []nhatot.ListingWriter{writer}

	if cli.DB != "" {
		db := sqlite.NewDB(cli.DB)
		if err := db.Open(); err != nil {
			return fmt.Errorf("open database %q: %w", cli.DB, err)
		}
		defer db.Close()
		writers = append(writers, sqlite.NewListingService(db))
	}

	if err := writeAll(ctx, res.Listings, writers...); err != nil {
		return err
	}
	logger.Info("listings saved", "path", writer.Path(), "sinks", len(writers), "listings", len(res.Listings))
	return nil
}

// writeAll sends one batch to every sink in order; the first failure stops
// the fan-out.
func writeAll(ctx context.Context, listings []*nhatot.Listing, writers ...nhatot.ListingWriter) error {
	for _, w := range writers {
		if err := w.WriteListings(ctx, listings); err != nil {
			return fmt.Errorf("write listings: %w", err)
		}
	}
	return nil
}

// newLogger builds the console logger honoring the quiet/verbose toggles.
func newLogger(w io.Writer, cli *CLI) *slog.Logger {
	level := slog.LevelInfo
	if cli.Quiet {
		level = slog.LevelWarn
	}
	if cli.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{Level: level}))
}
