package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/bloom"
	"github.com/fwojciec/docmirror/crawl"
	"github.com/fwojciec/docmirror/fs"
	"github.com/fwojciec/docmirror/goquery"
	"github.com/fwojciec/docmirror/rod"
	docslog "github.com/fwojciec/docmirror/slog"
	"github.com/fwojciec/docmirror/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// NewSession creates the rendered session. Overridable in tests so
	// the CLI can be exercised without a browser.
	NewSession func() (docmirror.Session, error)
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		NewSession: func() (docmirror.Session, error) {
			return rod.NewSession()
		},
	}
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	URL        string        `arg:"" required:"" help:"Site root URL of the documentation tree"`
	Path       string        `arg:"" required:"" help:"Destination directory for the mirror"`
	Timeout    time.Duration `short:"t" default:"10s" help:"Structural wait timeout"`
	NoReport   bool          `help:"Skip writing the mirror.db run report"`
	NoManifest bool          `help:"Skip writing manifest.xml"`
	Verbose    bool          `short:"v" help:"Enable debug logging"`
}

// Run executes the CLI with the given arguments. It returns an error only
// for argument problems: once a run starts, every failure is surfaced
// through logs and the process exits normally, so completeness is verified
// by inspecting the output, not the exit status.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docmirror"),
		kong.Description("Mirror a documentation site behind a collapsible navigation tree to local files"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}

	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	if _, err := url.ParseRequestURI(cli.URL); err != nil {
		return fmt.Errorf("invalid URL %q: %w", cli.URL, err)
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	m.run(ctx, cli, logger, stdout, stderr)
	return nil
}

// run executes the mirroring run. It is the outermost scope of the run:
// nothing it does propagates as a process failure.
func (m *Main) run(ctx context.Context, cli *CLI, logger *slog.Logger, stdout, stderr io.Writer) {
	session, err := m.NewSession()
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
		logger.Error("failed to start rendered session", "err", err)
		return
	}
	defer session.Close()

	if cli.Verbose {
		session = rod.NewLoggingSession(session, logger)
	}

	var writer docmirror.OutputWriter = fs.NewWriter(cli.Path)
	if cli.Verbose {
		writer = docslog.NewLoggingWriter(writer, logger)
	}

	mirror := &crawl.Mirror{
		Session:     session,
		Expander:    &crawl.Expander{StateTimeout: cli.Timeout},
		Menu:        goquery.NewMenuSanitizer(),
		Links:       goquery.NewLinkExtractor(),
		Content:     goquery.NewContentSanitizer(),
		Rewriter:    goquery.NewIndexRewriter(),
		Writer:      writer,
		Seen:        bloom.NewFilter(10000, 0.0001),
		WaitTimeout: cli.Timeout,
		Logger:      logger,
		Progress: func(p docmirror.MirrorProgress) {
			if p.Error != nil {
				fmt.Fprintf(stderr, "skip %s: %v\n", p.URL, p.Error)
			}
			fmt.Fprintf(stdout, "\r[%d/%d] %s", p.Completed, p.Total, truncateURL(p.URL, 40))
		},
	}

	if !cli.NoManifest {
		mirror.Manifest = fs.NewManifest(cli.Path)
	}

	if !cli.NoReport {
		if err := os.MkdirAll(cli.Path, 0755); err != nil {
			logger.Error("failed to create output directory", "err", err)
			return
		}
		db := sqlite.NewDB(filepath.Join(cli.Path, "mirror.db"))
		if err := db.Open(); err != nil {
			logger.Error("run report disabled", "err", err)
		} else {
			defer db.Close()
			mirror.Reports = sqlite.NewReportService(db)
		}
	}

	result, err := mirror.Run(ctx, docmirror.Config{
		BaseURL:    cli.URL,
		OutputPath: cli.Path,
	})

	// Clear progress line
	fmt.Fprintf(stdout, "\r%80s\r", "")

	if err != nil {
		logger.Error("mirror run failed", "err", err)
		return
	}

	fmt.Fprintf(stdout, "Expanded %d tree entries (%d failed)\n", result.Expanded, result.ExpandFailed)
	fmt.Fprintf(stdout, "Saved %d of %d pages (%d skipped)\n", result.Saved, result.Links, result.Skipped)
}

// truncateURL shortens a URL for display by showing only the path.
// This makes progress more useful when many URLs share the same host prefix.
func truncateURL(rawURL string, maxLen int) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		// Fallback to simple right-truncation
		if len(rawURL) <= maxLen {
			return rawURL
		}
		return rawURL[:maxLen-3] + "..."
	}

	path := parsed.Path
	if path == "" {
		path = "/"
	}

	if len(path) <= maxLen {
		return path
	}

	// Truncate from the left to show the unique suffix
	return "..." + path[len(path)-maxLen+3:]
}
