package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/goquery"
	"github.com/fwojciec/roster/harvest"
	"github.com/fwojciec/roster/prometheus"
	"github.com/fwojciec/roster/rod"
	rslog "github.com/fwojciec/roster/slog"
	"github.com/fwojciec/roster/sqlite"
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
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	ResultService roster.ResultService

	browser *rod.BrowserManager
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.browser != nil {
		_ = m.browser.Close()
	}
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
		kong.Name("roster"),
		kong.Description("Harvest the members of a virtualized list."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'roster --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	cfg, err := LoadConfig(cli.Config)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", roster.ErrorMessage(err))
		return err
	}
	deps.Config = cfg
	deps.Logger = newLogger(stderr, cli.Verbose)

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set ROSTER_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.ResultService = sqlite.NewResultService(m.DB)
	deps.Results = rslog.NewLoggingResultService(m.ResultService, deps.Logger)

	if cmd == "harvest" {
		svc, metrics, err := m.browserService(deps, &cli.Harvest)
		if err != nil {
			return err
		}
		deps.Service = svc
		deps.Metrics = metrics
	}

	return kongCtx.Run(deps)
}

// browserService launches or attaches to a browser and wires a harvest
// service driving one page of it.
func (m *Main) browserService(deps *Dependencies, c *HarvestCmd) (*harvest.Service, *prometheus.Metrics, error) {
	bc := c.browserConfig(deps.Config.Browser)

	bm, err := rod.NewBrowserManager(
		rod.WithHeadless(!bc.Headful),
		rod.WithUserDataDir(bc.ProfileDir),
		rod.WithRemoteURL(bc.Remote),
	)
	if err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed, or pass --remote")
		return nil, nil, fmt.Errorf("failed to start browser: %w", err)
	}
	m.browser = bm

	page, err := bm.NewPage(deps.Ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open page: %w", err)
	}

	prepOpts := []rod.PreparerOption{rod.WithOpenSelector(bc.Open)}
	if len(bc.ListSelectors) > 0 {
		prepOpts = append(prepOpts, rod.WithListSelectors(bc.ListSelectors...))
	}
	if bc.WaitTimeout > 0 {
		prepOpts = append(prepOpts, rod.WithWaitTimeout(bc.WaitTimeout))
	}

	cfg := c.harvestConfig(deps.Config.Harvest)
	metrics := prometheus.NewMetrics()
	runner := &harvest.Runner{
		Preparer:  rslog.NewLoggingPreparer(rod.NewPreparer(page, c.URL, prepOpts...), deps.Logger),
		Locator:   rslog.NewLoggingLocator(rod.NewLocator(page, bc.ListSelectors...), deps.Logger),
		Harvester: newHarvester(bc.ItemSelectors, metrics, deps.Logger, cfg),
		Namer:     rod.NewGroupNamer(page, bc.GroupSelectors...),
		Metrics:   metrics,
		Logger:    deps.Logger,
		SourceURL: c.URL,
		Config:    cfg,
	}
	return harvest.NewService(runner), metrics, nil
}

// newHarvester builds a Harvester parsing nodes with goquery.
func newHarvester(itemSelectors []string, metrics roster.HarvestMetrics, logger *slog.Logger, cfg harvest.Config) *harvest.Harvester {
	return &harvest.Harvester{
		Finder:    harvest.NewSelectorFinder(itemSelectors...),
		Extractor: goquery.NewExtractor(),
		Sizer:     goquery.NewSizeEstimator(),
		Metrics:   metrics,
		Logger:    logger,
		Config:    cfg,
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func defaultDBPath() string {
	if path := os.Getenv("ROSTER_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "roster.db"
	}
	dir := filepath.Join(home, ".roster")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "roster.db")
}
