package main

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/warn"
	"github.com/fwojciec/warn/crawl"
	"github.com/fwojciec/warn/fs"
	warnslog "github.com/fwojciec/warn/slog"
	"github.com/fwojciec/warn/sqlite"
	"github.com/fwojciec/warn/yaml"
)

// defaultSources configures the sources harvested when no --config is given.
//
//go:embed sources.yaml
var defaultSources []byte

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

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

	// Cache directory. Set before calling Run().
	CacheDir string

	// SQLite database holding the run ledger.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:   defaultPath("WARN_DB", "warn.db"),
		CacheDir: defaultPath("WARN_CACHE", "cache"),
	}
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
		kong.Name("warn"),
		kong.Description("Harvest WARN layoff notices from state websites into CSV files."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'warn --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cli.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cli.LogLevel, err)
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if cli.Config != "" {
		deps.Sources, err = yaml.LoadSources(cli.Config)
	} else {
		deps.Sources, err = yaml.ParseSources(defaultSources)
	}
	if err != nil {
		return fmt.Errorf("loading sources: %s", warn.ErrorMessage(err))
	}

	cmd := strings.Fields(kongCtx.Command())[0]
	if cmd == "list" || cmd == "probe" {
		return kongCtx.Run(deps)
	}

	dbPath := m.DBPath
	if cli.DB != "" {
		dbPath = cli.DB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return err
	}
	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set WARN_DB or --db to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
	}
	defer m.Close()
	deps.Runs = sqlite.NewRunService(m.DB)

	if cmd == "scrape" {
		var cache warn.CacheStore
		if cli.Scrape.CacheInDB {
			cache = sqlite.NewCacheStore(m.DB)
		} else {
			dir := m.CacheDir
			if cli.Scrape.CacheDir != "" {
				dir = cli.Scrape.CacheDir
			}
			cache = fs.NewCache(dir)
		}

		deps.Harvester = &crawl.Harvester{
			Cache:   warnslog.NewLoggingCache(cache, deps.Logger),
			Toolkit: NewToolkit(deps.Logger),
			Writer:  fs.NewCSVWriter(),
			Runs:    deps.Runs,
			OutDir:  cli.Scrape.Out,
			Logger:  deps.Logger,
		}
	}

	return kongCtx.Run(deps)
}

// defaultPath returns the value of env, or name under ~/.warn.
func defaultPath(env, name string) string {
	if path := os.Getenv(env); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".warn", name)
}
