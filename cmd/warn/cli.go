package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/warn"
	"github.com/fwojciec/warn/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Sources   []*warn.Source
	Harvester *crawl.Harvester
	Runs      warn.RunService

	// Browser starts a headless browser fetcher for probing. Nil selects
	// the source's own browser transport.
	Browser func() (warn.Fetcher, error)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config   string `short:"c" type:"path" env:"WARN_SOURCES" help:"Sources file (default: built-in sources)"`
	DB       string `type:"path" help:"Run ledger database (default: $WARN_DB or ~/.warn/warn.db)"`
	LogLevel string `default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)"`

	Scrape ScrapeCmd `cmd:"" help:"Harvest sources into CSV files"`
	List   ListCmd   `cmd:"" help:"List configured sources"`
	Runs   RunsCmd   `cmd:"" help:"Show recorded harvest runs"`
	Probe  ProbeCmd  `cmd:"" help:"Check whether a source needs a headless browser"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	Sources     []string `arg:"" optional:"" help:"Source ids to harvest (default: all)"`
	Out         string   `short:"o" type:"path" default:"." help:"Output directory for CSV files"`
	CacheDir    string   `type:"path" help:"Cache directory (default: $WARN_CACHE or ~/.warn/cache)"`
	CacheInDB   bool     `name:"cache-in-db" help:"Keep the fetch cache in the run ledger database"`
	Concurrency int      `short:"j" default:"2" help:"Sources harvested in parallel"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	Source string `arg:"" optional:"" help:"Only show runs of this source"`
	Limit  int    `short:"n" default:"20" help:"Maximum number of runs"`
}

// ProbeCmd is the "probe" subcommand.
type ProbeCmd struct {
	Source string `arg:"" help:"Source id"`
}
