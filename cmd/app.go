// Package cmd implements the CLI application of the sector revenue dashboard.
package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/revenue"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&sectorsCmd{}, "dashboard")
	c.Register(&overviewCmd{}, "dashboard")
	c.Register(&stockCmd{}, "dashboard")
	c.Register(&browseCmd{}, "dashboard")

	c.Register(&refreshCmd{}, "batch")
	c.Register(&scheduleCmd{}, "batch")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "revenue.toml", "Path to the TOML configuration file")
var envFile = flag.String("env", ".env", "Path to the dotenv file holding secrets such as "+EnvToken)
var registryFile = flag.String("registry", "", "Path to the registry CSV (ticker,name,sector), overrides the configuration")
var workbookFile = flag.String("workbook", "", "Path to the cached workbook, overrides the configuration")
var verbose = flag.Bool("v", false, "Log debug messages")

// session keeps decoded files across the views of a long running command.
var session = revenue.NewSession(revenue.DefaultLoadTTL)

// loadConfig returns the configuration with command line overrides applied,
// and sets up logging.
func loadConfig() (*Config, error) {
	config, err := LoadConfig(*configFile, *envFile)
	if err != nil {
		return nil, err
	}
	if *registryFile != "" {
		config.Registry = *registryFile
	}
	if *workbookFile != "" {
		config.Workbook = *workbookFile
	}
	if *verbose {
		config.Logging.Level = "debug"
	}
	config.SetupLogging()
	return config, nil
}

// dashboard resolves sectors for the interactive views.
type dashboard struct {
	config   *Config
	resolver *revenue.Resolver
}

// openDashboard loads the registry and the workbook and connects the provider.
func openDashboard() (*dashboard, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}
	reg, err := session.Registry(config.Registry)
	if err != nil {
		return nil, fmt.Errorf("cannot load registry: %w", err)
	}
	wb, err := session.Workbook(config.Workbook, config.FallbackSheet)
	if err != nil {
		return nil, fmt.Errorf("cannot load workbook: %w", err)
	}
	opts := config.FetchOptions()
	fetcher := revenue.NewFetcher(config.Client(), reg, opts...)
	return &dashboard{
		config:   config,
		resolver: revenue.NewResolver(reg, wb, fetcher, opts...),
	}, nil
}

func (d *dashboard) registry() *revenue.Registry { return d.resolver.Registry() }

// enriched resolves sector and computes its growth rates.
func (d *dashboard) enriched(ctx context.Context, sector string) (revenue.Enriched, error) {
	t, err := d.resolver.Resolve(ctx, sector)
	if err != nil {
		return nil, err
	}
	return revenue.Enrich(t), nil
}
