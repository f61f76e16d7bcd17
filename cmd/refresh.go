package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/revenue"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

type refreshCmd struct {
	years int
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "fetch every ticker and rewrite the workbook" }
func (*refreshCmd) Usage() string {
	return `revdash refresh [-years n]

  Fetches the monthly revenue of every ticker of the registry from FinMind and
  writes one sheet per sector into the workbook, replacing it.
  It fails when no sector has any data.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.years, "years", 0, "Years of history to fetch (defaults to refresh.lookback_years)")
}

func (c *refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	config, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.years > 0 {
		config.Refresh.LookbackYears = c.years
	}
	err = refresh(ctx, config)
	if errors.Is(err, revenue.ErrNoData) {
		fmt.Fprintln(os.Stderr, "Error: no data fetched. Check the registry or the FinMind token.")
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Updated %s\n", config.Workbook)
	return subcommands.ExitSuccess
}

// refresh runs the batch refresh and replaces the workbook.
func refresh(ctx context.Context, config *Config) error {
	// the registry may have changed since the last run
	session.Invalidate()
	reg, err := session.Registry(config.Registry)
	if err != nil {
		return fmt.Errorf("cannot load registry: %w", err)
	}
	years := config.Refresh.LookbackYears
	if years < 1 {
		years = 1
	}
	fetcher := revenue.NewFetcher(config.Client(), reg, revenue.WithLookback(years))
	sheets, err := revenue.Refresh(ctx, reg, fetcher, revenue.WithConcurrency(config.Fetch.Concurrency))
	if err != nil {
		return err
	}
	if err := revenue.WriteWorkbook(config.Workbook, sheets); err != nil {
		return fmt.Errorf("cannot write workbook %q: %w", config.Workbook, err)
	}
	logrus.WithFields(logrus.Fields{"path": config.Workbook, "sheets": len(sheets)}).Info("workbook written")
	return nil
}
