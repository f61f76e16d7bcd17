package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/revenue/renderer"
	"github.com/google/subcommands"
)

type overviewCmd struct {
	output
	sector string
}

func (*overviewCmd) Name() string     { return "overview" }
func (*overviewCmd) Synopsis() string { return "display the latest revenue of every ticker of a sector" }
func (*overviewCmd) Usage() string {
	return `revdash overview -s <sector> [-format term|md|html]

  Displays the latest month of every ticker of the sector with its month over
  month and year over year growth, and the revenue trend of each ticker.
  Cached rows come from the workbook, the others are fetched from FinMind.
`
}

func (c *overviewCmd) SetFlags(f *flag.FlagSet) {
	c.output.SetFlags(f)
	f.StringVar(&c.sector, "s", "", "Sector to display")
}

func (c *overviewCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.check(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.sector == "" {
		fmt.Fprintln(os.Stderr, "Error: -s <sector> is required")
		return subcommands.ExitUsageError
	}
	d, err := openDashboard()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	md, err := d.overview(ctx, c.sector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	c.printMarkdown(md)
	return subcommands.ExitSuccess
}

// overview returns the overview report of sector.
func (d *dashboard) overview(ctx context.Context, sector string) (string, error) {
	e, err := d.enriched(ctx, sector)
	if err != nil {
		return "", err
	}
	return renderer.RenderOverview(renderer.NewOverview(sector, d.registry(), e, d.config.Currency)), nil
}
