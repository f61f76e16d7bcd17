package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/revenue/renderer"
	"github.com/google/subcommands"
)

type stockCmd struct {
	output
	sector string
}

func (*stockCmd) Name() string     { return "stock" }
func (*stockCmd) Synopsis() string { return "display the revenue history of a ticker" }
func (*stockCmd) Usage() string {
	return `revdash stock [-s <sector>] [-format term|md|html] <ticker>

  Displays the revenue, year over year and month over month charts of a
  ticker, its latest growth and its monthly data. The sector defaults to the
  one of the ticker in the registry.
`
}

func (c *stockCmd) SetFlags(f *flag.FlagSet) {
	c.output.SetFlags(f)
	f.StringVar(&c.sector, "s", "", "Sector of the ticker (defaults to the registry one)")
}

func (c *stockCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.check(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one ticker is required")
		return subcommands.ExitUsageError
	}
	d, err := openDashboard()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	md, err := d.drilldown(ctx, c.sector, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	c.printMarkdown(md)
	return subcommands.ExitSuccess
}

// drilldown returns the report of ticker within sector, or within its
// registry sector when sector is empty.
func (d *dashboard) drilldown(ctx context.Context, sector, ticker string) (string, error) {
	if sector == "" {
		s, ok := d.registry().Sector(ticker)
		if !ok {
			return "", fmt.Errorf("ticker %q is not in the registry, use -s to pick a sector", ticker)
		}
		sector = s
	}
	e, err := d.enriched(ctx, sector)
	if err != nil {
		return "", err
	}
	return renderer.RenderDrilldown(renderer.NewDrilldown(ticker, d.registry(), e, d.config.Currency)), nil
}
