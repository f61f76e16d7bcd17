package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/revenue"
	"github.com/google/subcommands"
)

type sectorsCmd struct {
	output
}

func (*sectorsCmd) Name() string     { return "sectors" }
func (*sectorsCmd) Synopsis() string { return "list the sectors of the registry" }
func (*sectorsCmd) Usage() string {
	return `revdash sectors [-format term|md|html]

  Lists the sectors defined in the registry and their number of tickers.
`
}

func (c *sectorsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.check(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	config, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	reg, err := session.Registry(config.Registry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot load registry: %v\n", err)
		return subcommands.ExitFailure
	}
	c.printMarkdown(sectorsMarkdown(reg))
	return subcommands.ExitSuccess
}

func sectorsMarkdown(reg *revenue.Registry) string {
	var b strings.Builder
	b.WriteString("# Sectors\n\n")
	if len(reg.Sectors()) == 0 {
		b.WriteString("The registry is empty.\n")
		return b.String()
	}
	b.WriteString("| Sector | Tickers |\n|:-------|--------:|\n")
	for _, s := range reg.Sectors() {
		fmt.Fprintf(&b, "| %s | %d |\n", s, len(reg.Tickers(s)))
	}
	return b.String()
}
