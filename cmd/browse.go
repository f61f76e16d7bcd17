package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"
)

type browseCmd struct {
	output
}

func (*browseCmd) Name() string     { return "browse" }
func (*browseCmd) Synopsis() string { return "interactively select a sector and a ticker" }
func (*browseCmd) Usage() string {
	return `revdash browse [-format term|md|html]

  Prompts for a sector and displays its overview, then prompts for a ticker of
  that sector and displays its history. An empty answer goes back, q quits.
`
}

func (c *browseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.check(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	d, err := openDashboard()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	b := &browser{d: d, in: bufio.NewScanner(os.Stdin), prompt: os.Stderr, print: c.printMarkdown}
	if err := b.run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// errQuit is returned by choose when the user quits.
var errQuit = errors.New("quit")

// browser is the interactive sector and ticker selector.
type browser struct {
	d      *dashboard
	in     *bufio.Scanner
	prompt io.Writer
	print  func(md string)
}

func (b *browser) run(ctx context.Context) error {
	reg := b.d.registry()
	for {
		sectors := reg.Sectors()
		sector, err := b.choose("Sector", sectors, sectors)
		if errors.Is(err, errQuit) || sector == "" {
			return nil
		}
		md, err := b.d.overview(ctx, sector)
		if err != nil {
			return err
		}
		b.print(md)

		tickers := reg.Tickers(sector)
		labels := make([]string, len(tickers))
		for i, t := range tickers {
			name, _ := reg.Name(t)
			labels[i] = strings.TrimSpace(t + " " + name)
		}
		for {
			ticker, err := b.choose("Ticker", tickers, labels)
			if errors.Is(err, errQuit) {
				return nil
			}
			if ticker == "" {
				break
			}
			md, err := b.d.drilldown(ctx, sector, ticker)
			if err != nil {
				return err
			}
			b.print(md)
		}
	}
}

// choose prompts for one of items, by number or by value. It returns "" when
// the answer is empty and errQuit on "q" or the end of the input.
func (b *browser) choose(title string, items, labels []string) (string, error) {
	for {
		fmt.Fprintf(b.prompt, "\n%s:\n", title)
		for i, l := range labels {
			fmt.Fprintf(b.prompt, "  %2d) %s\n", i+1, l)
		}
		fmt.Fprint(b.prompt, "> ")
		if !b.in.Scan() {
			return "", errQuit
		}
		answer := strings.TrimSpace(b.in.Text())
		switch answer {
		case "":
			return "", nil
		case "q":
			return "", errQuit
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(items) {
			return items[n-1], nil
		}
		for _, item := range items {
			if item == answer {
				return item, nil
			}
		}
		fmt.Fprintf(b.prompt, "invalid choice %q\n", answer)
	}
}
