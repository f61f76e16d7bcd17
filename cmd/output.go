package cmd

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Output formats.
const (
	formatTerminal = "term"
	formatMarkdown = "md"
	formatHTML     = "html"
)

// output selects how reports are printed.
type output struct {
	format string
}

func (o *output) SetFlags(f *flag.FlagSet) {
	f.StringVar(&o.format, "format", formatTerminal, "Output format: term (styled for the terminal), md or html")
}

// check validates the format flag.
func (o *output) check() error {
	switch o.format {
	case formatTerminal, formatMarkdown, formatHTML:
		return nil
	}
	return fmt.Errorf("unknown format %q, want term, md or html", o.format)
}

// printMarkdown prints md to stdout in the selected format.
func (o *output) printMarkdown(md string) {
	if err := o.write(os.Stdout, md); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot render report: %v\n", err)
		fmt.Println(md)
	}
}

func (o *output) write(w io.Writer, md string) error {
	switch o.format {
	case formatMarkdown:
		_, err := io.WriteString(w, md)
		return err
	case formatHTML:
		var buf bytes.Buffer
		if err := goldmark.New(goldmark.WithExtensions(extension.GFM)).Convert([]byte(md), &buf); err != nil {
			return err
		}
		_, err := buf.WriteTo(w)
		return err
	default:
		out, err := glamour.Render(md, "auto")
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	}
}
