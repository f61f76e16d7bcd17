package revenue

import (
	"crypto/sha1"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Entry is a row of the registry.
type Entry struct {
	Ticker string
	Name   string
	Sector string
}

// Registry is the ticker, name and sector table.
//
// It is immutable once decoded. A nil *Registry is an empty registry.
type Registry struct {
	entries []Entry
	names   map[string]string // ticker -> name, last row wins
	sectors map[string]string // ticker -> sector, last row wins
	sum     string
}

// registryColumns are the required registry columns.
var registryColumns = []string{"ticker", "name", "sector"}

// normalizeHeader returns the canonical form of a column name.
func normalizeHeader(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// LoadRegistry decodes the registry file at path.
func LoadRegistry(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	reg, err := DecodeRegistry(f)
	var serr *SchemaError
	if errors.As(err, &serr) {
		serr.Source = path
	}
	return reg, err
}

// DecodeRegistry reads a comma separated registry with a header row.
//
// Column names are matched case insensitively and trimmed. It fails with a
// *SchemaError if any of ticker, name or sector is missing. Values are trimmed,
// duplicate tickers and empty values are accepted.
func DecodeRegistry(r io.Reader) (*Registry, error) {
	// spreadsheets tend to export csv with a BOM.
	r = transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Source: "registry", Missing: registryColumns}
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read registry header: %w", err)
	}

	index := make(map[string]int)
	for i, h := range header {
		if _, exists := index[normalizeHeader(h)]; !exists {
			index[normalizeHeader(h)] = i
		}
	}
	var missing []string
	for _, c := range registryColumns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Source: "registry", Missing: missing}
	}

	field := func(record []string, col string) string {
		i := index[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var entries []Entry
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read registry: %w", err)
		}
		entries = append(entries, Entry{
			Ticker: field(record, "ticker"),
			Name:   field(record, "name"),
			Sector: field(record, "sector"),
		})
	}
	return NewRegistry(entries...), nil
}

// NewRegistry creates a registry from entries, in that order.
func NewRegistry(entries ...Entry) *Registry {
	reg := &Registry{
		entries: slices.Clone(entries),
		names:   make(map[string]string),
		sectors: make(map[string]string),
	}
	h := sha1.New()
	for _, e := range reg.entries {
		reg.names[e.Ticker] = e.Name
		reg.sectors[e.Ticker] = e.Sector
		fmt.Fprintf(h, "%q,%q,%q\n", e.Ticker, e.Name, e.Sector)
	}
	reg.sum = fmt.Sprintf("%x", h.Sum(nil))
	return reg
}

// Entries returns a copy of the registry rows.
func (r *Registry) Entries() []Entry {
	if r == nil {
		return nil
	}
	return slices.Clone(r.entries)
}

// Len returns the number of rows.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Name returns the display name of ticker.
func (r *Registry) Name(ticker string) (string, bool) {
	if r == nil {
		return "", false
	}
	n, ok := r.names[ticker]
	return n, ok
}

// Sector returns the sector ticker belongs to.
func (r *Registry) Sector(ticker string) (string, bool) {
	if r == nil {
		return "", false
	}
	s, ok := r.sectors[ticker]
	return s, ok
}

// Sectors returns the sorted list of distinct sectors.
func (r *Registry) Sectors() []string {
	if r == nil {
		return nil
	}
	var sectors []string
	for _, e := range r.entries {
		sectors = append(sectors, e.Sector)
	}
	slices.Sort(sectors)
	return slices.Compact(sectors)
}

// Tickers returns the distinct tickers of a sector in registry order.
func (r *Registry) Tickers(sector string) []string {
	if r == nil {
		return nil
	}
	var tickers []string
	seen := make(map[string]bool)
	for _, e := range r.entries {
		if e.Sector != sector || seen[e.Ticker] {
			continue
		}
		seen[e.Ticker] = true
		tickers = append(tickers, e.Ticker)
	}
	return tickers
}

// Fingerprint identifies the registry content.
func (r *Registry) Fingerprint() string {
	if r == nil {
		return ""
	}
	return r.sum
}
