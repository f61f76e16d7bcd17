package revenue

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/etnz/revenue/date"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const (
	// MaxSheetName is the spreadsheet limit on sheet names, in characters.
	MaxSheetName = 31

	// BlankSheetName is the sheet name of a blank sector.
	BlankSheetName = "unnamed"
)

// sheetNameReplacer replaces the characters spreadsheets reject in sheet names.
var sheetNameReplacer = strings.NewReplacer(":", "_", `\`, "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")

// workbookColumns is the canonical revenue row shape.
var workbookColumns = []string{"ticker", "name", "date", "revenue"}

// Workbook is the decoded cache artifact: one revenue table per sheet.
type Workbook struct {
	sheets   map[string]Table
	fallback string
	sum      string
}

// NewWorkbook returns a workbook with the given sheets. fallback is the legacy
// sheet name used for sectors without their own sheet, it can be empty.
func NewWorkbook(sheets map[string]Table, fallback string) *Workbook {
	wb := &Workbook{sheets: make(map[string]Table), fallback: fallback}
	h := sha1.New()
	fmt.Fprintf(h, "fallback %q\n", fallback)
	for _, name := range sortedKeys(sheets) {
		wb.sheets[name] = sheets[name]
		fmt.Fprintf(h, "sheet %q\n", name)
		for _, r := range sheets[name] {
			fmt.Fprintf(h, "%q,%q,%v,%v\n", r.Ticker, r.Name, r.Date, r.Revenue)
		}
	}
	wb.sum = fmt.Sprintf("%x", h.Sum(nil))
	return wb
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Sheets returns the sorted names of the recognized sheets.
func (wb *Workbook) Sheets() []string { return sortedKeys(wb.sheets) }

// Len returns the number of recognized sheets.
func (wb *Workbook) Len() int { return len(wb.sheets) }

// Sheet returns the table cached for sector.
//
// It looks for the exact sheet name, then for the name WriteWorkbook gives the
// sector, then for the fallback sheet. The fallback sheet is
// returned whole, callers filter it by the sector's tickers.
func (wb *Workbook) Sheet(sector string) (Table, bool) {
	if t, ok := wb.sheets[sector]; ok {
		return t, true
	}
	if t, ok := wb.sheets[SheetName(sector)]; ok {
		return t, true
	}
	if wb.fallback == "" {
		return nil, false
	}
	t, ok := wb.sheets[wb.fallback]
	return t, ok
}

// Fingerprint identifies the workbook content.
func (wb *Workbook) Fingerprint() string { return wb.sum }

// SheetName returns the sheet name of sector: characters spreadsheets reject
// are replaced by '_', surrounding quotes and spaces are trimmed, and the result
// is truncated to MaxSheetName characters. A blank sector maps to
// BlankSheetName.
func SheetName(sector string) string {
	name := sheetNameReplacer.Replace(sector)
	name = strings.Trim(strings.TrimSpace(name), "'")
	if strings.TrimSpace(name) == "" {
		return BlankSheetName
	}
	if utf8.RuneCountInString(name) > MaxSheetName {
		name = strings.TrimRight(string([]rune(name)[:MaxSheetName]), "'")
	}
	return name
}

// ReadWorkbook decodes the spreadsheet at path.
//
// A missing file is not an error, it decodes as an empty workbook. Sheets
// lacking any of the ticker, name, date or revenue columns are skipped.
func ReadWorkbook(path, fallback string) (*Workbook, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		logrus.WithField("path", path).Debug("no workbook, nothing cached")
		return NewWorkbook(nil, fallback), nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open workbook %q: %w", path, err)
	}
	defer f.Close()

	sheets := make(map[string]Table)
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("cannot read sheet %q of %q: %w", name, path, err)
		}
		t, ok := decodeSheet(rows)
		if !ok {
			logrus.WithFields(logrus.Fields{"path": path, "sheet": name}).Debug("skipping unrecognized sheet")
			continue
		}
		sheets[name] = t
	}
	return NewWorkbook(sheets, fallback), nil
}

// decodeSheet converts raw cells into a table, ok is false if the header lacks
// a canonical column.
func decodeSheet(rows [][]string) (t Table, ok bool) {
	if len(rows) == 0 {
		return nil, false
	}
	index := make(map[string]int)
	for i, h := range rows[0] {
		if _, exists := index[normalizeHeader(h)]; !exists {
			index[normalizeHeader(h)] = i
		}
	}
	for _, c := range workbookColumns {
		if _, ok := index[c]; !ok {
			return nil, false
		}
	}
	cell := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	t = Table{}
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		t = append(t, Row{
			Ticker:  cell(row, "ticker"),
			Name:    cell(row, "name"),
			Date:    parseCellDate(cell(row, "date")),
			Revenue: parseDecimal(cell(row, "revenue")),
		})
	}
	return t, true
}

var cellDateFormats = []string{
	date.DateFormat,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/1/2",
	"2006/1/2 15:04:05",
	"2006-1-2",
}

// parseCellDate reads an Excel serial number or a textual date. The time of day
// is discarded, unparsable values are the null date.
func parseCellDate(s string) date.Date {
	if s == "" {
		return date.Date{}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return date.Date{}
		}
		return date.Of(t)
	}
	for _, layout := range cellDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return date.Of(t)
		}
	}
	return date.Date{}
}

// parseDecimal reads a number, unparsable values are null.
func parseDecimal(s string) decimal.NullDecimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// WriteWorkbook writes one sheet per sector into a new spreadsheet at path,
// replacing any previous file.
//
// Sheet names are given by SheetName. A sector whose sheet name is already used
// (case-insensitively) or rejected by the spreadsheet library is skipped with a
// warning. ErrNoData is returned when no sheet could be written.
func WriteWorkbook(path string, sheets map[string]Table) error {
	if len(sheets) == 0 {
		return ErrNoData
	}
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	used := make(map[string]string) // lower-cased sheet name to sector
	for _, sector := range sortedKeys(sheets) {
		name := SheetName(sector)
		log := logrus.WithFields(logrus.Fields{"sector": sector, "sheet": name})
		if prev, exists := used[strings.ToLower(name)]; exists {
			log.WithField("previous", prev).Warn("sheet name already used, sector skipped")
			continue
		}
		var err error
		if len(used) == 0 {
			err = f.SetSheetName(defaultSheet, name)
		} else {
			_, err = f.NewSheet(name)
		}
		if err != nil {
			log.WithError(err).Warn("cannot create sheet, sector skipped")
			continue
		}
		used[strings.ToLower(name)] = sector
		if err := writeSheet(f, name, sheets[sector]); err != nil {
			return err
		}
	}
	if len(used) == 0 {
		return ErrNoData
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".revenue-*.xlsx")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func writeSheet(f *excelize.File, sheet string, t Table) error {
	header := make([]any, len(workbookColumns))
	for i, c := range workbookColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("cannot write header of sheet %q: %w", sheet, err)
	}
	for i, r := range t {
		var rev any
		if r.Revenue.Valid {
			rev = r.Revenue.Decimal.InexactFloat64()
		}
		row := []any{r.Ticker, r.Name, r.Date.String(), rev}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("cannot write row %d of sheet %q: %w", i+2, sheet, err)
		}
	}
	return nil
}
