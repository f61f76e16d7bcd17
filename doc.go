// Package revenue reconciles monthly revenue series for groups of stocks.
//
// Three sources are merged into one clean series per ticker:
//   - Registry: the static ticker, name and sector table. It is the single
//     source of truth for sector membership and display names.
//   - Workbook: a spreadsheet cache produced by a batch refresh, one sheet per
//     sector.
//   - Live fetches: on demand calls to a monthly revenue provider for the
//     tickers the workbook does not cover.
//
// The Resolver assembles the table of a sector, Enrich derives month over month
// and year over year growth from it, and Refresh produces the workbook.
//
// This package serves as the foundational logic for the `revdash` command-line
// tool.
package revenue
