package revenue

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Resolver assembles the revenue table of a sector from the workbook and live
// fetches.
type Resolver struct {
	registry    *Registry
	workbook    *Workbook
	fetcher     LiveFetcher
	concurrency int
	memo        *Memo[Table]
	logger      logrus.FieldLogger
}

// NewResolver returns a resolver over a registry and workbook snapshot.
//
// Accepted options: WithConcurrency, WithResolveTTL, WithClock, WithLogger.
func NewResolver(reg *Registry, wb *Workbook, f LiveFetcher, opts ...Option) *Resolver {
	o := newOptions(opts)
	if wb == nil {
		wb = NewWorkbook(nil, "")
	}
	memo := NewMemo[Table](o.resolveTTL)
	memo.SetClock(o.now)
	return &Resolver{
		registry:    reg,
		workbook:    wb,
		fetcher:     f,
		concurrency: o.concurrency,
		memo:        memo,
		logger:      o.logger,
	}
}

// Registry returns the registry snapshot.
func (r *Resolver) Registry() *Registry { return r.registry }

// Resolve returns one row per (ticker, date) for every ticker of sector,
// sorted by ticker then date.
//
// Cached rows are preferred. Tickers without any cached row are fetched live,
// a failing fetch is logged and contributes no row. The only error returned is
// the context's. A sector without data resolves to an empty table.
//
// Results are memoized, except those missing a ticker whose live fetch failed:
// the next call retries it.
func (r *Resolver) Resolve(ctx context.Context, sector string) (Table, error) {
	key := NewKey("resolve", sector, r.registry.Fingerprint(), r.workbook.Fingerprint())
	if t, ok := r.memo.Get(key); ok {
		return t, nil
	}
	t, failures, err := r.resolve(ctx, sector)
	if err != nil {
		return nil, err
	}
	if failures > 0 {
		r.logger.WithFields(logrus.Fields{"sector": sector, "failed": failures}).Debug("partial sector not memoized")
		return t, nil
	}
	r.memo.Put(key, t)
	return t, nil
}

// Invalidate forgets every resolved sector.
func (r *Resolver) Invalidate() { r.memo.Invalidate() }

// resolve also returns the number of tickers whose live fetch failed.
func (r *Resolver) resolve(ctx context.Context, sector string) (Table, int, error) {
	log := r.logger.WithField("sector", sector)
	tickers := r.registry.Tickers(sector)

	cached := Table{}
	if sheet, ok := r.workbook.Sheet(sector); ok {
		cached = sheet.Filter(tickers)
	}

	covered := make(map[string]bool)
	for _, t := range cached.Tickers() {
		covered[t] = true
	}
	var uncovered []string
	for _, t := range tickers {
		if !covered[t] {
			uncovered = append(uncovered, t)
		}
	}

	live, failures, err := fetchAll(ctx, r.fetcher, uncovered, r.concurrency, log)
	if err != nil {
		return nil, 0, err
	}

	all := append(Table{}, cached...)
	for _, t := range live {
		all = append(all, t...)
	}
	out := all.FillNames(r.registry).DropNullDates().Dedupe()
	log.WithFields(logrus.Fields{
		"tickers":  len(tickers),
		"cached":   len(cached),
		"uncached": len(uncovered),
		"rows":     len(out),
	}).Debug("sector resolved")
	return out, failures, nil
}

// fetchAll fetches every ticker concurrently and returns the tables in tickers
// order, and the number of failed tickers. A failing ticker is logged and yields
// an empty table, only a context error aborts.
func fetchAll(ctx context.Context, f LiveFetcher, tickers []string, limit int, log logrus.FieldLogger) ([]Table, int, error) {
	tables := make([]Table, len(tickers))
	if len(tickers) == 0 {
		return tables, 0, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	var mu sync.Mutex
	failures := 0
	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, err := f.Fetch(gctx, ticker)
			if err != nil {
				log.WithError(err).WithField("ticker", ticker).Warn("live fetch failed, ticker skipped")
				mu.Lock()
				failures++
				mu.Unlock()
				return nil
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if failures > 0 {
		log.WithFields(logrus.Fields{"failed": failures, "requested": len(tickers)}).Info("some tickers have no live data")
	}
	return tables, failures, nil
}
