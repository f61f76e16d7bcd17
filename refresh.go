package revenue

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Refresh fetches every ticker of every sector of the registry.
//
// It returns one table per sector with at least one row. Failing tickers are
// logged and skipped. It fails with ErrNoData when no sector has any row.
//
// Accepted options: WithConcurrency, WithLogger.
func Refresh(ctx context.Context, reg *Registry, f LiveFetcher, opts ...Option) (map[string]Table, error) {
	o := newOptions(opts)
	log := o.logger.WithField("run_id", uuid.NewString())
	began := time.Now()
	log.WithField("sectors", len(reg.Sectors())).Info("refresh started")

	sheets := make(map[string]Table)
	for _, sector := range reg.Sectors() {
		slog := log.WithField("sector", sector)
		tables, _, err := fetchAll(ctx, f, reg.Tickers(sector), o.concurrency, slog)
		if err != nil {
			return nil, err
		}
		all := Table{}
		for _, t := range tables {
			all = append(all, t...)
		}
		all = all.FillNames(reg).DropNullDates().Dedupe()
		if len(all) == 0 {
			slog.Warn("no data for sector")
			continue
		}
		sheets[sector] = all
		slog.WithField("rows", len(all)).Info("sector fetched")
	}
	if len(sheets) == 0 {
		return nil, ErrNoData
	}
	log.WithFields(logrus.Fields{"sectors": len(sheets), "duration": time.Since(began).Round(time.Millisecond)}).Info("refresh completed")
	return sheets, nil
}
