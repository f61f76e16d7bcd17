package revenue

import (
	"time"

	"github.com/etnz/revenue/date"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultFetchTTL is how long a live fetch is reused.
	DefaultFetchTTL = 24 * time.Hour
	// DefaultResolveTTL is how long a resolved sector table is reused.
	DefaultResolveTTL = 12 * time.Hour
	// DefaultConcurrency is the number of simultaneous live fetches.
	DefaultConcurrency = 4
)

// Option configures a Fetcher, a Resolver or a Refresh run.
type Option func(*options)

type options struct {
	logger      logrus.FieldLogger
	start       date.Date
	fetchTTL    time.Duration
	resolveTTL  time.Duration
	concurrency int
	now         func() time.Time
}

func newOptions(opts []Option) options {
	o := options{
		logger:      logrus.StandardLogger(),
		start:       DefaultEpoch,
		fetchTTL:    DefaultFetchTTL,
		resolveTTL:  DefaultResolveTTL,
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	return o
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) { o.logger = logger }
}

// WithStart sets the first month fetched from the provider.
func WithStart(start date.Date) Option {
	return func(o *options) { o.start = start }
}

// WithLookback starts fetching years before the current month.
func WithLookback(years int) Option {
	return func(o *options) { o.start = LookbackStart(date.Of(o.now()), years) }
}

// WithFetchTTL sets how long a live fetch is reused.
func WithFetchTTL(ttl time.Duration) Option {
	return func(o *options) { o.fetchTTL = ttl }
}

// WithResolveTTL sets how long a resolved sector is reused.
func WithResolveTTL(ttl time.Duration) Option {
	return func(o *options) { o.resolveTTL = ttl }
}

// WithConcurrency bounds the number of simultaneous live fetches.
func WithConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

// WithClock replaces time.Now, options after it see the new clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}
