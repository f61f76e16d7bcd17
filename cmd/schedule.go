package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// refreshTimeout bounds a scheduled refresh.
const refreshTimeout = 30 * time.Minute

type scheduleCmd struct {
	schedule string
	now      bool
}

func (*scheduleCmd) Name() string     { return "schedule" }
func (*scheduleCmd) Synopsis() string { return "run the refresh periodically" }
func (*scheduleCmd) Usage() string {
	return `revdash schedule [-cron <expr>] [-now]

  Runs the refresh on a cron schedule (with seconds) until interrupted.
  The default schedule is refresh.schedule from the configuration.
`
}

func (c *scheduleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.schedule, "cron", "", "Cron expression with seconds, e.g. \"0 0 6 * * *\"")
	f.BoolVar(&c.now, "now", false, "Also refresh immediately")
}

func (c *scheduleCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	config, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.schedule != "" {
		config.Refresh.Schedule = c.schedule
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := newScheduler(config)
	if err := s.start(ctx, config.Refresh.Schedule); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid schedule %q: %v\n", config.Refresh.Schedule, err)
		return subcommands.ExitUsageError
	}
	if c.now {
		go s.run(ctx)
	}
	<-ctx.Done()
	s.stop()
	return subcommands.ExitSuccess
}

// scheduler runs refreshes on a cron schedule.
type scheduler struct {
	cron    *cron.Cron
	refresh func(ctx context.Context) error
	logger  logrus.FieldLogger
}

func newScheduler(config *Config) *scheduler {
	logger := logrus.WithField("component", "scheduler")
	return &scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		refresh: func(ctx context.Context) error { return refresh(ctx, config) },
		logger:  logger,
	}
}

// start schedules the refresh, runs are canceled with ctx.
func (s *scheduler) start(ctx context.Context, schedule string) error {
	if _, err := s.cron.AddFunc(schedule, func() { s.run(ctx) }); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.WithField("schedule", schedule).Info("refresh scheduler started")
	return nil
}

// stop waits for a running refresh to complete.
func (s *scheduler) stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("refresh scheduler stopped")
}

func (s *scheduler) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	began := time.Now()
	if err := s.refresh(ctx); err != nil {
		s.logger.WithError(err).Error("scheduled refresh failed")
		return
	}
	s.logger.WithField("duration", time.Since(began).Round(time.Millisecond)).Info("scheduled refresh completed")
}
