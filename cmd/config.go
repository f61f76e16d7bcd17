package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/etnz/revenue"
	"github.com/etnz/revenue/date"
	"github.com/etnz/revenue/finmind"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

// Environment variables overriding the configuration file.
const (
	EnvRegistry = "REVENUE_REGISTRY"
	EnvWorkbook = "REVENUE_WORKBOOK"
	EnvLogLevel = "REVENUE_LOG_LEVEL"
	EnvToken    = finmind.TokenEnv
)

// Config is the application configuration.
type Config struct {
	Registry      string        `toml:"registry"`       // path to the registry CSV
	Workbook      string        `toml:"workbook"`       // path to the cached workbook
	FallbackSheet string        `toml:"fallback_sheet"` // legacy sheet used by sectors without their own
	Currency      string        `toml:"currency"`
	FinMind       FinMindConfig `toml:"finmind"`
	Fetch         FetchConfig   `toml:"fetch"`
	Refresh       RefreshConfig `toml:"refresh"`
	Logging       LoggingConfig `toml:"logging"`
}

// FinMindConfig configures the provider client.
type FinMindConfig struct {
	BaseURL        string  `toml:"base_url"`
	Token          string  `toml:"token"`
	Timeout        string  `toml:"timeout"`    // e.g. "30s"
	RateLimit      float64 `toml:"rate_limit"` // requests per second
	MaxRetries     int     `toml:"max_retries"`
	InitialBackoff string  `toml:"initial_backoff"`
	MaxBackoff     string  `toml:"max_backoff"`
	CacheDir       string  `toml:"cache_dir"` // empty disables the disk cache
}

// FetchConfig configures live fetches of the dashboard.
type FetchConfig struct {
	Epoch         string `toml:"epoch"`          // first month fetched, YYYY-MM-DD
	LookbackYears int    `toml:"lookback_years"` // used instead of epoch when positive
	Concurrency   int    `toml:"concurrency"`
}

// RefreshConfig configures the batch refresh.
type RefreshConfig struct {
	LookbackYears int    `toml:"lookback_years"`
	Schedule      string `toml:"schedule"` // cron expression with seconds
}

// LoggingConfig configures logrus.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Registry:      "groups.csv",
		Workbook:      "sector_dashboard.xlsx",
		FallbackSheet: "連接器",
		Currency:      "TWD",
		FinMind: FinMindConfig{
			BaseURL:        finmind.DefaultBaseURL,
			Timeout:        finmind.DefaultTimeout.String(),
			RateLimit:      finmind.DefaultRateLimit,
			MaxRetries:     finmind.DefaultMaxRetries,
			InitialBackoff: finmind.DefaultInitialBackoff.String(),
			MaxBackoff:     finmind.DefaultMaxBackoff.String(),
		},
		Fetch: FetchConfig{
			Epoch:       revenue.DefaultEpoch.String(),
			Concurrency: revenue.DefaultConcurrency,
		},
		Refresh: RefreshConfig{
			LookbackYears: 3,
			Schedule:      "0 0 6 * * *",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads the configuration: defaults, then the TOML file at path,
// then the .env file, then the environment. A missing file is not an error.
func LoadConfig(path, dotenv string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logrus.WithField("path", path).Debug("no configuration file, using defaults")
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}
	if dotenv != "" {
		// existing variables take precedence over the file
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", dotenv, err)
		}
	}
	applyEnvOverrides(config)
	return config, config.Validate()
}

func applyEnvOverrides(config *Config) {
	if token := os.Getenv(EnvToken); token != "" {
		config.FinMind.Token = token
	}
	if registry := os.Getenv(EnvRegistry); registry != "" {
		config.Registry = registry
	}
	if workbook := os.Getenv(EnvWorkbook); workbook != "" {
		config.Workbook = workbook
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		config.Logging.Level = level
	}
}

// Validate checks the values that are parsed later on.
func (c *Config) Validate() error {
	for name, d := range map[string]string{
		"finmind.timeout":         c.FinMind.Timeout,
		"finmind.initial_backoff": c.FinMind.InitialBackoff,
		"finmind.max_backoff":     c.FinMind.MaxBackoff,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, d, err)
		}
	}
	if _, err := date.Parse(c.Fetch.Epoch); err != nil {
		return fmt.Errorf("invalid fetch.epoch %q: %w", c.Fetch.Epoch, err)
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %w", err)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid logging.format %q, want text or json", c.Logging.Format)
	}
	if c.FinMind.RateLimit <= 0 {
		return fmt.Errorf("invalid finmind.rate_limit %g, must be positive", c.FinMind.RateLimit)
	}
	return nil
}

// SetupLogging configures the standard logrus logger.
func (c *Config) SetupLogging() {
	level, err := logrus.ParseLevel(c.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)
	if c.Logging.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// Client returns the provider client. Durations are checked by Validate.
func (c *Config) Client() *finmind.Client {
	timeout, _ := time.ParseDuration(c.FinMind.Timeout)
	initial, _ := time.ParseDuration(c.FinMind.InitialBackoff)
	maxBackoff, _ := time.ParseDuration(c.FinMind.MaxBackoff)
	opts := []finmind.ClientOption{
		finmind.WithBaseURL(c.FinMind.BaseURL),
		finmind.WithToken(c.FinMind.Token),
		finmind.WithHTTPClient(&http.Client{Timeout: timeout}),
		finmind.WithRateLimit(c.FinMind.RateLimit),
		finmind.WithRetry(finmind.RetryConfig{
			MaxRetries:     c.FinMind.MaxRetries,
			InitialBackoff: initial,
			MaxBackoff:     maxBackoff,
			Multiplier:     finmind.DefaultMultiplier,
		}),
	}
	if c.FinMind.CacheDir != "" {
		opts = append(opts, finmind.WithDiskCache(c.FinMind.CacheDir))
	}
	return finmind.NewClient(opts...)
}

// FetchOptions returns the live fetch options of the dashboard.
func (c *Config) FetchOptions() []revenue.Option {
	opts := []revenue.Option{revenue.WithConcurrency(c.Fetch.Concurrency)}
	if c.Fetch.LookbackYears > 0 {
		return append(opts, revenue.WithLookback(c.Fetch.LookbackYears))
	}
	epoch, _ := date.Parse(c.Fetch.Epoch)
	return append(opts, revenue.WithStart(epoch))
}
