// Package finmind provides a client for the FinMind open data API.
//
// Only the Taiwan monthly revenue dataset is used. A token is optional, without
// one the API grants its anonymous quota.
package finmind

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/revenue"
	"github.com/etnz/revenue/date"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL of the FinMind v4 API.
	DefaultBaseURL = "https://api.finmindtrade.com/api/v4"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 2

	// MonthRevenueDataset is the dataset of Taiwan listed companies monthly revenue.
	MonthRevenueDataset = "TaiwanStockMonthRevenue"

	// TokenEnv is the environment variable conventionally holding the API token.
	TokenEnv = "FINMIND_TOKEN"
)

// ErrMalformed is returned when a response cannot be understood.
var ErrMalformed = errors.New("malformed FinMind response")

// APIError represents an error from the FinMind API.
type APIError struct {
	StatusCode int
	Message    string
	Dataset    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("FinMind API error: %s (status: %d, dataset: %s)", e.Message, e.StatusCode, e.Dataset)
}

// Client is a FinMind API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      RetryConfig
	logger     logrus.FieldLogger
	cacheDir   *string
	cache      *diskCache
}

var _ revenue.Source = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithToken sets the API token, sent as a bearer token. An empty token means
// anonymous access.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *Client) {
		burst := max(int(requestsPerSecond), 1)
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithRetry sets the retry policy.
func WithRetry(retry RetryConfig) ClientOption {
	return func(c *Client) { c.retry = retry }
}

// WithDiskCache caches successful responses in dir for the rest of the day.
// An empty dir means the system temporary directory.
func WithDiskCache(dir string) ClientOption {
	return func(c *Client) { c.cacheDir = &dir }
}

// WithLogger sets a logger.
func WithLogger(logger logrus.FieldLogger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a new FinMind API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		retry:   DefaultRetryConfig(),
		logger:  logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.cacheDir != nil {
		c.cache = &diskCache{dir: *c.cacheDir, logger: c.logger}
	}

	return c
}

// MonthRevenue returns the monthly revenue records of ticker published from start.
//
// Records keep FinMind's field names (stock_id, date, revenue, ...).
func (c *Client) MonthRevenue(ctx context.Context, ticker string, start date.Date) ([]revenue.Record, error) {
	params := url.Values{}
	params.Set("dataset", MonthRevenueDataset)
	params.Set("data_id", ticker)
	params.Set("start_date", start.String())
	return c.data(ctx, params)
}

// data queries the /data endpoint with retries and returns its records.
func (c *Client) data(ctx context.Context, params url.Values) ([]revenue.Record, error) {
	var (
		records []revenue.Record
		err     error
	)
	for attempt := 0; ; attempt++ {
		records, err = c.get(ctx, params)
		if err == nil || attempt >= c.retry.MaxRetries || !Retryable(err) {
			return records, err
		}
		wait := c.retry.Backoff(attempt)
		c.logger.WithError(err).WithFields(logrus.Fields{
			"data_id": params.Get("data_id"),
			"attempt": attempt + 1,
			"wait":    wait,
		}).Warn("FinMind request failed, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// get performs a single GET request on the /data endpoint.
func (c *Client) get(ctx context.Context, params url.Values) ([]revenue.Record, error) {
	reqURL := fmt.Sprintf("%s/data?%s", c.baseURL, params.Encode())
	var key string
	if c.cache != nil {
		key = c.cache.key(reqURL)
		if body, err := c.cache.get(key); err == nil {
			if records, err := decodeRecords(body, params.Get("dataset")); err == nil {
				c.logger.WithField("data_id", params.Get("data_id")).Debug("FinMind cache hit")
				return records, nil
			}
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.WithFields(logrus.Fields{
		"dataset": params.Get("dataset"),
		"data_id": params.Get("data_id"),
	}).Debug("FinMind API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    message(body),
			Dataset:    params.Get("dataset"),
		}
	}
	records, err := decodeRecords(body, params.Get("dataset"))
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.put(key, body)
	}
	return records, nil
}

// message extracts the "msg" of an error payload, or returns the raw body.
func message(body []byte) string {
	var payload struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Msg != "" {
		return payload.Msg
	}
	return string(body)
}

// decodeRecords reads the {"msg", "status", "data": [...]} envelope.
func decodeRecords(body []byte, dataset string) ([]revenue.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if status, err := jsonpath.Get("$.status", jobj); err == nil {
		if n, ok := status.(json.Number); ok && n.String() != "200" {
			code, _ := n.Int64()
			msg, _ := jsonpath.Get("$.msg", jobj)
			return nil, &APIError{StatusCode: int(code), Message: fmt.Sprint(msg), Dataset: dataset}
		}
	}

	jval, err := jsonpath.Get("$.data", jobj)
	if err != nil {
		return nil, fmt.Errorf("%w: no data: %v", ErrMalformed, err)
	}
	if jval == nil {
		return nil, nil
	}
	list, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: data is %T, not a list", ErrMalformed, jval)
	}
	records := make([]revenue.Record, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: data[%d] is %T, not an object", ErrMalformed, i, item)
		}
		records = append(records, revenue.Record(m))
	}
	return records, nil
}
