package finmind

import (
	"crypto/sha1"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/revenue/date"
	"github.com/sirupsen/logrus"
)

// diskCache stores decoded-ok response bodies on disk.
//
// Keys include the current day, so entries expire every day. Only bodies that
// decoded into records are stored: error envelopes travel with HTTP 200 and
// must not be replayed.
type diskCache struct {
	dir    string
	logger logrus.FieldLogger
}

// key returns the cache key of a request URL for today.
func (c *diskCache) key(reqURL string) string {
	return fmt.Sprintf("finmind-%x", sha1.Sum([]byte(date.Today().String()+" GET "+reqURL)))
}

func (c *diskCache) path(key string) string {
	dir := c.dir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, key)
}

// get retrieves a cached body from disk.
func (c *diskCache) get(key string) ([]byte, error) {
	return os.ReadFile(c.path(key))
}

// put stores a body to disk. Failures are logged and otherwise ignored.
func (c *diskCache) put(key string, body []byte) {
	err := os.MkdirAll(filepath.Dir(c.path(key)), 0o755)
	if err == nil {
		err = os.WriteFile(c.path(key), body, 0o644)
	}
	if err != nil {
		c.logger.WithError(err).Warn("cache write failed (ignored)")
	}
}
