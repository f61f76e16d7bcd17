package revenue

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoData is returned by Refresh when no sector produced any row.
var ErrNoData = errors.New("no revenue data fetched for any sector")

// SchemaError reports a source missing required columns.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Source, strings.Join(e.Missing, ", "))
}
