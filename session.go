package revenue

import (
	"time"
)

// DefaultLoadTTL is how long decoded registry and workbook files are reused.
const DefaultLoadTTL = 24 * time.Hour

// Session loads registry and workbook files once and reuses them for a
// time-boxed period.
type Session struct {
	registries *Memo[*Registry]
	workbooks  *Memo[*Workbook]
}

// NewSession returns a session whose loads live for ttl.
func NewSession(ttl time.Duration) *Session {
	return &Session{
		registries: NewMemo[*Registry](ttl),
		workbooks:  NewMemo[*Workbook](ttl),
	}
}

// SetClock replaces the clock used to expire loads.
func (s *Session) SetClock(now func() time.Time) {
	s.registries.SetClock(now)
	s.workbooks.SetClock(now)
}

// Registry returns the registry at path, decoding it if needed.
func (s *Session) Registry(path string) (*Registry, error) {
	return s.registries.Do(NewKey("registry", path), func() (*Registry, error) { return LoadRegistry(path) })
}

// Workbook returns the workbook at path, decoding it if needed.
func (s *Session) Workbook(path, fallback string) (*Workbook, error) {
	return s.workbooks.Do(NewKey("workbook", path, fallback), func() (*Workbook, error) { return ReadWorkbook(path, fallback) })
}

// Invalidate forgets every load.
func (s *Session) Invalidate() {
	s.registries.Invalidate()
	s.workbooks.Invalidate()
}
