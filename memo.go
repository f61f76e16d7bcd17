package revenue

import (
	"crypto/sha1"
	"fmt"
	"sync"
	"time"
)

// Key identifies a memoized call: a function identity and its arguments.
type Key string

// NewKey returns the key of a call to function with args.
func NewKey(function string, args ...any) Key {
	key := fmt.Sprintf("%s %q", function, args)
	return Key(fmt.Sprintf("%s-%x", function, sha1.Sum([]byte(key))))
}

// Memo caches values for a time-boxed period.
//
// An entry is (value, expiry). Expired entries are recomputed and overwritten,
// failed computations are not stored. It is safe for concurrent use.
type Memo[V any] struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[Key]memoEntry[V]
}

type memoEntry[V any] struct {
	value  V
	expiry time.Time
}

// NewMemo returns a memo whose entries live for ttl.
func NewMemo[V any](ttl time.Duration) *Memo[V] {
	return &Memo[V]{ttl: ttl, now: time.Now, entries: make(map[Key]memoEntry[V])}
}

// SetClock replaces the clock used to compute expiries.
func (m *Memo[V]) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Get returns the fresh value stored for key.
func (m *Memo[V]) Get(key Key) (v V, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || !m.now().Before(e.expiry) {
		return v, false
	}
	return e.value, true
}

// Put stores value for key.
func (m *Memo[V]) Put(key Key, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoEntry[V]{value: value, expiry: m.now().Add(m.ttl)}
}

// Do returns the fresh value for key, or calls fn and stores its result.
//
// Concurrent calls for the same missing key may both call fn, the last one wins.
func (m *Memo[V]) Do(key Key, fn func() (V, error)) (V, error) {
	if v, ok := m.Get(key); ok {
		return v, nil
	}
	v, err := fn()
	if err != nil {
		return v, err
	}
	m.Put(key, v)
	return v, nil
}

// Invalidate drops every entry.
func (m *Memo[V]) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.entries)
}
