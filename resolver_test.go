package revenue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var connectors = NewRegistry(
	Entry{"3533", "嘉澤", "連接器"},
	Entry{"2392", "正崴", "連接器"},
	Entry{"2330", "台積電", "半導體"},
)

func TestResolve_CacheAndLive(t *testing.T) {
	wb := NewWorkbook(map[string]Table{
		"連接器": {R("3533", "嘉澤", "2024-01-01", 10), R("3533", "嘉澤", "2024-02-01", 11)},
	}, "")
	f := newFakeFetcher(map[string]Table{
		"3533": {R("3533", "", "2024-03-01", 99)},
		"2392": {R("2392", "", "2024-02-01", 5), R("2392", "", "2024-01-01", 4)},
	})
	r := NewResolver(connectors, wb, f)

	got, err := r.Resolve(context.Background(), "連接器")
	require.NoError(t, err)
	want := Table{
		R("2392", "正崴", "2024-01-01", 4),
		R("2392", "正崴", "2024-02-01", 5),
		R("3533", "嘉澤", "2024-01-01", 10),
		R("3533", "嘉澤", "2024-02-01", 11),
	}
	assert.Equal(t, want, got)
	assert.Equal(t, 0, f.count("3533"), "a cached ticker must not be fetched")
	assert.Equal(t, 1, f.count("2392"))
}

func TestResolve_Memoized(t *testing.T) {
	f := newFakeFetcher(map[string]Table{"2330": {R("2330", "", "2024-01-01", 1)}})
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	r := NewResolver(connectors, nil, f, WithClock(func() time.Time { return now }))

	for i := 0; i < 3; i++ {
		_, err := r.Resolve(context.Background(), "半導體")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, f.count("2330"))

	now = now.Add(DefaultResolveTTL)
	_, err := r.Resolve(context.Background(), "半導體")
	require.NoError(t, err)
	assert.Equal(t, 2, f.count("2330"), "an expired sector is resolved again")

	r.Invalidate()
	_, err = r.Resolve(context.Background(), "半導體")
	require.NoError(t, err)
	assert.Equal(t, 3, f.count("2330"))
}

func TestResolve_PartialFailure(t *testing.T) {
	f := newFakeFetcher(map[string]Table{"2392": {R("2392", "", "2024-01-01", 4)}}, "3533")
	r := NewResolver(connectors, nil, f)

	got, err := r.Resolve(context.Background(), "連接器")
	require.NoError(t, err)
	assert.Equal(t, []string{"2392"}, got.Tickers())
}

func TestResolve_PartialNotMemoized(t *testing.T) {
	f := newFakeFetcher(map[string]Table{
		"3533": {R("3533", "", "2024-01-01", 10)},
		"2392": {R("2392", "", "2024-01-01", 4)},
	}, "3533")
	r := NewResolver(connectors, nil, f)

	got, err := r.Resolve(context.Background(), "連接器")
	require.NoError(t, err)
	assert.Equal(t, []string{"2392"}, got.Tickers())

	// the provider recovers: the next call must not serve the partial sector
	f.mu.Lock()
	delete(f.fail, "3533")
	f.mu.Unlock()

	got, err = r.Resolve(context.Background(), "連接器")
	require.NoError(t, err)
	assert.Equal(t, []string{"2392", "3533"}, got.Tickers())
	assert.Equal(t, 2, f.count("3533"))

	// a complete sector is memoized again
	_, err = r.Resolve(context.Background(), "連接器")
	require.NoError(t, err)
	assert.Equal(t, 2, f.count("3533"))
	assert.Equal(t, 2, f.count("2392"))
}

func TestResolve_UnknownSector(t *testing.T) {
	f := newFakeFetcher(nil)
	got, err := NewResolver(connectors, nil, f).Resolve(context.Background(), "光通訊")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestResolve_FallbackSheet(t *testing.T) {
	// the legacy sheet holds several sectors, only the sector's tickers are used
	wb := NewWorkbook(map[string]Table{
		"連接器": {R("3533", "嘉澤", "2024-01-01", 10), R("2330", "台積電", "2024-01-01", 99)},
	}, "連接器")
	f := newFakeFetcher(nil)
	got, err := NewResolver(connectors, wb, f).Resolve(context.Background(), "半導體")
	require.NoError(t, err)
	assert.Equal(t, Table{R("2330", "台積電", "2024-01-01", 99)}, got)
	assert.Equal(t, 0, f.count("2330"))
}

func TestResolve_DropsNullDates(t *testing.T) {
	f := newFakeFetcher(map[string]Table{"2330": {{Ticker: "2330", Revenue: D("1")}, R("2330", "", "2024-01-01", 1)}})
	got, err := NewResolver(connectors, nil, f).Resolve(context.Background(), "半導體")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestResolve_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewResolver(connectors, nil, newFakeFetcher(nil)).Resolve(ctx, "連接器")
	assert.ErrorIs(t, err, context.Canceled)
}
