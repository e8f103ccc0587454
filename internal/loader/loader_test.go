package loader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dashspec-cli/internal/table"
)

func seqTable(t *testing.T, n int) *table.Table {
	t.Helper()
	vals := make([]int64, n)
	for i := range vals {
		vals[i] = int64(i)
	}
	tbl, err := table.New(table.NewInt("i", vals, nil))
	require.NoError(t, err)
	return tbl
}

func TestSampleSizePrecedence(t *testing.T) {
	l := New(DefaultPolicy(), nil)

	tests := []struct {
		name     string
		total    int64
		opts     Options
		wantSize int
		sampled  bool
	}{
		{"small file loads fully", 50_000, Options{}, 0, false},
		{"boundary is not large", 100_000, Options{}, 0, false},
		{"large file samples", 500_000, Options{}, 50_000, true},
		{"huge file samples harder", 2_000_000, Options{}, 100_000, true},
		{"row cap wins over policy", 2_000_000, Options{RowCap: 1000}, 1000, true},
		{"row cap above total is ignored", 500, Options{RowCap: 1000}, 0, false},
		{"force full disables sampling", 2_000_000, Options{ForceFull: true}, 0, false},
		{"row cap wins over force full", 2_000_000, Options{ForceFull: true, RowCap: 10}, 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, sampled := l.sampleSize(tt.total, tt.opts)
			assert.Equal(t, tt.wantSize, size)
			assert.Equal(t, tt.sampled, sampled)
		})
	}
}

func TestSampleRowsDeterministic(t *testing.T) {
	a, err := sampleRows(seqTable(t, 1000), 100, 42)
	require.NoError(t, err)
	b, err := sampleRows(seqTable(t, 1000), 100, 42)
	require.NoError(t, err)

	require.Equal(t, 100, a.NumRows())
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Column("i").IntAt(i), b.Column("i").IntAt(i))
	}

	// Row order is preserved.
	for i := 1; i < a.NumRows(); i++ {
		assert.Less(t, a.Column("i").IntAt(i-1), a.Column("i").IntAt(i))
	}

	c, err := sampleRows(seqTable(t, 1000), 100, 43)
	require.NoError(t, err)
	same := true
	for i := 0; i < 100; i++ {
		if a.Column("i").IntAt(i) != c.Column("i").IntAt(i) {
			same = false
			break
		}
	}
	assert.False(t, same, "different seeds should pick different rows")
}

func TestSampleRowsNoopWhenSizeCoversTable(t *testing.T) {
	tbl := seqTable(t, 10)
	out, err := sampleRows(tbl, 10, 42)
	require.NoError(t, err)
	assert.Same(t, tbl, out)
}

func TestCacheKeyDistinct(t *testing.T) {
	base := cacheKey("a.parquet", nil, 0)
	assert.NotEqual(t, base, cacheKey("b.parquet", nil, 0))
	assert.NotEqual(t, base, cacheKey("a.parquet", []string{"x"}, 0))
	assert.NotEqual(t, base, cacheKey("a.parquet", nil, 100))
	assert.Equal(t, base, cacheKey("a.parquet", nil, 0))
}

func TestCacheTTLExpiry(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache(time.Minute, func() time.Time { return clock })

	tbl := seqTable(t, 3)
	c.put("k", tbl, LoadInfo{LoadedRows: 3})

	got, info, ok := c.get("k")
	require.True(t, ok)
	assert.Same(t, tbl, got)
	assert.Equal(t, 3, info.LoadedRows)

	clock = clock.Add(2 * time.Minute)
	_, _, ok = c.get("k")
	assert.False(t, ok)

	// The expired entry is gone, not just hidden.
	clock = clock.Add(-2 * time.Minute)
	_, _, ok = c.get("k")
	assert.False(t, ok)
}

func TestCacheDisabledByZeroTTL(t *testing.T) {
	c := NewCache(0, nil)
	c.put("k", seqTable(t, 1), LoadInfo{})
	_, _, ok := c.get("k")
	assert.False(t, ok)
}

func TestCacheNilReceiverSafe(t *testing.T) {
	var c *Cache
	c.put("k", nil, LoadInfo{})
	_, _, ok := c.get("k")
	assert.False(t, ok)
	c.Purge()
}

func TestCachePurge(t *testing.T) {
	c := NewCache(time.Hour, nil)
	c.put("k", seqTable(t, 1), LoadInfo{})
	c.Purge()
	_, _, ok := c.get("k")
	assert.False(t, ok)
}
