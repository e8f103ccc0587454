// Package loader reads the backing columnar data file of a dashboard. It
// exposes cheap footer-only metadata, full or deterministically sampled
// loads, and a TTL cache keyed by call arguments. Sampling kicks in
// automatically for large files; an explicit row cap from the caller always
// wins over the automatic policy.
package loader

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/dashspec-cli/internal/table"
)

// SamplingPolicy decides when and how hard to sample. Values come from
// configuration; Default matches the thresholds callers expect.
type SamplingPolicy struct {
	// LargeRows is the row count above which moderate sampling applies.
	LargeRows int64
	// HugeRows is the row count above which aggressive sampling applies.
	HugeRows int64
	// SampleSize is the target for moderate sampling.
	SampleSize int
	// LargeSampleSize is the target for aggressive sampling.
	LargeSampleSize int
	// Seed fixes the sampling RNG so repeated loads agree.
	Seed int64
}

// DefaultPolicy returns the standard thresholds: full load below 100k rows,
// 50k sample up to 1M rows, 100k sample beyond.
func DefaultPolicy() SamplingPolicy {
	return SamplingPolicy{
		LargeRows:       100_000,
		HugeRows:        1_000_000,
		SampleSize:      50_000,
		LargeSampleSize: 100_000,
		Seed:            42,
	}
}

// Metadata describes a data file without loading it.
type Metadata struct {
	RowCount    int64    `json:"row_count"`
	ColumnCount int      `json:"column_count"`
	FileSize    int64    `json:"file_size"`
	ColumnNames []string `json:"column_names"`
}

// Options tunes a single Load call.
type Options struct {
	// Columns restricts the load to the named columns; empty loads all.
	Columns []string
	// RowCap forces sampling down to this many rows regardless of policy.
	RowCap int
	// ForceFull disables automatic sampling (an explicit RowCap still wins).
	ForceFull bool
	// Progress, when set, receives (loadedRows, totalRows) after the load.
	Progress func(loaded, total int)
}

// LoadInfo reports what a Load actually did.
type LoadInfo struct {
	TotalRows   int           `json:"total_rows"`
	LoadedRows  int           `json:"loaded_rows"`
	Sampled     bool          `json:"sampled"`
	SampleRatio float64       `json:"sample_ratio"`
	FileSize    int64         `json:"file_size"`
	Duration    time.Duration `json:"-"`
}

// Loader reads parquet files with sampling and caching. The zero value is
// not usable; construct with New.
type Loader struct {
	policy SamplingPolicy
	cache  *Cache
}

// New creates a loader. A nil cache disables memoization.
func New(policy SamplingPolicy, cache *Cache) *Loader {
	return &Loader{policy: policy, cache: cache}
}

// Metadata reads the file footer only: row and column counts, file size,
// and column names.
func (l *Loader) Metadata(path string) (Metadata, error) {
	return readMetadata(path)
}

// Load reads the file, sampling it down per policy when it is large. The
// returned table is the cached instance; callers who mutate it must Clone
// first, the same contract the data-quality processor already honors.
func (l *Loader) Load(ctx context.Context, path string, opts Options) (*table.Table, LoadInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, LoadInfo{}, err
	}

	key := cacheKey(path, opts.Columns, opts.RowCap)
	if tbl, info, ok := l.cache.get(key); ok {
		zap.L().Debug("loader: cache hit", zap.String("path", path))
		return tbl, info, nil
	}

	start := time.Now()
	meta, err := l.Metadata(path)
	if err != nil {
		return nil, LoadInfo{}, err
	}

	sampleSize, sampled := l.sampleSize(meta.RowCount, opts)

	tbl, err := readTable(path, opts.Columns)
	if err != nil {
		return nil, LoadInfo{}, err
	}
	if sampled {
		tbl, err = sampleRows(tbl, sampleSize, l.policy.Seed)
		if err != nil {
			return nil, LoadInfo{}, err
		}
	}

	info := LoadInfo{
		TotalRows:   int(meta.RowCount),
		LoadedRows:  tbl.NumRows(),
		Sampled:     sampled,
		SampleRatio: 1.0,
		FileSize:    meta.FileSize,
		Duration:    time.Since(start),
	}
	if sampled && meta.RowCount > 0 {
		info.SampleRatio = float64(info.LoadedRows) / float64(meta.RowCount)
	}

	zap.L().Info("loader: loaded data file",
		zap.String("path", path),
		zap.Int("rows", info.LoadedRows),
		zap.Bool("sampled", sampled),
		zap.Duration("duration", info.Duration),
	)

	l.cache.put(key, tbl, info)
	if opts.Progress != nil {
		opts.Progress(info.LoadedRows, info.TotalRows)
	}
	return tbl, info, nil
}

// sampleSize applies the precedence rules: an explicit row cap first, then
// the automatic thresholds unless a full load was forced.
func (l *Loader) sampleSize(totalRows int64, opts Options) (int, bool) {
	if opts.RowCap > 0 && int64(opts.RowCap) < totalRows {
		return opts.RowCap, true
	}
	if opts.ForceFull {
		return 0, false
	}
	switch {
	case totalRows > l.policy.HugeRows:
		return l.policy.LargeSampleSize, true
	case totalRows > l.policy.LargeRows:
		return l.policy.SampleSize, true
	default:
		return 0, false
	}
}

// sampleRows picks size distinct row indices with a fixed-seed RNG and keeps
// them in ascending order, so time-ordered data stays ordered.
func sampleRows(t *table.Table, size int, seed int64) (*table.Table, error) {
	n := t.NumRows()
	if size >= n {
		return t, nil
	}

	rng := rand.New(rand.NewSource(seed))
	picked := rng.Perm(n)[:size]
	sort.Ints(picked)

	mask := make([]bool, n)
	for _, i := range picked {
		mask[i] = true
	}
	return t.Filter(mask)
}
