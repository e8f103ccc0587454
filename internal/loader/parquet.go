package loader

import (
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"
	"github.com/rotisserie/eris"

	"github.com/sells-group/dashspec-cli/internal/table"
)

// readMetadata reads row/column counts and column names from the file footer
// without scanning row data.
func readMetadata(path string) (Metadata, error) {
	f, st, err := openParquet(path)
	if err != nil {
		return Metadata{}, err
	}
	defer f.Close()

	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return Metadata{}, eris.Wrapf(err, "loader: reading parquet footer of %s", path)
	}

	fields := pf.Schema().Fields()
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = field.Name()
	}

	return Metadata{
		RowCount:    pf.NumRows(),
		ColumnCount: len(fields),
		FileSize:    st.Size(),
		ColumnNames: names,
	}, nil
}

// readTable loads the file into a columnar table. When columns is non-empty,
// only the named columns are materialized; the others are scanned past.
func readTable(path string, columns []string) (*table.Table, error) {
	f, st, err := openParquet(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, eris.Wrapf(err, "loader: reading parquet footer of %s", path)
	}

	wanted := make(map[string]bool, len(columns))
	for _, name := range columns {
		wanted[name] = true
	}

	fields := pf.Schema().Fields()
	builders := make([]*columnBuilder, len(fields))
	n := int(pf.NumRows())
	for i, field := range fields {
		if len(wanted) > 0 && !wanted[field.Name()] {
			continue
		}
		builders[i] = newColumnBuilder(field, n)
	}

	buf := make([]parquet.Row, 256)
	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		for {
			count, err := rows.ReadRows(buf)
			for _, row := range buf[:count] {
				for _, v := range row {
					ci := int(v.Column())
					if ci >= 0 && ci < len(builders) && builders[ci] != nil {
						builders[ci].append(v)
					}
				}
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				rows.Close()
				return nil, eris.Wrapf(err, "loader: reading rows of %s", path)
			}
		}
		if err := rows.Close(); err != nil {
			return nil, eris.Wrapf(err, "loader: closing row reader of %s", path)
		}
	}

	var cols []*table.Column
	for _, b := range builders {
		if b != nil {
			cols = append(cols, b.build())
		}
	}
	return table.New(cols...)
}

func openParquet(path string) (*os.File, os.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "loader: opening %s", path)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, eris.Wrapf(err, "loader: stat %s", path)
	}
	return f, st, nil
}

// columnBuilder accumulates one parquet leaf column into the matching table
// column kind.
type columnBuilder struct {
	name string
	kind table.Kind

	// timestamp scale, nanoseconds per stored unit
	tsScale int64

	floats []float64
	ints   []int64
	strs   []string
	bools  []bool
	times  []time.Time
	valid  []bool
}

func newColumnBuilder(field parquet.Field, capacity int) *columnBuilder {
	b := &columnBuilder{
		name:  field.Name(),
		valid: make([]bool, 0, capacity),
	}

	lt := field.Type().LogicalType()
	switch field.Type().Kind() {
	case parquet.Boolean:
		b.kind = table.Bool
		b.bools = make([]bool, 0, capacity)
	case parquet.Int32, parquet.Int64:
		switch {
		case lt != nil && lt.Timestamp != nil:
			b.kind = table.Time
			b.tsScale = timestampScale(lt.Timestamp.Unit)
			b.times = make([]time.Time, 0, capacity)
		case lt != nil && lt.Date != nil:
			b.kind = table.Time
			b.times = make([]time.Time, 0, capacity)
		default:
			b.kind = table.Int
			b.ints = make([]int64, 0, capacity)
		}
	case parquet.Float, parquet.Double:
		b.kind = table.Float
		b.floats = make([]float64, 0, capacity)
	default:
		b.kind = table.String
		b.strs = make([]string, 0, capacity)
	}
	return b
}

func timestampScale(unit format.TimeUnit) int64 {
	switch {
	case unit.Millis != nil:
		return int64(time.Millisecond)
	case unit.Micros != nil:
		return int64(time.Microsecond)
	default:
		return 1
	}
}

func (b *columnBuilder) append(v parquet.Value) {
	if v.IsNull() {
		b.valid = append(b.valid, false)
		switch b.kind {
		case table.Float:
			b.floats = append(b.floats, 0)
		case table.Int:
			b.ints = append(b.ints, 0)
		case table.String:
			b.strs = append(b.strs, "")
		case table.Bool:
			b.bools = append(b.bools, false)
		case table.Time:
			b.times = append(b.times, time.Time{})
		}
		return
	}

	b.valid = append(b.valid, true)
	switch b.kind {
	case table.Float:
		b.floats = append(b.floats, v.Double())
	case table.Int:
		b.ints = append(b.ints, v.Int64())
	case table.String:
		b.strs = append(b.strs, v.String())
	case table.Bool:
		b.bools = append(b.bools, v.Boolean())
	case table.Time:
		if b.tsScale > 0 {
			b.times = append(b.times, time.Unix(0, v.Int64()*b.tsScale).UTC())
		} else {
			// DATE columns store days since the Unix epoch.
			b.times = append(b.times, time.Unix(v.Int64()*86400, 0).UTC())
		}
	}
}

func (b *columnBuilder) build() *table.Column {
	switch b.kind {
	case table.Float:
		return table.NewFloat(b.name, b.floats, b.valid)
	case table.Int:
		return table.NewInt(b.name, b.ints, b.valid)
	case table.Bool:
		return table.NewBool(b.name, b.bools, b.valid)
	case table.Time:
		return table.NewTime(b.name, b.times, b.valid)
	default:
		return table.NewString(b.name, b.strs, b.valid)
	}
}
