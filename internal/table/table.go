// Package table implements the in-memory columnar table the data-quality
// processor and execution engine operate on: typed columns with validity
// masks, defensive copies, and mask-based row filtering.
package table

import (
	"github.com/rotisserie/eris"
)

// Table is an ordered collection of equal-length columns.
type Table struct {
	cols   []*Column
	byName map[string]int
	nrows  int
}

// New builds a table from columns. All columns must have the same length and
// unique names.
func New(cols ...*Column) (*Table, error) {
	t := &Table{byName: make(map[string]int, len(cols))}
	for i, c := range cols {
		if i == 0 {
			t.nrows = c.Len()
		} else if c.Len() != t.nrows {
			return nil, eris.Errorf("table: column %q has %d rows, want %d", c.Name(), c.Len(), t.nrows)
		}
		if _, dup := t.byName[c.Name()]; dup {
			return nil, eris.Errorf("table: duplicate column %q", c.Name())
		}
		t.byName[c.Name()] = i
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.nrows }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns the column names in declaration order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name()
	}
	return names
}

// Has reports whether a column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Column returns the named column, or nil when absent.
func (t *Table) Column(name string) *Column {
	i, ok := t.byName[name]
	if !ok {
		return nil
	}
	return t.cols[i]
}

// ColumnAt returns the column at position i.
func (t *Table) ColumnAt(i int) *Column { return t.cols[i] }

// AddColumn appends a column. Its length must match the table.
func (t *Table) AddColumn(c *Column) error {
	if len(t.cols) > 0 && c.Len() != t.nrows {
		return eris.Errorf("table: column %q has %d rows, want %d", c.Name(), c.Len(), t.nrows)
	}
	if _, dup := t.byName[c.Name()]; dup {
		return eris.Errorf("table: duplicate column %q", c.Name())
	}
	if len(t.cols) == 0 {
		t.nrows = c.Len()
	}
	t.byName[c.Name()] = len(t.cols)
	t.cols = append(t.cols, c)
	return nil
}

// SetColumn replaces an existing column of the same name, or appends it.
func (t *Table) SetColumn(c *Column) error {
	if i, ok := t.byName[c.Name()]; ok {
		if c.Len() != t.nrows {
			return eris.Errorf("table: column %q has %d rows, want %d", c.Name(), c.Len(), t.nrows)
		}
		t.cols[i] = c
		return nil
	}
	return t.AddColumn(c)
}

// DropColumn removes the named column if present.
func (t *Table) DropColumn(name string) {
	i, ok := t.byName[name]
	if !ok {
		return
	}
	t.cols = append(t.cols[:i], t.cols[i+1:]...)
	delete(t.byName, name)
	for j := i; j < len(t.cols); j++ {
		t.byName[t.cols[j].Name()] = j
	}
}

// Clone returns a deep copy. Callers that mutate a table must clone it
// first; shared snapshots are never written to.
func (t *Table) Clone() *Table {
	dup := &Table{byName: make(map[string]int, len(t.cols)), nrows: t.nrows}
	for i, c := range t.cols {
		dup.cols = append(dup.cols, c.Clone())
		dup.byName[c.Name()] = i
	}
	return dup
}

// Filter returns a new table keeping only the rows where mask is true.
func (t *Table) Filter(mask []bool) (*Table, error) {
	if len(mask) != t.nrows {
		return nil, eris.Errorf("table: mask length %d, want %d", len(mask), t.nrows)
	}
	kept := 0
	for _, keep := range mask {
		if keep {
			kept++
		}
	}
	dup := &Table{byName: make(map[string]int, len(t.cols)), nrows: kept}
	for i, c := range t.cols {
		dup.cols = append(dup.cols, c.filter(mask))
		dup.byName[c.Name()] = i
	}
	return dup, nil
}
