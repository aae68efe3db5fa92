package entity

import (
	"fmt"

	"github.com/dkkinyua/easyetl"
)

// Frame is the Tabular Value passed between all easyetl operations: an ordered
// collection of named columns, each holding one cell per row. Cell values are
// scalars of potentially mixed runtime type per cell; a nil cell is the
// missing-value marker.
//
// Column names are unique within a Frame and row order is significant. Rows
// can optionally carry index labels (see SetIndex); when no labels are set the
// index is positional.
type Frame struct {
	names []string
	cols  map[string][]any
	index []any
}

func NewFrame() *Frame {
	return &Frame{cols: make(map[string][]any)}
}

func (f *Frame) dataset() {}

func (f *Frame) NumRows() int {
	if len(f.names) == 0 {
		return 0
	}
	return len(f.cols[f.names[0]])
}

func (f *Frame) NumCols() int {
	return len(f.names)
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	names := make([]string, len(f.names))
	copy(names, f.names)
	return names
}

func (f *Frame) HasColumn(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Column returns the backing cell storage of the named column. The returned
// slice is shared with the Frame; writing to it writes to the Frame. Use
// Copy() first when the original must stay unchanged.
func (f *Frame) Column(name string) ([]any, error) {
	cells, ok := f.cols[name]
	if !ok {
		return nil, fmt.Errorf("%w, details: %q", easyetl.ErrColumnNotFound, name)
	}
	return cells, nil
}

// AddColumn appends a named column. The name must be unique within the Frame
// and the number of cells must match any existing columns.
func (f *Frame) AddColumn(name string, cells []any) error {
	if _, ok := f.cols[name]; ok {
		return fmt.Errorf("%w, details: duplicate column name %q", easyetl.ErrTypeMismatch, name)
	}
	if len(f.names) > 0 && len(cells) != f.NumRows() {
		return fmt.Errorf("%w, details: column %q has %d cells, frame has %d rows",
			easyetl.ErrTypeMismatch, name, len(cells), f.NumRows())
	}
	f.names = append(f.names, name)
	f.cols[name] = cells
	return nil
}

// SetColumn replaces the cells of an existing column.
func (f *Frame) SetColumn(name string, cells []any) error {
	if _, ok := f.cols[name]; !ok {
		return fmt.Errorf("%w, details: %q", easyetl.ErrColumnNotFound, name)
	}
	if len(cells) != f.NumRows() {
		return fmt.Errorf("%w, details: column %q has %d cells, frame has %d rows",
			easyetl.ErrTypeMismatch, name, len(cells), f.NumRows())
	}
	f.cols[name] = cells
	return nil
}

func (f *Frame) DropColumn(name string) error {
	if _, ok := f.cols[name]; !ok {
		return fmt.Errorf("%w, details: %q", easyetl.ErrColumnNotFound, name)
	}
	delete(f.cols, name)
	for i, n := range f.names {
		if n == name {
			f.names = append(f.names[:i], f.names[i+1:]...)
			break
		}
	}
	return nil
}

// RenameColumn relabels a column in place, keeping its position.
func (f *Frame) RenameColumn(old, new string) error {
	cells, ok := f.cols[old]
	if !ok {
		return fmt.Errorf("%w, details: %q", easyetl.ErrColumnNotFound, old)
	}
	if old == new {
		return nil
	}
	if _, ok := f.cols[new]; ok {
		return fmt.Errorf("%w, details: duplicate column name %q", easyetl.ErrTypeMismatch, new)
	}
	delete(f.cols, old)
	f.cols[new] = cells
	for i, n := range f.names {
		if n == old {
			f.names[i] = new
			break
		}
	}
	return nil
}

// RenameColumns applies the whole mapping against the current column names at
// once, so swaps ({"a": "b", "b": "a"}) and chains ({"a": "b", "b": "c"})
// relabel correctly. Mapping keys absent from the Frame fail with
// ErrColumnNotFound; nothing is mutated unless the resulting name set is
// collision free.
func (f *Frame) RenameColumns(mapping map[string]string) error {
	renamed := make([]string, len(f.names))
	copy(renamed, f.names)
	for old, new := range mapping {
		if _, ok := f.cols[old]; !ok {
			return fmt.Errorf("%w, details: %q", easyetl.ErrColumnNotFound, old)
		}
		for i, name := range f.names {
			if name == old {
				renamed[i] = new
			}
		}
	}

	seen := make(map[string]bool, len(renamed))
	for _, name := range renamed {
		if seen[name] {
			return fmt.Errorf("%w, details: duplicate column name %q", easyetl.ErrTypeMismatch, name)
		}
		seen[name] = true
	}

	cols := make(map[string][]any, len(renamed))
	for i, old := range f.names {
		cols[renamed[i]] = f.cols[old]
	}
	f.names = renamed
	f.cols = cols
	return nil
}

// AppendRow adds one row from a name->value mapping. Names not yet present
// become new columns, backfilled with missing markers for earlier rows; names
// absent from the row get a missing marker. Column order is first-seen order.
// When explicit index labels have been set (see SetIndex) the appended row is
// labeled with its positional row number; call SetIndex again to relabel.
func (f *Frame) AppendRow(row map[string]any, order []string) {
	n := f.NumRows()
	for _, name := range order {
		if _, ok := row[name]; !ok {
			continue
		}
		if _, exists := f.cols[name]; !exists {
			f.names = append(f.names, name)
			f.cols[name] = make([]any, n)
		}
	}
	for _, name := range f.names {
		f.cols[name] = append(f.cols[name], row[name])
	}
	if f.index != nil {
		f.index = append(f.index, n)
	}
}

// Row returns row i as a name->value mapping.
func (f *Frame) Row(i int) map[string]any {
	row := make(map[string]any, len(f.names))
	for _, name := range f.names {
		row[name] = f.cols[name][i]
	}
	return row
}

// Index returns the row index labels. When no labels have been set the
// positional index 0..NumRows-1 is returned.
func (f *Frame) Index() []any {
	if f.index != nil {
		labels := make([]any, len(f.index))
		copy(labels, f.index)
		return labels
	}
	labels := make([]any, f.NumRows())
	for i := range labels {
		labels[i] = i
	}
	return labels
}

// SetIndex assigns explicit row index labels.
func (f *Frame) SetIndex(labels []any) error {
	if len(labels) != f.NumRows() {
		return fmt.Errorf("%w, details: %d labels for %d rows",
			easyetl.ErrTypeMismatch, len(labels), f.NumRows())
	}
	f.index = labels
	return nil
}

// FilterRows keeps only the rows marked true, in order, mutating the Frame.
// Explicit index labels are filtered along with their rows.
func (f *Frame) FilterRows(keep []bool) error {
	if len(keep) != f.NumRows() {
		return fmt.Errorf("%w, details: %d markers for %d rows",
			easyetl.ErrTypeMismatch, len(keep), f.NumRows())
	}
	for _, name := range f.names {
		cells := f.cols[name]
		kept := cells[:0:0]
		for i, k := range keep {
			if k {
				kept = append(kept, cells[i])
			}
		}
		f.cols[name] = kept
	}
	if f.index != nil {
		kept := f.index[:0:0]
		for i, k := range keep {
			if k {
				kept = append(kept, f.index[i])
			}
		}
		f.index = kept
	}
	return nil
}

// Copy returns a deep copy of the Frame. Cell values themselves are shared
// (they are scalars, or list values replaced wholesale by operations such as
// explode).
func (f *Frame) Copy() *Frame {
	c := NewFrame()
	for _, name := range f.names {
		cells := make([]any, len(f.cols[name]))
		copy(cells, f.cols[name])
		c.names = append(c.names, name)
		c.cols[name] = cells
	}
	if f.index != nil {
		c.index = make([]any, len(f.index))
		copy(c.index, f.index)
	}
	return c
}
