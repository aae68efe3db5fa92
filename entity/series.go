package entity

// Series is a single named column: the degenerate Tabular Value accepted by
// most loader and transformer operations.
type Series struct {
	name  string
	cells []any
}

func NewSeries(name string, cells []any) *Series {
	return &Series{name: name, cells: cells}
}

func (s *Series) dataset() {}

func (s *Series) Name() string {
	return s.name
}

func (s *Series) NumRows() int {
	return len(s.cells)
}

// Cells returns the backing cell storage. The returned slice is shared with
// the Series; use Copy() first when the original must stay unchanged.
func (s *Series) Cells() []any {
	return s.cells
}

func (s *Series) Copy() *Series {
	cells := make([]any, len(s.cells))
	copy(cells, s.cells)
	return &Series{name: s.name, cells: cells}
}

// Frame returns the Series as a single-column Frame.
func (s *Series) Frame() *Frame {
	f := NewFrame()
	_ = f.AddColumn(s.name, s.cells)
	return f
}
