package entity

// Dataset is the sealed input type accepted by the loader and transformer
// operations: either a *Frame (table) or a *Series (single named column).
// Operations type-switch on it and reject anything else with
// easyetl.ErrTypeMismatch before doing any I/O or mutation.
type Dataset interface {
	// NumRows returns the number of rows (cells for a Series).
	NumRows() int

	dataset()
}

// IsMissing reports whether a cell value is the missing-value marker.
func IsMissing(v any) bool {
	return v == nil
}
