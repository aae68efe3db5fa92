// Package transform holds the cleaning operations of easyetl. Each operation
// validates its input first, rejecting anything that is not a Frame or Series
// with easyetl.ErrTypeMismatch, and returns a new dataset leaving the input
// unchanged. The explicit ...InPlace variants mutate a caller-owned Frame
// instead; a signature is never overloaded to do both.
package transform

import (
	"fmt"
	"reflect"

	"github.com/dkkinyua/easyetl"
	"github.com/dkkinyua/easyetl/entity"
)

// Available options for DropMissingConfig.How
type How string

const (
	HowAny How = "any"
	HowAll How = "all"
)

// Axis selects rows or columns for DropMissing, and columns or index for
// Rename.
type Axis string

const (
	AxisRows    Axis = "rows"
	AxisColumns Axis = "columns"
	AxisIndex   Axis = "index"
)

// Available options for RenameConfig.OnUnknown
type OnUnknown string

const (
	OnUnknownIgnore OnUnknown = "ignore"
	OnUnknownRaise  OnUnknown = "raise"
)

// DropMissingConfig enumerates every recognized option of DropMissing.
type DropMissingConfig struct {
	// Columns restricts the missing-value check to a subset of columns.
	// Empty means all columns.
	Columns []string

	// Axis selects whether rows (default) or columns are dropped.
	Axis Axis

	// How decides when to drop: "any" (default) drops on any missing entry
	// in the checked scope, "all" only when every checked entry is missing.
	How How
}

// DropMissing removes rows (or columns) containing missing entries and
// returns the cleaned dataset, leaving ds unchanged.
func DropMissing(ds entity.Dataset, cfg DropMissingConfig) (entity.Dataset, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	switch v := ds.(type) {
	case *entity.Frame:
		if v == nil {
			return nil, fmt.Errorf("%w, details: nil frame", easyetl.ErrTypeMismatch)
		}
		out := v.Copy()
		if err := dropMissingFrame(out, cfg); err != nil {
			return nil, err
		}
		return out, nil
	case *entity.Series:
		if v == nil {
			return nil, fmt.Errorf("%w, details: nil series", easyetl.ErrTypeMismatch)
		}
		if len(cfg.Columns) > 0 {
			return nil, fmt.Errorf("%w, details: column scope is not applicable to a series", easyetl.ErrTypeMismatch)
		}
		if cfg.Axis == AxisColumns {
			return nil, fmt.Errorf("%w, details: columns axis is not applicable to a series", easyetl.ErrTypeMismatch)
		}
		var kept []any
		for _, cell := range v.Cells() {
			if !entity.IsMissing(cell) {
				kept = append(kept, cell)
			}
		}
		return entity.NewSeries(v.Name(), kept), nil
	default:
		return nil, fmt.Errorf("%w, details: expected a Frame or Series, got %T", easyetl.ErrTypeMismatch, ds)
	}
}

// DropMissingInPlace applies DropMissing to a caller-owned Frame, mutating it.
func DropMissingInPlace(frame *entity.Frame, cfg DropMissingConfig) error {
	if frame == nil {
		return fmt.Errorf("%w, details: nil frame", easyetl.ErrTypeMismatch)
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	return dropMissingFrame(frame, cfg)
}

func (cfg DropMissingConfig) validate() error {
	switch cfg.Axis {
	case "", AxisRows, AxisColumns:
	default:
		return fmt.Errorf("%w, details: invalid axis %q", easyetl.ErrTypeMismatch, cfg.Axis)
	}
	switch cfg.How {
	case "", HowAny, HowAll:
	default:
		return fmt.Errorf("%w, details: invalid how %q", easyetl.ErrTypeMismatch, cfg.How)
	}
	return nil
}

func dropMissingFrame(frame *entity.Frame, cfg DropMissingConfig) error {
	checked := cfg.Columns
	if len(checked) == 0 {
		checked = frame.Columns()
	}
	for _, name := range checked {
		if !frame.HasColumn(name) {
			return fmt.Errorf("%w, details: %q", easyetl.ErrColumnNotFound, name)
		}
	}

	if cfg.Axis == AxisColumns {
		for _, name := range checked {
			cells, _ := frame.Column(name)
			if shouldDrop(cells, cfg.How) {
				if err := frame.DropColumn(name); err != nil {
					return err
				}
			}
		}
		return nil
	}

	cols := make([][]any, len(checked))
	for i, name := range checked {
		cols[i], _ = frame.Column(name)
	}
	keep := make([]bool, frame.NumRows())
	for i := range keep {
		scope := make([]any, len(cols))
		for j, cells := range cols {
			scope[j] = cells[i]
		}
		keep[i] = !shouldDrop(scope, cfg.How)
	}
	return frame.FilterRows(keep)
}

func shouldDrop(cells []any, how How) bool {
	missing := 0
	for _, cell := range cells {
		if entity.IsMissing(cell) {
			missing++
		}
	}
	if how == HowAll {
		return len(cells) > 0 && missing == len(cells)
	}
	return missing > 0
}

// Replace substitutes occurrences of old with new throughout the dataset and
// returns the result, leaving ds unchanged. old and new may each be a scalar,
// old and new may be slices of equal length (positional correspondence), or
// old may be a map of old->new pairs with new left nil.
func Replace(ds entity.Dataset, old, new any) (entity.Dataset, error) {
	pairs, err := replacePairs(old, new)
	if err != nil {
		return nil, err
	}
	switch v := ds.(type) {
	case *entity.Frame:
		if v == nil {
			return nil, fmt.Errorf("%w, details: nil frame", easyetl.ErrTypeMismatch)
		}
		out := v.Copy()
		replaceFrame(out, pairs)
		return out, nil
	case *entity.Series:
		if v == nil {
			return nil, fmt.Errorf("%w, details: nil series", easyetl.ErrTypeMismatch)
		}
		out := v.Copy()
		replaceCells(out.Cells(), pairs)
		return out, nil
	default:
		return nil, fmt.Errorf("%w, details: expected a Frame or Series, got %T", easyetl.ErrTypeMismatch, ds)
	}
}

// ReplaceInPlace applies Replace to a caller-owned Frame, mutating it.
func ReplaceInPlace(frame *entity.Frame, old, new any) error {
	if frame == nil {
		return fmt.Errorf("%w, details: nil frame", easyetl.ErrTypeMismatch)
	}
	pairs, err := replacePairs(old, new)
	if err != nil {
		return err
	}
	replaceFrame(frame, pairs)
	return nil
}

type replacePair struct {
	from any
	to   any
}

func replacePairs(old, new any) ([]replacePair, error) {
	if mapping, ok := old.(map[any]any); ok {
		if new != nil {
			return nil, fmt.Errorf("%w, details: new must be nil when old is a mapping", easyetl.ErrTypeMismatch)
		}
		pairs := make([]replacePair, 0, len(mapping))
		for from, to := range mapping {
			pairs = append(pairs, replacePair{from: from, to: to})
		}
		return pairs, nil
	}

	oldList, oldIsList := old.([]any)
	newList, newIsList := new.([]any)
	if oldIsList != newIsList {
		return nil, fmt.Errorf("%w, details: old and new must both be scalars or both be lists", easyetl.ErrTypeMismatch)
	}
	if oldIsList {
		if len(oldList) != len(newList) {
			return nil, fmt.Errorf("%w, details: old has %d values, new has %d",
				easyetl.ErrTypeMismatch, len(oldList), len(newList))
		}
		pairs := make([]replacePair, 0, len(oldList))
		for i := range oldList {
			pairs = append(pairs, replacePair{from: oldList[i], to: newList[i]})
		}
		return pairs, nil
	}
	return []replacePair{{from: old, to: new}}, nil
}

func replaceFrame(frame *entity.Frame, pairs []replacePair) {
	for _, name := range frame.Columns() {
		cells, _ := frame.Column(name)
		replaceCells(cells, pairs)
	}
}

func replaceCells(cells []any, pairs []replacePair) {
	for i, cell := range cells {
		for _, p := range pairs {
			if cellEqual(cell, p.from) {
				cells[i] = p.to
				break
			}
		}
	}
}

// cellEqual compares two cell values, treating numeric values of different
// widths as equal when they hold the same number.
func cellEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	if !reflect.TypeOf(a).Comparable() || !reflect.TypeOf(b).Comparable() {
		return false
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// Explode expands list-valued cells in the named columns into one output row
// per list element, zipped across the named columns, with all other column
// values repeated per exploded row. An empty list yields one row with a
// missing marker; a non-list cell passes through as a single row. Returns a
// new dataset, leaving ds unchanged.
func Explode(ds entity.Dataset, columns []string) (entity.Dataset, error) {
	switch v := ds.(type) {
	case *entity.Frame:
		if v == nil {
			return nil, fmt.Errorf("%w, details: nil frame", easyetl.ErrTypeMismatch)
		}
		return explodeFrame(v, columns)
	case *entity.Series:
		if v == nil {
			return nil, fmt.Errorf("%w, details: nil series", easyetl.ErrTypeMismatch)
		}
		var cells []any
		for _, cell := range v.Cells() {
			cells = append(cells, explodeCell(cell)...)
		}
		return entity.NewSeries(v.Name(), cells), nil
	default:
		return nil, fmt.Errorf("%w, details: expected a Frame or Series, got %T", easyetl.ErrTypeMismatch, ds)
	}
}

func explodeFrame(frame *entity.Frame, columns []string) (*entity.Frame, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w, details: no columns to explode", easyetl.ErrColumnNotFound)
	}
	targets := make(map[string]bool, len(columns))
	for _, name := range columns {
		if !frame.HasColumn(name) {
			return nil, fmt.Errorf("%w, details: %q", easyetl.ErrColumnNotFound, name)
		}
		targets[name] = true
	}

	names := frame.Columns()
	out := make(map[string][]any, len(names))

	for i := 0; i < frame.NumRows(); i++ {
		row := frame.Row(i)

		// Element count for this row: all exploded columns must agree,
		// single elements are repeated.
		n := 1
		for _, name := range columns {
			c := len(explodeCell(row[name]))
			if c != 1 && n != 1 && c != n {
				return nil, fmt.Errorf("%w, details: columns must hold matching element counts in row %d",
					easyetl.ErrTypeMismatch, i)
			}
			if c > n {
				n = c
			}
		}

		for _, name := range names {
			if !targets[name] {
				for k := 0; k < n; k++ {
					out[name] = append(out[name], row[name])
				}
				continue
			}
			elems := explodeCell(row[name])
			for k := 0; k < n; k++ {
				if len(elems) == 1 {
					out[name] = append(out[name], elems[0])
				} else {
					out[name] = append(out[name], elems[k])
				}
			}
		}
	}

	exploded := entity.NewFrame()
	for _, name := range names {
		if err := exploded.AddColumn(name, out[name]); err != nil {
			return nil, err
		}
	}
	return exploded, nil
}

// explodeCell lifts a cell into its exploded elements: a list yields its
// elements, an empty list yields one missing marker, anything else yields
// itself.
func explodeCell(cell any) []any {
	list, ok := cell.([]any)
	if !ok {
		return []any{cell}
	}
	if len(list) == 0 {
		return []any{nil}
	}
	return list
}

// RenameConfig enumerates every recognized option of Rename.
type RenameConfig struct {
	// Axis selects what to relabel: "columns" (default) or "index".
	Axis Axis

	// Columns maps old column names to new ones, used when Axis is "columns".
	Columns map[string]string

	// Index maps old index labels to new ones, used when Axis is "index".
	Index map[any]any

	// OnUnknown decides what happens when a mapping key is absent from the
	// dataset: "ignore" (default) skips it, "raise" fails with
	// easyetl.ErrUnknownRenameKey.
	OnUnknown OnUnknown
}

// Rename relabels columns or row index entries of a Frame and returns the
// renamed copy, leaving ds unchanged. Series input is rejected.
func Rename(ds entity.Dataset, cfg RenameConfig) (*entity.Frame, error) {
	frame, ok := ds.(*entity.Frame)
	if !ok || frame == nil {
		return nil, fmt.Errorf("%w, details: expected a Frame, got %T", easyetl.ErrTypeMismatch, ds)
	}
	out := frame.Copy()
	if err := renameFrame(out, cfg); err != nil {
		return nil, err
	}
	return out, nil
}

// RenameInPlace applies Rename to a caller-owned Frame, mutating it.
func RenameInPlace(frame *entity.Frame, cfg RenameConfig) error {
	if frame == nil {
		return fmt.Errorf("%w, details: nil frame", easyetl.ErrTypeMismatch)
	}
	return renameFrame(frame, cfg)
}

func renameFrame(frame *entity.Frame, cfg RenameConfig) error {
	switch cfg.OnUnknown {
	case "", OnUnknownIgnore, OnUnknownRaise:
	default:
		return fmt.Errorf("%w, details: invalid onUnknown %q", easyetl.ErrTypeMismatch, cfg.OnUnknown)
	}

	// The whole mapping resolves against the original labels at once, so
	// swaps and chains relabel correctly and a failing mapping leaves the
	// frame untouched.
	switch cfg.Axis {
	case "", AxisColumns:
		mapping := make(map[string]string, len(cfg.Columns))
		for old, new := range cfg.Columns {
			if !frame.HasColumn(old) {
				if cfg.OnUnknown == OnUnknownRaise {
					return fmt.Errorf("%w, details: %q", easyetl.ErrUnknownRenameKey, old)
				}
				continue
			}
			mapping[old] = new
		}
		return frame.RenameColumns(mapping)
	case AxisIndex:
		labels := frame.Index()
		renamed := make([]any, len(labels))
		copy(renamed, labels)
		for old, new := range cfg.Index {
			found := false
			for i, label := range labels {
				if cellEqual(label, old) {
					renamed[i] = new
					found = true
				}
			}
			if !found && cfg.OnUnknown == OnUnknownRaise {
				return fmt.Errorf("%w, details: %v", easyetl.ErrUnknownRenameKey, old)
			}
		}
		return frame.SetIndex(renamed)
	default:
		return fmt.Errorf("%w, details: invalid axis %q", easyetl.ErrTypeMismatch, cfg.Axis)
	}
}
