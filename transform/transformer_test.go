package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkkinyua/easyetl"
	"github.com/dkkinyua/easyetl/entity"
)

func frameOf(t *testing.T, cols []string, cells ...[]any) *entity.Frame {
	t.Helper()
	frame := entity.NewFrame()
	for i, name := range cols {
		require.NoError(t, frame.AddColumn(name, cells[i]))
	}
	return frame
}

func column(t *testing.T, ds entity.Dataset, name string) []any {
	t.Helper()
	frame, ok := ds.(*entity.Frame)
	require.True(t, ok)
	cells, err := frame.Column(name)
	require.NoError(t, err)
	return cells
}

func TestDropMissingAny(t *testing.T) {
	frame := frameOf(t, []string{"a", "b"},
		[]any{int64(1), int64(3)},
		[]any{int64(2), nil},
	)

	out, err := DropMissing(frame, DropMissingConfig{})
	require.NoError(t, err)

	// Every retained row has zero missing entries; the input is unchanged.
	assert.Equal(t, 1, out.NumRows())
	assert.Equal(t, []any{int64(1)}, column(t, out, "a"))
	assert.Equal(t, 2, frame.NumRows())
}

func TestDropMissingAll(t *testing.T) {
	frame := frameOf(t, []string{"a", "b"},
		[]any{int64(1), nil, nil},
		[]any{nil, int64(2), nil},
	)

	out, err := DropMissing(frame, DropMissingConfig{How: HowAll})
	require.NoError(t, err)

	// A row survives unless every checked entry is missing.
	assert.Equal(t, 2, out.NumRows())
}

func TestDropMissingColumnScope(t *testing.T) {
	frame := frameOf(t, []string{"a", "b"},
		[]any{int64(1), int64(3)},
		[]any{int64(2), nil},
	)

	out, err := DropMissing(frame, DropMissingConfig{Columns: []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, 2, out.NumRows())

	_, err = DropMissing(frame, DropMissingConfig{Columns: []string{"nope"}})
	assert.ErrorIs(t, err, easyetl.ErrColumnNotFound)
}

func TestDropMissingColumnsAxis(t *testing.T) {
	frame := frameOf(t, []string{"a", "b"},
		[]any{int64(1), int64(3)},
		[]any{int64(2), nil},
	)

	out, err := DropMissing(frame, DropMissingConfig{Axis: AxisColumns})
	require.NoError(t, err)
	outFrame, ok := out.(*entity.Frame)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, outFrame.Columns())
}

func TestDropMissingInPlace(t *testing.T) {
	frame := frameOf(t, []string{"a"}, []any{int64(1), nil})

	require.NoError(t, DropMissingInPlace(frame, DropMissingConfig{}))
	assert.Equal(t, 1, frame.NumRows())
}

func TestDropMissingSeries(t *testing.T) {
	series := entity.NewSeries("v", []any{int64(1), nil, int64(2)})

	out, err := DropMissing(series, DropMissingConfig{})
	require.NoError(t, err)
	outSeries, ok := out.(*entity.Series)
	require.True(t, ok)
	assert.Equal(t, []any{int64(1), int64(2)}, outSeries.Cells())
}

func TestDropMissingSeriesRejectsColumnOptions(t *testing.T) {
	series := entity.NewSeries("v", []any{int64(1), nil})

	_, err := DropMissing(series, DropMissingConfig{Columns: []string{"v"}})
	assert.ErrorIs(t, err, easyetl.ErrTypeMismatch)

	_, err = DropMissing(series, DropMissingConfig{Axis: AxisColumns})
	assert.ErrorIs(t, err, easyetl.ErrTypeMismatch)
}

func TestDropMissingRejectsInvalidInput(t *testing.T) {
	_, err := DropMissing(nil, DropMissingConfig{})
	assert.ErrorIs(t, err, easyetl.ErrTypeMismatch)

	_, err = DropMissing((*entity.Frame)(nil), DropMissingConfig{})
	assert.ErrorIs(t, err, easyetl.ErrTypeMismatch)

	_, err = DropMissing(frameOf(t, []string{"a"}, []any{int64(1)}), DropMissingConfig{How: "sometimes"})
	assert.ErrorIs(t, err, easyetl.ErrTypeMismatch)
}

func TestReplaceScalar(t *testing.T) {
	frame := frameOf(t, []string{"a"}, []any{int64(1), int64(3), int64(1)})

	out, err := Replace(frame, int64(1), int64(2))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2), int64(3), int64(2)}, column(t, out, "a"))

	// Involution: replacing back reproduces the input when the intermediate
	// value was not already present.
	back, err := Replace(out, int64(2), int64(1))
	require.NoError(t, err)
	assert.Equal(t, column(t, frame, "a"), column(t, back, "a"))
}

func TestReplaceLists(t *testing.T) {
	frame := frameOf(t, []string{"a"}, []any{"x", "y", "z"})

	out, err := Replace(frame, []any{"x", "y"}, []any{"X", "Y"})
	require.NoError(t, err)
	assert.Equal(t, []any{"X", "Y", "z"}, column(t, out, "a"))

	_, err = Replace(frame, []any{"x"}, []any{"X", "Y"})
	assert.ErrorIs(t, err, easyetl.ErrTypeMismatch)

	_, err = Replace(frame, []any{"x"}, "X")
	assert.ErrorIs(t, err, easyetl.ErrTypeMismatch)
}

func TestReplaceMapping(t *testing.T) {
	frame := frameOf(t, []string{"a"}, []any{"x", "y"})

	out, err := Replace(frame, map[any]any{"x": "X"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"X", "y"}, column(t, out, "a"))

	_, err = Replace(frame, map[any]any{"x": "X"}, "stray")
	assert.ErrorIs(t, err, easyetl.ErrTypeMismatch)
}

func TestReplaceInPlace(t *testing.T) {
	frame := frameOf(t, []string{"a"}, []any{int64(1)})

	require.NoError(t, ReplaceInPlace(frame, int64(1), int64(9)))
	assert.Equal(t, []any{int64(9)}, column(t, frame, "a"))
}

func TestExplode(t *testing.T) {
	frame := frameOf(t, []string{"id", "L"},
		[]any{int64(1), int64(2), int64(3)},
		[]any{[]any{"a", "b"}, []any{"c"}, []any{}},
	)

	out, err := Explode(frame, []string{"L"})
	require.NoError(t, err)

	// Lists of length 2 and 1 plus one empty list: 2+1+1 output rows.
	assert.Equal(t, 4, out.NumRows())
	assert.Equal(t, []any{int64(1), int64(1), int64(2), int64(3)}, column(t, out, "id"))
	assert.Equal(t, []any{"a", "b", "c", nil}, column(t, out, "L"))
}

func TestExplodeZipped(t *testing.T) {
	frame := frameOf(t, []string{"x", "y"},
		[]any{[]any{int64(1), int64(2)}},
		[]any{[]any{"a", "b"}},
	)

	out, err := Explode(frame, []string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, column(t, out, "x"))
	assert.Equal(t, []any{"a", "b"}, column(t, out, "y"))

	bad := frameOf(t, []string{"x", "y"},
		[]any{[]any{int64(1), int64(2)}},
		[]any{[]any{"a", "b", "c"}},
	)
	_, err = Explode(bad, []string{"x", "y"})
	assert.ErrorIs(t, err, easyetl.ErrTypeMismatch)
}

func TestExplodeNonListPassthrough(t *testing.T) {
	frame := frameOf(t, []string{"L"}, []any{"plain", nil})

	out, err := Explode(frame, []string{"L"})
	require.NoError(t, err)
	assert.Equal(t, []any{"plain", nil}, column(t, out, "L"))
}

func TestExplodeUnknownColumn(t *testing.T) {
	frame := frameOf(t, []string{"a"}, []any{int64(1)})
	_, err := Explode(frame, []string{"nope"})
	assert.ErrorIs(t, err, easyetl.ErrColumnNotFound)
}

func TestChangeType(t *testing.T) {
	frame := frameOf(t, []string{"v"}, []any{int64(1), "2", 2.5, nil})

	out, err := ChangeType(frame, KindString)
	require.NoError(t, err)
	assert.Equal(t, []any{"1", "2", "2.5", nil}, column(t, out, "v"))

	out, err = ChangeType(frame, KindFloat)
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2), 2.5, nil}, column(t, out, "v"))

	// Input stays unchanged
	assert.Equal(t, []any{int64(1), "2", 2.5, nil}, column(t, frame, "v"))
}

func TestChangeTypeFailure(t *testing.T) {
	frame := frameOf(t, []string{"v"}, []any{"not a number"})

	_, err := ChangeType(frame, KindInt)
	assert.ErrorIs(t, err, easyetl.ErrTypeConversion)
}

func TestChangeTypeSeries(t *testing.T) {
	series := entity.NewSeries("v", []any{"1", "0", "yes"})

	out, err := ChangeType(series, KindBool)
	require.NoError(t, err)
	outSeries, ok := out.(*entity.Series)
	require.True(t, ok)
	assert.Equal(t, []any{true, false, true}, outSeries.Cells())
}

func TestRename(t *testing.T) {
	frame := frameOf(t, []string{"a", "b"}, []any{int64(1)}, []any{int64(2)})

	out, err := Rename(frame, RenameConfig{Columns: map[string]string{"a": "id"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "b"}, out.Columns())
	assert.Equal(t, []string{"a", "b"}, frame.Columns())
}

func TestRenameUnknownKey(t *testing.T) {
	frame := frameOf(t, []string{"a"}, []any{int64(1)})

	// ignore (default) skips unknown keys
	out, err := Rename(frame, RenameConfig{Columns: map[string]string{"nope": "x"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, out.Columns())

	_, err = Rename(frame, RenameConfig{
		Columns:   map[string]string{"nope": "x"},
		OnUnknown: OnUnknownRaise,
	})
	assert.ErrorIs(t, err, easyetl.ErrUnknownRenameKey)
}

func TestRenameIndex(t *testing.T) {
	frame := frameOf(t, []string{"a"}, []any{int64(1), int64(2)})

	out, err := Rename(frame, RenameConfig{
		Axis:  AxisIndex,
		Index: map[any]any{0: "first"},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"first", 1}, out.Index())

	_, err = Rename(frame, RenameConfig{
		Axis:      AxisIndex,
		Index:     map[any]any{"missing": "x"},
		OnUnknown: OnUnknownRaise,
	})
	assert.ErrorIs(t, err, easyetl.ErrUnknownRenameKey)
}

func TestRenameSwapAndChain(t *testing.T) {
	frame := frameOf(t, []string{"a", "b"}, []any{int64(1)}, []any{int64(2)})

	// A swap relabels both columns simultaneously.
	out, err := Rename(frame, RenameConfig{Columns: map[string]string{"a": "b", "b": "a"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, out.Columns())
	assert.Equal(t, []any{int64(1)}, column(t, out, "b"))
	assert.Equal(t, []any{int64(2)}, column(t, out, "a"))

	// A chain resolves against the original names, whatever the map order.
	out, err = Rename(frame, RenameConfig{Columns: map[string]string{"a": "b", "b": "c"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, out.Columns())
	assert.Equal(t, []any{int64(1)}, column(t, out, "b"))

	// A mapping whose result collides with an unrenamed column still fails.
	_, err = Rename(frame, RenameConfig{Columns: map[string]string{"a": "b"}})
	assert.ErrorIs(t, err, easyetl.ErrTypeMismatch)
}

func TestRenameIndexSwapAndChain(t *testing.T) {
	frame := frameOf(t, []string{"v"}, []any{"x", "y", "z"})

	out, err := Rename(frame, RenameConfig{
		Axis:  AxisIndex,
		Index: map[any]any{0: 1, 1: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 0, 2}, out.Index())

	// Each mapping entry matches original labels only; 0->1 must not make
	// row 0 also subject to the 1->2 entry.
	out, err = Rename(frame, RenameConfig{
		Axis:  AxisIndex,
		Index: map[any]any{0: 1, 1: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 2}, out.Index())
}

func TestRenameRejectsSeries(t *testing.T) {
	series := entity.NewSeries("v", []any{int64(1)})
	_, err := Rename(series, RenameConfig{Columns: map[string]string{"v": "x"}})
	assert.ErrorIs(t, err, easyetl.ErrTypeMismatch)
}

func TestRenameInPlace(t *testing.T) {
	frame := frameOf(t, []string{"a"}, []any{int64(1)})

	require.NoError(t, RenameInPlace(frame, RenameConfig{Columns: map[string]string{"a": "id"}}))
	assert.Equal(t, []string{"id"}, frame.Columns())
}

func TestRenameInPlaceFailureLeavesFrameUnchanged(t *testing.T) {
	frame := frameOf(t, []string{"a", "b", "c"},
		[]any{int64(1)}, []any{int64(2)}, []any{int64(3)})

	// "b" -> "c" collides with the unrenamed "c"; "a" -> "x" is fine on its
	// own but must not be applied either.
	err := RenameInPlace(frame, RenameConfig{Columns: map[string]string{"a": "x", "b": "c"}})
	assert.ErrorIs(t, err, easyetl.ErrTypeMismatch)
	assert.Equal(t, []string{"a", "b", "c"}, frame.Columns())
}
