package transform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dkkinyua/easyetl"
	"github.com/dkkinyua/easyetl/entity"
)

// Kind is the target type of a ChangeType coercion.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
	KindTime   Kind = "time"
)

// ChangeType coerces every cell of the dataset to the target kind and returns
// the result, leaving ds unchanged. Missing cells stay missing. If any cell
// cannot be coerced the whole operation fails with easyetl.ErrTypeConversion.
func ChangeType(ds entity.Dataset, target Kind) (entity.Dataset, error) {
	switch v := ds.(type) {
	case *entity.Frame:
		if v == nil {
			return nil, fmt.Errorf("%w, details: nil frame", easyetl.ErrTypeMismatch)
		}
		out := v.Copy()
		for _, name := range out.Columns() {
			cells, _ := out.Column(name)
			if err := coerceCells(cells, target, name); err != nil {
				return nil, err
			}
		}
		return out, nil
	case *entity.Series:
		if v == nil {
			return nil, fmt.Errorf("%w, details: nil series", easyetl.ErrTypeMismatch)
		}
		out := v.Copy()
		if err := coerceCells(out.Cells(), target, v.Name()); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w, details: expected a Frame or Series, got %T", easyetl.ErrTypeMismatch, ds)
	}
}

func coerceCells(cells []any, target Kind, column string) error {
	for i, cell := range cells {
		if entity.IsMissing(cell) {
			continue
		}
		coerced, err := coerceCell(cell, target)
		if err != nil {
			return fmt.Errorf("%w, details: column %q row %d: %v", easyetl.ErrTypeConversion, column, i, err)
		}
		cells[i] = coerced
	}
	return nil
}

func coerceCell(cell any, target Kind) (any, error) {
	switch target {
	case KindString:
		return toString(cell), nil
	case KindInt:
		return toInt(cell)
	case KindFloat:
		switch n := cell.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case bool:
			if n {
				return float64(1), nil
			}
			return float64(0), nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil {
				return nil, fmt.Errorf("cannot convert %q to float", n)
			}
			return f, nil
		}
	case KindBool:
		return toBool(cell)
	case KindTime:
		switch n := cell.(type) {
		case time.Time:
			return n, nil
		case string:
			return parseTime(n)
		}
	default:
		return nil, fmt.Errorf("unknown target type %q", target)
	}
	return nil, fmt.Errorf("cannot convert %T to %s", cell, target)
}

func toString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case int64:
		return strconv.FormatInt(value, 10)
	case int:
		return strconv.Itoa(value)
	case float64:
		return strconv.FormatFloat(value, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case time.Time:
		return value.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func toInt(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to int", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to int", v)
	}
}

// toBool accepts the usual textual representations: true/false, t/f, yes/no,
// y/n, 1/0.
func toBool(v any) (bool, error) {
	switch n := v.(type) {
	case bool:
		return n, nil
	case int64:
		return n != 0, nil
	case int:
		return n != 0, nil
	case float64:
		return n != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "true", "t", "yes", "y", "1":
			return true, nil
		case "false", "f", "no", "n", "0":
			return false, nil
		}
		return false, fmt.Errorf("cannot convert %q to bool", n)
	default:
		return false, fmt.Errorf("cannot convert %T to bool", v)
	}
}
