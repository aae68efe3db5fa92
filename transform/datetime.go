package transform

import (
	"fmt"
	"strings"
	"time"

	"github.com/dkkinyua/easyetl"
	"github.com/dkkinyua/easyetl/entity"
)

// TwoDigitYearPivot defines how 2-digit years are interpreted. Years that
// would land more than this many years in the future are assumed to be in the
// previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling.
var (
	datetimeLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
)

// ParseDatetime parses the text values of the named column into time.Time and
// returns a new Frame with that column replaced, leaving the input unchanged.
// Cells already holding a time.Time are kept; missing cells stay missing.
func ParseDatetime(ds entity.Dataset, column string) (*entity.Frame, error) {
	frame, ok := ds.(*entity.Frame)
	if !ok || frame == nil {
		return nil, fmt.Errorf("%w, details: expected a Frame, got %T", easyetl.ErrTypeMismatch, ds)
	}
	if !frame.HasColumn(column) {
		return nil, fmt.Errorf("%w, details: %q", easyetl.ErrColumnNotFound, column)
	}

	out := frame.Copy()
	cells, _ := out.Column(column)
	for i, cell := range cells {
		switch value := cell.(type) {
		case nil, time.Time:
		case string:
			t, err := parseTime(value)
			if err != nil {
				return nil, fmt.Errorf("%w, details: column %q row %d: %v", easyetl.ErrParse, column, i, err)
			}
			cells[i] = t
		default:
			return nil, fmt.Errorf("%w, details: column %q row %d holds %T, not date text",
				easyetl.ErrParse, column, i, cell)
		}
	}
	return out, nil
}

// parseTime guesses the layout of a date string. Unambiguous 4-digit-year
// layouts are tried first, then 2-digit-year layouts with pivot adjustment.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() > pivotYear {
			t = t.AddDate(-100, 0, 0)
		}
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date format %q", s)
}
