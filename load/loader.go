// Package load holds the sink side of easyetl: stateless operations
// persisting an in-memory dataset to a CSV, JSON or Excel file, or to a
// Postgres table. File sinks share an overwrite guard (CheckFile) that runs
// before anything is written.
package load

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/sjson"
	"github.com/xuri/excelize/v2"

	"github.com/dkkinyua/easyetl"
	"github.com/dkkinyua/easyetl/entity"
)

// CheckFile is the overwrite guard shared by all file sinks. It fails with
// easyetl.ErrFileExists if path already exists and overwrite is false, leaving
// the existing file untouched.
func CheckFile(path string, overwrite bool) error {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		if !overwrite {
			return fmt.Errorf("%w, details: %s", easyetl.ErrFileExists, path)
		}
		return nil
	case os.IsNotExist(err):
		return nil
	default:
		return fmt.Errorf("%w, details: %v", easyetl.ErrIO, err)
	}
}

// ToCSV serializes the dataset as comma-separated text at path, without a
// positional row index column.
func ToCSV(ds entity.Dataset, path string, overwrite bool) error {
	frame, err := asFrame(ds)
	if err != nil {
		return err
	}
	if err = CheckFile(path, overwrite); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w, details: %v", easyetl.ErrIO, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	names := frame.Columns()
	if err = w.Write(names); err != nil {
		return fmt.Errorf("%w, details: %v", easyetl.ErrIO, err)
	}
	record := make([]string, len(names))
	for i := 0; i < frame.NumRows(); i++ {
		row := frame.Row(i)
		for j, name := range names {
			record[j] = formatCell(row[name])
		}
		if err = w.Write(record); err != nil {
			return fmt.Errorf("%w, details: %v", easyetl.ErrIO, err)
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return fmt.Errorf("%w, details: %v", easyetl.ErrIO, err)
	}
	return nil
}

// ToJSON serializes the dataset as a JSON array of row objects at path.
func ToJSON(ds entity.Dataset, path string, overwrite bool) error {
	frame, err := asFrame(ds)
	if err != nil {
		return err
	}
	if err = CheckFile(path, overwrite); err != nil {
		return err
	}

	names := frame.Columns()
	doc := []byte("[]")
	for i := 0; i < frame.NumRows(); i++ {
		row := frame.Row(i)
		record := []byte("{}")
		for _, name := range names {
			if record, err = sjson.SetBytes(record, escapePath(name), row[name]); err != nil {
				return fmt.Errorf("%w, details: %v", easyetl.ErrParse, err)
			}
		}
		if doc, err = sjson.SetRawBytes(doc, strconv.Itoa(i), record); err != nil {
			return fmt.Errorf("%w, details: %v", easyetl.ErrParse, err)
		}
	}

	if err = os.WriteFile(path, doc, 0644); err != nil {
		return fmt.Errorf("%w, details: %v", easyetl.ErrIO, err)
	}
	return nil
}

// ToExcel serializes the dataset as a single-sheet spreadsheet at path,
// including a leading positional row index column.
func ToExcel(ds entity.Dataset, path string, overwrite bool) error {
	frame, err := asFrame(ds)
	if err != nil {
		return err
	}
	if err = CheckFile(path, overwrite); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	names := frame.Columns()

	header := make([]any, 0, len(names)+1)
	header = append(header, "")
	for _, name := range names {
		header = append(header, name)
	}
	if err = f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%w, details: %v", easyetl.ErrIO, err)
	}

	index := frame.Index()
	for i := 0; i < frame.NumRows(); i++ {
		row := frame.Row(i)
		record := make([]any, 0, len(names)+1)
		record = append(record, excelCell(index[i]))
		for _, name := range names {
			record = append(record, excelCell(row[name]))
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err = f.SetSheetRow(sheet, cell, &record); err != nil {
			return fmt.Errorf("%w, details: %v", easyetl.ErrIO, err)
		}
	}

	if err = f.SaveAs(path); err != nil {
		return fmt.Errorf("%w, details: %v", easyetl.ErrIO, err)
	}
	return nil
}

// asFrame pattern-matches the sealed dataset variant, widening a Series to a
// single-column Frame. Anything else is rejected before any I/O happens.
func asFrame(ds entity.Dataset) (*entity.Frame, error) {
	switch v := ds.(type) {
	case *entity.Frame:
		if v == nil {
			return nil, fmt.Errorf("%w, details: nil frame", easyetl.ErrTypeMismatch)
		}
		return v, nil
	case *entity.Series:
		if v == nil {
			return nil, fmt.Errorf("%w, details: nil series", easyetl.ErrTypeMismatch)
		}
		return v.Frame(), nil
	default:
		return nil, fmt.Errorf("%w, details: expected a Frame or Series, got %T", easyetl.ErrTypeMismatch, ds)
	}
}

func formatCell(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
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

func excelCell(v any) any {
	switch v.(type) {
	case nil, string, int, int64, float64, bool, time.Time:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// escapePath escapes sjson path syntax characters in a column name.
func escapePath(name string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`)
	return r.Replace(name)
}
