// Package extract holds the source side of easyetl: stateless operations
// pulling a tabular dataset from a CSV file, a JSON file, an HTTP endpoint or
// a Postgres query into an in-memory entity.Frame.
package extract

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/tidwall/gjson"

	"github.com/dkkinyua/easyetl"
	"github.com/dkkinyua/easyetl/entity"
)

// FromCSV parses the comma-separated file at path into a Frame, with column
// names taken from the header row. Empty cells become missing markers and
// numeric-looking cells are coerced to int64/float64/bool.
func FromCSV(path string) (*entity.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w, details: %v", easyetl.ErrIO, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w, details: %v", easyetl.ErrParse, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w, details: %s has no header row", easyetl.ErrParse, path)
	}

	header := records[0]
	frame := entity.NewFrame()
	for i, name := range header {
		cells := make([]any, 0, len(records)-1)
		for _, record := range records[1:] {
			cells = append(cells, sniffCell(record[i]))
		}
		if err = frame.AddColumn(strings.TrimSpace(name), cells); err != nil {
			return nil, fmt.Errorf("%w, details: %v", easyetl.ErrParse, err)
		}
	}
	return frame, nil
}

// FromJSON parses the JSON file at path into a Frame. A top-level array of
// objects is read as one row per object; a top-level object of equal-length
// arrays is read as named columns.
func FromJSON(path string) (*entity.Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w, details: %v", easyetl.ErrIO, err)
	}
	return FrameFromJSONBytes(data)
}

// FromAPI issues a synchronous GET to url and returns the parsed response
// body. The result is whatever the endpoint returns, not necessarily tabular;
// use FrameFromJSONBytes to shape a record array into a Frame.
func FromAPI(ctx context.Context, url string) (gjson.Result, error) {
	var doc gjson.Result

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return doc, fmt.Errorf("%w, details: %v", easyetl.ErrNetwork, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return doc, fmt.Errorf("%w, details: %v", easyetl.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return doc, fmt.Errorf("%w, details: %s returned %s", easyetl.ErrHTTPStatus, url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return doc, fmt.Errorf("%w, details: %v", easyetl.ErrNetwork, err)
	}
	if !gjson.ValidBytes(body) {
		return doc, fmt.Errorf("%w, details: response from %s is not valid JSON", easyetl.ErrParse, url)
	}
	return gjson.ParseBytes(body), nil
}

// FromDB opens a connection with the provided config, executes the query, and
// materializes the full result set into a Frame. The connection is closed
// before returning, whether or not row materialization succeeded. The query
// text is passed to the server verbatim; do not build it from untrusted input.
func FromDB(ctx context.Context, cfg easyetl.DBConfig, query string) (*entity.Frame, error) {
	conn, err := pgx.Connect(ctx, cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("%w, details: %v", easyetl.ErrConnection, err)
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w, details: %v", easyetl.ErrQuery, err)
	}
	defer rows.Close()

	var names []string
	for _, fd := range rows.FieldDescriptions() {
		names = append(names, fd.Name)
	}

	cells := make([][]any, len(names))
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("%w, details: %v", easyetl.ErrQuery, err)
		}
		for i, v := range values {
			cells[i] = append(cells[i], v)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w, details: %v", easyetl.ErrQuery, err)
	}

	frame := entity.NewFrame()
	for i, name := range names {
		if err = frame.AddColumn(name, cells[i]); err != nil {
			return nil, fmt.Errorf("%w, details: %v", easyetl.ErrQuery, err)
		}
	}
	return frame, nil
}

// FrameFromJSONBytes shapes a JSON document into a Frame. Accepted forms are
// an array of flat objects (rows) and an object of equal-length arrays
// (columns).
func FrameFromJSONBytes(data []byte) (*entity.Frame, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w, details: not valid JSON", easyetl.ErrParse)
	}
	doc := gjson.ParseBytes(data)

	switch {
	case doc.IsArray():
		return frameFromRecords(doc)
	case doc.IsObject():
		return frameFromColumns(doc)
	default:
		return nil, fmt.Errorf("%w, details: top-level JSON value must be an array or object", easyetl.ErrParse)
	}
}

func frameFromRecords(doc gjson.Result) (*entity.Frame, error) {
	frame := entity.NewFrame()
	var badRow bool

	doc.ForEach(func(_, record gjson.Result) bool {
		if !record.IsObject() {
			badRow = true
			return false
		}
		row := make(map[string]any)
		var order []string
		record.ForEach(func(key, value gjson.Result) bool {
			row[key.String()] = jsonValue(value)
			order = append(order, key.String())
			return true
		})
		frame.AppendRow(row, order)
		return true
	})

	if badRow {
		return nil, fmt.Errorf("%w, details: array elements must be objects", easyetl.ErrParse)
	}
	return frame, nil
}

func frameFromColumns(doc gjson.Result) (*entity.Frame, error) {
	frame := entity.NewFrame()
	var failure error

	doc.ForEach(func(key, value gjson.Result) bool {
		if !value.IsArray() {
			failure = fmt.Errorf("%w, details: column %q is not an array", easyetl.ErrParse, key.String())
			return false
		}
		var cells []any
		value.ForEach(func(_, item gjson.Result) bool {
			cells = append(cells, jsonValue(item))
			return true
		})
		if err := frame.AddColumn(key.String(), cells); err != nil {
			failure = fmt.Errorf("%w, details: %v", easyetl.ErrParse, err)
			return false
		}
		return true
	})

	if failure != nil {
		return nil, failure
	}
	return frame, nil
}

// jsonValue converts a gjson value to its cell representation. Fraction-free
// numbers become int64 so integer data survives a JSON round trip.
func jsonValue(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.String:
		return r.Str
	case gjson.Number:
		if !strings.ContainsAny(r.Raw, ".eE") {
			return r.Int()
		}
		return r.Float()
	default:
		if r.IsArray() {
			var items []any
			r.ForEach(func(_, item gjson.Result) bool {
				items = append(items, jsonValue(item))
				return true
			})
			return items
		}
		return r.Value()
	}
}

// sniffCell coerces a raw CSV cell into its typed representation.
func sniffCell(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	switch strings.ToLower(trimmed) {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}
