package load

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dkkinyua/easyetl"
	"github.com/dkkinyua/easyetl/entity"
)

// ToDB writes the frame as a Postgres table named table, replacing any
// existing table of that name. The replace is destructive and unguarded, as is
// dropping and recreating in a single transaction. A fresh connection is
// opened via connURL and closed before returning. Series input is rejected;
// a relational table needs named columns.
func ToDB(ctx context.Context, ds entity.Dataset, table string, connURL string) error {
	frame, ok := ds.(*entity.Frame)
	if !ok || frame == nil {
		return fmt.Errorf("%w, details: expected a Frame, got %T", easyetl.ErrTypeMismatch, ds)
	}

	conn, err := pgx.Connect(ctx, connURL)
	if err != nil {
		return fmt.Errorf("%w, details: %v", easyetl.ErrConnection, err)
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w, details: %v", easyetl.ErrQuery, err)
	}
	defer tx.Rollback(ctx)

	names := frame.Columns()
	types := make(map[string]string, len(names))
	ddl := make([]string, 0, len(names))
	for _, name := range names {
		cells, _ := frame.Column(name)
		types[name] = inferSQLType(cells)
		ddl = append(ddl, pgx.Identifier{name}.Sanitize()+" "+types[name])
	}

	ident := pgx.Identifier{table}
	if _, err = tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
		return fmt.Errorf("%w, details: %v", easyetl.ErrQuery, err)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", ident.Sanitize(), strings.Join(ddl, ", "))
	if _, err = tx.Exec(ctx, create); err != nil {
		return fmt.Errorf("%w, details: %v", easyetl.ErrQuery, err)
	}

	rows := make([][]any, 0, frame.NumRows())
	for i := 0; i < frame.NumRows(); i++ {
		row := frame.Row(i)
		record := make([]any, 0, len(names))
		for _, name := range names {
			record = append(record, sqlCell(row[name], types[name]))
		}
		rows = append(rows, record)
	}

	if _, err = tx.CopyFrom(ctx, ident, names, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("%w, details: %v", easyetl.ErrQuery, err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w, details: %v", easyetl.ErrQuery, err)
	}
	return nil
}

// inferSQLType picks a column type from the non-missing cell values. Mixed or
// unrecognized value types fall back to TEXT.
func inferSQLType(cells []any) string {
	sqlType := ""
	for _, cell := range cells {
		if entity.IsMissing(cell) {
			continue
		}
		var t string
		switch cell.(type) {
		case int, int64:
			t = "BIGINT"
		case float64:
			t = "DOUBLE PRECISION"
		case bool:
			t = "BOOLEAN"
		case time.Time:
			t = "TIMESTAMPTZ"
		default:
			t = "TEXT"
		}
		switch {
		case sqlType == "" || sqlType == t:
			sqlType = t
		case sqlType == "BIGINT" && t == "DOUBLE PRECISION",
			sqlType == "DOUBLE PRECISION" && t == "BIGINT":
			sqlType = "DOUBLE PRECISION"
		default:
			return "TEXT"
		}
	}
	if sqlType == "" {
		return "TEXT"
	}
	return sqlType
}

func sqlCell(v any, sqlType string) any {
	if entity.IsMissing(v) {
		return nil
	}
	if sqlType == "TEXT" {
		return formatCell(v)
	}
	if sqlType == "DOUBLE PRECISION" {
		switch n := v.(type) {
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return v
}
