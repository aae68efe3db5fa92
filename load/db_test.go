package load

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkkinyua/easyetl"
	"github.com/dkkinyua/easyetl/entity"
	"github.com/dkkinyua/easyetl/extract"
)

func TestToDBRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()

	// Rejected before any connection is attempted.
	err := ToDB(ctx, nil, "t", "postgres://localhost/x")
	assert.ErrorIs(t, err, easyetl.ErrTypeMismatch)

	err = ToDB(ctx, entity.NewSeries("v", []any{int64(1)}), "t", "postgres://localhost/x")
	assert.ErrorIs(t, err, easyetl.ErrTypeMismatch)

	err = ToDB(ctx, (*entity.Frame)(nil), "t", "postgres://localhost/x")
	assert.ErrorIs(t, err, easyetl.ErrTypeMismatch)
}

func TestToDBConnectionFailure(t *testing.T) {
	frame := testFrame(t)

	err := ToDB(context.Background(), frame, "t", "not a connection url")
	assert.ErrorIs(t, err, easyetl.ErrConnection)
}

// Needs a reachable Postgres; configure it with the EASYETL_DB_* env vars.
func TestToDBRoundTrip(t *testing.T) {
	cfg, err := easyetl.DBConfigFromEnv()
	require.NoError(t, err)
	if cfg.Database == "" {
		t.Skip("EASYETL_DB_* not set")
	}
	ctx := context.Background()

	frame := entity.NewFrame()
	require.NoError(t, frame.AddColumn("id", []any{int64(1), int64(2)}))
	require.NoError(t, frame.AddColumn("amount", []any{10.5, nil}))
	require.NoError(t, frame.AddColumn("tag", []any{"x", "y"}))

	require.NoError(t, ToDB(ctx, frame, "easyetl_loader_test", cfg.ConnString()))

	// Loading again replaces the table rather than appending to it.
	require.NoError(t, ToDB(ctx, frame, "easyetl_loader_test", cfg.ConnString()))

	out, err := extract.FromDB(ctx, cfg, "SELECT id, amount, tag FROM easyetl_loader_test ORDER BY id")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "amount", "tag"}, out.Columns())
	assert.Equal(t, 2, out.NumRows())

	ids, err := out.Column("id")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, ids)

	amounts, err := out.Column("amount")
	require.NoError(t, err)
	assert.Equal(t, 10.5, amounts[0])
	assert.Nil(t, amounts[1])
}
