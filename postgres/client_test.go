package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/faretracker/fareexport/postgres"
	"github.com/faretracker/fareexport/types"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	partitionQuery = `SELECT "time", "price" FROM "public"."fares" WHERE "day_key" = $1 ORDER BY "time"`
	schemaQuery    = "SELECT column_name, data_type, is_nullable FROM information_schema.columns"
)

//nolint:ireturn // Returning interface is appropriate for test mock helper
func newClientWithMock(t *testing.T, opts ...postgres.Option) (*postgres.Client, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	opts = append([]postgres.Option{
		postgres.WithUser("testuser"),
		postgres.WithDatabase("testdb"),
	}, opts...)

	client := postgres.New(opts...)
	client.SetPool(mock)

	return client, mock
}

func schemaRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"column_name", "data_type", "is_nullable"}).
		AddRow("day_key", "text", "NO").
		AddRow("time", "text", "NO").
		AddRow("price", "character varying", "YES")
}

func TestNew(t *testing.T) {
	t.Parallel()

	client := postgres.New(postgres.WithUser("testuser"), postgres.WithDatabase("testdb"))

	require.NotNil(t, client)
}

func TestConnect(t *testing.T) {
	t.Parallel()

	t.Run("returns error for invalid options", func(t *testing.T) {
		t.Parallel()

		client := postgres.New(postgres.WithDatabase("testdb"))

		err := client.Connect(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid Postgres db configuration")
		assert.Contains(t, err.Error(), "user is required")
	})

	t.Run("returns error for invalid table identifier", func(t *testing.T) {
		t.Parallel()

		client := postgres.New(
			postgres.WithUser("testuser"),
			postgres.WithDatabase("testdb"),
			postgres.WithTable("fares; DROP TABLE fares"),
		)

		err := client.Connect(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid table name")
	})
}

func TestClose(t *testing.T) {
	t.Parallel()

	t.Run("closes pool", func(t *testing.T) {
		t.Parallel()

		client, mock := newClientWithMock(t)
		mock.ExpectClose()

		require.NoError(t, client.Close(context.Background()))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("is a no-op when not connected", func(t *testing.T) {
		t.Parallel()

		client := postgres.New()

		require.NoError(t, client.Close(context.Background()))
	})
}

func TestInit(t *testing.T) {
	t.Parallel()

	t.Run("returns error when not connected", func(t *testing.T) {
		t.Parallel()

		client := postgres.New()

		err := client.Init(context.Background(), false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not connected")
	})

	t.Run("skips schema validation", func(t *testing.T) {
		t.Parallel()

		client, mock := newClientWithMock(t)

		require.NoError(t, client.Init(context.Background(), true))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("verifies schema", func(t *testing.T) {
		t.Parallel()

		client, mock := newClientWithMock(t)

		mock.ExpectQuery(schemaQuery).
			WithArgs("public", "fares").
			WillReturnRows(schemaRows())

		require.NoError(t, client.Init(context.Background(), false))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error when table does not exist", func(t *testing.T) {
		t.Parallel()

		client, mock := newClientWithMock(t)

		mock.ExpectQuery(schemaQuery).
			WithArgs("public", "fares").
			WillReturnRows(pgxmock.NewRows([]string{"column_name", "data_type", "is_nullable"}))

		err := client.Init(context.Background(), false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "table public.fares does not exist")
	})

	t.Run("returns error when column is missing", func(t *testing.T) {
		t.Parallel()

		client, mock := newClientWithMock(t)

		mock.ExpectQuery(schemaQuery).
			WithArgs("public", "fares").
			WillReturnRows(pgxmock.NewRows([]string{"column_name", "data_type", "is_nullable"}).
				AddRow("day_key", "text", "NO").
				AddRow("time", "text", "NO"))

		err := client.Init(context.Background(), false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected column 'fares.price' not found")
	})

	t.Run("returns error when information schema query fails", func(t *testing.T) {
		t.Parallel()

		client, mock := newClientWithMock(t)

		mock.ExpectQuery(schemaQuery).
			WithArgs("public", "fares").
			WillReturnError(errors.New("permission denied"))

		err := client.Init(context.Background(), false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query information schema")
	})
}

func TestQueryByKey(t *testing.T) {
	t.Parallel()

	t.Run("returns rows in time order", func(t *testing.T) {
		t.Parallel()

		client, mock := newClientWithMock(t)

		mock.ExpectQuery(regexp.QuoteMeta(partitionQuery)).
			WithArgs("21-03-05").
			WillReturnRows(pgxmock.NewRows([]string{"time", "price"}).
				AddRow("00:00", "10,000.00 USD").
				AddRow("00:01", "9,999.99 USD"))

		result, err := client.QueryByKey(context.Background(), types.DayKey("21-03-05"))
		require.NoError(t, err)
		assert.Equal(t, 2, result.Count)
		assert.Equal(t, []types.RawRecord{
			{Time: "00:00", Price: "10,000.00 USD"},
			{Time: "00:01", Price: "9,999.99 USD"},
		}, result.Items)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns zero count for empty day", func(t *testing.T) {
		t.Parallel()

		client, mock := newClientWithMock(t)

		mock.ExpectQuery(regexp.QuoteMeta(partitionQuery)).
			WithArgs("21-03-06").
			WillReturnRows(pgxmock.NewRows([]string{"time", "price"}))

		result, err := client.QueryByKey(context.Background(), types.DayKey("21-03-06"))
		require.NoError(t, err)
		assert.Equal(t, 0, result.Count)
		assert.Empty(t, result.Items)
	})

	t.Run("uses configured identifiers", func(t *testing.T) {
		t.Parallel()

		client, mock := newClientWithMock(t,
			postgres.WithSchema("pricing"),
			postgres.WithTable("daily_fares"),
			postgres.WithDayKeyColumn("date"),
			postgres.WithTimeColumn("hour"),
			postgres.WithPriceColumn("amount"),
		)

		query := `SELECT "hour", "amount" FROM "pricing"."daily_fares" WHERE "date" = $1 ORDER BY "hour"`

		mock.ExpectQuery(regexp.QuoteMeta(query)).
			WithArgs("21-03-05").
			WillReturnRows(pgxmock.NewRows([]string{"hour", "amount"}).AddRow("00:00", "1.00 USD"))

		result, err := client.QueryByKey(context.Background(), types.DayKey("21-03-05"))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Count)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps query error", func(t *testing.T) {
		t.Parallel()

		client, mock := newClientWithMock(t)

		mock.ExpectQuery(regexp.QuoteMeta(partitionQuery)).
			WithArgs("21-03-05").
			WillReturnError(errors.New("connection reset"))

		_, err := client.QueryByKey(context.Background(), types.DayKey("21-03-05"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query day 21-03-05")
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("returns error for empty key", func(t *testing.T) {
		t.Parallel()

		client, _ := newClientWithMock(t)

		_, err := client.QueryByKey(context.Background(), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "day key cannot be empty")
	})

	t.Run("returns error when not connected", func(t *testing.T) {
		t.Parallel()

		client := postgres.New()

		_, err := client.QueryByKey(context.Background(), types.DayKey("21-03-05"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not connected")
	})
}
