package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/faretracker/fareexport/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errNotConnected = errors.New("client is not connected")

// pool defines the interface for database operations.
// This interface is satisfied by *pgxpool.Pool and can be mocked for testing.
type pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
	Ping(ctx context.Context) error
}

// Client queries day partitions from a PostgreSQL table.
type Client struct {
	conn pool
	opts *options
}

func New(opts ...Option) *Client {
	o := newOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Client{opts: o}
}

func (c *Client) Connect(ctx context.Context) error {
	// Close existing connection if any to prevent leaks
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	if err := c.opts.validate(); err != nil {
		return fmt.Errorf("invalid Postgres db configuration: %w", err)
	}

	config, err := pgxpool.ParseConfig(c.opts.connectionString())
	if err != nil {
		return fmt.Errorf("failed to parse Postgres db connection string: %w", err)
	}

	if c.opts.poolMaxConnections != nil {
		config.MaxConns = *c.opts.poolMaxConnections
	}

	if c.opts.poolMinConnections != nil {
		config.MinConns = *c.opts.poolMinConnections
	}

	if c.opts.poolMaxConnectionLifetime != nil {
		config.MaxConnLifetime = *c.opts.poolMaxConnectionLifetime
	}

	if c.opts.poolMaxConnectionIdleTime != nil {
		config.MaxConnIdleTime = *c.opts.poolMaxConnectionIdleTime
	}

	conn, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create new Postgres connection pool: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping Postgres db: %w", err)
	}

	c.conn = conn

	return nil
}

func (c *Client) Close(_ context.Context) error {
	if c.conn == nil {
		return nil
	}

	c.conn.Close()

	c.conn = nil

	return nil
}

// Init verifies that the fares table has the configured day key, time and
// price columns with text types. Pass skipSchemaValidation true to skip the
// check in environments where the schema is managed externally.
func (c *Client) Init(ctx context.Context, skipSchemaValidation bool) error {
	if c.conn == nil {
		return errNotConnected
	}

	if skipSchemaValidation {
		return nil
	}

	query := "SELECT column_name, data_type, is_nullable FROM information_schema.columns WHERE table_schema = $1 AND table_name = $2 ORDER BY ordinal_position"

	rows, err := c.conn.Query(ctx, query, c.opts.schema, c.opts.table)
	if err != nil {
		return fmt.Errorf("failed to query information schema: %w", err)
	}

	defer rows.Close()

	columns := map[string]*dbRow{}

	for rows.Next() {
		var column string
		row := &dbRow{}

		if err := rows.Scan(&column, &row.DataType, &row.IsNullable); err != nil {
			return fmt.Errorf("failed to scan row from information schema: %w", err)
		}

		columns[column] = row
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating over rows from information schema: %w", err)
	}

	if len(columns) == 0 {
		return fmt.Errorf("table %s.%s does not exist", c.opts.schema, c.opts.table)
	}

	if err := c.opts.verifySchema(columns); err != nil {
		return fmt.Errorf("failed to verify fares table schema: %w", err)
	}

	return nil
}

// QueryByKey returns every row stored under the given day key, ordered by the
// time column. Count is the number of rows returned.
func (c *Client) QueryByKey(ctx context.Context, key types.DayKey) (*types.PartitionQueryResult, error) {
	if c.conn == nil {
		return nil, errNotConnected
	}

	if key == "" {
		return nil, errors.New("day key cannot be empty")
	}

	rows, err := c.conn.Query(ctx, c.partitionQuerySQL(), string(key))
	if err != nil {
		return nil, fmt.Errorf("failed to query day %s from Postgres db: %w", key, err)
	}

	defer rows.Close()

	result := &types.PartitionQueryResult{}

	for rows.Next() {
		var record types.RawRecord

		if err := rows.Scan(&record.Time, &record.Price); err != nil {
			return nil, fmt.Errorf("failed to scan row for day %s: %w", key, err)
		}

		result.Items = append(result.Items, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows for day %s: %w", key, err)
	}

	result.Count = len(result.Items)

	return result, nil
}

func (c *Client) partitionQuerySQL() string {
	table := pgx.Identifier{c.opts.schema, c.opts.table}.Sanitize()
	dayKey := pgx.Identifier{c.opts.dayKeyColumn}.Sanitize()
	timeCol := pgx.Identifier{c.opts.timeColumn}.Sanitize()
	price := pgx.Identifier{c.opts.priceColumn}.Sanitize()

	return fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = $1 ORDER BY %s", timeCol, price, table, dayKey, timeCol)
}
