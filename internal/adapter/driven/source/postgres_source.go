package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUndefinedTable = "42P01"

// PostgresSource reads line items from a Postgres table or view.
type PostgresSource struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresSource connects using dsn and checks the connection.
func NewPostgresSource(ctx context.Context, dsn, table string) (*PostgresSource, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres source: parse config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres source: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres source: ping: %w", err)
	}
	return &PostgresSource{pool: pool, table: table}, nil
}

func (s *PostgresSource) Describe() string {
	return "postgres:" + s.table
}

func (s *PostgresSource) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresSource) Load(ctx context.Context) (*entity.Table, error) {
	ident := pgx.Identifier(strings.Split(s.table, ".")).Sanitize()
	rows, err := s.pool.Query(ctx, "SELECT * FROM "+ident)
	if err != nil {
		return nil, s.wrap(err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	table := &entity.Table{Columns: make([]string, len(fields))}
	for i, f := range fields {
		table.Columns[i] = f.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgres source: decode row: %w", err)
		}
		for i, v := range values {
			values[i] = normalizePgValue(v)
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(err)
	}
	return table, nil
}

func (s *PostgresSource) wrap(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
		return fmt.Errorf("%w: table %s", types.ErrInputNotFound, s.table)
	}
	return fmt.Errorf("postgres source: query %s: %w", s.table, err)
}

// normalizePgValue turns pgtype values without a plain Go form into text.
func normalizePgValue(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		val, err := x.Value()
		if err != nil {
			return nil
		}
		return val
	default:
		return v
	}
}
