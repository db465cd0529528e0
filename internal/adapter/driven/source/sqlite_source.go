package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	_ "modernc.org/sqlite"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_-]*){0,2}$`)

// SQLiteSource reads the staging table written by the stage command.
type SQLiteSource struct {
	path  string
	table string
	db    *sql.DB
}

// NewSQLiteSource abre o banco SQLite de staging.
func NewSQLiteSource(ctx context.Context, path, table string) (*SQLiteSource, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", types.ErrInputNotFound, path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLiteSource{path: path, table: table, db: db}, nil
}

func (s *SQLiteSource) Describe() string {
	return fmt.Sprintf("sqlite:%s#%s", s.path, s.table)
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func (s *SQLiteSource) Load(ctx context.Context) (*entity.Table, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, s.table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: table %s in %s", types.ErrInputNotFound, s.table, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup table: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM "%s"`, s.table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// scanRows drains database/sql rows into a table.
func scanRows(rows *sql.Rows) (*entity.Table, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	table := &entity.Table{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return table, nil
}
