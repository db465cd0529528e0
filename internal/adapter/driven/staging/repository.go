package staging

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bettergovph/transparency-dashboard/internal/domain/budget"
	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/bettergovph/transparency-dashboard/internal/domain/repository"
	"github.com/bettergovph/transparency-dashboard/internal/logger"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	_ "modernc.org/sqlite"
)

// TableName is the staging table created by the embedded migrations.
const TableName = "gaa_line_items"

const sourceFileColumn = "source_file"

// stagedColumns are the columns copied from the CSV batch, in insert order.
var stagedColumns = []string{
	sourceFileColumn,
	budget.ColDepartment,
	budget.ColDepartmentDesc,
	budget.ColAgency,
	budget.ColAgencyDesc,
	budget.ColFundCode,
	budget.ColFundSubcatDesc,
	budget.ColExpenseCode,
	budget.ColExpenseDesc,
	budget.ColObjectCode,
	budget.ColObjectDesc,
	budget.ColYear,
	budget.ColAmount,
}

// SQLiteRepository stores CSV line items in the gaa_line_items table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (or creates) the database and applies the migrations.
func NewSQLiteRepository(ctx context.Context, dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Stage inserts the rows of table, one transaction per source file. Columns the
// staging schema does not know are ignored.
func (r *SQLiteRepository) Stage(ctx context.Context, table *entity.Table, replace bool) (int, error) {
	log := logger.FromContext(ctx)
	index := table.ColumnIndex()

	positions := make([]int, len(stagedColumns))
	for i, c := range stagedColumns {
		pos, ok := index[c]
		if !ok {
			pos = -1
		}
		positions[i] = pos
	}
	var ignored []string
	known := make(map[string]bool, len(stagedColumns))
	for _, c := range stagedColumns {
		known[c] = true
	}
	for _, c := range table.Columns {
		if n := entity.NormalizeColumn(c); !known[n] && n != budget.ColID {
			ignored = append(ignored, n)
		}
	}
	if len(ignored) > 0 {
		log.Warn().Strs("columns", ignored).Msg("columns not stored in staging table")
	}

	if replace {
		if _, err := r.db.ExecContext(ctx, "DELETE FROM "+TableName); err != nil {
			return 0, fmt.Errorf("clear staging table: %w", err)
		}
		log.Info().Msg("staging table cleared")
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(stagedColumns)), ", ")
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", TableName, strings.Join(stagedColumns, ", "), placeholders)

	inserted := 0
	for _, batch := range splitByFile(table.Rows, positions[0]) {
		n, err := r.insertBatch(ctx, insert, batch, positions)
		if err != nil {
			return inserted, err
		}
		log.Debug().Str("file", batch.file).Int("rows", n).Msg("staged file")
		inserted += n
	}
	return inserted, nil
}

func (r *SQLiteRepository) insertBatch(ctx context.Context, insert string, batch fileBatch, positions []int) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(positions))
	for _, row := range batch.rows {
		for i, pos := range positions {
			args[i] = nil
			if pos >= 0 && pos < len(row) {
				args[i] = stagedValue(row[pos])
			}
		}
		if args[0] == nil {
			args[0] = batch.file
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row from %s: %w", batch.file, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s: %w", batch.file, err)
	}
	return len(batch.rows), nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+TableName).Scan(&n); err != nil {
		return 0, fmt.Errorf("count staged rows: %w", err)
	}
	return n, nil
}

type fileBatch struct {
	file string
	rows [][]any
}

// splitByFile groups consecutive rows by their source file value.
func splitByFile(rows [][]any, filePos int) []fileBatch {
	var batches []fileBatch
	for _, row := range rows {
		file := ""
		if filePos >= 0 && filePos < len(row) {
			file = budget.CellString(row[filePos])
		}
		if len(batches) == 0 || batches[len(batches)-1].file != file {
			batches = append(batches, fileBatch{file: file})
		}
		last := &batches[len(batches)-1]
		last.rows = append(last.rows, row)
	}
	return batches
}

func stagedValue(v any) any {
	s := budget.CellString(v)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// Provider opens SQLite staging repositories.
type Provider struct{}

// NewStagingProvider cria um novo StagingProvider.
func NewStagingProvider() repository.StagingProvider {
	return &Provider{}
}

func (p *Provider) Open(ctx context.Context, cfg types.StagingConfig) (repository.StagingRepository, error) {
	if cfg.Table != "" && cfg.Table != TableName {
		return nil, fmt.Errorf("%w: staging table must be %s, got %s", types.ErrInvalidConfig, TableName, cfg.Table)
	}
	return NewSQLiteRepository(ctx, cfg.Database)
}
