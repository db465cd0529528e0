package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/bettergovph/transparency-dashboard/internal/logger"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
)

// ParquetSource reads a flat Parquet file column by column, so files written by
// other tools can be read without a matching Go struct.
type ParquetSource struct {
	path string
}

// NewParquetSource cria uma nova fonte Parquet.
func NewParquetSource(path string) *ParquetSource {
	return &ParquetSource{path: path}
}

func (s *ParquetSource) Describe() string {
	return "parquet:" + s.path
}

func (s *ParquetSource) Close() error {
	return nil
}

func (s *ParquetSource) Load(ctx context.Context) (*entity.Table, error) {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", types.ErrInputNotFound, s.path)
	}

	fr, err := local.NewLocalFileReader(s.path)
	if err != nil {
		return nil, fmt.Errorf("error opening parquet file: %w", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetColumnReader(fr, int64(runtime.NumCPU()))
	if err != nil {
		return nil, fmt.Errorf("error reading parquet footer: %w", err)
	}
	defer pr.ReadStop()

	columns := leafColumns(pr.Footer.Schema)
	num := pr.GetNumRows()
	log := logger.FromContext(ctx)
	log.Debug().Str("file", s.path).Int64("rows", num).Int("columns", len(columns)).Msg("reading parquet file")

	table := &entity.Table{Columns: columns, Rows: make([][]any, num)}
	for i := range table.Rows {
		table.Rows[i] = make([]any, len(columns))
	}

	for col := range columns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		values, _, _, err := pr.ReadColumnByIndex(int64(col), num)
		if err != nil {
			return nil, fmt.Errorf("error reading parquet column %s: %w", columns[col], err)
		}
		for r, v := range values {
			if int64(r) >= num {
				break
			}
			table.Rows[r][col] = v
		}
	}
	return table, nil
}

// leafColumns returns the names of the value columns of a flat schema, in order.
func leafColumns(schema []*parquet.SchemaElement) []string {
	var names []string
	for i, elem := range schema {
		if i == 0 || elem.GetNumChildren() > 0 {
			continue
		}
		names = append(names, elem.GetName())
	}
	return names
}
