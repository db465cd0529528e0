package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

var parquetNameRegex = regexp.MustCompile(`[^a-z0-9_]+`)

// ExportTableToParquet writes a flat table with SNAPPY compression. Column types come
// from the first non-nil value: float64 as DOUBLE, integers as INT64, anything else
// as UTF8 text. Every column is optional.
func (r *ExportRepositoryImpl) ExportTableToParquet(table *entity.Table, outputPath string) (string, error) {
	if err := ensureParent(outputPath); err != nil {
		return "", err
	}

	kinds := make([]parquetKind, len(table.Columns))
	md := make([]string, len(table.Columns))
	for i, name := range table.Columns {
		kinds[i] = inferKind(table, i)
		md[i] = fmt.Sprintf("name=%s, %s, repetitiontype=OPTIONAL", parquetColumnName(name, i), kinds[i].schema())
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("error creating parquet file: %w", err)
	}
	fw := writerfile.NewWriterFile(file)

	pw, err := writer.NewCSVWriter(md, fw, 4)
	if err != nil {
		file.Close()
		return "", fmt.Errorf("error building parquet schema: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range table.Rows {
		rec := make([]interface{}, len(table.Columns))
		for i := range rec {
			if i < len(row) {
				rec[i] = kinds[i].convert(row[i])
			}
		}
		if err := pw.Write(rec); err != nil {
			file.Close()
			return "", fmt.Errorf("error writing parquet row: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		file.Close()
		return "", fmt.Errorf("error finishing parquet file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("error closing parquet file: %w", err)
	}
	return filepath.Abs(outputPath)
}

type parquetKind int

const (
	kindText parquetKind = iota
	kindDouble
	kindInt64
)

func (k parquetKind) schema() string {
	switch k {
	case kindDouble:
		return "type=DOUBLE"
	case kindInt64:
		return "type=INT64"
	default:
		return "type=BYTE_ARRAY, convertedtype=UTF8"
	}
}

func (k parquetKind) convert(v any) interface{} {
	if v == nil {
		return nil
	}
	switch k {
	case kindDouble:
		switch x := v.(type) {
		case float64:
			return x
		case float32:
			return float64(x)
		}
	case kindInt64:
		switch x := v.(type) {
		case int64:
			return x
		case int:
			return int64(x)
		case int32:
			return int64(x)
		}
	default:
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	return nil
}

func inferKind(table *entity.Table, col int) parquetKind {
	for _, row := range table.Rows {
		if col >= len(row) || row[col] == nil {
			continue
		}
		switch row[col].(type) {
		case float64, float32:
			return kindDouble
		case int, int32, int64:
			return kindInt64
		default:
			return kindText
		}
	}
	return kindText
}

func parquetColumnName(name string, pos int) string {
	clean := parquetNameRegex.ReplaceAllString(strings.ToLower(name), "_")
	clean = strings.Trim(clean, "_")
	if clean == "" {
		return fmt.Sprintf("column_%d", pos+1)
	}
	return clean
}
