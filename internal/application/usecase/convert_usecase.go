package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/bettergovph/transparency-dashboard/internal/domain/budget"
	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/bettergovph/transparency-dashboard/internal/domain/repository"
	"github.com/bettergovph/transparency-dashboard/internal/logger"
	"github.com/bettergovph/transparency-dashboard/internal/observability"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	"github.com/bettergovph/transparency-dashboard/pkg/console"
)

// ConvertResult describes a finished CSV to Parquet conversion.
type ConvertResult struct {
	Output   string
	Rows     int
	Rejected int
}

// ConvertUseCase merges a CSV batch directory into one Parquet file.
type ConvertUseCase struct {
	sources    repository.SourceProvider
	exportRepo repository.ExportRepository
	console    types.ConsoleInterface
	metrics    *observability.Metrics
}

func NewConvertUseCase(
	sources repository.SourceProvider,
	exportRepo repository.ExportRepository,
	console types.ConsoleInterface,
	metrics *observability.Metrics,
) *ConvertUseCase {
	return &ConvertUseCase{sources: sources, exportRepo: exportRepo, console: console, metrics: metrics}
}

// Run reads cfg.Input as a CSV batch and writes the Parquet file to output.
func (uc *ConvertUseCase) Run(ctx context.Context, cfg types.SourceConfig, output string) (*ConvertResult, error) {
	status := uc.console.Status(fmt.Sprintf("Reading CSV files from %s...", cfg.Input))
	tracker := uc.metrics.Track("load")
	table, _, err := loadTable(ctx, uc.sources, csvSource(cfg))
	tracker.End(err)
	status.Stop()
	if err != nil {
		return nil, err
	}

	typed, rejected := ParquetTable(ctx, table)
	uc.metrics.AddRows("accepted", typed.Len())
	uc.metrics.AddRows(entity.IssueInvalidAmount, rejected)
	if rejected > 0 {
		uc.console.LogWarning("%s rows excluded: %s", console.FormatCount(rejected), entity.IssueInvalidAmount)
	}

	tracker = uc.metrics.Track("emit")
	path, err := uc.exportRepo.ExportTableToParquet(typed, output)
	if err = tracker.End(err); err != nil {
		return nil, types.NewRunError(types.KindOutputWrite, fmt.Errorf("%w: %w", types.ErrOutputWrite, err))
	}
	uc.metrics.AddFiles(1)

	uc.console.LogSuccess("Wrote %s rows to %s", console.FormatCount(typed.Len()), path)
	return &ConvertResult{Output: path, Rows: typed.Len(), Rejected: rejected}, nil
}

// ParquetTable types a raw CSV table for Parquet: amt becomes a float (null when
// blank), every other column stays text, and a 1-based id column is added. Rows
// whose amount is not a number are dropped and counted.
func ParquetTable(ctx context.Context, table *entity.Table) (*entity.Table, int) {
	log := logger.FromContext(ctx)

	amountCol := -1
	keep := make([]int, 0, len(table.Columns))
	out := &entity.Table{}
	for i, c := range table.Columns {
		name := entity.NormalizeColumn(c)
		if name == budget.ColID {
			continue
		}
		if name == budget.ColAmount && amountCol < 0 {
			amountCol = len(out.Columns)
		}
		keep = append(keep, i)
		out.Columns = append(out.Columns, name)
	}
	out.Columns = append(out.Columns, budget.ColID)

	rejected := 0
	for n, row := range table.Rows {
		rec := make([]any, len(out.Columns))
		valid := true
		for j, src := range keep {
			var v any
			if src < len(row) {
				v = row[src]
			}
			text := budget.CellString(v)
			if j != amountCol {
				rec[j] = text
				continue
			}
			if budget.IsBlank(strings.TrimSpace(text)) {
				rec[j] = nil
				continue
			}
			amount, ok := budget.ParseAmount(text)
			if !ok {
				valid = false
				log.Debug().Int("row", n+1).Str("value", text).Msg("row excluded: invalid amount")
				break
			}
			rec[j] = amount.InexactFloat64()
		}
		if !valid {
			rejected++
			continue
		}
		rec[len(rec)-1] = int64(len(out.Rows) + 1)
		out.Rows = append(out.Rows, rec)
	}
	return out, rejected
}
