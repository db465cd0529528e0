package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bettergovph/transparency-dashboard/internal/domain/budget"
	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/bettergovph/transparency-dashboard/internal/domain/repository"
	"github.com/bettergovph/transparency-dashboard/internal/logger"
	"github.com/bettergovph/transparency-dashboard/internal/observability"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	"github.com/bettergovph/transparency-dashboard/pkg/console"
)

// IndexUseCase feeds the raw line items to the search-index exchange in batches.
type IndexUseCase struct {
	sources   repository.SourceProvider
	notifiers repository.NotifierProvider
	console   types.ConsoleInterface
	metrics   *observability.Metrics
}

func NewIndexUseCase(
	sources repository.SourceProvider,
	notifiers repository.NotifierProvider,
	console types.ConsoleInterface,
	metrics *observability.Metrics,
) *IndexUseCase {
	return &IndexUseCase{sources: sources, notifiers: notifiers, console: console, metrics: metrics}
}

// Run publishes every row of the configured source and returns the number of batches sent.
func (uc *IndexUseCase) Run(ctx context.Context, source types.SourceConfig, cfg types.IndexConfig) (int, error) {
	if cfg.AMQPURL == "" {
		return 0, types.NewRunError(types.KindInvalidConfig, fmt.Errorf("%w: index.amqp_url is required", types.ErrInvalidConfig))
	}

	status := uc.console.Status(fmt.Sprintf("Loading line items (%s)...", source.Kind))
	tracker := uc.metrics.Track("load")
	table, _, err := loadTable(ctx, uc.sources, source)
	tracker.End(err)
	status.Stop()
	if err != nil {
		return 0, err
	}

	docs := IndexDocuments(table)
	if len(docs) == 0 {
		return 0, types.NewRunError(types.KindInputMissing, types.ErrNothingToIndex)
	}
	batches := Batches(docs, cfg.BatchSize)

	notifier, err := uc.notifiers.Open(ctx, cfg.AMQPURL, cfg.Exchange, cfg.Name)
	if err != nil {
		return 0, types.NewRunError(types.KindInternal, fmt.Errorf("connect to broker: %w", err))
	}
	defer notifier.Close()

	log := logger.FromContext(ctx)
	progress := uc.console.ProgressWithTotal(fmt.Sprintf("Indexing into %s", cfg.Name), len(batches))
	defer progress.Stop()

	tracker = uc.metrics.Track("index")
	sent := 0
	for i, batch := range batches {
		if err := notifier.PublishIndexBatch(ctx, cfg.Name, batch); err != nil {
			tracker.End(err)
			return sent, types.NewRunError(types.KindInternal, fmt.Errorf("batch %d: %w", i+1, err))
		}
		sent++
		uc.metrics.AddRows("indexed", len(batch))
		log.Debug().Int("batch", i+1).Int("documents", len(batch)).Msg("index batch sent")
		progress.Increment()
	}
	tracker.End(nil)

	uc.console.LogSuccess("Sent %s documents in %d batches to index %s", console.FormatCount(len(docs)), sent, cfg.Name)
	return sent, nil
}

// IndexDocuments turns every row into a flat string map. Rows without an id get their
// 1-based position.
func IndexDocuments(table *entity.Table) []map[string]string {
	docs := make([]map[string]string, 0, table.Len())
	for n, row := range table.Rows {
		doc := make(map[string]string, len(table.Columns)+1)
		for i, c := range table.Columns {
			if i < len(row) {
				doc[entity.NormalizeColumn(c)] = budget.CleanText(budget.CellString(row[i]))
			}
		}
		if doc[budget.ColID] == "" {
			doc[budget.ColID] = strconv.Itoa(n + 1)
		}
		docs = append(docs, doc)
	}
	return docs
}

// Batches splits docs into consecutive groups of at most size documents.
func Batches(docs []map[string]string, size int) [][]map[string]string {
	if size < 1 {
		size = 1
	}
	var out [][]map[string]string
	for start := 0; start < len(docs); start += size {
		end := start + size
		if end > len(docs) {
			end = len(docs)
		}
		out = append(out, docs[start:end])
	}
	return out
}
