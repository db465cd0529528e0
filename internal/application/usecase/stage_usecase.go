package usecase

import (
	"context"
	"fmt"

	"github.com/bettergovph/transparency-dashboard/internal/domain/repository"
	"github.com/bettergovph/transparency-dashboard/internal/observability"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	"github.com/bettergovph/transparency-dashboard/pkg/console"
)

// StageUseCase copies a CSV batch directory into the SQLite staging table.
type StageUseCase struct {
	sources repository.SourceProvider
	staging repository.StagingProvider
	console types.ConsoleInterface
	metrics *observability.Metrics
}

func NewStageUseCase(
	sources repository.SourceProvider,
	staging repository.StagingProvider,
	console types.ConsoleInterface,
	metrics *observability.Metrics,
) *StageUseCase {
	return &StageUseCase{sources: sources, staging: staging, console: console, metrics: metrics}
}

// Run stages cfg.Source.Input and returns the number of rows inserted and the
// table size afterwards.
func (uc *StageUseCase) Run(ctx context.Context, source types.SourceConfig, cfg types.StagingConfig) (int, int, error) {
	status := uc.console.Status(fmt.Sprintf("Reading CSV files from %s...", source.Input))
	tracker := uc.metrics.Track("load")
	table, _, err := loadTable(ctx, uc.sources, csvSource(source))
	tracker.End(err)
	status.Stop()
	if err != nil {
		return 0, 0, err
	}

	repo, err := uc.staging.Open(ctx, cfg)
	if err != nil {
		return 0, 0, types.NewRunError(sourceErrorKind(err), fmt.Errorf("open staging database: %w", err))
	}
	defer repo.Close()

	status = uc.console.Status(fmt.Sprintf("Staging %s rows into %s...", console.FormatCount(table.Len()), cfg.Database))
	tracker = uc.metrics.Track("stage")
	inserted, err := repo.Stage(ctx, table, cfg.Replace)
	err = tracker.End(err)
	status.Stop()
	if err != nil {
		return inserted, 0, types.NewRunError(types.KindOutputWrite, fmt.Errorf("%w: %w", types.ErrOutputWrite, err))
	}
	uc.metrics.AddRows("staged", inserted)

	total, err := repo.Count(ctx)
	if err != nil {
		return inserted, 0, types.NewRunError(types.KindInternal, err)
	}

	uc.console.LogSuccess("Staged %s rows (%s in table)", console.FormatCount(inserted), console.FormatCount(total))
	return inserted, total, nil
}
