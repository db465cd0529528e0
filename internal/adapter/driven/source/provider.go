package source

import (
	"context"
	"fmt"

	"github.com/bettergovph/transparency-dashboard/internal/domain/repository"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
)

// ProviderImpl implementa o SourceProvider.
type ProviderImpl struct{}

// NewSourceProvider cria um novo SourceProvider.
func NewSourceProvider() repository.SourceProvider {
	return &ProviderImpl{}
}

// Open returns the reader selected by cfg.Kind.
func (p *ProviderImpl) Open(ctx context.Context, cfg types.SourceConfig) (repository.LineItemSource, error) {
	switch cfg.Kind {
	case types.SourceParquet, "":
		return NewParquetSource(cfg.Input), nil
	case types.SourceCSV:
		return NewCSVBatchSource(cfg.Input, cfg.DefaultYear), nil
	case types.SourceSQLite:
		return NewSQLiteSource(ctx, cfg.Input, cfg.Table)
	case types.SourcePostgres:
		return NewPostgresSource(ctx, cfg.DSN, cfg.Table)
	case types.SourceBigQuery:
		return NewBigQuerySource(ctx, cfg.Project, cfg.Table, cfg.Credentials)
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownSource, cfg.Kind)
	}
}
