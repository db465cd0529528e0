package repository

import (
	"context"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
)

// StagingRepository stores raw line items in a SQL table.
type StagingRepository interface {
	Stage(ctx context.Context, table *entity.Table, replace bool) (int, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// StagingProvider opens the staging database, applying migrations.
type StagingProvider interface {
	Open(ctx context.Context, cfg types.StagingConfig) (StagingRepository, error)
}
