package repository

import (
	"context"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
)

// LineItemSource reads GAA line items as a loosely typed table.
type LineItemSource interface {
	Load(ctx context.Context) (*entity.Table, error)
	Describe() string
	Close() error
}

// SourceProvider opens the source selected by the configuration.
type SourceProvider interface {
	Open(ctx context.Context, cfg types.SourceConfig) (LineItemSource, error)
}
