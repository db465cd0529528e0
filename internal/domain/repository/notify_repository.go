package repository

import (
	"context"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
)

// Notifier announces finished runs and feeds search-index batches to a broker.
type Notifier interface {
	NotifyRunCompleted(ctx context.Context, summary *entity.RunSummary) error
	PublishIndexBatch(ctx context.Context, index string, batch []map[string]string) error
	Close() error
}

// NotifierProvider dials the broker.
type NotifierProvider interface {
	Open(ctx context.Context, url, exchange, routingKey string) (Notifier, error)
}
