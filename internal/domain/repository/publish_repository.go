package repository

import (
	"context"

	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
)

// Publisher copies written files to a remote object store.
type Publisher interface {
	// Publish uploads files and returns their remote URIs in the same order.
	Publish(ctx context.Context, files []string) ([]string, error)
	Close() error
}

// PublisherProvider opens the publisher matching cfg.Target (s3:// or gs://).
type PublisherProvider interface {
	Open(ctx context.Context, cfg types.PublishConfig) (Publisher, error)
}
