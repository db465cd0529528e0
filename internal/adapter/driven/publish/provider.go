package publish

import (
	"context"

	"github.com/bettergovph/transparency-dashboard/internal/domain/repository"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
)

// Provider opens the publisher matching the target scheme.
type Provider struct{}

// NewPublisherProvider cria um novo PublisherProvider.
func NewPublisherProvider() repository.PublisherProvider {
	return &Provider{}
}

func (p *Provider) Open(ctx context.Context, cfg types.PublishConfig) (repository.Publisher, error) {
	target, err := ParseTarget(cfg.Target)
	if err != nil {
		return nil, err
	}
	if target.Scheme == "gs" {
		return NewGCSPublisher(ctx, target, cfg.Credentials, cfg.Concurrency)
	}
	return NewS3Publisher(ctx, target, cfg.Profile, cfg.Region, cfg.Concurrency)
}
