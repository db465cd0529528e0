package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/bettergovph/transparency-dashboard/internal/domain/repository"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
)

// sourceErrorKind classifies an error raised while opening or reading a source.
func sourceErrorKind(err error) types.ErrorKind {
	switch {
	case errors.Is(err, types.ErrInputNotFound), errors.Is(err, types.ErrNoInputFiles):
		return types.KindInputMissing
	case errors.Is(err, types.ErrUnknownSource), errors.Is(err, types.ErrInvalidConfig):
		return types.KindInvalidConfig
	default:
		return types.KindInternal
	}
}

// loadTable opens the configured source, reads it and closes it.
func loadTable(ctx context.Context, sources repository.SourceProvider, cfg types.SourceConfig) (*entity.Table, string, error) {
	src, err := sources.Open(ctx, cfg)
	if err != nil {
		return nil, "", types.NewRunError(sourceErrorKind(err), fmt.Errorf("open source: %w", err))
	}
	defer src.Close()

	table, err := src.Load(ctx)
	if err != nil {
		return nil, src.Describe(), types.NewRunError(sourceErrorKind(err), fmt.Errorf("read %s: %w", src.Describe(), err))
	}
	return table, src.Describe(), nil
}

// csvSource returns cfg switched to the CSV batch reader.
func csvSource(cfg types.SourceConfig) types.SourceConfig {
	cfg.Kind = types.SourceCSV
	return cfg
}
