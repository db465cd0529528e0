package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bettergovph/transparency-dashboard/internal/domain/budget"
	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/bettergovph/transparency-dashboard/internal/domain/repository"
	"github.com/bettergovph/transparency-dashboard/internal/logger"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
)

// SitemapUseCase builds the sitemap of the budget pages from written aggregates.
type SitemapUseCase struct {
	exportRepo repository.ExportRepository
	console    types.ConsoleInterface
	now        func() time.Time
}

func NewSitemapUseCase(exportRepo repository.ExportRepository, console types.ConsoleInterface) *SitemapUseCase {
	return &SitemapUseCase{exportRepo: exportRepo, console: console, now: time.Now}
}

// Run reads departments.json and agencies.json from aggregatesDir and writes the sitemap.
func (uc *SitemapUseCase) Run(ctx context.Context, aggregatesDir string, cfg types.SitemapConfig) (string, *budget.SitemapResult, error) {
	log := logger.FromContext(ctx)

	departments, err := uc.exportRepo.ReadEntities(entity.LevelDepartments, aggregatesDir)
	if err != nil {
		return "", nil, types.NewRunError(sourceErrorKind(err), err)
	}
	agencies, err := uc.exportRepo.ReadEntities(entity.LevelAgencies, aggregatesDir)
	if err != nil {
		return "", nil, types.NewRunError(sourceErrorKind(err), err)
	}

	result := budget.SitemapURLs(cfg.BaseURL, departments, agencies, uc.now().Format("2006-01-02"))
	for _, id := range result.OrphanAgencies {
		log.Warn().Str("agency", id).Msg("agency without known department left out of sitemap")
	}
	if n := len(result.OrphanAgencies); n > 0 {
		uc.console.LogWarning("%d agencies skipped: department not found", n)
	}
	if result.DuplicatesFound > 0 {
		uc.console.LogWarning("%d duplicate URLs removed", result.DuplicatesFound)
	}

	path, err := uc.exportRepo.ExportSitemap(result.URLs, cfg.Output)
	if err != nil {
		return "", &result, types.NewRunError(types.KindOutputWrite, fmt.Errorf("%w: %w", types.ErrOutputWrite, err))
	}
	uc.console.LogSuccess("Sitemap with %d URLs written to %s", len(result.URLs), path)
	return path, &result, nil
}
