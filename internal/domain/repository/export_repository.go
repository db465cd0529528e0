package repository

import (
	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
)

// ExportRepository writes aggregates and derived artefacts to the local filesystem.
// Every method returns the absolute path of the written file.
type ExportRepository interface {
	ExportDocument(doc entity.Document, outputDir, format string) (string, error)
	ExportLevelToCSV(level entity.Level, entities []entity.Entity, outputDir string) (string, error)
	ExportYearlyTotalsToCSV(totals []entity.YearlyTotal, outputDir string) (string, error)
	ExportSummaryToPDF(summary *entity.RunSummary, outputDir string) (string, error)

	ExportTableToParquet(table *entity.Table, outputPath string) (string, error)
	ExportSitemap(urls []entity.SitemapURL, outputPath string) (string, error)

	ReadEntities(level entity.Level, inputDir string) ([]entity.Entity, error)
}
