package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/bettergovph/transparency-dashboard/internal/domain/repository"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
)

type stubConsole struct {
	mu       sync.Mutex
	warnings []string
	infos    []string
	yearly   []types.YearlyAmount
}

func (c *stubConsole) Print(a ...interface{})                 {}
func (c *stubConsole) Printf(format string, a ...interface{}) {}
func (c *stubConsole) Println(a ...interface{})               {}

func (c *stubConsole) LogInfo(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.infos = append(c.infos, fmt.Sprintf(format, a...))
}

func (c *stubConsole) LogWarning(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, fmt.Sprintf(format, a...))
}

func (c *stubConsole) LogError(format string, a ...interface{})   {}
func (c *stubConsole) LogSuccess(format string, a ...interface{}) {}

func (c *stubConsole) Status(message string) types.StatusHandle { return nopHandle{} }
func (c *stubConsole) ProgressWithTotal(title string, total int) types.ProgressHandle {
	return nopHandle{}
}
func (c *stubConsole) CreateTable() types.TableInterface { return nopTable{} }
func (c *stubConsole) DisplayYearlyTotals(totals []types.YearlyAmount) {
	c.yearly = totals
}

type nopHandle struct{}

func (nopHandle) Update(string) {}
func (nopHandle) Increment()    {}
func (nopHandle) Stop()         {}

type nopTable struct{}

func (nopTable) AddColumn(string, ...interface{}) {}
func (nopTable) AddRow(...interface{})            {}
func (nopTable) Render() string                   { return "" }

// stubSource serves a fixed table.
type stubSource struct {
	table  *entity.Table
	err    error
	opened []types.SourceConfig
}

func (s *stubSource) Open(ctx context.Context, cfg types.SourceConfig) (repository.LineItemSource, error) {
	s.opened = append(s.opened, cfg)
	return &stubReader{table: s.table, err: s.err}, nil
}

type stubReader struct {
	table *entity.Table
	err   error
}

func (r *stubReader) Load(ctx context.Context) (*entity.Table, error) { return r.table, r.err }
func (r *stubReader) Describe() string                                { return "stub" }
func (r *stubReader) Close() error                                    { return nil }

// memExport records what would have been written.
type memExport struct {
	docs      []entity.Document
	formats   []string
	csvLevels []entity.Level
	pdf       *entity.RunSummary
	parquet   *entity.Table
	sitemap   []entity.SitemapURL
	entities  map[entity.Level][]entity.Entity
	failOn    string
}

func (m *memExport) fail(kind string) error {
	if m.failOn == kind {
		return fmt.Errorf("disk full")
	}
	return nil
}

func (m *memExport) ExportDocument(doc entity.Document, outputDir, format string) (string, error) {
	if err := m.fail("document"); err != nil {
		return "", err
	}
	m.docs = append(m.docs, doc)
	m.formats = append(m.formats, format)
	return filepath.Join(outputDir, string(doc.Level)+"."+format), nil
}

func (m *memExport) ExportLevelToCSV(level entity.Level, entities []entity.Entity, outputDir string) (string, error) {
	m.csvLevels = append(m.csvLevels, level)
	return filepath.Join(outputDir, string(level)+".csv"), nil
}

func (m *memExport) ExportYearlyTotalsToCSV(totals []entity.YearlyTotal, outputDir string) (string, error) {
	m.csvLevels = append(m.csvLevels, entity.LevelYearlyTotals)
	return filepath.Join(outputDir, "yearly_totals.csv"), nil
}

func (m *memExport) ExportSummaryToPDF(summary *entity.RunSummary, outputDir string) (string, error) {
	m.pdf = summary
	return filepath.Join(outputDir, "gaa_summary.pdf"), nil
}

func (m *memExport) ExportTableToParquet(table *entity.Table, outputPath string) (string, error) {
	if err := m.fail("parquet"); err != nil {
		return "", err
	}
	m.parquet = table
	return outputPath, nil
}

func (m *memExport) ExportSitemap(urls []entity.SitemapURL, outputPath string) (string, error) {
	m.sitemap = urls
	return outputPath, nil
}

func (m *memExport) ReadEntities(level entity.Level, inputDir string) ([]entity.Entity, error) {
	list, ok := m.entities[level]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrInputNotFound, level)
	}
	return list, nil
}

type stubPublisher struct {
	files []string
	err   error
}

func (p *stubPublisher) Open(ctx context.Context, cfg types.PublishConfig) (repository.Publisher, error) {
	return p, nil
}

func (p *stubPublisher) Publish(ctx context.Context, files []string) ([]string, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.files = files
	uris := make([]string, len(files))
	for i, f := range files {
		uris[i] = "s3://bucket/" + filepath.Base(f)
	}
	return uris, nil
}

func (p *stubPublisher) Close() error { return nil }

type stubNotifier struct {
	summaries []*entity.RunSummary
	batches   [][]map[string]string
	indexes   []string
	err       error
}

func (n *stubNotifier) Open(ctx context.Context, url, exchange, routingKey string) (repository.Notifier, error) {
	return n, nil
}

func (n *stubNotifier) NotifyRunCompleted(ctx context.Context, summary *entity.RunSummary) error {
	if n.err != nil {
		return n.err
	}
	n.summaries = append(n.summaries, summary)
	return nil
}

func (n *stubNotifier) PublishIndexBatch(ctx context.Context, index string, batch []map[string]string) error {
	if n.err != nil {
		return n.err
	}
	n.indexes = append(n.indexes, index)
	n.batches = append(n.batches, batch)
	return nil
}

func (n *stubNotifier) Close() error { return nil }

type stubStaging struct {
	rows    int
	replace bool
}

func (s *stubStaging) Open(ctx context.Context, cfg types.StagingConfig) (repository.StagingRepository, error) {
	return s, nil
}

func (s *stubStaging) Stage(ctx context.Context, table *entity.Table, replace bool) (int, error) {
	s.replace = replace
	if replace {
		s.rows = 0
	}
	s.rows += table.Len()
	return table.Len(), nil
}

func (s *stubStaging) Count(ctx context.Context) (int, error) { return s.rows, nil }
func (s *stubStaging) Close() error                           { return nil }
