package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bettergovph/transparency-dashboard/internal/adapter/driven/source"
	"github.com/bettergovph/transparency-dashboard/internal/domain/budget"
	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAggregates() *entity.Aggregates {
	return &entity.Aggregates{
		Departments: []entity.Entity{{
			Level:       entity.LevelDepartments,
			ID:          "07",
			Slug:        "department-of-education",
			Description: "Department of Education",
			Years: map[string]entity.YearFigure{
				"2024": {Count: 2, Amount: decimal.RequireFromString("150.50")},
				"2023": {Count: 1, Amount: decimal.NewFromInt(100)},
			},
		}},
		Agencies: []entity.Entity{{
			Level:        entity.LevelAgencies,
			ID:           "07-001",
			Slug:         "office-of-the-secretary",
			AgencyCode:   "001",
			Description:  "Office of the Secretary",
			ParentID:     "07",
			DepartmentID: "07",
			Years: map[string]entity.YearFigure{
				"2024": {Count: 2, Amount: decimal.RequireFromString("150.50")},
			},
		}},
		YearlyTotals: []entity.YearlyTotal{
			{Year: 2023, Count: 1, Amount: decimal.NewFromInt(100)},
			{Year: 2024, Count: 2, Amount: decimal.RequireFromString("150.50")},
		},
	}
}

func TestExportDocument_JSON(t *testing.T) {
	dir := t.TempDir()
	repo := NewExportRepository()
	doc := budget.NewDocument(sampleAggregates(), entity.LevelDepartments, "")

	path, err := repo.ExportDocument(doc, dir, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "departments.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"metadata": {"title": "GAA Departments", "source": "General Appropriations Act", "total_items": 1},
		"data": [{
			"id": "07",
			"slug": "department-of-education",
			"description": "Department of Education",
			"years": {
				"2023": {"count": 1, "amount": 100},
				"2024": {"count": 2, "amount": 150.50}
			}
		}]
	}`, string(data))
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"metadata\""))
}

func TestExportDocument_YAML(t *testing.T) {
	dir := t.TempDir()
	doc := budget.NewDocument(sampleAggregates(), entity.LevelYearlyTotals, "GAA 2024")

	path, err := NewExportRepository().ExportDocument(doc, dir, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "yearly_totals.yaml", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "title: GAA Yearly Totals")
	assert.Contains(t, text, "source: GAA 2024")
	assert.Contains(t, text, "amount: 150.5")
}

func TestExportDocument_UnknownFormat(t *testing.T) {
	doc := budget.NewDocument(sampleAggregates(), entity.LevelDepartments, "")
	_, err := NewExportRepository().ExportDocument(doc, t.TempDir(), "xml")
	assert.Error(t, err)
}

func TestReadEntities_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	repo := NewExportRepository()
	agg := sampleAggregates()

	_, err := repo.ExportDocument(budget.NewDocument(agg, entity.LevelAgencies, ""), dir, FormatJSON)
	require.NoError(t, err)

	got, err := repo.ReadEntities(entity.LevelAgencies, dir)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "07-001", got[0].ID)
	assert.Equal(t, "07", got[0].ParentID)
	assert.Equal(t, entity.LevelAgencies, got[0].Level)
	assert.True(t, got[0].Years["2024"].Amount.Equal(decimal.RequireFromString("150.5")))

	_, err = repo.ReadEntities(entity.LevelDepartments, dir)
	assert.ErrorIs(t, err, types.ErrInputNotFound)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportLevelToCSV(t *testing.T) {
	dir := t.TempDir()
	agg := sampleAggregates()

	path, err := NewExportRepository().ExportLevelToCSV(entity.LevelDepartments, agg.Departments, dir)
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"id", "parent_id", "description", "year", "count", "amount"},
		{"07", "", "Department of Education", "2023", "1", "100"},
		{"07", "", "Department of Education", "2024", "2", "150.5"},
	}, readCSV(t, path))
}

func TestExportYearlyTotalsToCSV(t *testing.T) {
	path, err := NewExportRepository().ExportYearlyTotalsToCSV(sampleAggregates().YearlyTotals, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"year", "count", "amount"},
		{"2023", "1", "100"},
		{"2024", "2", "150.5"},
	}, readCSV(t, path))
}

func TestExportSummaryToPDF(t *testing.T) {
	summary := &entity.RunSummary{
		RunID:    "run-1",
		Source:   "parquet:gaa.parquet",
		RowsRead: 3,
		Levels: []entity.LevelSummary{
			{Level: entity.LevelDepartments, Entities: 1, Count: 3, Amount: decimal.NewFromInt(250)},
			{Level: entity.LevelObjects, Missing: []string{"uacs_sobj_cd"}},
		},
		YearlyTotals:   sampleAggregates().YearlyTotals,
		LatestYear:     2024,
		TopDepartments: []entity.RankedEntity{{ID: "07", Description: "Department of Education", Amount: decimal.NewFromInt(150)}},
	}

	path, err := NewExportRepository().ExportSummaryToPDF(summary, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "gaa_summary.pdf", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestExportSitemap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public", "sitemap.xml")
	urls := []entity.SitemapURL{
		{Loc: "https://transparency.bettergov.ph", LastMod: "2026-01-02", ChangeFreq: "daily", Priority: 1.0},
		{Loc: "https://transparency.bettergov.ph/budget/departments/deped", LastMod: "2026-01-02", ChangeFreq: "weekly", Priority: 0.8},
	}

	out, err := NewExportRepository().ExportSitemap(urls, path)
	require.NoError(t, err)
	assert.Equal(t, path, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, text, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, text, "<loc>https://transparency.bettergov.ph/budget/departments/deped</loc>")
	assert.Contains(t, text, "<priority>0.8</priority>")
	assert.Contains(t, text, "<changefreq>daily</changefreq>")
}

func TestExportTableToParquet_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gaa.parquet")
	table := &entity.Table{
		Columns: []string{"department", "year", "amt", "id"},
		Rows: [][]any{
			{"07", "2024", 100.5, int64(1)},
			{"08", "2024", nil, int64(2)},
		},
	}

	_, err := NewExportRepository().ExportTableToParquet(table, path)
	require.NoError(t, err)

	got, err := source.NewParquetSource(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"department", "year", "amt", "id"}, got.Columns)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, "07", got.Rows[0][0])
	assert.Equal(t, 100.5, got.Rows[0][2])
	assert.Nil(t, got.Rows[1][2])
	assert.Equal(t, int64(2), got.Rows[1][3])
}

func TestParquetColumnName(t *testing.T) {
	assert.Equal(t, "uacs_dpt_dsc", parquetColumnName("UACS_DPT_DSC", 0))
	assert.Equal(t, "fund_cd", parquetColumnName(" Fund CD ", 0))
	assert.Equal(t, "column_3", parquetColumnName("***", 2))
}
