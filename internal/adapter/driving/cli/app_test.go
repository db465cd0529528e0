package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/bettergovph/transparency-dashboard/internal/adapter/driven/config"
	"github.com/bettergovph/transparency-dashboard/internal/adapter/driven/export"
	"github.com/bettergovph/transparency-dashboard/internal/adapter/driven/notify"
	"github.com/bettergovph/transparency-dashboard/internal/adapter/driven/publish"
	"github.com/bettergovph/transparency-dashboard/internal/adapter/driven/source"
	"github.com/bettergovph/transparency-dashboard/internal/adapter/driven/staging"
	"github.com/bettergovph/transparency-dashboard/internal/application/usecase"
	"github.com/bettergovph/transparency-dashboard/internal/observability"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	"github.com/bettergovph/transparency-dashboard/pkg/console"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const batchCSV = `department,uacs_dpt_dsc,agency,uacs_agy_dsc,fundcd,uacs_fundsubcat_dsc,uacs_exp_cd,uacs_exp_dsc,uacs_sobj_cd,uacs_sobj_dsc,amt
07,Department of Education,001,Office of the Secretary,101,Regular Agency Fund,5,MOOE,5020101,Travelling Expenses,"1,000"
07,Department of Education,001,Office of the Secretary,101,Regular Agency Fund,5,MOOE,5020101,Travelling Expenses,(200)
`

func newTestApp(t *testing.T) *CLIApp {
	t.Helper()
	con := console.NewConsole()
	metrics := observability.NewMetrics()
	sources := source.NewSourceProvider()
	exportRepo := export.NewExportRepository()

	app := NewCLIApp("test", config.NewConfigRepository(), metrics)
	app.SetUseCases(UseCases{
		Aggregate: usecase.NewAggregateUseCase(sources, exportRepo, publish.NewPublisherProvider(), notify.NewNotifierProvider(), con, metrics),
		Convert:   usecase.NewConvertUseCase(sources, exportRepo, con, metrics),
		Stage:     usecase.NewStageUseCase(sources, staging.NewStagingProvider(), con, metrics),
		Sitemap:   usecase.NewSitemapUseCase(exportRepo, con),
		Index:     usecase.NewIndexUseCase(sources, notify.NewNotifierProvider(), con, metrics),
	})
	return app
}

func csvBatchDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gaa_2024.csv"), []byte(batchCSV), 0o644))
	return dir
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	app := newTestApp(t)
	app.SetArgs(args)
	return app.Execute(context.Background())
}

func readDocument(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestAggregateFromCSVThenSitemap(t *testing.T) {
	input := csvBatchDir(t)
	out := t.TempDir()
	metricsFile := filepath.Join(out, "gaa.prom")

	err := execute(t, "aggregate", "--source", "csv", "-i", input, "-d", out, "--metrics-file", metricsFile)
	require.NoError(t, err)

	for _, name := range []string{"departments", "agencies", "fund_subcategories", "expenses", "objects", "yearly_totals"} {
		assert.FileExists(t, filepath.Join(out, name+".json"))
	}
	doc := readDocument(t, filepath.Join(out, "departments.json"))
	data := doc["data"].([]any)
	require.Len(t, data, 1)
	dept := data[0].(map[string]any)
	assert.Equal(t, "07", dept["id"])
	assert.Equal(t, "Department of Education", dept["description"])
	year := dept["years"].(map[string]any)["2024"].(map[string]any)
	assert.EqualValues(t, 2, year["count"])
	assert.EqualValues(t, 800, year["amount"])
	assert.FileExists(t, metricsFile)

	sitemap := filepath.Join(out, "sitemap.xml")
	require.NoError(t, execute(t, "sitemap", "-d", out, "-o", sitemap))
	body, err := os.ReadFile(sitemap)
	require.NoError(t, err)
	assert.Contains(t, string(body), "https://transparency.bettergov.ph/budget/departments/department-of-education/agencies/office-of-the-secretary")
}

func TestConfigPrecedence(t *testing.T) {
	input := csvBatchDir(t)
	out := t.TempDir()
	cfgFile := filepath.Join(t.TempDir(), "gaa.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
source:
  kind: csv
  input: `+input+`
output:
  formats: [yaml]
  source_label: From file
`), 0o644))
	t.Setenv("GAA_OUTPUT_SOURCE_LABEL", "From env")

	err := execute(t, "aggregate", "-C", cfgFile, "-d", out, "--format", "json")
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(out, "departments.yaml"))
	doc := readDocument(t, filepath.Join(out, "departments.json"))
	assert.Equal(t, "From env", doc["metadata"].(map[string]any)["source"])
}

func TestConvertAndStage(t *testing.T) {
	input := csvBatchDir(t)
	out := t.TempDir()

	parquetFile := filepath.Join(out, "gaa.parquet")
	require.NoError(t, execute(t, "convert", "-i", input, "-o", parquetFile))
	assert.FileExists(t, parquetFile)

	db := filepath.Join(out, "gaa.db")
	require.NoError(t, execute(t, "stage", "-i", input, "--database", db))
	require.NoError(t, execute(t, "aggregate", "--source", "sqlite", "-i", db, "--table", "gaa_line_items", "-d", out))
	assert.FileExists(t, filepath.Join(out, "objects.json"))
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown source", []string{"aggregate", "--source", "excel"}, types.ExitInvalidConfig},
		{"bad format", []string{"aggregate", "--source", "csv", "-i", ".", "--format", "xml"}, types.ExitInvalidConfig},
		{"missing parquet", []string{"aggregate", "-i", filepath.Join(t.TempDir(), "none.parquet")}, types.ExitInputMissing},
		{"missing config file", []string{"aggregate", "-C", "/does/not/exist.toml"}, types.ExitInvalidConfig},
		{"index without broker", []string{"index", "--source", "csv", "-i", "."}, types.ExitInvalidConfig},
		{"sitemap without aggregates", []string{"sitemap", "-d", t.TempDir()}, types.ExitInputMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.want, types.ExitCode(err))
		})
	}
}
