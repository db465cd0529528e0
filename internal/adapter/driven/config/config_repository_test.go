package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigFileKeepsDefaults(t *testing.T) {
	repo := NewConfigRepository()
	path := writeFile(t, "gaa.yaml", `
source:
  kind: csv
  input: ./data/gaa
output:
  formats: [json, yaml]
`)

	cfg, err := repo.LoadConfigFile(path)

	require.NoError(t, err)
	require.Equal(t, types.SourceCSV, cfg.Source.Kind)
	require.Equal(t, "./data/gaa", cfg.Source.Input)
	require.Equal(t, []string{"json", "yaml"}, cfg.Output.Formats)
	require.Equal(t, "aggregates", cfg.Output.Dir)
	require.Equal(t, 1000, cfg.Index.BatchSize)
}

func TestLoadConfigFileFormats(t *testing.T) {
	repo := NewConfigRepository()

	cfg, err := repo.LoadConfigFile(writeFile(t, "gaa.toml", `
[source]
kind = "sqlite"
input = "gaa.db"
`))
	require.NoError(t, err)
	require.Equal(t, types.SourceSQLite, cfg.Source.Kind)
	require.Equal(t, "gaa.db", cfg.Source.Input)

	cfg, err = repo.LoadConfigFile(writeFile(t, "gaa.json", `{"source": {"kind": "postgres", "dsn": "postgres://localhost/gaa"}}`))
	require.NoError(t, err)
	require.Equal(t, "postgres://localhost/gaa", cfg.Source.DSN)

	_, err = repo.LoadConfigFile(writeFile(t, "gaa.ini", `kind=csv`))
	require.ErrorContains(t, err, "unsupported config file format")

	_, err = repo.LoadConfigFile(t.TempDir())
	require.ErrorContains(t, err, "is a directory")
}

func TestLoadConfigFileEmptyPath(t *testing.T) {
	cfg, err := NewConfigRepository().LoadConfigFile("")
	require.NoError(t, err)
	require.Equal(t, types.DefaultConfig(), cfg)
}

func TestApplyEnvironment(t *testing.T) {
	t.Setenv("GAA_SOURCE_KIND", "bigquery")
	t.Setenv("GAA_SOURCE_PROJECT", "bettergov")
	t.Setenv("GAA_OUTPUT_FORMATS", "json,yaml")
	t.Setenv("GAA_INDEX_BATCH_SIZE", "250")

	repo := NewConfigRepository()
	cfg := types.DefaultConfig()
	require.NoError(t, repo.ApplyEnvironment(cfg))

	require.Equal(t, types.SourceBigQuery, cfg.Source.Kind)
	require.Equal(t, "bettergov", cfg.Source.Project)
	require.Equal(t, []string{"json", "yaml"}, cfg.Output.Formats)
	require.Equal(t, 250, cfg.Index.BatchSize)
	require.Equal(t, "aggregates", cfg.Output.Dir)
}

func TestValidate(t *testing.T) {
	repo := NewConfigRepository()

	require.NoError(t, repo.Validate(types.DefaultConfig()))

	cfg := types.DefaultConfig()
	cfg.Source.Kind = "excel"
	cfg.Output.Formats = []string{"xml"}
	cfg.Publish.Target = "ftp://example"
	err := repo.Validate(cfg)
	require.ErrorIs(t, err, types.ErrInvalidConfig)
	require.Contains(t, err.Error(), "Config.Source.Kind")
	require.Contains(t, err.Error(), "Config.Output.Formats[0]")
	require.Contains(t, err.Error(), "Config.Publish.Target")

	cfg = types.DefaultConfig()
	cfg.Source.Kind = types.SourcePostgres
	err = repo.Validate(cfg)
	require.ErrorContains(t, err, "Config.Source.DSN")

	cfg.Source.DSN = "postgres://localhost/gaa"
	cfg.Publish.Target = "s3://bucket/gaa"
	require.NoError(t, repo.Validate(cfg))
}
