package staging

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bettergovph/transparency-dashboard/internal/adapter/driven/source"
	"github.com/bettergovph/transparency-dashboard/internal/domain/budget"
	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stagingTable() *entity.Table {
	return &entity.Table{
		Columns: []string{"department", "uacs_dpt_dsc", "year", "amt", "remarks", "source_file"},
		Rows: [][]any{
			{"07", "Department of Education", "2024", "1,000", "x", "gaa_2024.csv"},
			{"07", "Department of Education", "2024", "(50)", "", "gaa_2024.csv"},
			{"08", "Department of Health", "2023", "", "", "gaa_2023.csv"},
		},
	}
}

func TestSQLiteRepository_StageAndReadBack(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "data", "gaa.db")

	repo, err := NewStagingProvider().Open(ctx, types.StagingConfig{Database: dbPath, Table: TableName})
	require.NoError(t, err)
	defer repo.Close()

	n, err := repo.Stage(ctx, stagingTable(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	src, err := source.NewSQLiteSource(ctx, dbPath, TableName)
	require.NoError(t, err)
	defer src.Close()

	table, err := src.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	result := budget.Load(table)
	require.Len(t, result.Items, 3)
	assert.Equal(t, "1000", result.Items[0].Amount.String())
	assert.Equal(t, "-50", result.Items[1].Amount.String())
	assert.True(t, result.Items[2].Amount.IsZero())
	assert.Equal(t, 2023, result.Items[2].Year)
	assert.NotContains(t, table.Columns, "remarks")
}

func TestSQLiteRepository_Replace(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "gaa.db")

	repo, err := NewSQLiteRepository(ctx, dbPath)
	require.NoError(t, err)
	defer repo.Close()

	_, err = repo.Stage(ctx, stagingTable(), false)
	require.NoError(t, err)
	_, err = repo.Stage(ctx, stagingTable(), false)
	require.NoError(t, err)
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	_, err = repo.Stage(ctx, stagingTable(), true)
	require.NoError(t, err)
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "gaa.db")
	require.NoError(t, RunMigrations(dbPath))
	require.NoError(t, RunMigrations(dbPath))
}

func TestProvider_RejectsOtherTable(t *testing.T) {
	_, err := NewStagingProvider().Open(context.Background(), types.StagingConfig{Database: "gaa.db", Table: "other"})
	assert.ErrorIs(t, err, types.ErrInvalidConfig)
}

func TestSplitByFile(t *testing.T) {
	batches := splitByFile(stagingTable().Rows, 5)
	require.Len(t, batches, 2)
	assert.Equal(t, "gaa_2024.csv", batches[0].file)
	assert.Len(t, batches[0].rows, 2)
	assert.Equal(t, "gaa_2023.csv", batches[1].file)
}
