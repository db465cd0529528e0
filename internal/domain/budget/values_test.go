package budget

import (
	"math"
	"testing"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"543,636", "543636", true},
		{"(4,450)", "-4450", true},
		{"-12.5", "-12.5", true},
		{" 1 234 ", "1234", true},
		{"", "0", true},
		{"nan", "0", true},
		{"NaN", "0", true},
		{" -   ", "0", true},
		{"NULL", "0", true},
		{"()", "0", true},
		{"twelve", "0", false},
		{"12abc", "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			require.Equal(t, tt.wantOK, ok)
			require.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestAmountValueTypes(t *testing.T) {
	d, ok := AmountValue(int64(7))
	require.True(t, ok)
	require.Equal(t, "7", d.String())

	d, ok = AmountValue(1.5)
	require.True(t, ok)
	require.Equal(t, "1.5", d.String())

	d, ok = AmountValue(math.NaN())
	require.True(t, ok)
	require.True(t, d.IsZero())

	_, ok = AmountValue(math.Inf(1))
	require.False(t, ok)

	d, ok = AmountValue([]byte("(10)"))
	require.True(t, ok)
	require.Equal(t, "-10", d.String())
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   int
		wantOK bool
	}{
		{"int64", int64(2024), 2024, true},
		{"int32", int32(2023), 2023, true},
		{"float", 2025.0, 2025, true},
		{"text", " 2022 ", 2022, true},
		{"float text", "2021.0", 2021, true},
		{"fraction", 2021.5, 0, false},
		{"blank", "", 0, false},
		{"nil", nil, 0, false},
		{"words", "FY2024", 0, false},
		{"out of range", 24, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseYear(tt.in)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCellString(t *testing.T) {
	require.Equal(t, "1", CellString(1.0))
	require.Equal(t, "1.25", CellString(1.25))
	require.Equal(t, "42", CellString(int64(42)))
	require.Equal(t, "", CellString(nil))
	require.Equal(t, "", CellString(math.NaN()))
	require.Equal(t, "abc", CellString([]byte("abc")))
}

func TestLoadMapsRowsAndReportsIssues(t *testing.T) {
	table := &entity.Table{
		Columns: []string{"\ufeffDepartment", " UACS_DPT_DSC ", "agency", "uacs_exp_dsc", "year", "amt"},
		Rows: [][]any{
			{"07", "Department of Education (DepEd)", "001", "nan", int64(2024), "1,000"},
			{"07", "Department of Education (DepEd)", "001", "Personnel Services", "bad", "1"},
			{"07", "Department of Education (DepEd)", "001", "Personnel Services", 2024.0, "n/a"},
			{"07", "", "", "", "2025", "(5)"},
		},
	}

	result := Load(table)

	require.Equal(t, 4, result.Rows)
	require.Len(t, result.Items, 2)
	require.Len(t, result.Issues, 2)
	require.Equal(t, map[string]int{entity.IssueInvalidYear: 1, entity.IssueInvalidAmount: 1}, result.IssueCounts())

	first := result.Items[0]
	require.Equal(t, 1, first.Row)
	require.Equal(t, "07", first.DepartmentCode)
	require.Equal(t, "Department of Education (DepEd)", first.DepartmentDesc)
	require.Equal(t, "", first.ExpenseDesc)
	require.Equal(t, 2024, first.Year)
	require.Equal(t, "1000", first.Amount.String())

	second := result.Items[1]
	require.Equal(t, 4, second.Row)
	require.Equal(t, "-5", second.Amount.String())
	require.Equal(t, "", second.AgencyCode)

	require.True(t, result.Present[ColDepartment])
	require.True(t, result.Present[ColDepartmentDesc])
	require.False(t, result.Present[ColObjectDesc])
}

func TestMissingColumns(t *testing.T) {
	present := map[string]bool{ColDepartment: true, ColDepartmentDesc: true, ColYear: true, ColAmount: true, ColAgency: true}

	require.Empty(t, MissingColumns(entity.LevelDepartments, present))
	require.Equal(t, []string{ColAgencyDesc}, MissingColumns(entity.LevelAgencies, present))
	require.Equal(t, []string{ColObjectCode, ColObjectDesc}, MissingColumns(entity.LevelObjects, present))
	require.Empty(t, MissingColumns(entity.LevelYearlyTotals, present))
}
