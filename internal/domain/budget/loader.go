// Package budget turns GAA line items into the department hierarchy aggregates.
package budget

import (
	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
)

// LoadResult is the typed view of a table.
type LoadResult struct {
	Items   []entity.LineItem
	Issues  []entity.RowIssue
	Present map[string]bool
	Rows    int
}

// Load maps every row of table into a LineItem. It never fails on row content:
// rows with an unusable year or amount are excluded and reported as issues.
func Load(table *entity.Table) LoadResult {
	result := LoadResult{Present: map[string]bool{}}
	if table == nil {
		return result
	}

	index := table.ColumnIndex()
	for name := range index {
		result.Present[name] = true
	}

	text := func(row []any, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return CleanText(CellString(row[i]))
	}
	raw := func(row []any, col string) any {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return nil
		}
		return row[i]
	}

	result.Rows = len(table.Rows)
	result.Items = make([]entity.LineItem, 0, len(table.Rows))
	for n, row := range table.Rows {
		rowNum := n + 1

		yearCell := raw(row, ColYear)
		year, ok := ParseYear(yearCell)
		if !ok {
			result.Issues = append(result.Issues, entity.RowIssue{
				Row: rowNum, Reason: entity.IssueInvalidYear, Value: CellString(yearCell),
			})
			continue
		}

		amountCell := raw(row, ColAmount)
		amount, ok := AmountValue(amountCell)
		if !ok {
			result.Issues = append(result.Issues, entity.RowIssue{
				Row: rowNum, Reason: entity.IssueInvalidAmount, Value: CellString(amountCell),
			})
			continue
		}

		result.Items = append(result.Items, entity.LineItem{
			Row:                 rowNum,
			DepartmentCode:      text(row, ColDepartment),
			DepartmentDesc:      text(row, ColDepartmentDesc),
			AgencyCode:          text(row, ColAgency),
			AgencyDesc:          text(row, ColAgencyDesc),
			FundCode:            text(row, ColFundCode),
			FundSubcategoryDesc: text(row, ColFundSubcatDesc),
			ExpenseCode:         text(row, ColExpenseCode),
			ExpenseDesc:         text(row, ColExpenseDesc),
			ObjectCode:          text(row, ColObjectCode),
			ObjectDesc:          text(row, ColObjectDesc),
			Year:                year,
			Amount:              amount,
		})
	}
	return result
}

// IssueCounts tallies issues by reason.
func (r LoadResult) IssueCounts() map[string]int {
	counts := make(map[string]int)
	for _, issue := range r.Issues {
		counts[issue.Reason]++
	}
	return counts
}
