package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Table is a loosely typed tabular result returned by every line-item source.
// Cells keep the driver's native Go type (string, int64, float64, []byte, nil...).
type Table struct {
	Columns []string
	Rows    [][]any
}

// ColumnIndex maps each normalised column name to its position.
func (t *Table) ColumnIndex() map[string]int {
	index := make(map[string]int, len(t.Columns))
	for i, name := range t.Columns {
		key := NormalizeColumn(name)
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}
	return index
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// NormalizeColumn trims a header, drops a UTF-8 BOM and lower-cases it.
func NormalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ToLower(strings.TrimSpace(name))
}

// LineItem is one appropriation row of the General Appropriations Act.
type LineItem struct {
	Row int

	DepartmentCode string
	DepartmentDesc string

	AgencyCode string
	AgencyDesc string

	FundCode            string
	FundSubcategoryDesc string

	ExpenseCode string
	ExpenseDesc string

	ObjectCode string
	ObjectDesc string

	Year   int
	Amount decimal.Decimal
}

// RowIssue describes a row excluded from aggregation for data-quality reasons.
type RowIssue struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
	Value  string `json:"value"`
}

const (
	IssueInvalidAmount = "invalid_amount"
	IssueInvalidYear   = "invalid_year"
)
