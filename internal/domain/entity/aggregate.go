package entity

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Level identifies one aggregate output.
type Level string

const (
	LevelDepartments       Level = "departments"
	LevelAgencies          Level = "agencies"
	LevelFundSubcategories Level = "fund_subcategories"
	LevelExpenses          Level = "expenses"
	LevelObjects           Level = "objects"
	LevelYearlyTotals      Level = "yearly_totals"
)

// Levels lists every aggregate in emission order.
var Levels = []Level{
	LevelDepartments,
	LevelAgencies,
	LevelFundSubcategories,
	LevelExpenses,
	LevelObjects,
	LevelYearlyTotals,
}

// ParseLevel accepts a level name, ignoring case and surrounding spaces.
func ParseLevel(name string) (Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, l := range Levels {
		if string(l) == name {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown aggregate level: %q", name)
}

// YearFigure is the count and total amount of a group for one fiscal year.
type YearFigure struct {
	Count  int
	Amount decimal.Decimal
}

type yearFigureJSON struct {
	Count  int         `json:"count"`
	Amount json.Number `json:"amount"`
}

type yearFigureYAML struct {
	Count  int     `yaml:"count"`
	Amount float64 `yaml:"amount"`
}

// MarshalJSON emits the exact decimal amount as a JSON number.
func (f YearFigure) MarshalJSON() ([]byte, error) {
	return json.Marshal(yearFigureJSON{Count: f.Count, Amount: json.Number(f.Amount.String())})
}

// UnmarshalJSON reads documents previously written by MarshalJSON.
func (f *YearFigure) UnmarshalJSON(data []byte) error {
	var raw yearFigureJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(raw.Amount.String())
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", raw.Amount, err)
	}
	f.Count = raw.Count
	f.Amount = amount
	return nil
}

// MarshalYAML emits the amount as a float.
func (f YearFigure) MarshalYAML() (interface{}, error) {
	return yearFigureYAML{Count: f.Count, Amount: f.Amount.InexactFloat64()}, nil
}

// Entity is one node of the department > agency > (fund | expense | object) hierarchy.
type Entity struct {
	Level Level `json:"-" yaml:"-"`

	ID           string                `json:"id" yaml:"id"`
	Slug         string                `json:"slug" yaml:"slug"`
	AgencyCode   string                `json:"agency_code,omitempty" yaml:"agency_code,omitempty"`
	ExpenseCode  string                `json:"expense_code,omitempty" yaml:"expense_code,omitempty"`
	ObjectCode   string                `json:"object_code,omitempty" yaml:"object_code,omitempty"`
	Description  string                `json:"description" yaml:"description"`
	ParentID     string                `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	DepartmentID string                `json:"department_id,omitempty" yaml:"department_id,omitempty"`
	AgencyID     string                `json:"agency_id,omitempty" yaml:"agency_id,omitempty"`
	Years        map[string]YearFigure `json:"years" yaml:"years"`
}

// Total sums every year of the entity.
func (e Entity) Total() YearFigure {
	var total YearFigure
	for _, y := range e.Years {
		total.Count += y.Count
		total.Amount = total.Amount.Add(y.Amount)
	}
	return total
}

// YearlyTotal is the flat per-year roll-up across all line items.
type YearlyTotal struct {
	Year   int
	Count  int
	Amount decimal.Decimal
}

type yearlyTotalJSON struct {
	Year   int         `json:"year"`
	Count  int         `json:"count"`
	Amount json.Number `json:"amount"`
}

type yearlyTotalYAML struct {
	Year   int     `yaml:"year"`
	Count  int     `yaml:"count"`
	Amount float64 `yaml:"amount"`
}

func (t YearlyTotal) MarshalJSON() ([]byte, error) {
	return json.Marshal(yearlyTotalJSON{Year: t.Year, Count: t.Count, Amount: json.Number(t.Amount.String())})
}

func (t *YearlyTotal) UnmarshalJSON(data []byte) error {
	var raw yearlyTotalJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(raw.Amount.String())
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", raw.Amount, err)
	}
	*t = YearlyTotal{Year: raw.Year, Count: raw.Count, Amount: amount}
	return nil
}

func (t YearlyTotal) MarshalYAML() (interface{}, error) {
	return yearlyTotalYAML{Year: t.Year, Count: t.Count, Amount: t.Amount.InexactFloat64()}, nil
}

// Aggregates holds the six level outputs of one run. A nil slice means the level was not built.
type Aggregates struct {
	Departments       []Entity
	Agencies          []Entity
	FundSubcategories []Entity
	Expenses          []Entity
	Objects           []Entity
	YearlyTotals      []YearlyTotal
}

// Entities returns the hierarchical level list, or nil for yearly totals.
func (a *Aggregates) Entities(level Level) []Entity {
	switch level {
	case LevelDepartments:
		return a.Departments
	case LevelAgencies:
		return a.Agencies
	case LevelFundSubcategories:
		return a.FundSubcategories
	case LevelExpenses:
		return a.Expenses
	case LevelObjects:
		return a.Objects
	default:
		return nil
	}
}

// Built reports whether the level was produced in this run.
func (a *Aggregates) Built(level Level) bool {
	if level == LevelYearlyTotals {
		return a.YearlyTotals != nil
	}
	return a.Entities(level) != nil
}

// Size returns the number of entries of a level.
func (a *Aggregates) Size(level Level) int {
	if level == LevelYearlyTotals {
		return len(a.YearlyTotals)
	}
	return len(a.Entities(level))
}

// Metadata is the header of every emitted document.
type Metadata struct {
	Title      string `json:"title" yaml:"title"`
	Source     string `json:"source" yaml:"source"`
	TotalItems int    `json:"total_items" yaml:"total_items"`
}

// Document is the serialisable envelope of one level.
type Document struct {
	Level    Level       `json:"-" yaml:"-"`
	Metadata Metadata    `json:"metadata" yaml:"metadata"`
	Data     interface{} `json:"data" yaml:"data"`
}

// EntityDocument is used when reading back a hierarchical level.
type EntityDocument struct {
	Metadata Metadata `json:"metadata"`
	Data     []Entity `json:"data"`
}
