package entity

import "github.com/shopspring/decimal"

// LevelSummary describes one emitted level of a run.
type LevelSummary struct {
	Level    Level           `json:"level"`
	Entities int             `json:"entities"`
	Count    int             `json:"count"`
	Amount   decimal.Decimal `json:"amount"`
	Missing  []string        `json:"missing_columns,omitempty"`
}

// Skipped reports whether the level was left out for missing columns.
func (s LevelSummary) Skipped() bool {
	return len(s.Missing) > 0
}

// RankedEntity is an entity with the amount used to rank it.
type RankedEntity struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// RunSummary collects everything reported at the end of an aggregation run.
type RunSummary struct {
	RunID          string         `json:"run_id"`
	Source         string         `json:"source"`
	RowsRead       int            `json:"rows_read"`
	RowsRejected   int            `json:"rows_rejected"`
	Levels         []LevelSummary `json:"levels"`
	YearlyTotals   []YearlyTotal  `json:"yearly_totals,omitempty"`
	LatestYear     int            `json:"latest_year,omitempty"`
	TopDepartments []RankedEntity `json:"top_departments,omitempty"`
	Files          []string       `json:"files"`
	Published      []string       `json:"published,omitempty"`
}

// SkippedLevels returns the levels left out of the run.
func (s *RunSummary) SkippedLevels() []LevelSummary {
	var skipped []LevelSummary
	for _, l := range s.Levels {
		if l.Skipped() {
			skipped = append(skipped, l)
		}
	}
	return skipped
}
