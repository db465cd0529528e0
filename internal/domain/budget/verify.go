package budget

import (
	"errors"
	"fmt"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ErrInconsistentAggregates is returned by Verify.
var ErrInconsistentAggregates = errors.New("inconsistent aggregates")

var parentLevel = map[entity.Level]entity.Level{
	entity.LevelAgencies:          entity.LevelDepartments,
	entity.LevelFundSubcategories: entity.LevelAgencies,
	entity.LevelExpenses:          entity.LevelAgencies,
	entity.LevelObjects:           entity.LevelAgencies,
}

// Verify checks id uniqueness, parent references and conservation of counts and
// amounts of every built level against the line items it was built from.
func Verify(agg *entity.Aggregates, items []entity.LineItem) error {
	var problems []error

	ids := make(map[entity.Level]map[string]bool)
	for _, level := range entity.Levels {
		if level == entity.LevelYearlyTotals || !agg.Built(level) {
			continue
		}
		seen := make(map[string]bool)
		for _, e := range agg.Entities(level) {
			if seen[e.ID] {
				problems = append(problems, fmt.Errorf("%s: duplicate id %q", level, e.ID))
			}
			seen[e.ID] = true
		}
		ids[level] = seen
	}

	for level, parent := range parentLevel {
		if ids[level] == nil || ids[parent] == nil {
			continue
		}
		for _, e := range agg.Entities(level) {
			if !ids[parent][e.ParentID] {
				problems = append(problems, fmt.Errorf("%s: %q references unknown parent %q", level, e.ID, e.ParentID))
			}
		}
	}

	for _, level := range entity.Levels {
		if !agg.Built(level) {
			continue
		}
		wantCount, wantAmount := 0, decimal.Zero
		for _, item := range items {
			if Eligible(level, item) {
				wantCount++
				wantAmount = wantAmount.Add(item.Amount)
			}
		}
		gotCount, gotAmount := LevelTotals(agg, level)
		if gotCount != wantCount || !gotAmount.Equal(wantAmount) {
			problems = append(problems, fmt.Errorf("%s: totals %d/%s do not match input %d/%s",
				level, gotCount, gotAmount, wantCount, wantAmount))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInconsistentAggregates, errors.Join(problems...))
}

// LevelTotals returns the summed count and amount of a built level.
func LevelTotals(agg *entity.Aggregates, level entity.Level) (int, decimal.Decimal) {
	count, amount := 0, decimal.Zero
	if level == entity.LevelYearlyTotals {
		for _, t := range agg.YearlyTotals {
			count += t.Count
			amount = amount.Add(t.Amount)
		}
		return count, amount
	}
	for _, e := range agg.Entities(level) {
		total := e.Total()
		count += total.Count
		amount = amount.Add(total.Amount)
	}
	return count, amount
}
