package budget

import (
	"sort"
	"strconv"
	"strings"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/shopspring/decimal"
)

type tally struct {
	count  int
	amount decimal.Decimal
}

type group struct {
	parts []string
	years map[int]*tally
	names map[string]decimal.Decimal
}

func (g *group) add(item entity.LineItem, description string) {
	t, ok := g.years[item.Year]
	if !ok {
		t = &tally{}
		g.years[item.Year] = t
	}
	t.count++
	t.amount = t.amount.Add(item.Amount)
	g.names[description] = g.names[description].Add(item.Amount)
}

func (g *group) variants() []Variant {
	out := make([]Variant, 0, len(g.names))
	for desc, amount := range g.names {
		out = append(out, Variant{Description: desc, Amount: amount})
	}
	return out
}

func (g *group) figures() map[string]entity.YearFigure {
	out := make(map[string]entity.YearFigure, len(g.years))
	for year, t := range g.years {
		out[strconv.Itoa(year)] = entity.YearFigure{Count: t.count, Amount: t.amount}
	}
	return out
}

// levelSpec describes how one hierarchical level groups line items.
type levelSpec struct {
	level    entity.Level
	resolver Resolver
	key      func(item entity.LineItem) []string
	describe func(item entity.LineItem) string
	fill     func(e *entity.Entity, parts []string)
}

var levelSpecs = map[entity.Level]levelSpec{
	entity.LevelDepartments: {
		level:    entity.LevelDepartments,
		resolver: NewInstitutionResolver(),
		key:      func(it entity.LineItem) []string { return []string{it.DepartmentCode} },
		describe: func(it entity.LineItem) string { return it.DepartmentDesc },
		fill:     func(e *entity.Entity, parts []string) {},
	},
	entity.LevelAgencies: {
		level:    entity.LevelAgencies,
		resolver: NewInstitutionResolver(),
		key:      func(it entity.LineItem) []string { return []string{it.DepartmentCode, it.AgencyCode} },
		describe: func(it entity.LineItem) string { return it.AgencyDesc },
		fill: func(e *entity.Entity, parts []string) {
			e.AgencyCode = parts[1]
			e.ParentID = parts[0]
			e.DepartmentID = parts[0]
		},
	},
	entity.LevelFundSubcategories: {
		level: entity.LevelFundSubcategories,
		key: func(it entity.LineItem) []string {
			return []string{it.DepartmentCode, it.AgencyCode, it.FundSubcategoryDesc}
		},
		describe: func(it entity.LineItem) string { return it.FundSubcategoryDesc },
		fill:     fillAgencyChild,
	},
	entity.LevelExpenses: {
		level: entity.LevelExpenses,
		key: func(it entity.LineItem) []string {
			return []string{it.DepartmentCode, it.AgencyCode, ownCode(it.ExpenseCode, it.ExpenseDesc)}
		},
		describe: func(it entity.LineItem) string { return it.ExpenseDesc },
		fill: func(e *entity.Entity, parts []string) {
			fillAgencyChild(e, parts)
			e.ExpenseCode = parts[2]
		},
	},
	entity.LevelObjects: {
		level: entity.LevelObjects,
		key: func(it entity.LineItem) []string {
			return []string{it.DepartmentCode, it.AgencyCode, ownCode(it.ObjectCode, it.ObjectDesc)}
		},
		describe: func(it entity.LineItem) string { return it.ObjectDesc },
		fill: func(e *entity.Entity, parts []string) {
			fillAgencyChild(e, parts)
			e.ObjectCode = parts[2]
		},
	},
}

func fillAgencyChild(e *entity.Entity, parts []string) {
	e.DepartmentID = parts[0]
	e.AgencyID = parts[0] + "-" + parts[1]
	e.ParentID = e.AgencyID
}

func ownCode(code, description string) string {
	if code != "" {
		return code
	}
	return description
}

// Eligible reports whether item contributes to level.
func Eligible(level entity.Level, item entity.LineItem) bool {
	switch level {
	case entity.LevelYearlyTotals:
		return true
	case entity.LevelDepartments:
		return item.DepartmentCode != ""
	case entity.LevelAgencies:
		return item.DepartmentCode != "" && item.AgencyCode != ""
	case entity.LevelFundSubcategories:
		return item.DepartmentCode != "" && item.AgencyCode != "" && item.FundSubcategoryDesc != ""
	case entity.LevelExpenses:
		return item.DepartmentCode != "" && item.AgencyCode != "" && item.ExpenseDesc != ""
	case entity.LevelObjects:
		return item.DepartmentCode != "" && item.AgencyCode != "" && item.ObjectDesc != ""
	default:
		return false
	}
}

func buildLevel(items []entity.LineItem, def levelSpec) []entity.Entity {
	groups := make(map[string]*group)
	for _, item := range items {
		if !Eligible(def.level, item) {
			continue
		}
		parts := def.key(item)
		id := strings.Join(parts, "-")
		g, ok := groups[id]
		if !ok {
			g = &group{
				parts: parts,
				years: make(map[int]*tally),
				names: make(map[string]decimal.Decimal),
			}
			groups[id] = g
		}
		g.add(item, def.describe(item))
	}

	out := make([]entity.Entity, 0, len(groups))
	index := make(map[string][]string, len(groups))
	for id, g := range groups {
		e := entity.Entity{Level: def.level, ID: id, Years: g.figures()}
		def.fill(&e, g.parts)
		e.Description = def.resolver.Resolve(g.parts[len(g.parts)-1], g.variants())
		e.Slug = Slug(e.Description)
		out = append(out, e)
		index[id] = g.parts
	}

	sort.Slice(out, func(i, j int) bool {
		return lessParts(index[out[i].ID], index[out[j].ID])
	})
	return out
}

func lessParts(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// Departments groups line items by department code.
func Departments(items []entity.LineItem) []entity.Entity {
	return buildLevel(items, levelSpecs[entity.LevelDepartments])
}

// Agencies groups line items by department and agency code.
func Agencies(items []entity.LineItem) []entity.Entity {
	return buildLevel(items, levelSpecs[entity.LevelAgencies])
}

// FundSubcategories groups line items by agency and fund sub-category description.
func FundSubcategories(items []entity.LineItem) []entity.Entity {
	return buildLevel(items, levelSpecs[entity.LevelFundSubcategories])
}

// Expenses groups line items by agency and expense class.
func Expenses(items []entity.LineItem) []entity.Entity {
	return buildLevel(items, levelSpecs[entity.LevelExpenses])
}

// Objects groups line items by agency and sub-object code.
func Objects(items []entity.LineItem) []entity.Entity {
	return buildLevel(items, levelSpecs[entity.LevelObjects])
}

// YearlyTotals sums every line item per fiscal year, ascending.
func YearlyTotals(items []entity.LineItem) []entity.YearlyTotal {
	byYear := make(map[int]*tally)
	for _, item := range items {
		t, ok := byYear[item.Year]
		if !ok {
			t = &tally{}
			byYear[item.Year] = t
		}
		t.count++
		t.amount = t.amount.Add(item.Amount)
	}

	out := make([]entity.YearlyTotal, 0, len(byYear))
	for year, t := range byYear {
		out = append(out, entity.YearlyTotal{Year: year, Count: t.count, Amount: t.amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// Build produces the requested levels. Levels not requested stay nil.
func Build(items []entity.LineItem, levels []entity.Level) *entity.Aggregates {
	agg := &entity.Aggregates{}
	for _, level := range levels {
		switch level {
		case entity.LevelDepartments:
			agg.Departments = Departments(items)
		case entity.LevelAgencies:
			agg.Agencies = Agencies(items)
		case entity.LevelFundSubcategories:
			agg.FundSubcategories = FundSubcategories(items)
		case entity.LevelExpenses:
			agg.Expenses = Expenses(items)
		case entity.LevelObjects:
			agg.Objects = Objects(items)
		case entity.LevelYearlyTotals:
			agg.YearlyTotals = YearlyTotals(items)
		}
	}
	return agg
}
