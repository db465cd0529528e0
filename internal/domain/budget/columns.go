package budget

import (
	"sort"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
)

// Source column names of a GAA line item.
const (
	ColDepartment     = "department"
	ColDepartmentDesc = "uacs_dpt_dsc"
	ColAgency         = "agency"
	ColAgencyDesc     = "uacs_agy_dsc"
	ColFundCode       = "fundcd"
	ColFundSubcatDesc = "uacs_fundsubcat_dsc"
	ColExpenseCode    = "uacs_exp_cd"
	ColExpenseDesc    = "uacs_exp_dsc"
	ColObjectCode     = "uacs_sobj_cd"
	ColObjectDesc     = "uacs_sobj_dsc"
	ColYear           = "year"
	ColAmount         = "amt"
	ColID             = "id"
)

var requiredColumns = map[entity.Level][]string{
	entity.LevelDepartments:       {ColDepartment, ColDepartmentDesc, ColYear, ColAmount},
	entity.LevelAgencies:          {ColDepartment, ColAgency, ColAgencyDesc, ColYear, ColAmount},
	entity.LevelFundSubcategories: {ColDepartment, ColAgency, ColFundSubcatDesc, ColYear, ColAmount},
	entity.LevelExpenses:          {ColDepartment, ColAgency, ColExpenseCode, ColExpenseDesc, ColYear, ColAmount},
	entity.LevelObjects:           {ColDepartment, ColAgency, ColObjectCode, ColObjectDesc, ColYear, ColAmount},
	entity.LevelYearlyTotals:      {ColYear, ColAmount},
}

// RequiredColumns lists the columns a level cannot be built without.
func RequiredColumns(level entity.Level) []string {
	return append([]string(nil), requiredColumns[level]...)
}

// MissingColumns returns the required columns of level absent from present, sorted.
func MissingColumns(level entity.Level, present map[string]bool) []string {
	var missing []string
	for _, col := range requiredColumns[level] {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	sort.Strings(missing)
	return missing
}
