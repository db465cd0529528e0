package budget

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Variant is one description seen for a code, with the amount carried by that row.
type Variant struct {
	Description string
	Amount      decimal.Decimal
}

// Resolver picks the canonical description of a code among the variants found in
// the data. Variants are ranked by summed amount, highest first, ties by text.
type Resolver struct {
	// Preferred, when set, selects the first ranked variant it accepts.
	Preferred func(description string) bool
}

// NewInstitutionResolver prefers proper institution names over program titles.
func NewInstitutionResolver() Resolver {
	return Resolver{Preferred: IsInstitutionName}
}

// Resolve returns the canonical description for code, or code itself when every
// variant is blank.
func (r Resolver) Resolve(code string, variants []Variant) string {
	ranked := rankVariants(variants)
	if r.Preferred != nil {
		for _, v := range ranked {
			if r.Preferred(v.Description) {
				return v.Description
			}
		}
	}
	if len(ranked) > 0 {
		return ranked[0].Description
	}
	return code
}

func rankVariants(variants []Variant) []Variant {
	totals := make(map[string]decimal.Decimal)
	for _, v := range variants {
		desc := CleanText(v.Description)
		if desc == "" {
			continue
		}
		totals[desc] = totals[desc].Add(v.Amount)
	}

	ranked := make([]Variant, 0, len(totals))
	for desc, amount := range totals {
		ranked = append(ranked, Variant{Description: desc, Amount: amount})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if c := ranked[i].Amount.Cmp(ranked[j].Amount); c != 0 {
			return c > 0
		}
		return ranked[i].Description < ranked[j].Description
	})
	return ranked
}

var institutionPrefixes = []string{
	"Department of",
	"Office of",
	"Commission on",
	"The ",
}

var institutionKeywords = []string{
	"University",
	"College",
	"Congress",
	"Judiciary",
	"Automatic Appropriations",
	"Budgetary Support",
	"Allocations to",
}

// IsInstitutionName reports whether a description looks like the name of a
// department or agency rather than one of its programs.
func IsInstitutionName(description string) bool {
	if IsBlank(description) {
		return false
	}
	description = strings.TrimSpace(description)

	if strings.Contains(description, "(") && strings.Contains(description, ")") {
		return true
	}
	for _, p := range institutionPrefixes {
		if strings.HasPrefix(description, p) {
			return true
		}
	}
	for _, k := range institutionKeywords {
		if strings.Contains(description, k) {
			return true
		}
	}
	return false
}
