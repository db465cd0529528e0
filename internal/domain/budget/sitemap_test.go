package budget

import (
	"testing"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Department of Education (DepEd)": "department-of-education-deped",
		"  Office of the President  ":     "office-of-the-president",
		"Santo Niño & Sons":               "santo-nino-sons",
		"MOOE - Traveling Expenses":       "mooe-traveling-expenses",
		"---":                             "",
	}
	for in, want := range tests {
		require.Equal(t, want, Slug(in), in)
	}
}

func TestSitemapURLs(t *testing.T) {
	depts := []entity.Entity{
		{ID: "07", Slug: "department-of-education"},
		{ID: "08", Description: "Department of Energy"},
	}
	agencies := []entity.Entity{
		{ID: "07-001", DepartmentID: "07", Slug: "office-of-the-secretary"},
		{ID: "07-002", DepartmentID: "07", Slug: "office-of-the-secretary"},
		{ID: "99-001", DepartmentID: "99", Slug: "ghost"},
	}

	result := SitemapURLs("https://example.ph/", depts, agencies, "2026-01-02")

	var locs []string
	for _, u := range result.URLs {
		locs = append(locs, u.Loc)
		require.Equal(t, "2026-01-02", u.LastMod)
	}
	require.Equal(t, []string{
		"https://example.ph",
		"https://example.ph/budget",
		"https://example.ph/budget/departments",
		"https://example.ph/budget/departments/department-of-education",
		"https://example.ph/budget/departments/department-of-energy",
		"https://example.ph/budget/departments/department-of-education/agencies/office-of-the-secretary",
	}, locs)
	require.Equal(t, []string{"99-001"}, result.OrphanAgencies)
	require.Equal(t, 1, result.DuplicatesFound)
	require.Equal(t, 1.0, result.URLs[0].Priority)
	require.Equal(t, 0.7, result.URLs[5].Priority)
	require.Equal(t, "weekly", result.URLs[5].ChangeFreq)
}

func TestSitemapDefaultsBaseURL(t *testing.T) {
	result := SitemapURLs("", nil, nil, "")
	require.Equal(t, DefaultBaseURL, result.URLs[0].Loc)
}
