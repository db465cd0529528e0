package budget

import (
	"strings"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
)

// DefaultBaseURL is the public site the sitemap points to.
const DefaultBaseURL = "https://transparency.bettergov.ph"

// SitemapResult holds the generated URLs and the agencies left out because their
// department is unknown.
type SitemapResult struct {
	URLs            []entity.SitemapURL
	OrphanAgencies  []string
	DuplicatesFound int
}

// SitemapURLs lists the budget pages of every department and agency.
func SitemapURLs(baseURL string, departments, agencies []entity.Entity, lastMod string) SitemapResult {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	var result SitemapResult
	seen := make(map[string]bool)
	add := func(path, freq string, priority float64) {
		loc := base + path
		if seen[loc] {
			result.DuplicatesFound++
			return
		}
		seen[loc] = true
		result.URLs = append(result.URLs, entity.SitemapURL{
			Loc:        loc,
			LastMod:    lastMod,
			ChangeFreq: freq,
			Priority:   priority,
		})
	}

	add("", "daily", 1.0)
	add("/budget", "daily", 0.9)
	add("/budget/departments", "daily", 0.9)

	deptSlugs := make(map[string]string, len(departments))
	for _, d := range departments {
		slug := d.Slug
		if slug == "" {
			slug = Slug(d.Description)
		}
		if slug == "" {
			continue
		}
		deptSlugs[d.ID] = slug
		add("/budget/departments/"+slug, "weekly", 0.8)
	}

	for _, a := range agencies {
		deptID := a.DepartmentID
		if deptID == "" {
			deptID = a.ParentID
		}
		deptSlug, ok := deptSlugs[deptID]
		if !ok {
			result.OrphanAgencies = append(result.OrphanAgencies, a.ID)
			continue
		}
		slug := a.Slug
		if slug == "" {
			slug = Slug(a.Description)
		}
		if slug == "" {
			continue
		}
		add("/budget/departments/"+deptSlug+"/agencies/"+slug, "weekly", 0.7)
	}
	return result
}
