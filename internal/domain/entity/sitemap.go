package entity

// SitemapURL is one <url> entry of a sitemap.
type SitemapURL struct {
	Loc        string
	LastMod    string
	ChangeFreq string
	Priority   float64
}
