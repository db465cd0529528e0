package export

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

func (r *ExportRepositoryImpl) ExportSitemap(urls []entity.SitemapURL, outputPath string) (string, error) {
	if err := ensureParent(outputPath); err != nil {
		return "", err
	}

	set := urlSet{Xmlns: sitemapNamespace, URLs: make([]sitemapURL, 0, len(urls))}
	for _, u := range urls {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        u.Loc,
			LastMod:    u.LastMod,
			ChangeFreq: u.ChangeFreq,
			Priority:   strconv.FormatFloat(u.Priority, 'f', 1, 64),
		})
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("error creating sitemap file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(xml.Header); err != nil {
		return "", fmt.Errorf("error writing sitemap: %w", err)
	}
	encoder := xml.NewEncoder(file)
	encoder.Indent("", "  ")
	if err := encoder.Encode(set); err != nil {
		return "", fmt.Errorf("error encoding sitemap: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("error flushing sitemap: %w", err)
	}
	if _, err := file.WriteString("\n"); err != nil {
		return "", fmt.Errorf("error writing sitemap: %w", err)
	}

	return filepath.Abs(outputPath)
}
