package budget

import (
	"strings"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultSourceLabel is written to the metadata of every document.
const DefaultSourceLabel = "General Appropriations Act"

// Title builds the document title of a level: "fund_subcategories" -> "GAA Fund Subcategories".
func Title(level entity.Level) string {
	words := strings.ReplaceAll(string(level), "_", " ")
	return "GAA " + cases.Title(language.English).String(words)
}

// NewDocument wraps one built level in its metadata envelope.
func NewDocument(agg *entity.Aggregates, level entity.Level, source string) entity.Document {
	if source == "" {
		source = DefaultSourceLabel
	}
	var data interface{}
	if level == entity.LevelYearlyTotals {
		data = agg.YearlyTotals
	} else {
		data = agg.Entities(level)
	}
	return entity.Document{
		Level: level,
		Metadata: entity.Metadata{
			Title:      Title(level),
			Source:     source,
			TotalItems: agg.Size(level),
		},
		Data: data,
	}
}

// Documents returns one document per built level, in emission order.
func Documents(agg *entity.Aggregates, source string) []entity.Document {
	var docs []entity.Document
	for _, level := range entity.Levels {
		if agg.Built(level) {
			docs = append(docs, NewDocument(agg, level, source))
		}
	}
	return docs
}
