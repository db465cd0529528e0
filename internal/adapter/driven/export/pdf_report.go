package export

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SummaryPDFName is the base name of the run summary report.
const SummaryPDFName = "gaa_summary"

var amountPrinter = message.NewPrinter(language.English)

func formatAmount(d decimal.Decimal) string {
	return amountPrinter.Sprintf("PHP %.2f", d.InexactFloat64())
}

func (r *ExportRepositoryImpl) ExportSummaryToPDF(summary *entity.RunSummary, outputDir string) (string, error) {
	outputFilename, err := generateFilename(SummaryPDFName, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footerText := fmt.Sprintf("Generated by gaa-etl | run %s | %s", summary.RunID, time.Now().Format("2006-01-02"))
		pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	sectionTitle := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)
	}

	drawTable := func(headers []string, widths []float64, rows [][]string) {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(240, 240, 240)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		for i, h := range headers {
			pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, row := range rows {
			for i, cell := range row {
				align := "L"
				if i > 0 {
					align = "R"
				}
				if len(cell) > 60 {
					cell = cell[:57] + "..."
				}
				pdf.CellFormat(widths[i], 6, tr(cell), "1", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(8)
	}

	pdf.AddPage()
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, "  GAA Budget Aggregates", "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Source: %s", summary.Source)), "", 1, "L", true, 0, "")
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Rows read: %d | rejected: %d", summary.RowsRead, summary.RowsRejected)), "", 1, "L", true, 0, "")
	pdf.Ln(10)

	sectionTitle("Levels")
	var levelRows [][]string
	for _, l := range summary.Levels {
		if l.Skipped() {
			levelRows = append(levelRows, []string{string(l.Level), "skipped", "-", "-"})
			continue
		}
		levelRows = append(levelRows, []string{
			string(l.Level),
			amountPrinter.Sprintf("%d", l.Entities),
			amountPrinter.Sprintf("%d", l.Count),
			formatAmount(l.Amount),
		})
	}
	drawTable([]string{"Level", "Entries", "Line items", "Amount"}, []float64{55, 35, 35, 65}, levelRows)

	if len(summary.YearlyTotals) > 0 {
		sectionTitle("Yearly Totals")
		var rows [][]string
		for _, t := range summary.YearlyTotals {
			rows = append(rows, []string{
				fmt.Sprintf("%d", t.Year),
				amountPrinter.Sprintf("%d", t.Count),
				formatAmount(t.Amount),
			})
		}
		drawTable([]string{"Year", "Line items", "Amount"}, []float64{55, 55, 80}, rows)
	}

	if len(summary.TopDepartments) > 0 {
		sectionTitle(fmt.Sprintf("Top Departments (%d)", summary.LatestYear))
		var rows [][]string
		for _, d := range summary.TopDepartments {
			rows = append(rows, []string{d.Description, formatAmount(d.Amount)})
		}
		drawTable([]string{"Department", "Amount"}, []float64{130, 60}, rows)
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}
