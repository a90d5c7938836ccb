package evaluation

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// ReportInput carries what the printable report needs besides the evaluation itself.
type ReportInput struct {
	Evaluation   Evaluation
	EmployeeName string
	// Criteria resolves rating rows to display names; missing entries fall back to the id.
	Criteria map[string]Criterion
}

// WriteReport renders the evaluation as an A4 PDF. The core fonts only cover Latin
// text, so labels are always English.
func WriteReport(w io.Writer, in ReportInput) error {
	e := in.Evaluation
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Performance Evaluation")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s", in.EmployeeName))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Position: %s", e.Position))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s", e.EvaluationPeriod))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Evaluation date: %s", e.EvaluationDate.Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Status: %s", e.Status))
	pdf.Ln(10)

	for _, name := range AllSections {
		section := e.Sections.Get(name)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, name.Name().In("en"))
		pdf.Ln(8)

		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(110, 7, "Criterion", "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, "Obtained", "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 7, "Max", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 10)
		for _, rating := range section.Ratings {
			label := rating.CriterionID
			if c, ok := in.Criteria[rating.CriterionID]; ok {
				label = c.Name.In("en")
			}
			pdf.CellFormat(110, 7, label, "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 7, fmt.Sprintf("%.2f", rating.ObtainedRating), "1", 0, "C", false, 0, "")
			pdf.CellFormat(25, 7, fmt.Sprintf("%.2f", rating.MaxRating), "1", 0, "C", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(110, 7, fmt.Sprintf("Total (%.1f%%)", section.Percentage), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%.2f", section.TotalScore), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%.2f", section.MaxScore), "1", 0, "C", false, 0, "")
		pdf.Ln(10)
	}

	final := e.FinalResult
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Final Result")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Total: %.2f / %.2f", final.TotalScore, final.MaxScore))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Overall percentage: %.2f%%", final.OverallPercentage))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Performance score: %.2f / 10", final.OverallPerformanceScore))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Level %d: %s", final.PerformanceLevel, final.PerformanceDescription))
	pdf.Ln(10)

	pdf.Cell(0, 7, fmt.Sprintf("Employee signed: %s", signedLabel(e.Signatures.Employee)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("General manager signed: %s", signedLabel(e.Signatures.GeneralManager)))

	return pdf.Output(w)
}

func signedLabel(sig Signature) string {
	if !sig.Signed || sig.SignedAt == nil {
		return "no"
	}
	return sig.SignedAt.Format("2006-01-02")
}
