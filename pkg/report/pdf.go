package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Subject is one scored row in the rendered report.
type Subject struct {
	Name     string
	Obtained int
	Total    int
}

// Input carries everything the renderer needs for one student report.
type Input struct {
	StudentName string
	School      string
	Standard    string
	Subjects    []Subject
	GeneratedAt time.Time
}

// RenderPDF produces the career guidance report document.
func RenderPDF(in Input) ([]byte, error) {
	if len(in.Subjects) == 0 {
		return nil, fmt.Errorf("report requires at least one subject")
	}
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = time.Now().UTC()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "CAREER GUIDANCE REPORT", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Student: %s", in.StudentName), "", 1, "", false, 0, "")
	if in.School != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("School: %s", in.School), "", 1, "", false, 0, "")
	}
	if in.Standard != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Standard: %s", in.Standard), "", 1, "", false, 0, "")
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", in.GeneratedAt.Format("2 Jan 2006 15:04 MST")), "", 1, "", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	headers := []string{"Subject", "Marks", "Total", "Percent"}
	colWidth := 190.0 / float64(len(headers))
	for _, header := range headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	var obtainedSum, totalSum int
	for _, subject := range in.Subjects {
		obtainedSum += subject.Obtained
		totalSum += subject.Total
		pdf.CellFormat(colWidth, 7, subject.Name, "1", 0, "", false, 0, "")
		pdf.CellFormat(colWidth, 7, fmt.Sprintf("%d", subject.Obtained), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidth, 7, fmt.Sprintf("%d", subject.Total), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidth, 7, fmt.Sprintf("%.1f%%", percent(subject.Obtained, subject.Total)), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(5)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("Overall: %.1f%%", percent(obtainedSum, totalSum)), "", 1, "", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.MultiCell(0, 5, guidanceFor(percent(obtainedSum, totalSum), strongest(in.Subjects)), "", "", false)

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func percent(obtained, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(obtained) / float64(total) * 100
}

func strongest(subjects []Subject) string {
	best := subjects[0]
	bestPct := percent(best.Obtained, best.Total)
	for _, s := range subjects[1:] {
		if p := percent(s.Obtained, s.Total); p > bestPct {
			best, bestPct = s, p
		}
	}
	return best.Name
}

func guidanceFor(overall float64, strongestSubject string) string {
	switch {
	case overall >= 85:
		return fmt.Sprintf("Outstanding academic profile. %s stands out as the strongest subject; consider advanced tracks and competitive programmes that build on it.", strongestSubject)
	case overall >= 60:
		return fmt.Sprintf("Solid academic profile with clear strengths in %s. Explore career paths that combine this strength with stated interests.", strongestSubject)
	default:
		return fmt.Sprintf("There is room to grow overall, but %s shows promise. Focused practice and mentoring in weaker subjects will widen career options.", strongestSubject)
	}
}
