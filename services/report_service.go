package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anasmostafa23/Safety-Hub/models"
	"github.com/anasmostafa23/Safety-Hub/utils"

	"github.com/jung-kurt/gofpdf"
)

// ReportRenderer produces the paginated audit report handed back to the
// engineer at completion. The document preserves category grouping and
// flattened question ordering.
type ReportRenderer interface {
	Render(fullName string, template *models.Template, answers map[int]string, siteID string) (string, error)
}

type reportService struct {
	outputDir string
}

// NewReportService creates a PDF report renderer writing into outputDir.
func NewReportService(outputDir string) ReportRenderer {
	return &reportService{outputDir: outputDir}
}

// Render writes an A3 PDF report and returns its file path. Unanswered
// flattened indices render as "N/A".
func (s *reportService) Render(fullName string, template *models.Template, answers map[int]string, siteID string) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory '%s': %w", s.outputDir, err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("audit_%s_%s.pdf", strings.ReplaceAll(fullName, " ", "_"), timestamp)
	path := filepath.Join(s.outputDir, filename)

	pdf := gofpdf.New("P", "cm", "A3", "")
	_, pageHeight := pdf.GetPageSize()
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	y := 2.0
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(2, y, "Site Risk Assessment Report")
	y += 1.0
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(2, y, fmt.Sprintf("Assessor: Eng. %s", fullName))
	y += 1.2
	pdf.Text(2, y, fmt.Sprintf("Site ID: %s", siteID))
	y += 1.2
	pdf.Text(2, y, fmt.Sprintf("Date: %s", utils.FormatTime(time.Now())))
	y += 1.2

	for _, fq := range template.FlatQuestions() {
		answer, ok := answers[fq.Index]
		if !ok {
			answer = "N/A"
		}

		if y >= pageHeight-2 {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "", 12)
			y = 2.0
		}

		pdf.SetFont("Helvetica", "B", 11)
		pdf.Text(2, y, fmt.Sprintf("%d. [%s] %s", fq.Index+1, fq.Category, fq.Question.QuestionEN))
		y += 0.6

		pdf.SetFont("Helvetica", "", 11)
		switch answer {
		case "Yes":
			pdf.SetTextColor(0, 128, 0)
		case "No":
			pdf.SetTextColor(200, 0, 0)
		default:
			pdf.SetTextColor(128, 128, 128)
		}
		pdf.Text(3, y, fmt.Sprintf("Response: %s", answer))
		pdf.SetTextColor(0, 0, 0)
		y += 1.0
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		log.Printf("ERROR: [ReportService] Failed to write PDF report '%s': %v", path, err)
		return "", fmt.Errorf("failed to write PDF report: %w", err)
	}
	log.Printf("INFO: [ReportService] Generated report '%s'.", path)
	return path, nil
}
