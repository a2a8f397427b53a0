package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/ghoststack-shark/Katie-team-notetaker-backend/internal/domain"
)

type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// GeneratePDF renders a normalized transcript into a printable document.
func (s *PDFService) GeneratePDF(meeting domain.Meeting, transcript, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure pdf directory: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Meeting %s", meeting.MeetingID), false)
	pdf.SetAuthor("Katie Notetaker", false)
	pdf.AddPage()

	title := meeting.Subject
	if strings.TrimSpace(title) == "" {
		title = meeting.MeetingID
	}

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 6, fmt.Sprintf("Meeting ID: %s", meeting.MeetingID))
	pdf.Ln(6)

	if meeting.JoinTS != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Joined: %s", meeting.JoinTS))
		pdf.Ln(6)
	}
	if meeting.LeaveTS != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Left: %s", meeting.LeaveTS))
		pdf.Ln(6)
	}

	createdAt := time.Unix(meeting.CreatedAt, 0).Local()
	pdf.Cell(0, 6, fmt.Sprintf("Exported: %s (record created %s)",
		time.Now().Local().Format("02/01/2006 15:04"),
		createdAt.Format("02/01/2006 15:04")))
	pdf.Ln(12)

	s.writeTranscript(pdf, transcript)

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}

	return nil
}

func (s *PDFService) writeTranscript(pdf *gofpdf.Fpdf, transcript string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "Transcript")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)

	content := strings.TrimSpace(transcript)
	if content == "" {
		pdf.MultiCell(0, 6, "(empty)", "", "L", false)
		return
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pdf.MultiCell(0, 6, line, "", "L", false)
	}
}
