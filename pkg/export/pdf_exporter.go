package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// BoardEntry is one notice block on the printable board.
type BoardEntry struct {
	Title    string
	Meta     string
	Content  string
	Urgent   bool
	PostedAt time.Time
}

// Board is the printable snapshot of the noticeboard.
type Board struct {
	Title       string
	GeneratedAt time.Time
	Entries     []BoardEntry
}

// PDFExporter renders a board snapshot into a printable PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates an A4 document with a header and one block per notice.
// Urgent notices get a bold red title so they stand out on the printed page.
func (e *PDFExporter) Render(board Board) ([]byte, error) {
	if len(board.Entries) == 0 {
		return nil, fmt.Errorf("pdf requires at least one notice")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	title := board.Title
	if title == "" {
		title = "Noticeboard"
	}
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, "Generated "+board.GeneratedAt.Format("2 Jan 2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, entry := range board.Entries {
		if entry.Urgent {
			pdf.SetTextColor(180, 0, 0)
			pdf.SetFont("Arial", "B", 12)
		} else {
			pdf.SetTextColor(0, 0, 0)
			pdf.SetFont("Arial", "B", 12)
		}
		pdf.MultiCell(0, 7, entry.Title, "", "L", false)
		pdf.SetTextColor(80, 80, 80)
		pdf.SetFont("Arial", "I", 8)
		meta := entry.Meta
		if !entry.PostedAt.IsZero() {
			meta = meta + "  " + entry.PostedAt.Format("2 Jan 2006")
		}
		pdf.MultiCell(0, 5, strings.TrimSpace(meta), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, entry.Content, "", "L", false)
		pdf.Ln(3)
		pdf.SetDrawColor(200, 200, 200)
		x, y := pdf.GetXY()
		pdf.Line(10, y, 200, y)
		pdf.SetXY(x, y+3)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
