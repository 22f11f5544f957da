package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFGenerator renders schedule and statistics tables as PDF documents.
type PDFGenerator struct {
	pdf     *gofpdf.Fpdf
	options PDFOptions
}

// PDFOptions configures PDF layout.
type PDFOptions struct {
	Title          string
	Subtitle       string
	Orientation    string // portrait or landscape
	FontFamily     string
	FontSize       float64
	TitleFontSize  float64
	AlternateRows  bool
	IncludeDate    bool
}

// DefaultPDFOptions returns the standard document layout.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		Title:         "Report",
		Orientation:   "portrait",
		FontFamily:    "Arial",
		FontSize:      10,
		TitleFontSize: 16,
		AlternateRows: true,
		IncludeDate:   true,
	}
}

// NewPDFGenerator creates a generator for one document.
func NewPDFGenerator(options PDFOptions) *PDFGenerator {
	orientation := "P"
	if options.Orientation == "landscape" {
		orientation = "L"
	}

	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)

	return &PDFGenerator{pdf: pdf, options: options}
}

// GenerateReport lays out a title block followed by a data table. Columns name
// the row map keys, labels are the printed header captions.
func (g *PDFGenerator) GenerateReport(columns []string, labels []string, rows []map[string]interface{}) error {
	g.pdf.AddPage()

	g.pdf.SetFont(g.options.FontFamily, "B", g.options.TitleFontSize)
	g.pdf.SetTextColor(0, 0, 0)
	g.pdf.CellFormat(0, 10, g.options.Title, "", 1, "C", false, 0, "")

	if g.options.Subtitle != "" {
		g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize+2)
		g.pdf.SetTextColor(100, 100, 100)
		g.pdf.CellFormat(0, 8, g.options.Subtitle, "", 1, "C", false, 0, "")
	}

	if g.options.IncludeDate {
		g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize-1)
		g.pdf.SetTextColor(128, 128, 128)
		g.pdf.CellFormat(0, 6, "Generated: "+time.Now().Format("2006-01-02"), "", 1, "R", false, 0, "")
	}

	g.pdf.Ln(6)

	pageWidth, _ := g.pdf.GetPageSize()
	colWidth := (pageWidth - 30) / float64(len(columns))

	g.pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize)
	g.pdf.SetFillColor(68, 114, 196)
	g.pdf.SetTextColor(255, 255, 255)
	for _, label := range labels {
		g.pdf.CellFormat(colWidth, 8, label, "1", 0, "C", true, 0, "")
	}
	g.pdf.Ln(-1)

	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
	g.pdf.SetTextColor(0, 0, 0)
	for i, row := range rows {
		fill := g.options.AlternateRows && i%2 == 1
		if fill {
			g.pdf.SetFillColor(242, 242, 242)
		}
		for _, col := range columns {
			g.pdf.CellFormat(colWidth, 7, formatValue(row[col]), "1", 0, "L", fill, 0, "")
		}
		g.pdf.Ln(-1)
	}

	if g.pdf.Err() {
		return fmt.Errorf("failed to render pdf: %w", g.pdf.Error())
	}
	return nil
}

// WriteTo writes the finished document to a writer.
func (g *PDFGenerator) WriteTo(w io.Writer) error {
	return g.pdf.Output(w)
}

func formatValue(val interface{}) string {
	if val == nil {
		return ""
	}
	switch v := val.(type) {
	case time.Time:
		return v.Format("2006-01-02 15:04")
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
