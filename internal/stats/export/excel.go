package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExcelExporter builds multi-sheet statistics workbooks.
type ExcelExporter struct {
	file    *excelize.File
	options ExcelOptions
	sheets  int
}

// ExcelOptions configures workbook styling.
type ExcelOptions struct {
	FreezeHeader    bool
	AutoFilter      bool
	HeaderFillColor string
	HeaderFontColor string
}

// DefaultExcelOptions returns the standard workbook styling.
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		FreezeHeader:    true,
		AutoFilter:      true,
		HeaderFillColor: "4472C4",
		HeaderFontColor: "FFFFFF",
	}
}

// NewExcelExporter creates an empty workbook.
func NewExcelExporter(options ExcelOptions) *ExcelExporter {
	return &ExcelExporter{file: excelize.NewFile(), options: options}
}

// AddSheet appends a sheet with a styled header row and the given data rows.
// The first sheet replaces the workbook's default sheet.
func (e *ExcelExporter) AddSheet(name string, columns []string, rows []map[string]interface{}) error {
	if e.sheets == 0 {
		e.file.SetSheetName("Sheet1", name)
	} else {
		if _, err := e.file.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet: %w", err)
		}
	}
	e.sheets++

	headerStyle, err := e.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: e.options.HeaderFontColor},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{e.options.HeaderFillColor}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := e.file.SetCellValue(name, cell, col); err != nil {
			return fmt.Errorf("failed to write header cell: %w", err)
		}
		e.file.SetCellStyle(name, cell, cell, headerStyle)
	}

	widths := make([]float64, len(columns))
	for i, col := range columns {
		widths[i] = float64(len(col)) * 1.2
	}

	for rowIdx, row := range rows {
		for colIdx, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			val := row[col]
			if err := e.file.SetCellValue(name, cell, val); err != nil {
				return fmt.Errorf("failed to write cell: %w", err)
			}
			if w := float64(len(fmt.Sprintf("%v", val))) * 1.2; w > widths[colIdx] {
				widths[colIdx] = w
			}
		}
	}

	for i, width := range widths {
		if width < 10 {
			width = 10
		}
		if width > 50 {
			width = 50
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		e.file.SetColWidth(name, col, col, width)
	}

	if e.options.FreezeHeader {
		e.file.SetPanes(name, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}

	if e.options.AutoFilter && len(rows) > 0 {
		lastCol, _ := excelize.CoordinatesToCellName(len(columns), 1)
		e.file.AutoFilter(name, "A1:"+lastCol, nil)
	}

	return nil
}

// WriteTo writes the workbook to a writer.
func (e *ExcelExporter) WriteTo(w io.Writer) error {
	return e.file.Write(w)
}

// Close closes the workbook.
func (e *ExcelExporter) Close() error {
	return e.file.Close()
}
