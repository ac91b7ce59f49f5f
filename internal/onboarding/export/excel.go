package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExcelExporter builds a multi-sheet onboarding workbook
type ExcelExporter struct {
	file        *excelize.File
	headerStyle int
	firstSheet  bool
}

// NewExcelExporter creates an Excel exporter with a bold, filled header
// style shared by all sheets.
func NewExcelExporter() (*ExcelExporter, error) {
	file := excelize.NewFile()
	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	return &ExcelExporter{file: file, headerStyle: headerStyle, firstSheet: true}, nil
}

// AddSheet writes one sheet with a styled, frozen header row
func (e *ExcelExporter) AddSheet(name string, columns []string, rows []map[string]interface{}) error {
	if e.firstSheet {
		// excelize workbooks always start with Sheet1; rename instead of adding.
		if err := e.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("failed to rename sheet: %w", err)
		}
		e.firstSheet = false
	} else if _, err := e.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := e.file.SetCellValue(name, cell, col); err != nil {
			return fmt.Errorf("failed to write header cell: %w", err)
		}
		e.file.SetCellStyle(name, cell, cell, e.headerStyle)
	}
	e.file.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	for rowIdx, row := range rows {
		for colIdx, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := e.file.SetCellValue(name, cell, formatTime(row[col])); err != nil {
				return fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	if len(rows) > 0 {
		lastCol, _ := excelize.ColumnNumberToName(len(columns))
		e.file.AutoFilter(name, fmt.Sprintf("A1:%s1", lastCol), nil)
	}
	return nil
}

// WriteTo writes the workbook to w
func (e *ExcelExporter) WriteTo(w io.Writer) error {
	return e.file.Write(w)
}

// Close releases the workbook resources
func (e *ExcelExporter) Close() error {
	return e.file.Close()
}
