package preview

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Workbook is a parsed spreadsheet. The workbook structure is parsed once;
// switching sheets re-derives the grid from the parsed file with no further
// I/O against the source.
type Workbook struct {
	file   *excelize.File
	sheets []string
}

// OpenWorkbook parses the workbook at path and exposes its sheet names.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("preview: opening workbook: %w", err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("preview: workbook has no sheets")
	}

	return &Workbook{file: f, sheets: sheets}, nil
}

// Sheets returns all sheet names in workbook order.
func (w *Workbook) Sheets() []string {
	return w.sheets
}

// DefaultSheet returns the sheet rendered when none is selected.
func (w *Workbook) DefaultSheet() string {
	return w.sheets[0]
}

// Grid returns the cell matrix for one sheet. Rows may have ragged lengths,
// mirroring the sparse storage of the underlying format.
func (w *Workbook) Grid(sheet string) ([][]string, error) {
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("preview: reading sheet %q: %w", sheet, err)
	}

	return rows, nil
}

// Close releases the parsed workbook.
func (w *Workbook) Close() error {
	return w.file.Close()
}
