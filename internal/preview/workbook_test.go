package preview

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook builds a two-sheet workbook on disk.
func writeWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Summary"))
	require.NoError(t, f.SetCellValue("Summary", "A1", "Region"))
	require.NoError(t, f.SetCellValue("Summary", "B1", "Total"))
	require.NoError(t, f.SetCellValue("Summary", "A2", "EMEA"))
	require.NoError(t, f.SetCellValue("Summary", "B2", 1200))

	_, err := f.NewSheet("Detail")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Detail", "A1", "line item"))

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))

	return path
}

func TestOpenWorkbookSheets(t *testing.T) {
	wb, err := OpenWorkbook(writeWorkbook(t))
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"Summary", "Detail"}, wb.Sheets())
	assert.Equal(t, "Summary", wb.DefaultSheet())
}

func TestWorkbookGridPerSheet(t *testing.T) {
	// Switching sheets re-derives the grid from the already-parsed file.
	wb, err := OpenWorkbook(writeWorkbook(t))
	require.NoError(t, err)
	defer wb.Close()

	grid, err := wb.Grid("Summary")
	require.NoError(t, err)
	require.Len(t, grid, 2)
	assert.Equal(t, []string{"Region", "Total"}, grid[0])
	assert.Equal(t, "EMEA", grid[1][0])

	grid, err = wb.Grid("Detail")
	require.NoError(t, err)
	require.Len(t, grid, 1)
	assert.Equal(t, "line item", grid[0][0])
}

func TestWorkbookGridUnknownSheet(t *testing.T) {
	wb, err := OpenWorkbook(writeWorkbook(t))
	require.NoError(t, err)
	defer wb.Close()

	_, err = wb.Grid("Nope")
	assert.Error(t, err)
}

func TestOpenWorkbookCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o600))

	_, err := OpenWorkbook(path)
	assert.Error(t, err)
}
