package forecast

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// LoadSheet reads one worksheet into a row-major grid of display strings.
// An empty sheet name selects the first worksheet. Rows are ragged: excelize
// trims trailing empty cells, so consumers index through cellAt.
func LoadSheet(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// cellAt returns the trimmed-nothing cell value, tolerating ragged rows.
func cellAt(grid [][]string, row, col int) string {
	if row < 0 || row >= len(grid) {
		return ""
	}
	r := grid[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}
