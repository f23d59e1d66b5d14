package deckassert

import (
	"os"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

// ForecastGrid builds a raw sheet grid in the production layout: marker
// header row, date row, five attribute rows per location with merged cells
// left blank, and a trailing signature row. Dates run ten days from
// 2025-06-30.
func ForecastGrid(locations ...string) [][]string {
	weekdays := []string{
		"Thứ hai", "Thứ ba", "Thứ tư", "Thứ năm", "Thứ sáu",
		"Thứ bảy", "Chủ nhật", "Thứ hai", "Thứ ba", "Thứ tư",
	}
	start := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	header := []string{"Điểm dự báo", "Yếu tố", ""}
	dates := []string{"", "", ""}
	for i := 0; i < 10; i++ {
		header = append(header, weekdays[i])
		dates = append(dates, start.AddDate(0, 0, i).Format("2006-01-02 15:04:05"))
	}

	grid := [][]string{header, dates}
	for _, loc := range locations {
		rows := [][]string{
			{loc, "Thời tiết", ""},
			{"", "Nhiệt độ (°C)", "Cao nhất"},
			{"", "", "Thấp nhất"},
			{"", "Lượng mưa (mm)", ""},
			{"", "Độ ẩm tương đối TB(%)", ""},
		}
		for i := 0; i < 10; i++ {
			rows[0] = append(rows[0], "Ngày nắng, mây thay đổi, không mưa")
			rows[1] = append(rows[1], "35")
			rows[2] = append(rows[2], "26")
			rows[3] = append(rows[3], "0")
			rows[4] = append(rows[4], "80")
		}
		grid = append(grid, rows...)
	}
	return append(grid, []string{"", "", "", "Dự báo viên: Trần Văn B"})
}

// WorkbookBytes renders a grid into xlsx bytes, one cell per non-empty
// grid value.
func WorkbookBytes(t *testing.T, grid [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for r, row := range grid {
		for c, v := range row {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("cell name (%d,%d): %v", r, c, err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell %s: %v", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("render workbook: %v", err)
	}
	return buf.Bytes()
}

// WriteWorkbook writes a grid as an xlsx file at path.
func WriteWorkbook(t *testing.T, path string, grid [][]string) {
	t.Helper()
	if err := os.WriteFile(path, WorkbookBytes(t, grid), 0o644); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
}
