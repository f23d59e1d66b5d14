package forecast

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// DaysPerLocation is the number of forecast days each location must carry;
// the deck table downstream has exactly this many rows.
const DaysPerLocation = 10

// Record is one (location, date) pair produced by Normalize.
type Record struct {
	Location  string
	DateLabel string // composite "Ngày dd/mm/yyyy (Thứ N)" label
	Weather   string
	HighTemp  string
	LowTemp   string
	Rainfall  float64
	Humidity  int
}

// Options configures the normalizer. Zero values fall back to the layout of
// the production forecast sheet.
type Options struct {
	// MarkerLabel is the header cell that anchors the layout. Matching
	// trims whitespace and ignores case.
	MarkerLabel string

	// WeekdayRenames maps raw weekday headers to their canonical short
	// forms before date compositing.
	WeekdayRenames map[string]string

	// DateLayouts are tried in order against the date row below the
	// header. Excel date cells surface as display strings, so the set is
	// configurable rather than fixed.
	DateLayouts []string

	// DisplayLayout formats composited date labels. The default carries a
	// four-digit year so the period extractor can read it back.
	DisplayLayout string

	// Attribute row labels, matched after the secondary-column merge.
	WeatherLabel  string
	HighLabel     string
	LowLabel      string
	RainLabel     string
	HumidityLabel string

	// ExpectedDays overrides DaysPerLocation.
	ExpectedDays int

	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.MarkerLabel == "" {
		o.MarkerLabel = "Điểm dự báo"
	}
	if o.WeekdayRenames == nil {
		o.WeekdayRenames = map[string]string{
			"Thứ hai": "Thứ 2",
			"Thứ ba":  "Thứ 3",
			"Thứ tư":  "Thứ 4",
			"Thứ năm": "Thứ 5",
			"Thứ sáu": "Thứ 6",
			"Thứ bảy": "Thứ 7",
		}
	}
	if len(o.DateLayouts) == 0 {
		o.DateLayouts = []string{
			"2006-01-02 15:04:05",
			"2006-01-02",
			"01-02-06",
			"1/2/06 15:04",
			"02/01/2006",
		}
	}
	if o.DisplayLayout == "" {
		o.DisplayLayout = "02/01/2006"
	}
	if o.WeatherLabel == "" {
		o.WeatherLabel = "Thời tiết"
	}
	if o.HighLabel == "" {
		o.HighLabel = "Nhiệt độ (°C)_Cao nhất"
	}
	if o.LowLabel == "" {
		o.LowLabel = "Nhiệt độ (°C)_Thấp nhất"
	}
	if o.RainLabel == "" {
		o.RainLabel = "Lượng mưa (mm)"
	}
	if o.HumidityLabel == "" {
		o.HumidityLabel = "Độ ẩm tương đối TB(%)"
	}
	if o.ExpectedDays == 0 {
		o.ExpectedDays = DaysPerLocation
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Normalize turns the raw, irregular sheet grid into one Record per
// (location, date): it locates the header via the marker label, cleans
// columns, composites date headers, forward-fills grouped cells, merges the
// secondary descriptive column, and pivots date columns into rows.
func Normalize(grid [][]string, opts Options) ([]Record, error) {
	opts = opts.withDefaults()

	headerRow, _, ok := findMarker(grid, opts.MarkerLabel)
	if !ok {
		return nil, fmt.Errorf("%w: header marker %q not found", ErrMalformedInput, opts.MarkerLabel)
	}

	cols := keepColumns(grid, headerRow)
	headers := make([]string, len(cols))
	for i, c := range cols {
		h := strings.TrimSpace(cellAt(grid, headerRow, c))
		if canonical, ok := opts.WeekdayRenames[h]; ok {
			h = canonical
		}
		headers[i] = h
	}

	// The row under the header carries the dates; composite them into the
	// headers and drop the row.
	dateRow := headerRow + 1
	isDateCol := make([]bool, len(cols))
	for i, c := range cols {
		raw := strings.TrimSpace(cellAt(grid, dateRow, c))
		if raw == "" {
			continue
		}
		t, ok := parseDate(raw, opts.DateLayouts)
		if !ok {
			continue
		}
		headers[i] = fmt.Sprintf("Ngày %s (%s)", t.Format(opts.DisplayLayout), headers[i])
		isDateCol[i] = true
	}

	rows := dataRows(grid, dateRow+1, cols)

	// Forward-fill the location and attribute-label columns; merged sheet
	// cells only populate the first row of each group.
	forwardFill(rows, 0)
	forwardFill(rows, 1)

	// Merge the secondary descriptive column into the attribute label.
	if len(cols) > 2 && !isDateCol[2] {
		for _, row := range rows {
			if row[2] != "" {
				row[1] = row[1] + "_" + row[2]
			}
		}
	}

	var dateIdx []int
	for i := range cols {
		if isDateCol[i] {
			dateIdx = append(dateIdx, i)
		}
	}

	return pivot(rows, headers, dateIdx, opts)
}

// findMarker scans every cell for the marker label, trimmed and
// case-folded.
func findMarker(grid [][]string, marker string) (row, col int, ok bool) {
	want := strings.ToLower(strings.TrimSpace(marker))
	for r := range grid {
		for c := range grid[r] {
			if strings.ToLower(strings.TrimSpace(grid[r][c])) == want {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// keepColumns selects the column indexes to retain: every column with a
// non-blank header, plus the first blank-headed column (a merge artifact
// that continues the date/weekday header).
func keepColumns(grid [][]string, headerRow int) []int {
	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}

	var cols []int
	blankKept := false
	for c := 0; c < width; c++ {
		if strings.TrimSpace(cellAt(grid, headerRow, c)) != "" {
			cols = append(cols, c)
			continue
		}
		if !blankKept {
			cols = append(cols, c)
			blankKept = true
		}
	}
	return cols
}

// dataRows projects the kept columns for every data row, dropping
// whitespace-only rows and the final (signature) row.
func dataRows(grid [][]string, start int, cols []int) [][]string {
	var rows [][]string
	for r := start; r < len(grid); r++ {
		row := make([]string, len(cols))
		blank := true
		for i, c := range cols {
			v := strings.TrimSpace(cellAt(grid, r, c))
			row[i] = v
			if v != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) > 0 {
		rows = rows[:len(rows)-1] // signature row, always discarded
	}
	return rows
}

func forwardFill(rows [][]string, col int) {
	last := ""
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		if row[col] == "" {
			row[col] = last
		} else {
			last = row[col]
		}
	}
}

// pivot groups rows by location in first-seen order and transposes the
// date columns into one Record per (location, date).
func pivot(rows [][]string, headers []string, dateIdx []int, opts Options) ([]Record, error) {
	var order []string
	groups := make(map[string][][]string)
	for _, row := range rows {
		loc := row[0]
		if _, ok := groups[loc]; !ok {
			order = append(order, loc)
		}
		groups[loc] = append(groups[loc], row)
	}

	var out []Record
	for _, loc := range order {
		attrs := make(map[string][]string)
		for _, row := range groups[loc] {
			values := make([]string, len(dateIdx))
			for i, c := range dateIdx {
				values[i] = row[c]
			}
			attrs[row[1]] = values
		}

		if len(dateIdx) != opts.ExpectedDays {
			return nil, fmt.Errorf("%w: location %q yields %d forecast days, want %d",
				ErrMalformedInput, loc, len(dateIdx), opts.ExpectedDays)
		}

		for i, c := range dateIdx {
			out = append(out, Record{
				Location:  loc,
				DateLabel: headers[c],
				Weather:   attrValue(attrs, opts.WeatherLabel, i),
				HighTemp:  attrValue(attrs, opts.HighLabel, i),
				LowTemp:   attrValue(attrs, opts.LowLabel, i),
				Rainfall:  tolerantFloat(attrValue(attrs, opts.RainLabel, i), loc, opts),
				Humidity:  tolerantInt(attrValue(attrs, opts.HumidityLabel, i), loc, opts),
			})
		}
	}
	return out, nil
}

func attrValue(attrs map[string][]string, label string, i int) string {
	values, ok := attrs[label]
	if !ok || i >= len(values) {
		return ""
	}
	return values[i]
}

// tolerantFloat and tolerantInt substitute zero for dirty numeric source
// data instead of failing the row; strict callers must pre-validate.
func tolerantFloat(s, loc string, opts Options) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		opts.Logger.Warn("unparseable numeric field, using zero", "location", loc, "value", s)
		return 0
	}
	return v
}

func tolerantInt(s, loc string, opts Options) int {
	return int(tolerantFloat(s, loc, opts))
}

func parseDate(s string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
