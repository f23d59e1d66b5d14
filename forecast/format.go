package forecast

import (
	"strconv"
	"strings"
)

// Row is the deck-ready projection of a Record: two-line cell strings for
// the date+weather column and the temperature column.
type Row struct {
	Location    string
	DateWeather string // "<date label>\n<weather text>"
	TempRange   string // "<high>°C\n<low>°C"
}

// Format composes deck cell strings from normalized records. Temperatures
// are coerced to numbers first, with unparseable values becoming zero, so a
// dirty cell degrades one value instead of failing the sheet.
func Format(records []Record) []Row {
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = Row{
			Location:    rec.Location,
			DateWeather: rec.DateLabel + "\n" + rec.Weather,
			TempRange:   formatTemp(rec.HighTemp) + "°C\n" + formatTemp(rec.LowTemp) + "°C",
		}
	}
	return rows
}

func formatTemp(s string) string {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Blocks splits formatted rows into per-location blocks, preserving the
// rows' first-seen location order.
func Blocks(rows []Row) (order []string, blocks map[string][]Row) {
	blocks = make(map[string][]Row)
	for _, row := range rows {
		if _, ok := blocks[row.Location]; !ok {
			order = append(order, row.Location)
		}
		blocks[row.Location] = append(blocks[row.Location], row)
	}
	return order, blocks
}
