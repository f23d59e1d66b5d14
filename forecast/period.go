package forecast

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultDateTokenPattern matches the dd/mm/yyyy token inside a composite
// date label. The capture group is what gets extracted. The literal shape
// of this token has varied between sheet revisions, so it is a parameter
// rather than a constant (see ExtractPeriodPattern).
var DefaultDateTokenPattern = regexp.MustCompile(`(\d{2}/\d{2}/\d{4})`)

// ExtractPeriod derives the human-readable date range covered by a
// location's forecast block from its first and last rows.
func ExtractPeriod(block []Row) (string, error) {
	return ExtractPeriodPattern(block, DefaultDateTokenPattern)
}

// ExtractPeriodPattern is ExtractPeriod with a caller-supplied date token
// pattern. The first and last of the block's DaysPerLocation rows must each
// contain a token; day and month are stripped of zero padding, and when
// both dates fall in the same month the range collapses to a single month
// mention. The year always comes from the end date.
func ExtractPeriodPattern(block []Row, pattern *regexp.Regexp) (string, error) {
	if len(block) < DaysPerLocation {
		return "", fmt.Errorf("%w: period needs %d rows, got %d", ErrMalformedInput, DaysPerLocation, len(block))
	}

	start, err := dateToken(block[0].DateWeather, pattern)
	if err != nil {
		return "", err
	}
	end, err := dateToken(block[DaysPerLocation-1].DateWeather, pattern)
	if err != nil {
		return "", err
	}

	if start.month == end.month {
		return fmt.Sprintf("Từ ngày %s - %s tháng %s năm %s", start.day, end.day, start.month, end.year), nil
	}
	return fmt.Sprintf("Từ ngày %s/%s - %s/%s năm %s", start.day, start.month, end.day, end.month, end.year), nil
}

type dateParts struct {
	day, month, year string
}

func dateToken(label string, pattern *regexp.Regexp) (dateParts, error) {
	m := pattern.FindStringSubmatch(label)
	if len(m) < 2 {
		return dateParts{}, fmt.Errorf("%w: no date token in label %q", ErrMalformedInput, label)
	}

	fields := strings.Split(m[1], "/")
	if len(fields) < 2 {
		return dateParts{}, fmt.Errorf("%w: unusable date token %q", ErrMalformedInput, m[1])
	}

	parts := dateParts{
		day:   stripZeros(fields[0]),
		month: stripZeros(fields[1]),
	}
	if len(fields) > 2 {
		parts.year = fields[2]
	}
	return parts, nil
}

func stripZeros(s string) string {
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}
