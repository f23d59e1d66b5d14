package forecast

import "errors"

// ErrMalformedInput marks spreadsheet content the normalizer cannot accept:
// a missing header marker, a location with the wrong number of forecast
// days, or a date label without a recognizable date token. Callers match it
// with errors.Is.
var ErrMalformedInput = errors.New("forecast: malformed input")
