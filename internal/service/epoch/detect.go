// Package epoch detects the unit of numeric timestamps and converts
// between epoch values and calendar time.
package epoch

import (
	"math"
	"strconv"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
)

const (
	FormatSeconds      = "seconds"
	FormatMilliseconds = "milliseconds"
	FormatMicroseconds = "microseconds"
	FormatNanoseconds  = "nanoseconds"
	FormatUnknown      = "unknown"
)

const (
	maxSeconds = 4_102_444_800     // 2100-01-01T00:00:00Z
	maxMillis  = 4_102_444_800_000 // 2100-01-01T00:00:00Z
	minSeconds = 1_000_000_000
	minMillis  = 1_000_000_000_000
)

var candidates = map[string]model.TimestampCandidate{
	FormatSeconds:      {Format: FormatSeconds, DisplayName: "Unix Timestamp (seconds)", Multiplier: 1000},
	FormatMilliseconds: {Format: FormatMilliseconds, DisplayName: "JavaScript Timestamp (milliseconds)", Multiplier: 1},
	FormatMicroseconds: {Format: FormatMicroseconds, DisplayName: "Microseconds Timestamp", Multiplier: 0.001},
	FormatNanoseconds:  {Format: FormatNanoseconds, DisplayName: "Nanoseconds Timestamp", Multiplier: 0.000001},
	FormatUnknown: {
		Format:      FormatUnknown,
		DisplayName: "Unknown Format (treating as seconds)",
		Multiplier:  1000,
		Warning:     "Could not detect timestamp format. Treating as Unix seconds.",
	},
}

// Detect picks the most plausible unit for a string of decimal digits.
// Digit count decides first, with range checks for seconds and
// milliseconds; values that fit no bucket fall back to range-only
// guesses and finally to seconds with a warning.
func Detect(digits string) model.TimestampCandidate {
	n := len(digits)
	v, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		v = math.MaxUint64
	}

	format := FormatUnknown
	switch {
	case n <= 10 && v <= maxSeconds:
		format = FormatSeconds
	case n >= 11 && n <= 13 && v <= maxMillis:
		format = FormatMilliseconds
	case n >= 14 && n <= 16:
		format = FormatMicroseconds
	case n >= 17 && n <= 19:
		format = FormatNanoseconds
	case v >= minSeconds && v <= maxSeconds:
		format = FormatSeconds
	case v >= minMillis && v <= maxMillis:
		format = FormatMilliseconds
	}

	c := candidates[format]
	c.Digits = digits
	return c
}
