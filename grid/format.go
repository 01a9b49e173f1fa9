// Package grid fills a virtualized data grid one visible window at a time,
// keeping write-once semantics per logical row across re-renders.
package grid

import (
	"math"
	"strconv"
)

// FormatValue renders a numeric value the way the grid expects it typed:
// rounded to at most two decimals with trailing zeros trimmed, so 12.50
// becomes "12.5" and 10.00 becomes "10". The second return is false for
// values that must not be written at all (NaN, Inf, or below min).
func FormatValue(v, min float64) (string, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", false
	}
	r := math.Round(v*100) / 100
	if r < min {
		return "", false
	}
	return strconv.FormatFloat(r, 'f', -1, 64), true
}
