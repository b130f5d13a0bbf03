package economy

import (
	"math"
	"strconv"
)

var compactSuffixes = []struct {
	value  float64
	suffix string
}{
	{1e18, "Q"},
	{1e15, "P"},
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "k"},
}

// FormatCompact renders v with the largest fitting suffix, floored to two
// decimals: 1500 -> "1.5k", 1234567 -> "1.23M", 999.999 -> "999.99".
func FormatCompact(v float64) string {
	if math.IsNaN(v) || v <= 0 {
		return "0"
	}
	if math.IsInf(v, 1) {
		return "∞"
	}
	for _, s := range compactSuffixes {
		if v >= s.value {
			return formatFloor2(v/s.value) + s.suffix
		}
	}
	return formatFloor2(v)
}

func formatFloor2(v float64) string {
	// the epsilon keeps 1.15*100 from flooring to 114
	floored := math.Floor(v*100+1e-9) / 100
	return strconv.FormatFloat(floored, 'f', -1, 64)
}
