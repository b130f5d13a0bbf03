package economy

import "math"

// Growth factors applied per owned level.
const (
	RegularGrowth = 2.0
	PremiumGrowth = 5.0
)

// Price is the cost of buying the next level of an item currently at level:
// basePrice * growth^(level-1).
func Price(basePrice float64, level int, growth float64) float64 {
	if level < 1 {
		level = 1
	}
	return basePrice * math.Pow(growth, float64(level-1))
}
