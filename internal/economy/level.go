package economy

import (
	"fmt"
	"math"
	"sort"
)

// DefaultThresholds is the cumulative coin table for levels 1..10.
var DefaultThresholds = []float64{
	0,
	5_000,
	50_000,
	300_000,
	1_000_000,
	5_000_000,
	25_000_000,
	100_000_000,
	500_000_000,
	1_000_000_000,
}

// LevelCurve maps a coin balance to a level using an ascending threshold
// table. Past the last threshold every further span of T[N-1] coins adds
// one level.
type LevelCurve struct {
	thresholds []float64
}

// NewLevelCurve validates the table: T[0] == 0, strictly ascending, and
// T[N-1] > 0.
func NewLevelCurve(thresholds []float64) (LevelCurve, error) {
	if len(thresholds) < 2 {
		return LevelCurve{}, fmt.Errorf("%w: need at least two thresholds", ErrInvalidThresholds)
	}
	if thresholds[0] != 0 {
		return LevelCurve{}, fmt.Errorf("%w: first threshold must be 0", ErrInvalidThresholds)
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			return LevelCurve{}, fmt.Errorf("%w: threshold %d is not ascending", ErrInvalidThresholds, i)
		}
	}
	t := make([]float64, len(thresholds))
	copy(t, thresholds)
	return LevelCurve{thresholds: t}, nil
}

// MustLevelCurve is NewLevelCurve for static tables.
func MustLevelCurve(thresholds []float64) LevelCurve {
	c, err := NewLevelCurve(thresholds)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of thresholds N.
func (c LevelCurve) Len() int {
	return len(c.thresholds)
}

// Level returns the 1-based level for coins.
func (c LevelCurve) Level(coins float64) int {
	if coins < 0 || math.IsNaN(coins) {
		coins = 0
	}
	n := len(c.thresholds)
	last := c.thresholds[n-1]
	if coins < last {
		return sort.Search(n, func(i int) bool { return coins < c.thresholds[i] })
	}
	extra := math.Floor((coins - last) / last)
	if extra >= float64(math.MaxInt-n) {
		return math.MaxInt
	}
	return n + int(extra)
}

// NextLevelRequirement returns the cumulative coins needed to leave level.
func (c LevelCurve) NextLevelRequirement(level int) float64 {
	if level < 1 {
		level = 1
	}
	n := len(c.thresholds)
	if level < n {
		return c.thresholds[level]
	}
	return c.thresholds[n-1] * float64(level-n+2)
}
