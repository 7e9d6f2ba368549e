// Package board composes a map's towers into the two presentations of the
// siege map: overlays on the map image and a flat list of cards.
package board

import (
	"math"
	"slices"
	"strconv"

	"siegemap/internal/domain"
)

func colorRank(c domain.Color) int {
	switch c.OrDefault() {
	case domain.ColorBlue:
		return 0
	case domain.ColorRed:
		return 1
	case domain.ColorYellow:
		return 2
	default:
		return 3
	}
}

// numberRank orders numbers numerically. Anything that is not a number sorts
// after them and "QG" sorts after everything.
func numberRank(n string) int {
	if n == domain.HQ {
		return math.MaxInt
	}
	v, err := strconv.Atoi(n)
	if err != nil {
		return math.MaxInt - 1
	}
	return v
}

// SortTowers returns towers ordered by color bucket (blue, red, yellow, then
// unknown colors) and then by tower number, "QG" last within its bucket. The
// input is not modified.
func SortTowers(towers []domain.Tower) []domain.Tower {
	out := slices.Clone(towers)
	slices.SortStableFunc(out, func(a, b domain.Tower) int {
		if d := colorRank(a.Color) - colorRank(b.Color); d != 0 {
			return d
		}
		ra, rb := numberRank(a.TowerNumber), numberRank(b.TowerNumber)
		switch {
		case ra < rb:
			return -1
		case ra > rb:
			return 1
		}
		return 0
	})
	return out
}
