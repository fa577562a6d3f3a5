package geo

import (
	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
)

// DOUGLAS_PEUCKER_THRESHOLDS is the default simplification tolerance in meters.
const DOUGLAS_PEUCKER_THRESHOLDS = 7.0

// RamerDouglasPeucker drops every point closer than threshold meters to the chord of its kept neighbours.
// Endpoints are always kept and the result keeps the input order.
func RamerDouglasPeucker(coords []datastructure.Coordinate, threshold float64) []datastructure.Coordinate {
	n := len(coords)
	if n < 3 {
		return coords
	}

	keep := make([]bool, n)
	keep[0], keep[n-1] = true, true

	// rentang [lo, hi] yang belum diperiksa
	spans := [][2]int{{0, n - 1}}
	for len(spans) > 0 {
		span := spans[len(spans)-1]
		spans = spans[:len(spans)-1]
		lo, hi := span[0], span[1]

		farthest, farthestDist := -1, threshold
		for i := lo + 1; i < hi; i++ {
			if d := PointLinePerpendicularDistance(coords[lo], coords[hi], coords[i]); d > farthestDist {
				farthest, farthestDist = i, d
			}
		}
		if farthest < 0 {
			continue
		}
		keep[farthest] = true
		spans = append(spans, [2]int{lo, farthest}, [2]int{farthest, hi})
	}

	out := make([]datastructure.Coordinate, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, coords[i])
		}
	}
	return out
}
