// Package matcher labels a query signature against the known-face registry.
package matcher

import (
	"math"

	"github.com/andresmejia3/facelens/internal/types"
)

// DefaultTolerance is the maximum distance still considered the same person
const DefaultTolerance = 0.6

// Result describes the outcome of a match
type Result struct {
	Name     string
	Index    int     // registry position of the winner, -1 when Unknown
	Distance float64 // distance to the winner, -1 when Unknown
}

// Distance is the Euclidean distance between two signatures.
// Signatures of different length never match and get +Inf.
func Distance(a, b types.Signature) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Match scans the registry in order and returns the first entry within tolerance.
// The first hit wins even if a later entry is closer.
func Match(query types.Signature, known []types.KnownFace, tolerance float64) Result {
	for i, k := range known {
		if d := Distance(query, k.Signature); d <= tolerance {
			return Result{Name: k.Name, Index: i, Distance: d}
		}
	}
	return Result{Name: types.Unknown, Index: -1, Distance: -1}
}

// Closest returns the nearest entry regardless of tolerance, used for reporting
func Closest(query types.Signature, known []types.KnownFace) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	for i, k := range known {
		if d := Distance(query, k.Signature); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}
