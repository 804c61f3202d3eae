package recognizer

import (
	"fmt"

	"github.com/andresmejia3/facelens/internal/types"
)

// MinOverlap is the IoU below which two boxes are not considered the same face
const MinOverlap = 0.5

// IoU is the intersection-over-union of two boxes
func IoU(a, b types.Box) float64 {
	inter := a.Rect().Intersect(b.Rect())
	if inter.Empty() {
		return 0
	}
	i := float64(inter.Dx() * inter.Dy())
	u := float64(a.Area()+b.Area()) - i
	if u <= 0 {
		return 0
	}
	return i / u
}

// Pair maps every requested box to the index of its best-overlapping detected box.
// Engines that cannot encode arbitrary regions use this to answer Encode calls.
func Pair(requested, detected []types.Box) ([]int, error) {
	out := make([]int, len(requested))
	for i, want := range requested {
		best, bestIoU := -1, 0.0
		for j, have := range detected {
			if v := IoU(want, have); v > bestIoU {
				best, bestIoU = j, v
			}
		}
		if best < 0 || bestIoU < MinOverlap {
			return nil, fmt.Errorf("%w: no detected face overlaps box %+v", ErrNoFace, want)
		}
		out[i] = best
	}
	return out, nil
}
