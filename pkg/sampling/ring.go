package sampling

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidRing is returned for a ring with no directions or a degenerate axis.
var ErrInvalidRing = errors.New("invalid ring")

// minCross is the smallest cross-product norm accepted when picking the
// ring's starting vector; below it the random draw was (nearly) parallel to
// the axis and is redrawn.
const minCross = 1e-6

// Ring returns count unit vectors spanning the plane orthogonal to axis,
// evenly spaced by 2π/count. The starting vector is random, so rng decides
// the ring's phase.
func Ring(axis r3.Vec, count int, rng Source) ([]r3.Vec, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", ErrInvalidRing, count)
	}
	norm := r3.Norm(axis)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, fmt.Errorf("%w: axis %v has no direction", ErrInvalidRing, axis)
	}
	axis = r3.Scale(1/norm, axis)

	var start r3.Vec
	for {
		c := r3.Cross(axis, RandomUnit(rng))
		if n := r3.Norm(c); n > minCross {
			start = r3.Scale(1/n, c)
			break
		}
	}

	ring := make([]r3.Vec, count)
	ring[0] = start
	delta := 2 * math.Pi / float64(count)
	for i := 1; i < count; i++ {
		ring[i] = r3.Rotate(start, float64(i)*delta, axis)
	}
	return ring, nil
}
