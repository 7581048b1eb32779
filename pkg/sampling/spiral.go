// Package sampling generates the direction sets used by the ellipsoid search:
// quasi-uniform spiral points on the unit sphere, rings of directions in the
// plane orthogonal to an axis, and random unit vectors.
package sampling

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// spiralStep is the empirical packing-density constant of the generalised
// spiral set (Saff & Kuijlaars, Rakhmanov et al.).
const spiralStep = 3.6

// ErrTooFewPoints is returned when a spiral set with fewer than three points
// is requested; the azimuth recurrence is undefined there.
var ErrTooFewPoints = errors.New("spiral set needs more than 2 points")

// Spiral returns n quasi-uniformly distributed unit vectors on the sphere.
// The set is a deterministic function of n, running from the south pole
// (k = 0) to the north pole (k = n-1).
func Spiral(n int) ([]r3.Vec, error) {
	if n <= 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, n)
	}

	points := make([]r3.Vec, n)
	step := spiralStep / math.Sqrt(float64(n))
	phi := 0.0
	for k := 0; k < n; k++ {
		h := -1 + 2*float64(k)/float64(n-1)
		theta := math.Acos(h)

		switch k {
		case 0, n - 1:
			phi = 0
		default:
			phi = math.Mod(phi+step/math.Sqrt(1-h*h), 2*math.Pi)
		}

		sinTheta, cosTheta := math.Sincos(theta)
		sinPhi, cosPhi := math.Sincos(phi)
		points[k] = r3.Vec{
			X: sinTheta * cosPhi,
			Y: sinTheta * sinPhi,
			Z: cosTheta,
		}
	}
	return points, nil
}
