// Package ellipsoid provides the immutable ellipsoid value produced by the
// growth search, together with containment tests and uniform sampling of its
// surface and interior.
package ellipsoid

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrInvalidRadii is returned for non-positive or non-finite semi-axis lengths.
	ErrInvalidRadii = errors.New("radii must be positive and finite")

	// ErrInvalidOrientation is returned when the axis directions are not an
	// orthonormal set.
	ErrInvalidOrientation = errors.New("axis directions must be orthonormal")
)

// orthoTolerance bounds |1 - |d|| and |d_i · d_j| for accepted directions.
const orthoTolerance = 1e-6

// Axis is one semi-axis: a unit direction and the length along it. The two
// are always stored, sorted and swapped together.
type Axis struct {
	Direction r3.Vec
	Length    float64
}

// Ellipsoid is a solid ellipsoid with semi-axes stored in ascending order of
// length. The orientation columns are the axis directions in the same order
// and always form a right-handed basis.
type Ellipsoid struct {
	axes     [3]Axis
	centroid r3.Vec
}

// New validates axes and returns the ellipsoid centred on centroid.
//
// The axes are reordered by ascending length, each direction moving with its
// own length. If the reordered basis is left-handed the direction of the
// longest axis is negated, which leaves the ellipsoid's point set unchanged.
func New(centroid r3.Vec, axes [3]Axis) (*Ellipsoid, error) {
	for i, a := range axes {
		if !(a.Length > 0) || math.IsInf(a.Length, 0) {
			return nil, fmt.Errorf("%w: axis %d has length %v", ErrInvalidRadii, i, a.Length)
		}
		// negated so that NaN components are rejected
		if n := r3.Norm(a.Direction); !(math.Abs(n-1) <= orthoTolerance) {
			return nil, fmt.Errorf("%w: axis %d direction %v has norm %v", ErrInvalidOrientation, i, a.Direction, n)
		}
	}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if d := r3.Dot(axes[i].Direction, axes[j].Direction); !(math.Abs(d) <= orthoTolerance) {
				return nil, fmt.Errorf("%w: axes %d and %d have dot product %v", ErrInvalidOrientation, i, j, d)
			}
		}
	}

	sorted := axes
	sort.SliceStable(sorted[:], func(i, j int) bool {
		return sorted[i].Length < sorted[j].Length
	})
	if determinant(sorted) < 0 {
		sorted[2].Direction = r3.Scale(-1, sorted[2].Direction)
	}

	return &Ellipsoid{axes: sorted, centroid: centroid}, nil
}

// determinant of the matrix whose columns are the axis directions.
func determinant(axes [3]Axis) float64 {
	return r3.Dot(r3.Cross(axes[0].Direction, axes[1].Direction), axes[2].Direction)
}

// Radii returns the semi-axis lengths, a <= b <= c.
func (e *Ellipsoid) Radii() (a, b, c float64) {
	return e.axes[0].Length, e.axes[1].Length, e.axes[2].Length
}

// Axes returns the semi-axes in ascending order of length.
func (e *Ellipsoid) Axes() [3]Axis {
	return e.axes
}

// Centroid returns the centre of the ellipsoid.
func (e *Ellipsoid) Centroid() r3.Vec {
	return e.centroid
}

// Orientation returns a new rotation matrix whose columns are the axis
// directions, shortest first.
func (e *Ellipsoid) Orientation() *r3.Mat {
	u, v, w := e.axes[0].Direction, e.axes[1].Direction, e.axes[2].Direction
	return r3.NewMat([]float64{
		u.X, v.X, w.X,
		u.Y, v.Y, w.Y,
		u.Z, v.Z, w.Z,
	})
}

// Volume returns 4/3·π·a·b·c.
func (e *Ellipsoid) Volume() float64 {
	a, b, c := e.Radii()
	return 4.0 / 3.0 * math.Pi * a * b * c
}

// Contains reports whether p lies inside or on the ellipsoid.
func (e *Ellipsoid) Contains(p r3.Vec) bool {
	q := e.Orientation().MulVecTrans(r3.Sub(p, e.centroid))
	a, b, c := e.Radii()
	x, y, z := q.X/a, q.Y/b, q.Z/c
	return x*x+y*y+z*z <= 1
}

// String implements fmt.Stringer.
func (e *Ellipsoid) String() string {
	a, b, c := e.Radii()
	return fmt.Sprintf("ellipsoid{centroid=(%.3f, %.3f, %.3f) radii=(%.3f, %.3f, %.3f)}",
		e.centroid.X, e.centroid.Y, e.centroid.Z, a, b, c)
}
