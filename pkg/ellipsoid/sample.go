package ellipsoid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"maxellipsoid/pkg/sampling"
)

// SampleSurface returns n points distributed uniformly by area over the
// ellipsoid surface.
//
// Uniform sphere points are pushed through the axis scaling, which
// over-samples the regions stretched least. Each point is kept with
// probability μ(v)/max μ where μ(v) = √(a²c²v_y² + a²b²v_z² + b²c²v_x²) is the
// local area element of the mapping; with a <= b <= c the maximum is b·c.
func (e *Ellipsoid) SampleSurface(n int, rng sampling.Source) ([]r3.Vec, error) {
	if n < 0 {
		return nil, fmt.Errorf("sample count must not be negative, got %d", n)
	}

	a, b, c := e.Radii()
	muMax := b * c
	rot := e.Orientation()

	points := make([]r3.Vec, 0, n)
	for len(points) < n {
		v := sampling.RandomUnit(rng)
		mu := math.Sqrt(a*a*c*c*v.Y*v.Y + a*a*b*b*v.Z*v.Z + b*b*c*c*v.X*v.X)
		if rng.Float64() > mu/muMax {
			continue
		}
		local := r3.Vec{X: a * v.X, Y: b * v.Y, Z: c * v.Z}
		points = append(points, r3.Add(e.centroid, rot.MulVec(local)))
	}
	return points, nil
}

// SampleVolume returns n points distributed uniformly inside the ellipsoid.
// Points are rejection-sampled in the unit ball; the linear map to the
// ellipsoid keeps the distribution uniform.
func (e *Ellipsoid) SampleVolume(n int, rng sampling.Source) ([]r3.Vec, error) {
	if n < 0 {
		return nil, fmt.Errorf("sample count must not be negative, got %d", n)
	}

	a, b, c := e.Radii()
	rot := e.Orientation()

	points := make([]r3.Vec, 0, n)
	for len(points) < n {
		v := r3.Vec{
			X: 2*rng.Float64() - 1,
			Y: 2*rng.Float64() - 1,
			Z: 2*rng.Float64() - 1,
		}
		if r3.Norm2(v) > 1 {
			continue
		}
		local := r3.Vec{X: a * v.X, Y: b * v.Y, Z: c * v.Z}
		points = append(points, r3.Add(e.centroid, rot.MulVec(local)))
	}
	return points, nil
}
