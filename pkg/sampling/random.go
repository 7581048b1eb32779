package sampling

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Source is the random capability used by ring generation and ellipsoid
// surface sampling. *math/rand.Rand satisfies it. Each goroutine must own
// its Source; none of the functions here share one.
type Source interface {
	Float64() float64
	NormFloat64() float64
}

var pole = r3.Vec{Z: 1}

// RandomRotation returns a rotation drawn uniformly from SO(3), built from a
// unit quaternion whose four components are independent normal deviates.
func RandomRotation(rng Source) r3.Rotation {
	for {
		q := quat.Number{
			Real: rng.NormFloat64(),
			Imag: rng.NormFloat64(),
			Jmag: rng.NormFloat64(),
			Kmag: rng.NormFloat64(),
		}
		norm := quat.Abs(q)
		if norm < 1e-12 {
			continue
		}
		return r3.Rotation(quat.Scale(1/norm, q))
	}
}

// RandomUnit returns a unit vector distributed uniformly on the sphere, the
// image of the +z pole under a random rotation.
func RandomUnit(rng Source) r3.Vec {
	return r3.Unit(RandomRotation(rng).Rotate(pole))
}
