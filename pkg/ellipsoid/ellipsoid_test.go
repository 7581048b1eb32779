package ellipsoid

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	xAxis = r3.Vec{X: 1}
	yAxis = r3.Vec{Y: 1}
	zAxis = r3.Vec{Z: 1}
)

func mustNew(t *testing.T, centroid r3.Vec, axes [3]Axis) *Ellipsoid {
	t.Helper()
	e, err := New(centroid, axes)
	require.NoError(t, err)
	return e
}

func assertOrthonormal(t *testing.T, e *Ellipsoid) {
	t.Helper()
	o := e.Orientation()
	var p mat.Dense
	p.Mul(o.T(), o)
	eye := mat.NewDiagDense(3, []float64{1, 1, 1})
	assert.True(t, mat.EqualApprox(&p, eye, 1e-9), "orientation is not orthonormal:\n%v", mat.Formatted(&p))
	assert.Greater(t, o.Det(), 0.0)
}

func TestVolume(t *testing.T) {
	e := mustNew(t, r3.Vec{}, [3]Axis{{xAxis, 1}, {yAxis, 2}, {zAxis, 3}})
	assert.InDelta(t, 8*math.Pi, e.Volume(), 1e-12)
}

func TestNew_RejectsInvalidRadii(t *testing.T) {
	for _, l := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := New(r3.Vec{}, [3]Axis{{xAxis, 1}, {yAxis, l}, {zAxis, 3}})
		assert.ErrorIs(t, err, ErrInvalidRadii, "length %v", l)
	}
}

func TestNew_RejectsInvalidOrientation(t *testing.T) {
	_, err := New(r3.Vec{}, [3]Axis{{r3.Vec{X: 2}, 1}, {yAxis, 2}, {zAxis, 3}})
	assert.ErrorIs(t, err, ErrInvalidOrientation)

	skew := r3.Unit(r3.Vec{X: 1, Y: 1})
	_, err = New(r3.Vec{}, [3]Axis{{xAxis, 1}, {skew, 2}, {zAxis, 3}})
	assert.ErrorIs(t, err, ErrInvalidOrientation)

	nan := r3.Vec{X: math.NaN()}
	_, err = New(r3.Vec{}, [3]Axis{{nan, 1}, {yAxis, 2}, {zAxis, 3}})
	assert.ErrorIs(t, err, ErrInvalidOrientation, "NaN direction")

	inf := r3.Vec{X: math.Inf(1)}
	_, err = New(r3.Vec{}, [3]Axis{{xAxis, 1}, {yAxis, 2}, {inf, 3}})
	assert.ErrorIs(t, err, ErrInvalidOrientation, "infinite direction")
}

func TestNew_SortKeepsDirectionsWithLengths(t *testing.T) {
	e := mustNew(t, r3.Vec{X: 1, Y: 2, Z: 3}, [3]Axis{{xAxis, 3}, {yAxis, 1}, {zAxis, 2}})

	a, b, c := e.Radii()
	assert.Equal(t, [3]float64{1, 2, 3}, [3]float64{a, b, c})

	axes := e.Axes()
	assert.Equal(t, yAxis, axes[0].Direction)
	assert.Equal(t, zAxis, axes[1].Direction)
	assert.Equal(t, xAxis, axes[2].Direction)
	assertOrthonormal(t, e)
}

func TestNew_FixesLeftHandedBasis(t *testing.T) {
	// [x, z, y] is left-handed
	e := mustNew(t, r3.Vec{}, [3]Axis{{xAxis, 1}, {zAxis, 2}, {yAxis, 3}})

	axes := e.Axes()
	assert.Equal(t, xAxis, axes[0].Direction)
	assert.Equal(t, zAxis, axes[1].Direction)
	assert.Equal(t, r3.Vec{Y: -1}, axes[2].Direction, "longest axis direction should be negated")
	assert.Equal(t, 3.0, axes[2].Length)
	assertOrthonormal(t, e)
}

func TestNew_EqualLengthsKeepInputOrder(t *testing.T) {
	e := mustNew(t, r3.Vec{}, [3]Axis{{zAxis, 2}, {xAxis, 2}, {yAxis, 1}})
	axes := e.Axes()
	assert.Equal(t, yAxis, axes[0].Direction)
	assert.Equal(t, zAxis, axes[1].Direction)
	assert.Equal(t, xAxis, axes[2].Direction)
}

func rotatedAxes(lengths [3]float64) [3]Axis {
	rot := r3.NewRotation(0.7, r3.Vec{X: 1, Y: -2, Z: 0.5})
	return [3]Axis{
		{rot.Rotate(xAxis), lengths[0]},
		{rot.Rotate(yAxis), lengths[1]},
		{rot.Rotate(zAxis), lengths[2]},
	}
}

func TestContains(t *testing.T) {
	centroid := r3.Vec{X: 10, Y: -4, Z: 2.5}
	e := mustNew(t, centroid, rotatedAxes([3]float64{2, 5, 3}))
	assertOrthonormal(t, e)

	assert.True(t, e.Contains(centroid))
	for _, axis := range e.Axes() {
		for _, sign := range []float64{1, -1} {
			inside := r3.Add(centroid, r3.Scale(sign*axis.Length*0.9999, axis.Direction))
			outside := r3.Add(centroid, r3.Scale(sign*axis.Length*1.0001, axis.Direction))
			assert.True(t, e.Contains(inside), "point at 0.9999·%v should be inside", axis.Length)
			assert.False(t, e.Contains(outside), "point at 1.0001·%v should be outside", axis.Length)
		}
	}
}

func TestSampleSurface(t *testing.T) {
	centroid := r3.Vec{X: 1, Y: 2, Z: 3}
	e := mustNew(t, centroid, rotatedAxes([3]float64{3, 7, 5}))
	rng := rand.New(rand.NewSource(11))

	points, err := e.SampleSurface(2000, rng)
	require.NoError(t, err)
	require.Len(t, points, 2000)

	a, b, c := e.Radii()
	o := e.Orientation()
	for _, p := range points {
		q := o.MulVecTrans(r3.Sub(p, centroid))
		v := q.X*q.X/(a*a) + q.Y*q.Y/(b*b) + q.Z*q.Z/(c*c)
		require.InDelta(t, 1, v, 1e-9)
	}

	none, err := e.SampleSurface(0, rng)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = e.SampleSurface(-1, rng)
	assert.Error(t, err)
}

// An oblate spheroid has most of its area on the two flat faces. Uniform-area
// sampling puts about 22% of samples within half the equatorial radius of the
// short axis; naive sphere mapping would put about 13% there.
func TestSampleSurface_UniformArea(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping statistical test in short mode")
	}

	e := mustNew(t, r3.Vec{}, [3]Axis{{xAxis, 1}, {yAxis, 4}, {zAxis, 4}})
	rng := rand.New(rand.NewSource(5))

	const n = 20000
	points, err := e.SampleSurface(n, rng)
	require.NoError(t, err)

	near := 0
	for _, p := range points {
		if math.Hypot(p.Y, p.Z)/4 < 0.5 {
			near++
		}
	}
	frac := float64(near) / n
	assert.InDelta(t, 0.222, frac, 0.025, "fraction near the short axis = %v", frac)
}

func TestSampleVolume(t *testing.T) {
	centroid := r3.Vec{X: -3, Y: 0, Z: 8}
	e := mustNew(t, centroid, rotatedAxes([3]float64{2, 4, 6}))
	rng := rand.New(rand.NewSource(9))

	const n = 8000
	points, err := e.SampleVolume(n, rng)
	require.NoError(t, err)
	require.Len(t, points, n)

	// The half-scale ellipsoid holds 1/8 of the volume.
	half := mustNew(t, centroid, rotatedAxes([3]float64{1, 2, 3}))
	inner := 0
	for _, p := range points {
		require.True(t, e.Contains(p))
		if half.Contains(p) {
			inner++
		}
	}
	assert.InDelta(t, 0.125, float64(inner)/n, 0.02)

	_, err = e.SampleVolume(-5, rng)
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	e := mustNew(t, r3.Vec{X: 1}, [3]Axis{{xAxis, 1}, {yAxis, 2}, {zAxis, 3}})
	assert.Equal(t, "ellipsoid{centroid=(1.000, 0.000, 0.000) radii=(1.000, 2.000, 3.000)}", e.String())
}
