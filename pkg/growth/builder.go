package growth

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"maxellipsoid/internal/models"
	"maxellipsoid/pkg/ellipsoid"
	"maxellipsoid/pkg/raymarch"
	"maxellipsoid/pkg/sampling"
)

// minAxisLength is the floor applied to every contact length so that no
// axis collapses to zero.
const minAxisLength = 1.0

// contactMargin is subtracted from each contact distance to keep the
// ellipsoid just inside the detected boundary.
const contactMargin = 1.0

// Candidate is one ellipsoid grown from a single initial direction.
type Candidate struct {
	Ellipsoid *ellipsoid.Ellipsoid

	// Contacts counts axes whose ray ended on a background voxel
	Contacts int

	// Truncated counts axes whose ray ended on the grid bound
	Truncated int

	// Floored counts axes whose length was raised to the 1.0 floor
	Floored int
}

// Degenerate reports whether the candidate carries no information about the
// foreground boundary: every axis was floored, or no ray met background.
func (c Candidate) Degenerate() bool {
	return c.Floored == 3 || c.Contacts == 0
}

// Builder grows candidate ellipsoids inside a read-only grid. It holds no
// mutable state and may be shared between goroutines.
type Builder struct {
	grid models.Grid
}

// NewBuilder creates a builder over grid.
func NewBuilder(grid models.Grid) *Builder {
	return &Builder{grid: grid}
}

// GrowFromAxis builds one candidate from seed:
//
//  1. the first axis is the contact along initialDirection;
//  2. the second is the nearest contact among planeResolution directions
//     orthogonal to the first;
//  3. the third is the nearer of ±(second × first);
//  4. if [first second third] is left-handed the second and third axes are
//     swapped, each keeping its own length.
//
// rng only sets the phase of the ring in step 2.
func (b *Builder) GrowFromAxis(seed, initialDirection r3.Vec, planeResolution int, rng sampling.Source) (Candidate, error) {
	var cand Candidate

	first, err := b.axis(seed, []r3.Vec{initialDirection}, &cand)
	if err != nil {
		return Candidate{}, fmt.Errorf("first axis: %w", err)
	}

	ring, err := sampling.Ring(first.Direction, planeResolution, rng)
	if err != nil {
		return Candidate{}, fmt.Errorf("second axis: %w", err)
	}
	second, err := b.axis(seed, ring, &cand)
	if err != nil {
		return Candidate{}, fmt.Errorf("second axis: %w", err)
	}

	d3 := r3.Unit(r3.Cross(second.Direction, first.Direction))
	third, err := b.axis(seed, []r3.Vec{d3, r3.Scale(-1, d3)}, &cand)
	if err != nil {
		return Candidate{}, fmt.Errorf("third axis: %w", err)
	}

	axes := [3]ellipsoid.Axis{first, second, third}
	if det := r3.Dot(r3.Cross(first.Direction, second.Direction), third.Direction); det < 0 {
		axes[1], axes[2] = axes[2], axes[1]
	}

	e, err := ellipsoid.New(seed, axes)
	if err != nil {
		return Candidate{}, err
	}
	cand.Ellipsoid = e
	return cand, nil
}

// axis turns the nearest contact among directions into a clamped semi-axis
// and tallies how the contact ended.
func (b *Builder) axis(seed r3.Vec, directions []r3.Vec, cand *Candidate) (ellipsoid.Axis, error) {
	c, err := raymarch.NearestContact(b.grid, seed, directions)
	if err != nil {
		return ellipsoid.Axis{}, err
	}
	if c.Truncated {
		cand.Truncated++
	} else {
		cand.Contacts++
	}

	length := c.Length - contactMargin
	if length < minAxisLength {
		length = minAxisLength
		cand.Floored++
	}
	return ellipsoid.Axis{Direction: c.Direction, Length: length}, nil
}
