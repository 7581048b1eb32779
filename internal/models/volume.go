package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Grid is the read-only view of a binary segmented volume consumed by the
// ellipsoid search. Implementations must be safe for concurrent reads.
type Grid interface {
	// Extent returns the number of voxels along axis 0 (x), 1 (y) or 2 (z).
	Extent(axis int) int

	// IsForeground reports whether the voxel at the integer coordinate is
	// material. Callers guarantee the coordinate is within the extents.
	IsForeground(x, y, z int) bool
}

// BinaryVolume is a Grid backed by a flat slice in z-major, row-major order,
// the same layout as the reconstructed intensity volumes.
type BinaryVolume struct {
	// Data holds one flag per voxel, true for foreground
	Data []bool

	// Width, Height, Depth are the dimensions of the volume in voxels
	Width, Height, Depth int
}

// NewBinaryVolume allocates an all-background volume.
func NewBinaryVolume(width, height, depth int) (*BinaryVolume, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("volume dimensions must be positive, got %dx%dx%d", width, height, depth)
	}
	return &BinaryVolume{
		Data:   make([]bool, width*height*depth),
		Width:  width,
		Height: height,
		Depth:  depth,
	}, nil
}

// Extent implements Grid.
func (v *BinaryVolume) Extent(axis int) int {
	switch axis {
	case 0:
		return v.Width
	case 1:
		return v.Height
	case 2:
		return v.Depth
	default:
		return 0
	}
}

// IsForeground implements Grid.
func (v *BinaryVolume) IsForeground(x, y, z int) bool {
	return v.Data[v.index(x, y, z)]
}

// Set marks a voxel as foreground or background. It must not be called while
// a search is reading the volume.
func (v *BinaryVolume) Set(x, y, z int, foreground bool) {
	v.Data[v.index(x, y, z)] = foreground
}

// Count returns the number of foreground voxels.
func (v *BinaryVolume) Count() int {
	n := 0
	for _, f := range v.Data {
		if f {
			n++
		}
	}
	return n
}

func (v *BinaryVolume) index(x, y, z int) int {
	return z*v.Width*v.Height + y*v.Width + x
}

// Seed is a position inside the foreground from which an ellipsoid is grown,
// typically a skeleton point supplied by an external step.
type Seed struct {
	// Position is the seed location in voxel coordinates
	Position r3.Vec

	// Index is the position of this seed in the input sequence
	Index int
}

// Contains reports whether the real-valued position falls inside the grid
// extents once truncated to voxel indices.
func Contains(g Grid, p r3.Vec) bool {
	_, _, _, ok := VoxelIndex(g, p)
	return ok
}

// VoxelIndex floors each component of p and reports whether the resulting
// voxel lies in [0, extent) on every axis.
func VoxelIndex(g Grid, p r3.Vec) (x, y, z int, ok bool) {
	fx, fy, fz := math.Floor(p.X), math.Floor(p.Y), math.Floor(p.Z)
	// Written as negated ranges so NaN components are rejected.
	if !(fx >= 0 && fx < float64(g.Extent(0))) ||
		!(fy >= 0 && fy < float64(g.Extent(1))) ||
		!(fz >= 0 && fz < float64(g.Extent(2))) {
		return 0, 0, 0, false
	}
	return int(fx), int(fy), int(fz), true
}
