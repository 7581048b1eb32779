// Package raymarch walks rays through a binary voxel grid to find where the
// foreground ends.
package raymarch

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"maxellipsoid/internal/models"
)

// Exit is the result of marching a ray.
type Exit struct {
	// Position is the last real-valued position reached
	Position r3.Vec

	// Truncated is set when the march stopped because the next step left
	// the grid (or could not advance), not because it reached background.
	// Position then still indexes a foreground voxel.
	Truncated bool
}

// March advances from origin by step until the voxel under the running
// position is background or the next step would leave the grid. step is not
// normalised; its length is the step size.
//
// A background origin is returned unmoved. When the march ends on background
// the returned position is the first one indexing a background voxel; when it
// ends on the grid bound the position is the last in-bounds one.
func March(grid models.Grid, origin, step r3.Vec) Exit {
	x, y, z, ok := models.VoxelIndex(grid, origin)
	if !ok {
		return Exit{Position: origin, Truncated: true}
	}
	if !grid.IsForeground(x, y, z) {
		return Exit{Position: origin}
	}
	if n := r3.Norm(step); n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return Exit{Position: origin, Truncated: true}
	}

	pos := origin
	for {
		next := r3.Add(pos, step)
		x, y, z, ok := models.VoxelIndex(grid, next)
		if !ok {
			return Exit{Position: pos, Truncated: true}
		}
		if !grid.IsForeground(x, y, z) {
			return Exit{Position: next}
		}
		pos = next
	}
}
