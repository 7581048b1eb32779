// Package phantom builds synthetic binary volumes with known geometry, used to
// exercise and check the ellipsoid search without real image data.
//
// A voxel (i, j, k) is foreground when its centre (i+½, j+½, k+½) lies inside
// the shape.
package phantom

import (
	"gonum.org/v1/gonum/spatial/r3"

	"maxellipsoid/internal/models"
	"maxellipsoid/pkg/ellipsoid"
)

// Shape reports whether a point is inside a solid.
type Shape func(p r3.Vec) bool

// Rasterize samples shape at every voxel centre of a width×height×depth grid.
func Rasterize(width, height, depth int, shape Shape) (*models.BinaryVolume, error) {
	v, err := models.NewBinaryVolume(width, height, depth)
	if err != nil {
		return nil, err
	}
	for z := 0; z < depth; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				centre := r3.Vec{X: float64(x) + 0.5, Y: float64(y) + 0.5, Z: float64(z) + 0.5}
				if shape(centre) {
					v.Set(x, y, z, true)
				}
			}
		}
	}
	return v, nil
}

// Cylinder is a right circular cylinder along z with its axis through
// (centre.X, centre.Y), covering zMin <= z < zMax.
func Cylinder(width, height, depth int, centre r3.Vec, radius, zMin, zMax float64) (*models.BinaryVolume, error) {
	r2 := radius * radius
	return Rasterize(width, height, depth, func(p r3.Vec) bool {
		dx, dy := p.X-centre.X, p.Y-centre.Y
		return dx*dx+dy*dy <= r2 && p.Z >= zMin && p.Z < zMax
	})
}

// Sphere is a solid ball.
func Sphere(width, height, depth int, centre r3.Vec, radius float64) (*models.BinaryVolume, error) {
	r2 := radius * radius
	return Rasterize(width, height, depth, func(p r3.Vec) bool {
		return r3.Norm2(r3.Sub(p, centre)) <= r2
	})
}

// Box is an axis-aligned box, lo inclusive and hi exclusive.
func Box(width, height, depth int, lo, hi r3.Vec) (*models.BinaryVolume, error) {
	return Rasterize(width, height, depth, func(p r3.Vec) bool {
		return p.X >= lo.X && p.X < hi.X &&
			p.Y >= lo.Y && p.Y < hi.Y &&
			p.Z >= lo.Z && p.Z < hi.Z
	})
}

// Ellipsoid rasterises e.
func Ellipsoid(width, height, depth int, e *ellipsoid.Ellipsoid) (*models.BinaryVolume, error) {
	return Rasterize(width, height, depth, e.Contains)
}

// Filled is an all-foreground volume.
func Filled(width, height, depth int) (*models.BinaryVolume, error) {
	return Rasterize(width, height, depth, func(r3.Vec) bool { return true })
}

// Empty is an all-background volume.
func Empty(width, height, depth int) (*models.BinaryVolume, error) {
	return models.NewBinaryVolume(width, height, depth)
}
