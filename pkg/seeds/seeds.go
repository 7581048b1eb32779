// Package seeds reads seed point lists and filters them by spacing.
package seeds

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"

	"maxellipsoid/internal/models"
)

// Parse reads one seed per line as three coordinates separated by whitespace
// or commas. Blank lines and lines starting with # are skipped. Seeds are
// numbered in the order they appear.
func Parse(r io.Reader) ([]models.Seed, error) {
	var seeds []models.Seed
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: expected 3 coordinates, got %d", line, len(fields))
		}

		var coords [3]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			coords[i] = v
		}
		seeds = append(seeds, models.Seed{
			Position: r3.Vec{X: coords[0], Y: coords[1], Z: coords[2]},
			Index:    len(seeds),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading seeds: %w", err)
	}
	return seeds, nil
}

// Thin keeps seeds in order, dropping every seed closer than minSpacing to
// one already kept. A non-positive minSpacing keeps all seeds.
func Thin(seeds []models.Seed, minSpacing float64) []models.Seed {
	if minSpacing <= 0 {
		return append([]models.Seed(nil), seeds...)
	}

	limit := minSpacing * minSpacing
	tree := kdtree.New(points(nil), false)
	kept := make([]models.Seed, 0, len(seeds))
	for _, s := range seeds {
		p := point(s.Position)
		if _, d2 := tree.Nearest(p); d2 < limit {
			continue
		}
		tree.Insert(p, false)
		kept = append(kept, s)
	}
	return kept
}

// Spacing returns the distance from each seed to its nearest other seed, or
// +Inf when there is no other seed.
func Spacing(seeds []models.Seed) []float64 {
	pts := make(points, len(seeds))
	for i, s := range seeds {
		pts[i] = point(s.Position)
	}
	tree := kdtree.New(pts, false)

	spacing := make([]float64, len(seeds))
	for i, s := range seeds {
		// the query point itself is the first of the two kept, nearest first
		keeper := kdtree.NewNKeeper(2)
		tree.NearestSet(keeper, point(s.Position))
		if len(keeper.Heap) < 2 {
			spacing[i] = math.Inf(1)
			continue
		}
		spacing[i] = math.Sqrt(keeper.Heap[1].Dist)
	}
	return spacing
}

// point adapts a position to kdtree.Comparable
type point r3.Vec

// Compare implements the kdtree.Comparable interface
func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	case 2:
		return p.Z - q.Z
	default:
		panic("illegal dimension")
	}
}

// Dims returns the number of dimensions for the KD-tree
func (p point) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between two points
func (p point) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(r3.Vec(p), r3.Vec(c.(point))))
}

// points satisfies kdtree.Interface
type points []point

func (p points) Index(i int) kdtree.Comparable         { return p[i] }
func (p points) Len() int                              { return len(p) }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot implements the kdtree.Interface method
func (p points) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(plane{points: p, Dim: d}, kdtree.MedianOfRandoms(plane{points: p, Dim: d}, 100))
}

// plane implements sort.Interface and kdtree.SortSlicer for points
type plane struct {
	points
	kdtree.Dim
}

func (p plane) Less(i, j int) bool {
	return p.points[i].Compare(p.points[j], p.Dim) < 0
}

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	return plane{points: p.points[start:end], Dim: p.Dim}
}

func (p plane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}
