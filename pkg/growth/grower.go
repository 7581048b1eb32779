// Package growth searches for the largest ellipsoid that can be grown from a
// seed point while staying inside the foreground of a binary volume.
//
// The search follows these steps:
// 1. Spread nSphere initial directions over the sphere with a spiral set
// 2. Grow one candidate ellipsoid per direction (Builder.GrowFromAxis)
// 3. Keep the candidate with the largest volume
//
// Candidates are independent of each other and are evaluated in parallel.
package growth

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"maxellipsoid/internal/logging"
	"maxellipsoid/internal/models"
	"maxellipsoid/pkg/ellipsoid"
	"maxellipsoid/pkg/sampling"
)

// sphereDensity is the empirical factor relating the sampling radius to the
// number of initial directions.
const sphereDensity = 3.809

// maxSphereSamples caps the number of initial directions a search may try.
const maxSphereSamples = 1 << 24

var (
	// ErrInvalidParams is returned for unusable sampling parameters.
	ErrInvalidParams = errors.New("invalid growth parameters")

	// ErrSeedOutOfBounds is returned when the seed lies outside the grid.
	ErrSeedOutOfBounds = errors.New("seed outside grid bounds")

	// ErrNoEllipsoid is returned when no meaningful ellipsoid can be grown,
	// e.g. the seed is background or no ray ever meets background.
	ErrNoEllipsoid = errors.New("no ellipsoid")
)

// Params holds the growth parameters.
type Params struct {
	// MaxSamplingRadius is the expected largest feature radius in the same
	// units as PixelWidth. It sets how many directions are tried.
	MaxSamplingRadius float64

	// PixelWidth is the physical size of one voxel.
	PixelWidth float64

	// NumCores specifies how many goroutines evaluate candidates.
	// Values below 1 mean runtime.NumCPU().
	NumCores int

	// RandomSeed seeds the per-candidate random sources. Equal seeds give
	// bit-identical results.
	RandomSeed int64
}

// SphereSamples returns the number of initial directions,
// ceil((MaxSamplingRadius·3.809/PixelWidth)²).
func (p *Params) SphereSamples() int {
	return int(p.sphereSamples())
}

func (p *Params) sphereSamples() float64 {
	n := p.MaxSamplingRadius * sphereDensity / p.PixelWidth
	return math.Ceil(n * n)
}

// PlaneSamples returns the number of in-plane directions searched for the
// second axis, ceil(2π·MaxSamplingRadius/PixelWidth).
func (p *Params) PlaneSamples() int {
	return int(math.Ceil(2 * math.Pi * p.MaxSamplingRadius / p.PixelWidth))
}

// Validate checks the parameters describe a usable search.
func (p *Params) Validate() error {
	if !(p.MaxSamplingRadius > 0) || math.IsInf(p.MaxSamplingRadius, 0) {
		return fmt.Errorf("%w: max sampling radius must be positive and finite, got %v", ErrInvalidParams, p.MaxSamplingRadius)
	}
	if !(p.PixelWidth > 0) || math.IsInf(p.PixelWidth, 0) {
		return fmt.Errorf("%w: pixel width must be positive and finite, got %v", ErrInvalidParams, p.PixelWidth)
	}
	if n := p.sphereSamples(); n > maxSphereSamples {
		return fmt.Errorf("%w: %.0f sphere samples, at most %d allowed (decrease the sampling radius or increase the pixel width)",
			ErrInvalidParams, n, maxSphereSamples)
	}
	if n := p.SphereSamples(); n <= 2 {
		return fmt.Errorf("%w: %d sphere samples, need more than 2 (increase the sampling radius)", ErrInvalidParams, n)
	}
	return nil
}

// Result is the outcome of one Grow call.
type Result struct {
	// Ellipsoid is the largest eligible candidate
	Ellipsoid *ellipsoid.Ellipsoid

	// Seed is the position the ellipsoid was grown from
	Seed r3.Vec

	// Candidates is the number of initial directions tried
	Candidates int

	// Eligible is the number of non-degenerate candidates
	Eligible int

	// BestIndex is the spiral index of the winning initial direction
	BestIndex int

	// VolumeMean and VolumeStdDev summarise the eligible candidate volumes.
	// VolumeStdDev is 0 when fewer than two candidates are eligible.
	VolumeMean   float64
	VolumeStdDev float64
}

// Grower runs the maximal-ellipsoid search.
type Grower struct {
	params *Params
}

// NewGrower creates a new grower with the provided parameters.
func NewGrower(params *Params) *Grower {
	return &Grower{params: params}
}

// Grow returns the maximum-volume ellipsoid grown from seed inside grid.
//
// Candidates are selected by strictly greater volume while walking the
// spiral in index order, so ties keep the earliest direction regardless of
// the order in which workers finish.
func (g *Grower) Grow(seed r3.Vec, grid models.Grid) (*Result, error) {
	if err := g.params.Validate(); err != nil {
		return nil, err
	}
	x, y, z, ok := models.VoxelIndex(grid, seed)
	if !ok {
		return nil, fmt.Errorf("%w: seed (%.3f, %.3f, %.3f), grid %dx%dx%d", ErrSeedOutOfBounds,
			seed.X, seed.Y, seed.Z, grid.Extent(0), grid.Extent(1), grid.Extent(2))
	}
	if !grid.IsForeground(x, y, z) {
		return nil, fmt.Errorf("%w: seed voxel (%d, %d, %d) is background", ErrNoEllipsoid, x, y, z)
	}

	directions, err := sampling.Spiral(g.params.SphereSamples())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	candidates, err := g.evaluateInParallel(seed, grid, directions)
	if err != nil {
		return nil, err
	}

	result := &Result{Seed: seed, Candidates: len(candidates), BestIndex: -1}
	volumes := make([]float64, 0, len(candidates))
	best := math.Inf(-1)
	for i, c := range candidates {
		if c.Degenerate() {
			continue
		}
		v := c.Ellipsoid.Volume()
		volumes = append(volumes, v)
		if v > best {
			best = v
			result.Ellipsoid = c.Ellipsoid
			result.BestIndex = i
		}
	}
	result.Eligible = len(volumes)

	if result.Ellipsoid == nil {
		return nil, fmt.Errorf("%w: none of %d candidates from seed (%.3f, %.3f, %.3f) reached background",
			ErrNoEllipsoid, len(candidates), seed.X, seed.Y, seed.Z)
	}

	result.VolumeMean = stat.Mean(volumes, nil)
	if len(volumes) > 1 {
		result.VolumeStdDev = stat.StdDev(volumes, nil)
	}

	logging.Logf("grow: seed (%.2f, %.2f, %.2f): %d/%d candidates eligible, best #%d volume %.3f (mean %.3f)",
		seed.X, seed.Y, seed.Z, result.Eligible, result.Candidates, result.BestIndex, best, result.VolumeMean)
	return result, nil
}

// SeedResult pairs a seed with the outcome of growing from it.
type SeedResult struct {
	Seed   models.Seed
	Result *Result
	Err    error
}

// GrowAll grows one ellipsoid per seed. Seeds are processed in order; the
// candidate search inside each Grow call is what runs in parallel. A failing
// seed records its error and does not stop the batch.
func (g *Grower) GrowAll(seeds []models.Seed, grid models.Grid) []SeedResult {
	results := make([]SeedResult, len(seeds))
	for i, s := range seeds {
		res, err := g.Grow(s.Position, grid)
		results[i] = SeedResult{Seed: s, Result: res, Err: err}
	}
	return results
}

// evaluateInParallel grows one candidate per direction using NumCores
// workers. The returned slice is indexed like directions.
func (g *Grower) evaluateInParallel(seed r3.Vec, grid models.Grid, directions []r3.Vec) ([]Candidate, error) {
	numWorkers := g.params.NumCores
	if numWorkers < 1 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(directions) {
		numWorkers = len(directions)
	}

	builder := NewBuilder(grid)
	planeSamples := g.params.PlaneSamples()

	type candidateResult struct {
		index     int
		candidate Candidate
		err       error
	}
	jobs := make(chan int)
	resultChan := make(chan candidateResult)

	for w := 0; w < numWorkers; w++ {
		go func() {
			for i := range jobs {
				rng := rand.New(rand.NewSource(candidateSeed(g.params.RandomSeed, i)))
				c, err := builder.GrowFromAxis(seed, directions[i], planeSamples, rng)
				resultChan <- candidateResult{index: i, candidate: c, err: err}
			}
		}()
	}

	go func() {
		for i := range directions {
			jobs <- i
		}
		close(jobs)
	}()

	candidates := make([]Candidate, len(directions))
	var firstErr error
	for completed := 0; completed < len(directions); completed++ {
		res := <-resultChan
		if res.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("candidate %d: %w", res.index, res.err)
		}
		candidates[res.index] = res.candidate
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return candidates, nil
}

// candidateSeed mixes the base seed with the candidate index so every
// candidate owns an independent, reproducible random stream.
func candidateSeed(base int64, index int) int64 {
	return base ^ int64(uint64(index+1)*0x9e3779b97f4a7c15)
}
