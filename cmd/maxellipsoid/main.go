package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"maxellipsoid/internal/logging"
	"maxellipsoid/internal/models"
	"maxellipsoid/pkg/config"
	"maxellipsoid/pkg/growth"
	"maxellipsoid/pkg/phantom"
	"maxellipsoid/pkg/seeds"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "config.yaml", "YAML configuration file (defaults are used if it does not exist)")
	initConfig := flag.Bool("init-config", false, "Write the default configuration to -config and exit")
	radius := flag.Float64("radius", 0, "Maximum sampling radius (overrides sampling.maxSamplingRadius)")
	pixelWidth := flag.Float64("pixel-width", 0, "Voxel size (overrides sampling.pixelWidth)")
	numCores := flag.Int("cores", 0, "Number of CPU cores to use (overrides processing.numCores)")
	randomSeed := flag.Int64("seed", 0, "Random seed (overrides sampling.randomSeed)")
	seedsFile := flag.String("seeds", "", "File with one seed per line; the phantom centre is used if empty")
	minSpacing := flag.Float64("min-spacing", 0, "Drop seeds closer than this (overrides processing.minSeedSpacing)")
	surfacePoints := flag.Int("surface-points", 0, "Print this many surface points per ellipsoid")
	flag.Parse()

	if *initConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write default config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags given explicitly win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "radius":
			cfg.Sampling.MaxSamplingRadius = *radius
		case "pixel-width":
			cfg.Sampling.PixelWidth = *pixelWidth
		case "cores":
			cfg.Processing.NumCores = *numCores
		case "seed":
			cfg.Sampling.RandomSeed = *randomSeed
		case "min-spacing":
			cfg.Processing.MinSeedSpacing = *minSpacing
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	runID := uuid.New().String()
	if cfg.Output.Verbose {
		logging.SetLogger(func(format string, v ...interface{}) {
			log.Printf("[%s] "+format, append([]interface{}{runID}, v...)...)
		})
	} else {
		logging.SetLogger(nil)
	}

	grid, centre, err := buildPhantom(cfg)
	if err != nil {
		log.Fatalf("Failed to build phantom: %v", err)
	}

	seedList, err := loadSeeds(*seedsFile, centre)
	if err != nil {
		log.Fatalf("Failed to load seeds: %v", err)
	}
	seedList = seeds.Thin(seedList, cfg.Processing.MinSeedSpacing)
	if len(seedList) == 0 {
		log.Fatalf("No seeds to grow from")
	}

	fmt.Println("================================")
	fmt.Println("MAXIMAL INSCRIBED ELLIPSOID SEARCH")
	fmt.Println("================================")
	fmt.Printf("Run: %s\n", runID)
	fmt.Printf("Phantom: %s %dx%dx%d, %d foreground voxels\n",
		cfg.Phantom.Shape, grid.Width, grid.Height, grid.Depth, grid.Count())
	fmt.Printf("Seeds: %d\n", len(seedList))
	if len(seedList) > 1 {
		spacing := seeds.Spacing(seedList)
		sort.Float64s(spacing)
		fmt.Printf("Closest seed pair: %.3f\n", spacing[0])
	}

	params := &growth.Params{
		MaxSamplingRadius: cfg.Sampling.MaxSamplingRadius,
		PixelWidth:        cfg.Sampling.PixelWidth,
		NumCores:          cfg.Processing.NumCores,
		RandomSeed:        cfg.Sampling.RandomSeed,
	}
	fmt.Printf("Directions per seed: %d (%d in-plane)\n\n", params.SphereSamples(), params.PlaneSamples())

	startTime := time.Now()
	results := growth.NewGrower(params).GrowAll(seedList, grid)
	processingTime := time.Since(startTime)

	rng := rand.New(rand.NewSource(cfg.Sampling.RandomSeed))
	var volumes []float64
	for _, r := range results {
		p := r.Seed.Position
		if r.Err != nil {
			fmt.Printf("seed %d (%.2f, %.2f, %.2f): %v\n", r.Seed.Index, p.X, p.Y, p.Z, r.Err)
			continue
		}
		e := r.Result.Ellipsoid
		volumes = append(volumes, e.Volume())
		fmt.Printf("seed %d (%.2f, %.2f, %.2f): %s volume %.3f\n", r.Seed.Index, p.X, p.Y, p.Z, e, e.Volume())
		for i, axis := range e.Axes() {
			d := axis.Direction
			fmt.Printf("  axis %d: length %.3f direction (%.4f, %.4f, %.4f)\n", i, axis.Length, d.X, d.Y, d.Z)
		}
		fmt.Printf("  candidates: %d eligible of %d, volume mean %.3f sd %.3f\n",
			r.Result.Eligible, r.Result.Candidates, r.Result.VolumeMean, r.Result.VolumeStdDev)

		if *surfacePoints > 0 {
			pts, err := e.SampleSurface(*surfacePoints, rng)
			if err != nil {
				log.Printf("Warning: Failed to sample surface: %v", err)
				continue
			}
			for _, pt := range pts {
				fmt.Printf("  %.4f %.4f %.4f\n", pt.X, pt.Y, pt.Z)
			}
		}
	}

	fmt.Printf("\nGrew %d of %d ellipsoids in %.2f seconds\n", len(volumes), len(results), processingTime.Seconds())
	if len(volumes) > 0 {
		sort.Float64s(volumes)
		fmt.Printf("Median volume: %.3f\n", stat.Quantile(0.5, stat.Empirical, volumes, nil))
	}
}

// buildPhantom rasterises the configured shape and returns it with its centre.
func buildPhantom(cfg *config.Config) (*models.BinaryVolume, r3.Vec, error) {
	p := cfg.Phantom
	switch p.Shape {
	case config.ShapeCylinder:
		centre := r3.Vec{X: p.Centre[0], Y: p.Centre[1], Z: (p.ZMin + p.ZMax) / 2}
		v, err := phantom.Cylinder(p.Width, p.Height, p.Depth, centre, p.Radius, p.ZMin, p.ZMax)
		return v, centre, err
	case config.ShapeSphere:
		centre := r3.Vec{X: p.Centre[0], Y: p.Centre[1], Z: p.Centre[2]}
		v, err := phantom.Sphere(p.Width, p.Height, p.Depth, centre, p.Radius)
		return v, centre, err
	case config.ShapeBox:
		lo := r3.Vec{X: p.BoxMin[0], Y: p.BoxMin[1], Z: p.BoxMin[2]}
		hi := r3.Vec{X: p.BoxMax[0], Y: p.BoxMax[1], Z: p.BoxMax[2]}
		v, err := phantom.Box(p.Width, p.Height, p.Depth, lo, hi)
		return v, r3.Scale(0.5, r3.Add(lo, hi)), err
	default:
		return nil, r3.Vec{}, fmt.Errorf("unknown phantom shape %q", p.Shape)
	}
}

// loadSeeds reads seeds from path, or returns the single seed fallback when
// path is empty.
func loadSeeds(path string, fallback r3.Vec) ([]models.Seed, error) {
	if path == "" {
		return []models.Seed{{Position: fallback}}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return seeds.Parse(f)
}
