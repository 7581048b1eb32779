package raymarch

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"maxellipsoid/internal/models"
)

// ErrNoDirections is returned when a contact search has no usable direction.
var ErrNoDirections = errors.New("no usable search direction")

// Contact is the nearest boundary found by NearestContact, as the unit
// direction of the winning ray and the distance travelled along it.
type Contact struct {
	Direction r3.Vec
	Length    float64

	// Truncated is copied from the winning ray's Exit.
	Truncated bool
}

// Displacement returns the vector from the seed to the contact.
func (c Contact) Displacement() r3.Vec {
	return r3.Scale(c.Length, c.Direction)
}

// NearestContact marches a unit-step ray from seed along each direction and
// returns the shortest exit displacement. Ties keep the first direction in
// the slice. Zero and non-finite directions are skipped.
func NearestContact(grid models.Grid, seed r3.Vec, directions []r3.Vec) (Contact, error) {
	best := Contact{}
	bestDist := math.Inf(1)
	found := false

	for _, d := range directions {
		n := r3.Norm(d)
		if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			continue
		}
		u := r3.Scale(1/n, d)
		exit := March(grid, seed, u)
		if dist := r3.Norm(r3.Sub(exit.Position, seed)); dist < bestDist {
			best = Contact{Direction: u, Length: dist, Truncated: exit.Truncated}
			bestDist = dist
			found = true
		}
	}

	if !found {
		return Contact{}, ErrNoDirections
	}
	return best, nil
}
