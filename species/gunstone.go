package species

import (
	"math"
)

// Gunstone holds the saturation class fractions of the Gunstone
// theory for a given saturated fraction of the whole molecule.
type Gunstone struct {
	S, U float64
	// Classes are the fractions of species with k unsaturated residues,
	// k = 0..3.
	Classes [4]float64
}

// NewGunstone computes the class fractions for the saturated fraction s.
func NewGunstone(s float64) Gunstone {
	u := 1 - s
	g := Gunstone{S: s, U: u}
	if s <= 2.0/3.0 {
		g.Classes = [4]float64{
			0,
			math.Pow(1.5*s, 2),
			3 * s * (3*u - 1) / 2,
			math.Pow((3*u-1)/2, 2),
		}
	} else {
		g.Classes = [4]float64{3*s - 2, 3 * u, 0, 0}
	}
	return g
}

// random returns the fraction of the class k expected under random
// distribution.
func (g Gunstone) random(k int) float64 {
	s, u := g.S, g.U
	switch k {
	case 0:
		return s * s * s
	case 1:
		return 3 * s * s * u
	case 2:
		return 3 * s * u * u
	case 3:
		return u * u * u
	}
	panic("species: class out of range")
}

// Factor returns the ratio of the class k fraction to the random
// expectation. A class with zero expectation has factor 0.
func (g Gunstone) Factor(k int) float64 {
	r := g.random(k)
	if r == 0 {
		return 0
	}
	return g.Classes[k] / r
}
