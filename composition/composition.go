// Package composition classifies predicted triacylglycerol species into
// reporting compositions and groups them.
package composition

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"bitbucket.org/Davydov/tagcomp/fatty"
	"bitbucket.org/Davydov/tagcomp/species"
)

// Dimension is the property a composition is computed from.
type Dimension int

const (
	// Mass is the molecular mass.
	Mass Dimension = iota
	// EquivalentCarbonNumber is carbons minus twice the unsaturation.
	EquivalentCarbonNumber
	// Unsaturation is the number of unsaturated bonds.
	Unsaturation
	// Species is the fatty acid identity.
	Species
	// Type is saturated or unsaturated.
	Type
)

var dimensionCodes = [...]byte{'M', 'N', 'U', 'S', 'T'}

// Stereospecificity controls which permutations of a species are
// merged.
type Stereospecificity int

const (
	// Stereospecific keeps all positions distinct.
	Stereospecific Stereospecificity = iota
	// Positional merges sn-1 and sn-3 mirrors.
	Positional
	// Aggregated merges all permutations.
	Aggregated
)

var stereospecificityCodes = [...]byte{'S', 'P', 'M'}

// Composition is a dimension with a stereospecificity, e.g. SPC is the
// positional species composition and MMC the aggregated mass.
type Composition struct {
	Dimension         Dimension
	Stereospecificity Stereospecificity
}

// Compositions lists all composition codes.
func Compositions() []Composition {
	var res []Composition
	for d := range dimensionCodes {
		for s := range stereospecificityCodes {
			res = append(res, Composition{Dimension(d), Stereospecificity(s)})
		}
	}
	return res
}

func (c Composition) valid() bool {
	return c.Dimension >= 0 && int(c.Dimension) < len(dimensionCodes) &&
		c.Stereospecificity >= 0 && int(c.Stereospecificity) < len(stereospecificityCodes)
}

func (c Composition) String() string {
	if !c.valid() {
		return fmt.Sprintf("Composition(%d,%d)", c.Dimension, c.Stereospecificity)
	}
	return string([]byte{dimensionCodes[c.Dimension], stereospecificityCodes[c.Stereospecificity], 'C'})
}

// ParseComposition reads a three letter composition code.
func ParseComposition(code string) (Composition, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 || code[2] != 'C' {
		return Composition{}, fmt.Errorf("invalid composition %q", code)
	}
	c := Composition{-1, -1}
	for i, b := range dimensionCodes {
		if code[0] == b {
			c.Dimension = Dimension(i)
		}
	}
	for i, b := range stereospecificityCodes {
		if code[1] == b {
			c.Stereospecificity = Stereospecificity(i)
		}
	}
	if !c.valid() {
		return Composition{}, fmt.Errorf("invalid composition %q", code)
	}
	return c, nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Composition) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Composition) UnmarshalText(text []byte) error {
	v, err := ParseComposition(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// scalar is true for compositions with a single total value.
func (c Composition) scalar() bool {
	return c.Stereospecificity == Aggregated && c.Dimension != Species && c.Dimension != Type
}

// Key is the classification of a species under a composition.
type Key struct {
	Composition Composition
	// Numbers are per position values, or the total in Numbers[0] for
	// aggregated numeric compositions.
	Numbers [3]float64
	// Species is set for species compositions.
	Species species.Species
}

// Key classifies a species.
func (c Composition) Key(s species.Species, st Settings) Key {
	k := Key{Composition: c}
	if c.Dimension == Species {
		switch c.Stereospecificity {
		case Positional:
			if fatty.Compare(s[2], s[0]) < 0 {
				s = s.Mirror()
			}
		case Aggregated:
			sort.Slice(s[:], func(i, j int) bool {
				return fatty.Compare(s[i], s[j]) < 0
			})
		}
		k.Species = s
		return k
	}
	if c.Dimension == Mass && c.Stereospecificity == Aggregated {
		k.Numbers[0] = fatty.RoundFloat(fatty.TriacylglycerolMass(s[0], s[1], s[2], st.Adduct), st.Round)
		return k
	}

	var x [3]float64
	for i, fa := range s {
		x[i] = c.Dimension.value(fa, st)
	}
	switch c.Stereospecificity {
	case Stereospecific:
		k.Numbers = x
	case Positional:
		if x[2] < x[0] {
			x[0], x[2] = x[2], x[0]
		}
		k.Numbers = x
	case Aggregated:
		if c.Dimension == Type {
			sort.Float64s(x[:])
			k.Numbers = x
		} else {
			k.Numbers[0] = x[0] + x[1] + x[2]
		}
	}
	return k
}

// value returns the per position value of a numeric dimension.
func (d Dimension) value(fa fatty.FattyAcid, st Settings) float64 {
	switch d {
	case Mass:
		return fatty.RoundFloat(fa.MolarMass(), st.Round)
	case EquivalentCarbonNumber:
		return float64(fa.ECN())
	case Unsaturation:
		return float64(fa.Unsaturation())
	case Type:
		if fa.IsUnsaturated() {
			return 1
		}
		return 0
	}
	panic("composition: not a numeric dimension")
}

func (k Key) String() string {
	c := k.Composition
	switch {
	case c.Dimension == Species:
		return k.Species.String()
	case c.Dimension == Type:
		b := make([]byte, 3)
		for i, v := range k.Numbers {
			b[i] = 'S'
			if v != 0 {
				b[i] = 'U'
			}
		}
		return string(b)
	case c.scalar():
		return formatNumber(k.Numbers[0])
	}
	parts := make([]string, 3)
	for i, v := range k.Numbers {
		parts[i] = formatNumber(v)
	}
	return strings.Join(parts, "/")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// CompareKeys orders keys of the same composition. It returns -1, 0 or
// 1.
func CompareKeys(a, b Key) int {
	if a.Composition != b.Composition {
		switch {
		case a.Composition.Dimension != b.Composition.Dimension:
			return sign(float64(a.Composition.Dimension - b.Composition.Dimension))
		default:
			return sign(float64(a.Composition.Stereospecificity - b.Composition.Stereospecificity))
		}
	}
	if a.Composition.Dimension == Species {
		return species.Compare(a.Species, b.Species)
	}
	for i := range a.Numbers {
		if c := sign(a.Numbers[i] - b.Numbers[i]); c != 0 {
			return c
		}
	}
	return 0
}

func sign(d float64) int {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	}
	return 0
}
