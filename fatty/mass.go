package fatty

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Monoisotopic masses.
const (
	MassH  = 1.0078250321
	MassC  = 12.0
	MassN  = 14.0030740052
	MassO  = 15.9949146221
	MassNa = 22.9897692820
	MassLi = 7.0160034366
)

const (
	// Glycerol is C3H8O3.
	Glycerol = 3*MassC + 8*MassH + 3*MassO
	// Water is lost once per esterified acyl chain.
	Water = 2*MassH + MassO
)

// Adducts are the ion masses added to a triacylglycerol in mass
// compositions.
var Adducts = map[string]float64{
	"None": 0,
	"H":    MassH,
	"NH4":  MassN + 4*MassH,
	"Na":   MassNa,
	"Li":   MassLi,
}

// AdductNames returns the known adduct names, sorted.
func AdductNames() []string {
	names := make([]string, 0, len(Adducts))
	for n := range Adducts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseAdduct accepts either an adduct name (case-insensitive) or a
// literal mass.
func ParseAdduct(s string) (float64, error) {
	for n, m := range Adducts {
		if strings.EqualFold(n, s) {
			return m, nil
		}
	}
	m, err := strconv.ParseFloat(s, 64)
	if err != nil || m < 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return 0, fmt.Errorf("unknown adduct %q", s)
	}
	return m, nil
}

// MolarMass returns the monoisotopic mass of the free acid
// CnH(2n-2u)O2.
func (fa FattyAcid) MolarMass() float64 {
	h := 2*fa.carbons - 2*fa.Unsaturation()
	return float64(fa.carbons)*MassC + float64(h)*MassH + 2*MassO
}

// TriacylglycerolMass returns the mass of the triacylglycerol esterified
// with a, b and c plus the adduct mass.
func TriacylglycerolMass(a, b, c FattyAcid, adduct float64) float64 {
	return Glycerol + a.MolarMass() + b.MolarMass() + c.MolarMass() - 3*Water + adduct
}

// RoundFloat rounds val to the given number of decimal places.
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
