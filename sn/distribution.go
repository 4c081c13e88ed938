package sn

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"bitbucket.org/Davydov/tagcomp/christie"
	"bitbucket.org/Davydov/tagcomp/fatty"
	"bitbucket.org/Davydov/tagcomp/stats"
)

// Distribution is a positional distribution: fatty acid to mole
// fraction. Operations never modify the receiver.
type Distribution map[fatty.FattyAcid]float64

// Positional holds the three positional distributions of a sample.
type Positional struct {
	Whole       Distribution
	OneAndThree Distribution
	Two         Distribution
}

// Keys returns the fatty acids of the distribution in Compare order.
func (d Distribution) Keys() []fatty.FattyAcid {
	keys := make([]fatty.FattyAcid, 0, len(d))
	for fa := range d {
		keys = append(keys, fa)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fatty.Compare(keys[i], keys[j]) < 0
	})
	return keys
}

// values returns the present values in key order.
func (d Distribution) values() []float64 {
	keys := d.Keys()
	res := make([]float64, 0, len(keys))
	for _, fa := range keys {
		if v := d[fa]; !stats.IsMissing(v) {
			res = append(res, v)
		}
	}
	return res
}

// Sum returns the sum of the present values.
func (d Distribution) Sum() float64 {
	return floats.Sum(d.values())
}

// Map returns a new distribution with f applied to every value.
func (d Distribution) Map(f func(fa fatty.FattyAcid, v float64) float64) Distribution {
	res := make(Distribution, len(d))
	for fa, v := range d {
		res[fa] = f(fa, v)
	}
	return res
}

// Scale multiplies every value by x.
func (d Distribution) Scale(x float64) Distribution {
	return d.Map(func(_ fatty.FattyAcid, v float64) float64 {
		return v * x
	})
}

// Normalize rescales the distribution to sum to one. A distribution
// with zero sum is returned unchanged.
func (d Distribution) Normalize() Distribution {
	sum := d.Sum()
	if sum == 0 {
		return d.Scale(1)
	}
	return d.Scale(1 / sum)
}

// Clip sets negative values to zero.
func (d Distribution) Clip() Distribution {
	return d.Map(func(_ fatty.FattyAcid, v float64) float64 {
		if v < 0 {
			return 0
		}
		return v
	})
}

// Weight converts mole fractions to mass fractions.
func (d Distribution) Weight() Distribution {
	return d.Map(func(fa fatty.FattyAcid, v float64) float64 {
		return v * fa.MolarMass()
	}).Normalize()
}

// Correct multiplies every value by its detector response factor.
func (d Distribution) Correct(t *christie.Table) Distribution {
	return d.Map(func(fa fatty.FattyAcid, v float64) float64 {
		return v * t.Factor(fa)
	})
}

// Unsaturated returns the sum over unsaturated non-trans fatty acids.
func (d Distribution) Unsaturated() float64 {
	var sum float64
	for fa, v := range d {
		if fa.IsUnsaturated() && !fa.IsTrans() && !stats.IsMissing(v) {
			sum += v
		}
	}
	return sum
}

// Saturated returns the sum over saturated fatty acids.
func (d Distribution) Saturated() float64 {
	var sum float64
	for fa, v := range d {
		if fa.IsSaturated() && !stats.IsMissing(v) {
			sum += v
		}
	}
	return sum
}

// combine applies f over the union of keys. Absent values are zero.
func combine(a, b Distribution, f func(x, y float64) float64) Distribution {
	res := make(Distribution, len(a))
	for fa, x := range a {
		res[fa] = f(x, b[fa])
	}
	for fa, y := range b {
		if _, ok := a[fa]; !ok {
			res[fa] = f(0, y)
		}
	}
	return res
}

// OneAndThreeFromTwo derives sn-1,3 from the whole molecule and sn-2:
// p13 = (3w - p2) / 2.
func OneAndThreeFromTwo(w, p2 Distribution) Distribution {
	return combine(w, p2, func(w, p2 float64) float64 {
		return (3*w - p2) / 2
	})
}

// TwoFromOneAndThree derives sn-2 from the whole molecule and sn-1,3:
// p2 = 3w - 2p13.
func TwoFromOneAndThree(w, p13 Distribution) Distribution {
	return combine(w, p13, func(w, p13 float64) float64 {
		return 3*w - 2*p13
	})
}

// FromDiacylglycerols derives sn-1,3 and sn-2 from the whole molecule
// and the averaged sn-1,2/2,3 diacylglycerols:
// p13 = 3w - 2p1223 and p2 = 4p1223 - 3w.
func FromDiacylglycerols(w, p1223 Distribution) (p13, p2 Distribution) {
	p13 = combine(w, p1223, func(w, p1223 float64) float64 {
		return 3*w - 2*p1223
	})
	p2 = combine(w, p1223, func(w, p1223 float64) float64 {
		return 4*p1223 - 3*w
	})
	return
}

// WholeFrom derives the whole molecule: w = (2p13 + p2) / 3.
func WholeFrom(p13, p2 Distribution) Distribution {
	return combine(p13, p2, func(p13, p2 float64) float64 {
		return (2*p13 + p2) / 3
	})
}
