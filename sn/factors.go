package sn

import (
	"errors"

	"bitbucket.org/Davydov/tagcomp/fatty"
	"bitbucket.org/Davydov/tagcomp/stats"
)

// ErrUndefinedRatio is returned for factors with zero or missing
// denominators.
var ErrUndefinedRatio = errors.New("undefined ratio")

// positions is the divisor of normalized factors.
const positions = 3

// ratio divides x by y, reporting missing and zero denominators.
func ratio(x, y float64) (float64, error) {
	if stats.IsMissing(x) || stats.IsMissing(y) || y == 0 {
		return stats.Missing(), ErrUndefinedRatio
	}
	return x / y, nil
}

// EnrichmentFactor is p2 / (3w), or p2 / w if not normalized.
func EnrichmentFactor(p2, w float64, normalize bool) (float64, error) {
	if normalize {
		w *= positions
	}
	return ratio(p2, w)
}

// SelectivityFactor is p2 * uw / (3 * w * up2), or without the factor
// 3 if not normalized. uw and up2 are the unsaturated sums of the whole
// molecule and sn-2 distributions.
func SelectivityFactor(p2, w, uw, up2 float64, normalize bool) (float64, error) {
	d := w * up2
	if normalize {
		d *= positions
	}
	return ratio(p2*uw, d)
}

// Enrichment computes enrichment factors for every fatty acid of w.
// Undefined factors are missing.
func Enrichment(p2, w Distribution, normalize bool) Distribution {
	return w.Map(func(fa fatty.FattyAcid, v float64) float64 {
		ef, _ := EnrichmentFactor(p2[fa], v, normalize)
		return ef
	})
}

// Selectivity computes selectivity factors for every fatty acid of w.
func Selectivity(p2, w Distribution, normalize bool) Distribution {
	uw, up2 := w.Unsaturated(), p2.Unsaturated()
	return w.Map(func(fa fatty.FattyAcid, v float64) float64 {
		sf, _ := SelectivityFactor(p2[fa], v, uw, up2, normalize)
		return sf
	})
}
