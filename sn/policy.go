package sn

import (
	"bitbucket.org/Davydov/tagcomp/christie"
)

// Normalize selects which distributions are rescaled to sum to one.
type Normalize struct {
	// Experimental are the measured pools.
	Experimental bool `json:"experimental"`
	// Theoretical are the derived pools.
	Theoretical bool `json:"theoretical"`
}

// Standard describes the internal standard.
type Standard struct {
	// Label of the standard row, empty if there is none.
	Label string `json:"label,omitempty"`
	// Amount scales the standard factors; zero means 1.
	Amount float64 `json:"amount,omitempty"`
}

// Threshold marks minor fatty acids.
type Threshold struct {
	// Value is the minimal normalized fraction in any measured pool.
	Value float64 `json:"value"`
	// Filter removes minor fatty acids from positional distributions.
	Filter bool `json:"filter"`
}

// Policy controls the reconstruction.
type Policy struct {
	DDOF             uint8           `json:"ddof"`
	Weighted         bool            `json:"weighted"`
	Christie         *christie.Table `json:"christie,omitempty"`
	Unsigned         bool            `json:"unsigned"`
	Normalize        Normalize       `json:"normalize"`
	NormalizeFactors bool            `json:"normalizeFactors"`
	Standard         Standard        `json:"standard"`
	Threshold        Threshold       `json:"threshold"`
}

// DefaultPolicy returns the usual settings: ddof 1, unsigned, all
// distributions and factors normalized, no correction.
func DefaultPolicy() Policy {
	return Policy{
		DDOF:             1,
		Unsigned:         true,
		Normalize:        Normalize{Experimental: true, Theoretical: true},
		NormalizeFactors: true,
	}
}

// theoretical applies clipping and normalization to a derived
// distribution.
func (p Policy) theoretical(d Distribution) Distribution {
	if p.Unsigned {
		d = d.Clip()
	}
	if p.Normalize.Theoretical {
		d = d.Normalize()
	}
	return d
}

// experimental applies correction, weighting and normalization to a
// measured distribution. Weighting always renormalizes.
func (p Policy) experimental(d Distribution) Distribution {
	if p.Christie != nil {
		d = d.Correct(p.Christie)
	}
	if p.Weighted {
		d = d.Weight()
	}
	if p.Normalize.Experimental {
		d = d.Normalize()
	}
	return d
}
