// Package species predicts the triacylglycerol species composition from
// positional fatty acid distributions.
package species

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"bitbucket.org/Davydov/tagcomp/fatty"
)

// Species is a triacylglycerol: fatty acids at sn-1, sn-2 and sn-3.
type Species [3]fatty.FattyAcid

// Mirror swaps sn-1 and sn-3.
func (s Species) Mirror() Species {
	return Species{s[2], s[1], s[0]}
}

// Unsaturated returns the number of unsaturated residues.
func (s Species) Unsaturated() (k int) {
	for _, fa := range s {
		if fa.IsUnsaturated() {
			k++
		}
	}
	return
}

func (s Species) String() string {
	return s[0].String() + "/" + s[1].String() + "/" + s[2].String()
}

// Compare orders species position by position.
func Compare(a, b Species) int {
	for i := range a {
		if c := fatty.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

// Value is a species with its predicted mole fraction.
type Value struct {
	Species Species `json:"species"`
	Value   float64 `json:"value"`
}

// MarshalText encodes the species for use as a JSON key.
func (s Species) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText reads the sn-1/sn-2/sn-3 notation.
func (s *Species) UnmarshalText(text []byte) error {
	parts := strings.Split(string(text), "/")
	if len(parts) != 3 {
		return fmt.Errorf("invalid species %q", text)
	}
	for i, p := range parts {
		fa, err := fatty.Parse(p)
		if err != nil {
			return err
		}
		s[i] = fa
	}
	return nil
}

// Prediction maps species to mole fractions.
type Prediction map[Species]float64

// Sum returns the total fraction.
func (p Prediction) Sum() float64 {
	values := make([]float64, 0, len(p))
	for _, s := range p.Species() {
		values = append(values, p[s])
	}
	return floats.Sum(values)
}

// Species returns the predicted species in Compare order.
func (p Prediction) Species() []Species {
	res := make([]Species, 0, len(p))
	for s := range p {
		res = append(res, s)
	}
	sort.Slice(res, func(i, j int) bool {
		return Compare(res[i], res[j]) < 0
	})
	return res
}

// Sorted returns the species by decreasing fraction; ties are broken by
// Compare.
func (p Prediction) Sorted() []Value {
	res := make([]Value, 0, len(p))
	for _, s := range p.Species() {
		res = append(res, Value{s, p[s]})
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Value > res[j].Value
	})
	return res
}

// Model is a species composition model.
type Model int

const (
	// VanderWalModel assumes independent positions.
	VanderWalModel Model = iota
	// GunstoneModel corrects for the preference of unsaturated fatty
	// acids for sn-2.
	GunstoneModel
)

var modelNames = [...]string{"vanderwal", "gunstone"}

func (m Model) String() string {
	if m < 0 || int(m) >= len(modelNames) {
		return "unknown"
	}
	return modelNames[m]
}

// ModelNames returns the names accepted by ParseModel.
func ModelNames() []string {
	return modelNames[:]
}

// ParseModel converts a model name to Model.
func ParseModel(s string) (Model, error) {
	for i, n := range modelNames {
		if strings.EqualFold(n, s) {
			return Model(i), nil
		}
	}
	return 0, fmt.Errorf("unknown model: %s", s)
}
