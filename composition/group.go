package composition

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/tagcomp/species"
)

var log = logging.MustGetLogger("composition")

// Filter selects buckets of a level.
type Filter struct {
	// Min is the minimal value.
	Min float64 `json:"min"`
	// Max is the maximal value, nil means no limit.
	Max *float64 `json:"max,omitempty"`
	// Exclude lists key strings to drop.
	Exclude []string `json:"exclude,omitempty"`
}

// Keep checks whether a bucket with key k and value v passes the
// filter. Missing values never pass.
func (f Filter) Keep(k Key, v float64) bool {
	if math.IsNaN(v) || v < f.Min || (f.Max != nil && v > *f.Max) {
		return false
	}
	if len(f.Exclude) > 0 {
		s := k.String()
		for _, e := range f.Exclude {
			if e == s {
				return false
			}
		}
	}
	return true
}

// Limit returns an upper bound for Filter.Max.
func Limit(v float64) *float64 {
	return &v
}

// Selection is a grouping level.
type Selection struct {
	Composition Composition `json:"composition"`
	Filter      Filter      `json:"filter"`
}

// SortBy is the sort criterion.
type SortBy int

const (
	// ByKey sorts by composition key.
	ByKey SortBy = iota
	// ByValue sorts by bucket value.
	ByValue
)

// Order is the sort direction.
type Order int

const (
	// Ascending order.
	Ascending Order = iota
	// Descending order.
	Descending
)

// Sort controls the order of buckets at every level. Ties are broken
// by ascending key.
type Sort struct {
	By        SortBy `json:"by"`
	Order     Order  `json:"order"`
	NullsLast bool   `json:"nullsLast"`
}

func (s Sort) less(ka, kb Key, va, vb float64) bool {
	if s.By == ByValue {
		na, nb := math.IsNaN(va), math.IsNaN(vb)
		switch {
		case na && !nb:
			return !s.NullsLast
		case nb && !na:
			return s.NullsLast
		case !na && !nb && va != vb:
			if s.Order == Descending {
				return va > vb
			}
			return va < vb
		}
		return CompareKeys(ka, kb) < 0
	}
	c := CompareKeys(ka, kb)
	if s.Order == Descending {
		return c > 0
	}
	return c < 0
}

// Settings control grouping.
type Settings struct {
	Selections []Selection `json:"selections"`
	// Adduct is added to aggregated masses.
	Adduct float64 `json:"adduct"`
	// Round is the number of decimals of masses.
	Round int   `json:"round"`
	Sort  Sort  `json:"sort"`
	DDOF  uint8 `json:"ddof"`
}

// DefaultSettings groups by positional species, sorted by decreasing
// value.
func DefaultSettings() Settings {
	return Settings{
		Selections: []Selection{{Composition: Composition{Species, Positional}}},
		Round:      1,
		Sort:       Sort{By: ByValue, Order: Descending, NullsLast: true},
		DDOF:       1,
	}
}

// ErrNoSelections is returned if no composition is selected.
var ErrNoSelections = errors.New("no compositions selected")

func (st Settings) validate() error {
	if len(st.Selections) == 0 {
		return ErrNoSelections
	}
	for i, sel := range st.Selections {
		if !sel.Composition.valid() {
			return fmt.Errorf("selection %d: invalid composition %v", i, sel.Composition)
		}
	}
	return nil
}

// Bucket is a group of species sharing a key at its level.
type Bucket struct {
	Key      Key             `json:"key"`
	Value    float64         `json:"value"`
	Species  []species.Value `json:"species"`
	Children []Bucket        `json:"children,omitempty"`
}

// Group classifies the prediction at every selection level. The value
// of a bucket is the sum of its species; each level is grouped within
// its parent bucket, filtered and sorted.
func Group(pred species.Prediction, st Settings) ([]Bucket, error) {
	if err := st.validate(); err != nil {
		return nil, err
	}
	res := group(pred.Sorted(), st, 0, true)
	log.Debugf("Grouped %d species into %d buckets by %v", len(pred), len(res), st.Selections[0].Composition)
	return res, nil
}

func group(values []species.Value, st Settings, level int, filter bool) []Bucket {
	sel := st.Selections[level]
	index := make(map[Key]int)
	var buckets []Bucket
	for _, v := range values {
		k := sel.Composition.Key(v.Species, st)
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, Bucket{Key: k})
		}
		buckets[i].Value += v.Value
		buckets[i].Species = append(buckets[i].Species, v)
	}

	kept := buckets[:0]
	for _, b := range buckets {
		if filter && !sel.Filter.Keep(b.Key, b.Value) {
			continue
		}
		if level+1 < len(st.Selections) {
			b.Children = group(b.Species, st, level+1, filter)
		}
		kept = append(kept, b)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return st.Sort.less(kept[i].Key, kept[j].Key, kept[i].Value, kept[j].Value)
	})
	return kept
}

// Sum returns the total value of buckets.
func Sum(buckets []Bucket) (sum float64) {
	for _, b := range buckets {
		sum += b.Value
	}
	return
}
