package stats

import (
	"sort"
)

// Keyed is a per-sample value table.
type Keyed[K comparable] struct {
	Name   string
	Values map[K]float64
}

// NewKeyed creates a named per-sample value table.
func NewKeyed[K comparable](name string, values map[K]float64) Keyed[K] {
	return Keyed[K]{Name: name, Values: values}
}

// Joined is an outer join of samples. Each row holds one value per
// sample in Names order; absent values are missing.
type Joined[K comparable] struct {
	Names []string
	Rows  map[K][]float64
}

type column[K comparable] struct {
	name   string
	values func(K) (float64, bool)
}

// Merge performs a full outer join of samples by key. Columns are
// ordered by sample name, so the result does not depend on the
// argument order as long as names are unique.
func Merge[K comparable](samples ...Keyed[K]) Joined[K] {
	columns := make([]column[K], len(samples))
	for i, s := range samples {
		values := s.Values
		columns[i] = column[K]{s.Name, func(k K) (float64, bool) {
			v, ok := values[k]
			return v, ok
		}}
	}
	keys := make(map[K]struct{})
	for _, s := range samples {
		for k := range s.Values {
			keys[k] = struct{}{}
		}
	}
	return join(columns, keys)
}

// Join merges two joined tables. Join is associative and commutative
// with respect to sample names.
func (j Joined[K]) Join(other Joined[K]) Joined[K] {
	columns := make([]column[K], 0, len(j.Names)+len(other.Names))
	keys := make(map[K]struct{})
	for _, t := range []Joined[K]{j, other} {
		rows := t.Rows
		for i, name := range t.Names {
			i := i
			columns = append(columns, column[K]{name, func(k K) (float64, bool) {
				row, ok := rows[k]
				if !ok {
					return 0, false
				}
				return row[i], true
			}})
		}
		for k := range t.Rows {
			keys[k] = struct{}{}
		}
	}
	return join(columns, keys)
}

func join[K comparable](columns []column[K], keys map[K]struct{}) Joined[K] {
	sort.SliceStable(columns, func(i, j int) bool {
		return columns[i].name < columns[j].name
	})
	res := Joined[K]{
		Names: make([]string, len(columns)),
		Rows:  make(map[K][]float64, len(keys)),
	}
	for i, c := range columns {
		res.Names[i] = c.name
	}
	for k := range keys {
		row := make([]float64, len(columns))
		for i, c := range columns {
			v, ok := c.values(k)
			if !ok {
				v = Missing()
			}
			row[i] = v
		}
		res.Rows[k] = row
	}
	return res
}

// Aggregate summarizes every row of the join.
func (j Joined[K]) Aggregate(ddof uint8) map[K]Summary {
	res := make(map[K]Summary, len(j.Rows))
	for k, row := range j.Rows {
		res[k] = Aggregate(row, ddof)
	}
	return res
}
