package sn

import (
	"fmt"
	"sort"
	"strings"

	"bitbucket.org/Davydov/tagcomp/fatty"
)

// Pool is a measured or derived glycerolipid pool.
type Pool int

const (
	// Whole is the whole molecule, sn-1,2,3.
	Whole Pool = iota
	// Two is the sn-2 monoacylglycerol pool.
	Two
	// OneAndThree is the averaged sn-1,3 pool.
	OneAndThree
	// OneTwoTwoThree is the averaged sn-1,2/2,3 diacylglycerol pool.
	OneTwoTwoThree
)

var poolNames = [...]string{"whole", "two", "oneAndThree", "oneTwoTwoThree"}

func (p Pool) String() string {
	if p < 0 || int(p) >= len(poolNames) {
		return fmt.Sprintf("Pool(%d)", int(p))
	}
	return poolNames[p]
}

// ParsePool converts a pool name to Pool.
func ParsePool(s string) (Pool, error) {
	for i, n := range poolNames {
		if strings.EqualFold(n, s) {
			return Pool(i), nil
		}
	}
	return 0, fmt.Errorf("unknown pool %q", s)
}

// pair is a combination of two measured pools.
type pair [2]Pool

// supported are the measured pool pairs reconstruction can use.
var supported = []pair{
	{Whole, Two},
	{Whole, OneAndThree},
	{Whole, OneTwoTwoThree},
	{Two, OneAndThree},
}

// SchemaMismatchError reports malformed input.
type SchemaMismatchError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch in %s: expected %s, got %s", e.Field, e.Expected, e.Actual)
}

// Row is a single fatty acid of a sample with replicate values per
// measured pool.
type Row struct {
	Label     string
	FattyAcid fatty.FattyAcid
	Values    map[Pool][]float64
}

// Sample is a set of rows measured together.
type Sample struct {
	Name string
	Rows []Row
}

// shape is a validated sample layout.
type shape struct {
	pools      pair
	replicates int
}

// Validate checks that every row has the same supported pair of pools,
// that replicate arrays have equal non-zero lengths and that fatty
// acids are unique.
func (s Sample) Validate() error {
	_, err := s.shape()
	return err
}

func (s Sample) shape() (shape, error) {
	var sh shape
	if len(s.Rows) == 0 {
		return sh, &SchemaMismatchError{"rows", "at least one row", "none"}
	}
	pools := s.Rows[0].pools()
	if len(pools) != 2 {
		return sh, &SchemaMismatchError{"pools", "two measured pools", poolList(pools)}
	}
	sh.pools = pair{pools[0], pools[1]}
	ok := false
	for _, p := range supported {
		if p == sh.pools {
			ok = true
			break
		}
	}
	if !ok {
		return sh, &SchemaMismatchError{"pools", "a supported pool pair", poolList(pools)}
	}
	sh.replicates = len(s.Rows[0].Values[sh.pools[0]])
	if sh.replicates == 0 {
		return sh, &SchemaMismatchError{"values", "at least one replicate", "none"}
	}

	seen := make(map[fatty.FattyAcid]bool, len(s.Rows))
	for i, row := range s.Rows {
		field := fmt.Sprintf("rows[%d]", i)
		if rp := row.pools(); poolList(rp) != poolList(pools) {
			return sh, &SchemaMismatchError{field + ".pools", poolList(pools), poolList(rp)}
		}
		for _, p := range sh.pools {
			if n := len(row.Values[p]); n != sh.replicates {
				return sh, &SchemaMismatchError{
					fmt.Sprintf("%s.%s", field, p),
					fmt.Sprintf("%d replicates", sh.replicates),
					fmt.Sprintf("%d", n),
				}
			}
		}
		if row.FattyAcid.Carbons() == 0 {
			return sh, &SchemaMismatchError{field + ".fattyAcid", "a fatty acid", "none"}
		}
		if seen[row.FattyAcid] {
			return sh, &SchemaMismatchError{field + ".fattyAcid", "unique fatty acids", "duplicate " + row.FattyAcid.String()}
		}
		seen[row.FattyAcid] = true
	}
	return sh, nil
}

// pools returns the pools present in the row, sorted.
func (r Row) pools() []Pool {
	res := make([]Pool, 0, len(r.Values))
	for p := range r.Values {
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

func poolList(pools []Pool) string {
	names := make([]string, len(pools))
	for i, p := range pools {
		names[i] = p.String()
	}
	return "[" + strings.Join(names, ",") + "]"
}
