// Package fatty describes fatty acids: notation, saturation and the
// elemental properties used by the positional analysis.
package fatty

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Bond is a single unsaturation of the acyl chain.
type Bond struct {
	// Index is the Δ position counted from the carboxyl carbon, zero
	// when unknown.
	Index int
	// Triple marks an acetylenic bond.
	Triple bool
	// Trans marks a trans double bond.
	Trans bool
}

// FattyAcid is an immutable fatty acid identifier. Two values are equal
// (==) iff their carbon counts and sorted unsaturation lists match, so
// FattyAcid can be used directly as a map key.
type FattyAcid struct {
	carbons int
	doubles int
	triples int
	trans   int
	bonds   string
}

var notation = regexp.MustCompile(`^(\d+):(\d+)(?::(\d+))?(?:[ΔD](.+))?$`)

// New creates a fatty acid with the given number of carbons and
// unsaturated bonds. The bond order is irrelevant.
func New(carbons int, bonds ...Bond) FattyAcid {
	sorted := make([]Bond, len(bonds))
	copy(sorted, bonds)
	sort.SliceStable(sorted, func(i, j int) bool {
		return bondLess(sorted[i], sorted[j])
	})
	fa := FattyAcid{carbons: carbons}
	known := false
	parts := make([]string, len(sorted))
	for i, b := range sorted {
		switch {
		case b.Triple:
			fa.triples++
		case b.Trans:
			fa.doubles++
			fa.trans++
		default:
			fa.doubles++
		}
		if b.Index > 0 || b.Trans {
			known = true
		}
		parts[i] = b.String()
	}
	if known {
		fa.bonds = strings.Join(parts, ",")
	}
	return fa
}

// Saturated returns a saturated fatty acid with n carbons.
func Saturated(n int) FattyAcid {
	return FattyAcid{carbons: n}
}

// Parse reads the C:D[:T][Δi[c|t|a],...] notation, e.g. "16:0",
// "18:2Δ9c,12c", "18:1Δ9t" or "18:0:1Δ9a".
func Parse(s string) (FattyAcid, error) {
	m := notation.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return FattyAcid{}, fmt.Errorf("invalid fatty acid notation %q", s)
	}
	carbons, _ := strconv.Atoi(m[1])
	doubles, _ := strconv.Atoi(m[2])
	triples := 0
	if m[3] != "" {
		triples, _ = strconv.Atoi(m[3])
	}
	if carbons == 0 {
		return FattyAcid{}, fmt.Errorf("fatty acid %q has no carbons", s)
	}
	if m[4] == "" {
		bonds := make([]Bond, 0, doubles+triples)
		for i := 0; i < doubles; i++ {
			bonds = append(bonds, Bond{})
		}
		for i := 0; i < triples; i++ {
			bonds = append(bonds, Bond{Triple: true})
		}
		return New(carbons, bonds...), nil
	}
	bonds, err := parseBonds(m[4])
	if err != nil {
		return FattyAcid{}, fmt.Errorf("fatty acid %q: %w", s, err)
	}
	fa := New(carbons, bonds...)
	if fa.doubles != doubles || fa.triples != triples {
		return FattyAcid{}, fmt.Errorf("fatty acid %q: %d:%d bonds listed, header says %d:%d",
			s, fa.doubles, fa.triples, doubles, triples)
	}
	for _, b := range bonds {
		if b.Index >= carbons {
			return FattyAcid{}, fmt.Errorf("fatty acid %q: bond index %d out of chain", s, b.Index)
		}
	}
	return fa, nil
}

// MustParse is like Parse but panics on error. It is intended for
// constant notations in tables and tests.
func MustParse(s string) FattyAcid {
	fa, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return fa
}

func parseBonds(s string) ([]Bond, error) {
	var bonds []Bond
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, errors.New("empty bond")
		}
		var b Bond
		switch item[len(item)-1] {
		case 'c':
			item = item[:len(item)-1]
		case 't':
			b.Trans = true
			item = item[:len(item)-1]
		case 'a':
			b.Triple = true
			item = item[:len(item)-1]
		}
		if item != "?" {
			index, err := strconv.Atoi(item)
			if err != nil || index <= 0 {
				return nil, fmt.Errorf("invalid bond index %q", item)
			}
			b.Index = index
		}
		bonds = append(bonds, b)
	}
	return bonds, nil
}

// bondLess orders known positions first, then by kind.
func bondLess(a, b Bond) bool {
	if (a.Index == 0) != (b.Index == 0) {
		return b.Index == 0
	}
	if a.Index != b.Index {
		return a.Index < b.Index
	}
	if a.Triple != b.Triple {
		return !a.Triple
	}
	return !a.Trans && b.Trans
}

// String returns the bond in Δ notation.
func (b Bond) String() string {
	index := "?"
	if b.Index > 0 {
		index = strconv.Itoa(b.Index)
	}
	switch {
	case b.Triple:
		return index + "a"
	case b.Trans:
		return index + "t"
	}
	return index + "c"
}

// Carbons returns the carbon count.
func (fa FattyAcid) Carbons() int {
	return fa.carbons
}

// DoubleBonds returns the number of double bonds.
func (fa FattyAcid) DoubleBonds() int {
	return fa.doubles
}

// TripleBonds returns the number of triple bonds.
func (fa FattyAcid) TripleBonds() int {
	return fa.triples
}

// Unsaturation returns the degree of unsaturation of the chain, a
// triple bond counting twice.
func (fa FattyAcid) Unsaturation() int {
	return fa.doubles + 2*fa.triples
}

// IsSaturated is true for a chain without double or triple bonds.
func (fa FattyAcid) IsSaturated() bool {
	return fa.doubles+fa.triples == 0
}

// IsUnsaturated is the complement of IsSaturated.
func (fa FattyAcid) IsUnsaturated() bool {
	return !fa.IsSaturated()
}

// IsTrans is true if any double bond has trans configuration.
func (fa FattyAcid) IsTrans() bool {
	return fa.trans > 0
}

// IsUnsaturatedAt reports whether the chain has a bond at Δ index.
func (fa FattyAcid) IsUnsaturatedAt(index int) bool {
	for _, b := range fa.Bonds() {
		if b.Index == index {
			return true
		}
	}
	return false
}

// ECN returns the equivalent carbon number.
func (fa FattyAcid) ECN() int {
	return fa.carbons - 2*fa.Unsaturation()
}

// Bonds returns the sorted unsaturated bonds.
func (fa FattyAcid) Bonds() []Bond {
	if fa.bonds == "" {
		bonds := make([]Bond, 0, fa.doubles+fa.triples)
		for i := 0; i < fa.doubles; i++ {
			bonds = append(bonds, Bond{})
		}
		for i := 0; i < fa.triples; i++ {
			bonds = append(bonds, Bond{Triple: true})
		}
		return bonds
	}
	bonds, err := parseBonds(fa.bonds)
	if err != nil {
		panic("fatty: corrupted canonical bonds " + fa.bonds)
	}
	return bonds
}

// String returns the canonical notation.
func (fa FattyAcid) String() string {
	s := strconv.Itoa(fa.carbons) + ":" + strconv.Itoa(fa.doubles)
	if fa.triples > 0 {
		s += ":" + strconv.Itoa(fa.triples)
	}
	if fa.bonds != "" {
		s += "Δ" + fa.bonds
	}
	return s
}

// MarshalText implements encoding.TextMarshaler.
func (fa FattyAcid) MarshalText() ([]byte, error) {
	return []byte(fa.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (fa *FattyAcid) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*fa = v
	return nil
}

// Compare orders fatty acids by carbons, unsaturation and then by the
// canonical bond list. It returns -1, 0 or 1.
func Compare(a, b FattyAcid) int {
	switch {
	case a.carbons != b.carbons:
		return sign(a.carbons - b.carbons)
	case a.Unsaturation() != b.Unsaturation():
		return sign(a.Unsaturation() - b.Unsaturation())
	case a.triples != b.triples:
		return sign(a.triples - b.triples)
	case a.trans != b.trans:
		return sign(a.trans - b.trans)
	}
	return strings.Compare(a.bonds, b.bonds)
}

func sign(d int) int {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	}
	return 0
}
