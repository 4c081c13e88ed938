package christie

import (
	"strings"
	"testing"

	"bitbucket.org/Davydov/tagcomp/fatty"
)

func TestLoadFromCSV(tst *testing.T) {
	data := `fatty_acid,factor
16:0,1.1
# comment

18:2Δ9c,12c,0.95
18:1Δ9c;1.02
`
	t := NewTable()
	if err := t.LoadFromCSV(strings.NewReader(data)); err != nil {
		tst.Fatal("load error:", err)
	}
	if t.Len() != 3 {
		tst.Error("wrong number of factors:", t.Len())
	}
	tests := []struct {
		fa     string
		factor float64
	}{
		{"16:0", 1.1},
		{"18:2Δ12c,9c", 0.95},
		{"18:1Δ9c", 1.02},
		{"20:0", 1},
	}
	for _, c := range tests {
		if f := t.Factor(fatty.MustParse(c.fa)); f != c.factor {
			tst.Errorf("%s: expected %v, got %v", c.fa, c.factor, f)
		}
	}
}

func TestLoadErrors(tst *testing.T) {
	for _, data := range []string{
		"h\n16:0\n",
		"h\nxx,1\n",
		"h\n16:0,abc\n",
		"h\n16:0,-1\n",
	} {
		if err := NewTable().LoadFromCSV(strings.NewReader(data)); err == nil {
			tst.Errorf("expected error for %q", data)
		}
	}
}

func TestEmptyTable(tst *testing.T) {
	t := NewTable()
	if t.Len() != 0 {
		tst.Error("new table must be empty:", t.Len())
	}
	if t.Factor(fatty.MustParse("18:1Δ9c")) != 1 {
		tst.Error("empty table must not correct")
	}
}

func TestNilTable(tst *testing.T) {
	var t *Table
	if t.Factor(fatty.MustParse("16:0")) != 1 {
		tst.Error("nil table must default to 1")
	}
}
