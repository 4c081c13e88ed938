package sn

import (
	"errors"
	"math"
	"testing"

	"bitbucket.org/Davydov/tagcomp/christie"
	"bitbucket.org/Davydov/tagcomp/fatty"
	"bitbucket.org/Davydov/tagcomp/stats"
)

const smallDiff = 1e-9

var (
	pal = fatty.MustParse("16:0")
	ole = fatty.MustParse("18:1Δ9c")
	lin = fatty.MustParse("18:2Δ9c,12c")
	hep = fatty.MustParse("17:0")
)

func appreq(a, b float64) bool {
	return math.Abs(a-b) <= smallDiff
}

func distreq(a, b Distribution) bool {
	if len(a) != len(b) {
		return false
	}
	for fa, v := range a {
		if !appreq(v, b[fa]) {
			return false
		}
	}
	return true
}

func TestRoundTrip(tst *testing.T) {
	w := Distribution{pal: 0.3, ole: 0.4, lin: 0.3}
	p2 := Distribution{pal: 0.05, ole: 0.55, lin: 0.4}
	p13 := OneAndThreeFromTwo(w, p2)
	expected := Distribution{pal: 0.425, ole: 0.325, lin: 0.25}
	if !distreq(p13, expected) {
		tst.Error("wrong sn-1,3:", p13)
	}
	if !distreq(WholeFrom(p13, p2), w) {
		tst.Error("whole molecule is not reproduced:", WholeFrom(p13, p2))
	}
	if !distreq(TwoFromOneAndThree(w, p13), p2) {
		tst.Error("sn-2 is not reproduced:", TwoFromOneAndThree(w, p13))
	}

	p1223 := combine(p13, p2, func(x, y float64) float64 { return (x + y) / 2 })
	dp13, dp2 := FromDiacylglycerols(w, p1223)
	if !distreq(dp13, p13) || !distreq(dp2, p2) {
		tst.Error("wrong reconstruction from diacylglycerols:", dp13, dp2)
	}
}

func TestNormalize(tst *testing.T) {
	d := Distribution{pal: 2, ole: 6}.Normalize()
	if !appreq(d.Sum(), 1) || !appreq(d[pal], 0.25) {
		tst.Error("wrong normalization:", d)
	}
	zero := Distribution{pal: 0}.Normalize()
	if zero[pal] != 0 {
		tst.Error("zero distribution must stay zero:", zero)
	}
	w := Distribution{pal: 0.5, ole: 0.5}.Weight()
	if !appreq(w.Sum(), 1) || w[ole] <= w[pal] {
		tst.Error("wrong mass fractions:", w)
	}
}

func TestFactors(tst *testing.T) {
	w := Distribution{pal: 0.3, ole: 0.4, lin: 0.3}
	p2 := Distribution{pal: 0.05, ole: 0.55, lin: 0.4}
	ef := Enrichment(p2, w, true)
	if !appreq(ef[ole], 0.55/1.2) {
		tst.Error("wrong enrichment factor:", ef[ole])
	}
	if !appreq(Enrichment(p2, w, false)[ole], 0.55/0.4) {
		tst.Error("wrong non-normalized enrichment factor")
	}
	sf := Selectivity(p2, w, true)
	if !appreq(sf[ole], 0.55*0.7/(3*0.4*0.95)) {
		tst.Error("wrong selectivity factor:", sf[ole])
	}
}

func TestUndefinedRatio(tst *testing.T) {
	if v, err := EnrichmentFactor(0.1, 0, true); err != ErrUndefinedRatio || !stats.IsMissing(v) {
		tst.Error("expected undefined ratio, got", v, err)
	}
	if v, err := SelectivityFactor(0.1, 0.2, 0.5, 0, true); err != ErrUndefinedRatio || !stats.IsMissing(v) {
		tst.Error("expected undefined ratio, got", v, err)
	}
	w := Distribution{pal: 0, ole: 1}
	p2 := Distribution{pal: 0.2, ole: 0.8}
	ef := Enrichment(p2, w, true)
	if !stats.IsMissing(ef[pal]) {
		tst.Error("enrichment factor with zero whole molecule must be missing:", ef[pal])
	}
	if !appreq(ef[ole], 0.8/3) {
		tst.Error("other factors must be computed:", ef[ole])
	}
}

func rows(values map[fatty.FattyAcid]map[Pool][]float64, order ...fatty.FattyAcid) []Row {
	res := make([]Row, len(order))
	for i, fa := range order {
		res[i] = Row{Label: fa.String(), FattyAcid: fa, Values: values[fa]}
	}
	return res
}

func TestReconstruct(tst *testing.T) {
	s := Sample{Name: "s1", Rows: rows(map[fatty.FattyAcid]map[Pool][]float64{
		pal: {Whole: {30, 60}, Two: {5, 5}},
		ole: {Whole: {40, 80}, Two: {55, 55}},
		lin: {Whole: {30, 60}, Two: {40, 40}},
	}, pal, ole, lin)}
	res, err := Reconstruct(s, DefaultPolicy())
	if err != nil {
		tst.Fatal("reconstruction error:", err)
	}
	if len(res.Rows) != 3 {
		tst.Fatal("wrong number of rows:", len(res.Rows))
	}
	row := res.Rows[0]
	if row.FattyAcid != pal {
		tst.Fatal("row order is not preserved:", row.FattyAcid)
	}
	if !appreq(row.Whole.Mean, 0.3) || !appreq(row.OneAndThree.Mean, 0.425) || !appreq(row.Two.Mean, 0.05) {
		tst.Error("wrong distributions:", row.Whole.Mean, row.OneAndThree.Mean, row.Two.Mean)
	}
	if !appreq(row.Whole.StandardDeviation, 0) || len(row.Whole.Sample) != 2 {
		tst.Error("wrong replicate statistics:", row.Whole)
	}
	if !row.Major {
		tst.Error("row must pass a zero threshold")
	}

	pos := res.Positional()
	for _, d := range []Distribution{pos.Whole, pos.OneAndThree, pos.Two} {
		if !appreq(d.Sum(), 1) {
			tst.Error("positional distribution is not normalized:", d)
		}
	}
}

func TestUnsigned(tst *testing.T) {
	s := Sample{Rows: rows(map[fatty.FattyAcid]map[Pool][]float64{
		pal: {Whole: {0.1}, Two: {0.5}},
		ole: {Whole: {0.9}, Two: {0.5}},
	}, pal, ole)}
	p := DefaultPolicy()
	res, err := Reconstruct(s, p)
	if err != nil {
		tst.Fatal("reconstruction error:", err)
	}
	if res.Rows[0].OneAndThree.Mean != 0 || !appreq(res.Rows[1].OneAndThree.Mean, 1) {
		tst.Error("negative values must be clipped:", res.Rows[0].OneAndThree.Mean, res.Rows[1].OneAndThree.Mean)
	}
	if !stats.IsMissing(res.Rows[0].OneAndThree.StandardDeviation) {
		tst.Error("single replicate must have a missing standard deviation")
	}
	p.Unsigned = false
	res, err = Reconstruct(s, p)
	if err != nil {
		tst.Fatal("reconstruction error:", err)
	}
	if !appreq(res.Rows[0].OneAndThree.Mean, -0.1) || !appreq(res.Rows[1].OneAndThree.Mean, 1.1) {
		tst.Error("signed values must be kept:", res.Rows[0].OneAndThree.Mean, res.Rows[1].OneAndThree.Mean)
	}
}

func TestPoolPairs(tst *testing.T) {
	p13 := map[fatty.FattyAcid]float64{pal: 0.425, ole: 0.325, lin: 0.25}
	p2 := map[fatty.FattyAcid]float64{pal: 0.05, ole: 0.55, lin: 0.4}
	w := map[fatty.FattyAcid]float64{pal: 0.3, ole: 0.4, lin: 0.3}
	build := func(a Pool, av map[fatty.FattyAcid]float64, b Pool, bv map[fatty.FattyAcid]float64) Sample {
		values := make(map[fatty.FattyAcid]map[Pool][]float64)
		for _, fa := range []fatty.FattyAcid{pal, ole, lin} {
			values[fa] = map[Pool][]float64{a: {av[fa]}, b: {bv[fa]}}
		}
		return Sample{Rows: rows(values, pal, ole, lin)}
	}
	p1223 := make(map[fatty.FattyAcid]float64)
	for fa := range p13 {
		p1223[fa] = (p13[fa] + p2[fa]) / 2
	}
	for _, s := range []Sample{
		build(Whole, w, Two, p2),
		build(Whole, w, OneAndThree, p13),
		build(Whole, w, OneTwoTwoThree, p1223),
		build(Two, p2, OneAndThree, p13),
	} {
		res, err := Reconstruct(s, DefaultPolicy())
		if err != nil {
			tst.Fatal("reconstruction error:", err)
		}
		for _, row := range res.Rows {
			fa := row.FattyAcid
			if !appreq(row.Whole.Mean, w[fa]) || !appreq(row.OneAndThree.Mean, p13[fa]) || !appreq(row.Two.Mean, p2[fa]) {
				tst.Errorf("%s: wrong reconstruction %v %v %v", fa, row.Whole.Mean, row.OneAndThree.Mean, row.Two.Mean)
			}
		}
	}
}

func TestValidate(tst *testing.T) {
	tests := []Sample{
		{},
		{Rows: rows(map[fatty.FattyAcid]map[Pool][]float64{
			pal: {Whole: {1}},
		}, pal)},
		{Rows: rows(map[fatty.FattyAcid]map[Pool][]float64{
			pal: {Two: {1}, OneTwoTwoThree: {1}},
		}, pal)},
		{Rows: rows(map[fatty.FattyAcid]map[Pool][]float64{
			pal: {Whole: {1, 2}, Two: {1, 2}},
			ole: {Whole: {1, 2}, Two: {1}},
		}, pal, ole)},
		{Rows: rows(map[fatty.FattyAcid]map[Pool][]float64{
			pal: {Whole: {1}, Two: {1}},
			ole: {Whole: {1}, OneAndThree: {1}},
		}, pal, ole)},
		{Rows: rows(map[fatty.FattyAcid]map[Pool][]float64{
			pal: {Whole: {1}, Two: {1}},
		}, pal, pal)},
	}
	for i, s := range tests {
		err := s.Validate()
		var sm *SchemaMismatchError
		if !errors.As(err, &sm) {
			tst.Errorf("case %d: expected schema mismatch, got %v", i, err)
		}
		if _, err := Reconstruct(s, DefaultPolicy()); err == nil {
			tst.Errorf("case %d: reconstruction must fail", i)
		}
	}
}

func TestStandard(tst *testing.T) {
	s := Sample{Rows: rows(map[fatty.FattyAcid]map[Pool][]float64{
		pal: {Whole: {30, 60}, Two: {5, 10}},
		hep: {Whole: {10, 20}, Two: {5, 10}},
		ole: {Whole: {70, 140}, Two: {95, 190}},
	}, pal, hep, ole)}
	p := DefaultPolicy()
	p.Standard = Standard{Label: hep.String(), Amount: 2}
	res, err := Reconstruct(s, p)
	if err != nil {
		tst.Fatal("reconstruction error:", err)
	}
	if !res.Rows[1].Standard || !stats.IsMissing(res.Rows[1].Whole.Mean) {
		tst.Error("standard must be excluded:", res.Rows[1])
	}
	if !appreq(res.Rows[0].StandardFactor.Mean, 6) || !appreq(res.Rows[1].StandardFactor.Mean, 2) {
		tst.Error("wrong standard factors:", res.Rows[0].StandardFactor.Mean, res.Rows[1].StandardFactor.Mean)
	}
	if !appreq(res.Rows[0].Whole.Mean, 0.3) || !appreq(res.Rows[2].Two.Mean, 0.95) {
		tst.Error("standard must not take part in normalization:", res.Rows[0].Whole.Mean, res.Rows[2].Two.Mean)
	}
	pos := res.Positional()
	if _, ok := pos.Whole[hep]; ok {
		tst.Error("standard must not be in positional distributions")
	}

	p.Standard.Label = "absent"
	if _, err := Reconstruct(s, p); err == nil {
		tst.Error("expected error for an absent standard")
	}
}

func TestThreshold(tst *testing.T) {
	minor := fatty.MustParse("20:0")
	s := Sample{Rows: rows(map[fatty.FattyAcid]map[Pool][]float64{
		pal:   {Whole: {0.3}, Two: {0.1}},
		ole:   {Whole: {0.69}, Two: {0.895}},
		minor: {Whole: {0.01}, Two: {0.005}},
	}, pal, ole, minor)}
	p := DefaultPolicy()
	p.Threshold = Threshold{Value: 0.05, Filter: true}
	res, err := Reconstruct(s, p)
	if err != nil {
		tst.Fatal("reconstruction error:", err)
	}
	if res.Rows[2].Major || !res.Rows[0].Major {
		tst.Error("wrong threshold flags")
	}
	pos := res.Positional()
	if _, ok := pos.Whole[minor]; ok {
		tst.Error("minor fatty acid must be filtered")
	}
	if !appreq(pos.Whole.Sum(), 1) || !appreq(pos.Two.Sum(), 1) {
		tst.Error("filtered distributions must be renormalized")
	}
}

func TestChristie(tst *testing.T) {
	t := christie.NewTable()
	t.Add(pal, 2)
	s := Sample{Rows: rows(map[fatty.FattyAcid]map[Pool][]float64{
		pal: {Whole: {0.25}, Two: {0.25}},
		ole: {Whole: {0.5}, Two: {0.5}},
	}, pal, ole)}
	p := DefaultPolicy()
	p.Christie = t
	res, err := Reconstruct(s, p)
	if err != nil {
		tst.Fatal("reconstruction error:", err)
	}
	if !appreq(res.Rows[0].Whole.Mean, 0.5) {
		tst.Error("response factor is not applied:", res.Rows[0].Whole.Mean)
	}
}

func TestWeighted(tst *testing.T) {
	s := Sample{Rows: rows(map[fatty.FattyAcid]map[Pool][]float64{
		pal: {Whole: {0.5}, Two: {0.2}},
		ole: {Whole: {0.5}, Two: {0.8}},
	}, pal, ole)}
	p := DefaultPolicy()
	p.Weighted = true
	p.Normalize.Experimental = false
	res, err := Reconstruct(s, p)
	if err != nil {
		tst.Fatal("reconstruction error:", err)
	}
	w := res.Rows[0].Whole.Mean + res.Rows[1].Whole.Mean
	if !appreq(w, 1) {
		tst.Error("weighted whole molecule must sum to 1:", w)
	}
	mp, mo := pal.MolarMass(), ole.MolarMass()
	if !appreq(res.Rows[0].Whole.Mean, mp/(mp+mo)) {
		tst.Error("wrong weighted fraction:", res.Rows[0].Whole.Mean)
	}
	two := res.Rows[0].Two.Mean + res.Rows[1].Two.Mean
	if !appreq(two, 1) {
		tst.Error("weighted sn-2 must sum to 1:", two)
	}
}

func TestCombine(tst *testing.T) {
	a := &Result{Name: "a", Rows: []ResultRow{
		{FattyAcid: ole, Whole: stats.Point(0.6), Two: stats.Point(0.8)},
		{FattyAcid: pal, Whole: stats.Point(0.4), Two: stats.Point(0.2)},
	}}
	b := &Result{Name: "b", Rows: []ResultRow{
		{FattyAcid: pal, Whole: stats.Point(0.2), Two: stats.Point(0.1)},
		{FattyAcid: lin, Whole: stats.Point(0.8), Two: stats.Point(0.9)},
	}}
	for _, res := range []*Result{Combine([]*Result{a, b}, 1), Combine([]*Result{b, a}, 1)} {
		if res.Name != "a,b" || len(res.Rows) != 3 {
			tst.Fatal("wrong combined result:", res.Name, len(res.Rows))
		}
		if res.Rows[0].FattyAcid != pal {
			tst.Fatal("rows must be sorted:", res.Rows[0].FattyAcid)
		}
		p := res.Rows[0].Whole
		if !appreq(p.Mean, 0.3) || !appreq(p.StandardDeviation, math.Sqrt(0.02)) {
			tst.Error("wrong combined statistics:", p.Mean, p.StandardDeviation)
		}
		o := res.Rows[1].Whole
		if o.Sample[0] != 0.6 || !stats.IsMissing(o.Sample[1]) || !stats.IsMissing(o.StandardDeviation) {
			tst.Error("absent values must be missing:", o.Sample)
		}
	}
}
