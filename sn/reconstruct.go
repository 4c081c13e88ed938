// Package sn reconstructs stereospecific positional distributions of
// triacylglycerols from two measured pools and computes enrichment and
// selectivity factors.
package sn

import (
	"sort"
	"strings"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/tagcomp/fatty"
	"bitbucket.org/Davydov/tagcomp/stats"
)

var log = logging.MustGetLogger("sn")

// ResultRow is the reconstruction of a single fatty acid.
type ResultRow struct {
	Label     string          `json:"label"`
	FattyAcid fatty.FattyAcid `json:"fattyAcid"`
	// Standard marks the internal standard row.
	Standard bool `json:"standard,omitempty"`
	// Major is true if the row passes the threshold.
	Major bool `json:"major"`
	// StandardFactor is the ratio of the row to the internal standard.
	StandardFactor stats.Summary `json:"standardFactor"`
	Whole          stats.Summary `json:"whole"`
	OneAndThree    stats.Summary `json:"oneAndThree"`
	Two            stats.Summary `json:"two"`
	Enrichment     stats.Summary `json:"enrichment"`
	Selectivity    stats.Summary `json:"selectivity"`
}

// Result is the reconstruction of a sample.
type Result struct {
	Name            string      `json:"name"`
	ThresholdFilter bool        `json:"thresholdFilter,omitempty"`
	Rows            []ResultRow `json:"rows"`
}

// replicate holds the per fatty acid values of one replicate.
type replicate struct {
	measured        map[Pool]Distribution
	w, p13, p2      Distribution
	enrichment      Distribution
	selectivity     Distribution
	standardFactors map[fatty.FattyAcid]float64
}

// Reconstruct derives the missing positional distributions of every
// replicate and summarizes them.
func Reconstruct(s Sample, p Policy) (*Result, error) {
	sh, err := s.shape()
	if err != nil {
		return nil, err
	}
	standard := -1
	if p.Standard.Label != "" {
		for i, row := range s.Rows {
			if row.Label == p.Standard.Label {
				standard = i
				break
			}
		}
		if standard < 0 {
			return nil, &SchemaMismatchError{"standard", "row labeled " + p.Standard.Label, "none"}
		}
	}
	log.Debugf("Sample %s: measured %s and %s, %d replicates", s.Name, sh.pools[0], sh.pools[1], sh.replicates)

	reps := make([]replicate, sh.replicates)
	for r := range reps {
		reps[r] = p.run(s, sh, r, standard)
	}

	n := sh.replicates
	res := &Result{
		Name:            s.Name,
		ThresholdFilter: p.Threshold.Filter,
		Rows:            make([]ResultRow, len(s.Rows)),
	}
	for i, row := range s.Rows {
		fa := row.FattyAcid
		collect := func(get func(rep replicate) Distribution) stats.Summary {
			values := make([]float64, n)
			for r, rep := range reps {
				v, ok := get(rep)[fa]
				if !ok {
					v = stats.Missing()
				}
				values[r] = v
			}
			return stats.Aggregate(values, p.DDOF)
		}
		factors := make([]float64, n)
		for r, rep := range reps {
			factors[r] = stats.Missing()
			if f, ok := rep.standardFactors[fa]; ok {
				factors[r] = f
			}
		}
		rr := ResultRow{
			Label:          row.Label,
			FattyAcid:      fa,
			Standard:       i == standard,
			StandardFactor: stats.Aggregate(factors, p.DDOF),
			Whole:          collect(func(rep replicate) Distribution { return rep.w }),
			OneAndThree:    collect(func(rep replicate) Distribution { return rep.p13 }),
			Two:            collect(func(rep replicate) Distribution { return rep.p2 }),
			Enrichment:     collect(func(rep replicate) Distribution { return rep.enrichment }),
			Selectivity:    collect(func(rep replicate) Distribution { return rep.selectivity }),
		}
		rr.Major = rr.Standard
		for _, pool := range sh.pools {
			m := collect(func(rep replicate) Distribution { return rep.measured[pool] })
			if !stats.IsMissing(m.Mean) && m.Mean >= p.Threshold.Value {
				rr.Major = true
			}
		}
		res.Rows[i] = rr
	}
	return res, nil
}

// run reconstructs the replicate r.
func (p Policy) run(s Sample, sh shape, r, standard int) replicate {
	rep := replicate{
		measured:        make(map[Pool]Distribution, 2),
		standardFactors: make(map[fatty.FattyAcid]float64),
	}
	for k, pool := range sh.pools {
		raw := make(Distribution, len(s.Rows))
		for i, row := range s.Rows {
			if i != standard {
				raw[row.FattyAcid] = row.Values[pool][r]
			}
		}
		if standard >= 0 && k == 0 {
			p.standardize(raw, s.Rows[standard].Values[pool][r], s.Rows[standard].FattyAcid, &rep)
		}
		rep.measured[pool] = p.experimental(raw)
	}

	m := rep.measured
	switch sh.pools {
	case pair{Whole, Two}:
		rep.w, rep.p2 = m[Whole], m[Two]
		rep.p13 = p.theoretical(OneAndThreeFromTwo(rep.w, rep.p2))
	case pair{Whole, OneAndThree}:
		rep.w, rep.p13 = m[Whole], m[OneAndThree]
		rep.p2 = p.theoretical(TwoFromOneAndThree(rep.w, rep.p13))
	case pair{Whole, OneTwoTwoThree}:
		rep.w = m[Whole]
		p13, p2 := FromDiacylglycerols(rep.w, m[OneTwoTwoThree])
		rep.p13, rep.p2 = p.theoretical(p13), p.theoretical(p2)
	case pair{Two, OneAndThree}:
		rep.p13, rep.p2 = m[OneAndThree], m[Two]
		rep.w = p.theoretical(WholeFrom(rep.p13, rep.p2))
	default:
		panic("sn: unsupported pools " + poolList(sh.pools[:]))
	}
	rep.enrichment = Enrichment(rep.p2, rep.w, p.NormalizeFactors)
	rep.selectivity = Selectivity(rep.p2, rep.w, p.NormalizeFactors)
	return rep
}

// standardize computes the ratios of raw (corrected) values to the
// internal standard.
func (p Policy) standardize(raw Distribution, base float64, std fatty.FattyAcid, rep *replicate) {
	corrected := raw
	if p.Christie != nil {
		corrected = raw.Correct(p.Christie)
		base *= p.Christie.Factor(std)
	}
	amount := p.Standard.Amount
	if amount == 0 {
		amount = 1
	}
	for fa, v := range corrected {
		f, err := ratio(v, base)
		if err == nil {
			f *= amount
		}
		rep.standardFactors[fa] = f
	}
	rep.standardFactors[std] = amount
}

// Positional returns the mean positional distributions of non-standard
// rows. With the threshold filter minor rows are dropped and the
// distributions renormalized.
func (r *Result) Positional() Positional {
	pos := Positional{
		Whole:       make(Distribution),
		OneAndThree: make(Distribution),
		Two:         make(Distribution),
	}
	for _, row := range r.Rows {
		if row.Standard || (r.ThresholdFilter && !row.Major) {
			continue
		}
		for _, c := range []struct {
			d Distribution
			s stats.Summary
		}{
			{pos.Whole, row.Whole},
			{pos.OneAndThree, row.OneAndThree},
			{pos.Two, row.Two},
		} {
			if !stats.IsMissing(c.s.Mean) {
				c.d[row.FattyAcid] = c.s.Mean
			}
		}
	}
	if r.ThresholdFilter {
		pos.Whole = pos.Whole.Normalize()
		pos.OneAndThree = pos.OneAndThree.Normalize()
		pos.Two = pos.Two.Normalize()
	}
	return pos
}

// summaryField selects a summary of a row.
type summaryField func(row *ResultRow) *stats.Summary

var summaryFields = []summaryField{
	func(row *ResultRow) *stats.Summary { return &row.StandardFactor },
	func(row *ResultRow) *stats.Summary { return &row.Whole },
	func(row *ResultRow) *stats.Summary { return &row.OneAndThree },
	func(row *ResultRow) *stats.Summary { return &row.Two },
	func(row *ResultRow) *stats.Summary { return &row.Enrichment },
	func(row *ResultRow) *stats.Summary { return &row.Selectivity },
}

// Combine merges independently reconstructed samples by fatty acid.
// Each sample contributes its mean; fatty acids absent from a sample
// are missing there.
func Combine(results []*Result, ddof uint8) *Result {
	rows := make(map[fatty.FattyAcid]*ResultRow)
	names := make([]string, len(results))
	filter := false
	for i, res := range results {
		names[i] = res.Name
		filter = filter || res.ThresholdFilter
		for _, row := range res.Rows {
			cr, ok := rows[row.FattyAcid]
			if !ok {
				cr = &ResultRow{Label: row.Label, FattyAcid: row.FattyAcid}
				rows[row.FattyAcid] = cr
			}
			cr.Standard = cr.Standard || row.Standard
			cr.Major = cr.Major || row.Major
		}
	}

	for _, field := range summaryFields {
		samples := make([]stats.Keyed[fatty.FattyAcid], len(results))
		for i, res := range results {
			values := make(map[fatty.FattyAcid]float64, len(res.Rows))
			for j := range res.Rows {
				values[res.Rows[j].FattyAcid] = field(&res.Rows[j]).Mean
			}
			samples[i] = stats.NewKeyed(res.Name, values)
		}
		for fa, s := range stats.Merge(samples...).Aggregate(ddof) {
			*field(rows[fa]) = s
		}
	}

	sort.Strings(names)
	res := &Result{
		Name:            strings.Join(names, ","),
		ThresholdFilter: filter,
		Rows:            make([]ResultRow, 0, len(rows)),
	}
	for _, row := range rows {
		res.Rows = append(res.Rows, *row)
	}
	sort.Slice(res.Rows, func(i, j int) bool {
		return fatty.Compare(res.Rows[i].FattyAcid, res.Rows[j].FattyAcid) < 0
	})
	log.Debugf("Combined %d samples into %d rows", len(results), len(res.Rows))
	return res
}
