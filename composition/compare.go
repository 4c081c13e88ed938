package composition

import (
	"sort"
	"strings"

	"bitbucket.org/Davydov/tagcomp/species"
	"bitbucket.org/Davydov/tagcomp/stats"
)

// Row is a composition key summarized over samples.
type Row struct {
	Key      Key           `json:"key"`
	Value    stats.Summary `json:"value"`
	Children []Row         `json:"children,omitempty"`
}

// path identifies a bucket by its keys at all levels.
type path string

func pathOf(keys []Key) path {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.Composition.String() + ":" + k.String()
	}
	return path(strings.Join(parts, "\x00"))
}

// flatten collects bucket values by path.
func flatten(buckets []Bucket, prefix []Key, values map[path]float64, keys map[path][]Key) {
	for _, b := range buckets {
		ks := append(append([]Key(nil), prefix...), b.Key)
		p := pathOf(ks)
		values[p] = b.Value
		keys[p] = ks
		flatten(b.Children, ks, values, keys)
	}
}

// Compare groups every sample, joins the bucket values by key and
// summarizes them. A key absent from a sample is missing there. Filters
// apply to the mean over samples.
func Compare(predictions map[string]species.Prediction, st Settings) ([]Row, error) {
	if err := st.validate(); err != nil {
		return nil, err
	}
	keys := make(map[path][]Key)
	samples := make([]stats.Keyed[path], 0, len(predictions))
	for name, pred := range predictions {
		values := make(map[path]float64)
		flatten(group(pred.Sorted(), st, 0, false), nil, values, keys)
		samples = append(samples, stats.NewKeyed(name, values))
	}
	summaries := stats.Merge(samples...).Aggregate(st.DDOF)

	// parents are created before children
	paths := make([]path, 0, len(summaries))
	for p := range summaries {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		return len(keys[paths[i]]) < len(keys[paths[j]])
	})
	nodes := make(map[path]*node, len(paths))
	root := &node{}
	for _, p := range paths {
		ks := keys[p]
		parent := root
		if len(ks) > 1 {
			parent = nodes[pathOf(ks[:len(ks)-1])]
		}
		n := &node{row: Row{Key: ks[len(ks)-1], Value: summaries[p]}}
		nodes[p] = n
		parent.children = append(parent.children, n)
	}
	rows := root.rows(st, 0)
	log.Debugf("Compared %d samples: %d rows", len(predictions), len(rows))
	return rows, nil
}

type node struct {
	row      Row
	children []*node
}

// rows filters and sorts the children of n.
func (n *node) rows(st Settings, level int) []Row {
	var res []Row
	for _, c := range n.children {
		if !st.Selections[level].Filter.Keep(c.row.Key, c.row.Value.Mean) {
			continue
		}
		r := c.row
		if level+1 < len(st.Selections) {
			r.Children = c.rows(st, level+1)
		}
		res = append(res, r)
	}
	sort.SliceStable(res, func(i, j int) bool {
		return st.Sort.less(res[i].Key, res[j].Key, res[i].Value.Mean, res[j].Value.Mean)
	})
	return res
}
