package species

import (
	"errors"
	"runtime"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/tagcomp/fatty"
	"bitbucket.org/Davydov/tagcomp/sn"
	"bitbucket.org/Davydov/tagcomp/stats"
)

var log = logging.MustGetLogger("species")

// ErrEmptyDistribution is returned if a position has no fatty acids.
var ErrEmptyDistribution = errors.New("empty positional distribution")

// Discriminants are per fatty acid multipliers for sn-1, sn-2 and
// sn-3. Fatty acids without discriminants are not scaled.
type Discriminants map[fatty.FattyAcid][3]float64

// Options control the prediction.
type Options struct {
	Model Model `json:"model"`
	// Discriminants are only used by the Gunstone model.
	Discriminants Discriminants `json:"discriminants,omitempty"`
	// Workers is the number of goroutines, GOMAXPROCS if zero.
	Workers int `json:"-"`
}

// DefaultOptions returns the independent position model.
func DefaultOptions() Options {
	return Options{Model: VanderWalModel}
}

// term is a fatty acid with a non-zero fraction at a position.
type term struct {
	fa    fatty.FattyAcid
	value float64
}

// support returns the present non-zero values in Compare order.
func support(d sn.Distribution) []term {
	var res []term
	for _, fa := range d.Keys() {
		if v := d[fa]; v != 0 && !stats.IsMissing(v) {
			res = append(res, term{fa, v})
		}
	}
	return res
}

// discriminate scales a position by its discriminants and renormalizes.
func (d Discriminants) discriminate(dist sn.Distribution, position int) sn.Distribution {
	if len(d) == 0 {
		return dist
	}
	return dist.Map(func(fa fatty.FattyAcid, v float64) float64 {
		if f, ok := d[fa]; ok {
			return v * f[position]
		}
		return v
	}).Normalize()
}

// Predict computes the species composition. Positions 1 and 3 use the
// sn-1,3 distribution, position 2 the sn-2 distribution.
func Predict(pos sn.Positional, opts Options) (Prediction, error) {
	p1, p2, p3 := pos.OneAndThree, pos.Two, pos.OneAndThree
	var factor func(s Species) float64
	switch opts.Model {
	case VanderWalModel:
	case GunstoneModel:
		p1 = opts.Discriminants.discriminate(p1, 0)
		p2 = opts.Discriminants.discriminate(p2, 1)
		p3 = opts.Discriminants.discriminate(p3, 2)
		s := 0.0
		if total := pos.Whole.Sum(); total != 0 {
			s = pos.Whole.Saturated() / total
		}
		g := NewGunstone(s)
		log.Debugf("Gunstone: s=%.4f factors %.4f %.4f %.4f %.4f",
			s, g.Factor(0), g.Factor(1), g.Factor(2), g.Factor(3))
		factor = func(s Species) float64 {
			return g.Factor(s.Unsaturated())
		}
	default:
		return nil, errors.New("unknown model")
	}

	t1, t2, t3 := support(p1), support(p2), support(p3)
	if len(t1) == 0 || len(t2) == 0 || len(t3) == 0 {
		return nil, ErrEmptyDistribution
	}

	pred := product(t1, t2, t3, factor, opts.Workers)
	if factor != nil {
		if sum := pred.Sum(); sum != 0 {
			for s, v := range pred {
				pred[s] = v / sum
			}
		}
	}
	log.Debugf("Predicted %d species (%s)", len(pred), opts.Model)
	return pred, nil
}

// product computes the cartesian product of the positions in parallel
// over sn-1 fatty acids.
func product(t1, t2, t3 []term, factor func(Species) float64, workers int) Prediction {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	nTasks := len(t1)
	tasks := make(chan int, nTasks)
	results := make(chan Prediction, nTasks)

	for i := 0; i < workers; i++ {
		go func() {
			for i := range tasks {
				part := make(Prediction, len(t2)*len(t3))
				a := t1[i]
				for _, b := range t2 {
					for _, c := range t3 {
						s := Species{a.fa, b.fa, c.fa}
						v := a.value * b.value * c.value
						if factor != nil {
							v *= factor(s)
						}
						part[s] = v
					}
				}
				results <- part
			}
		}()
	}

	for i := 0; i < nTasks; i++ {
		tasks <- i
	}
	close(tasks)

	pred := make(Prediction, nTasks*len(t2)*len(t3))
	for i := 0; i < nTasks; i++ {
		for s, v := range <-results {
			pred[s] = v
		}
	}
	return pred
}
