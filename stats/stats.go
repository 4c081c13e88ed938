// Package stats computes replicate statistics (mean, standard
// deviation, preserved sample) and joins independently acquired
// samples by key.
//
// Missing values are represented by NaN. They are kept in samples but
// skipped when computing moments.
package stats

import (
	"encoding/json"
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientSamples is returned when the standard deviation is
// requested for n <= ddof present values.
var ErrInsufficientSamples = errors.New("insufficient samples for standard deviation")

// Missing returns the missing value marker.
func Missing() float64 {
	return math.NaN()
}

// IsMissing checks for the missing value marker.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Summary is mean, standard deviation and the sample they were
// computed from.
type Summary struct {
	Mean              float64
	StandardDeviation float64
	Sample            []float64
}

// present returns values without missing entries.
func present(values []float64) []float64 {
	res := make([]float64, 0, len(values))
	for _, v := range values {
		if !IsMissing(v) {
			res = append(res, v)
		}
	}
	return res
}

// Mean returns the mean of the present values or a missing value if
// there are none.
func Mean(values []float64) float64 {
	x := present(values)
	if len(x) == 0 {
		return Missing()
	}
	return stat.Mean(x, nil)
}

// StandardDeviation returns the standard deviation of the present
// values with n - ddof divisor.
func StandardDeviation(values []float64, ddof uint8) (float64, error) {
	x := present(values)
	n := len(x)
	if n == 0 || n <= int(ddof) {
		return Missing(), ErrInsufficientSamples
	}
	_, v := stat.PopMeanVariance(x, nil)
	return math.Sqrt(v * float64(n) / float64(n-int(ddof))), nil
}

// Aggregate summarizes values. An undefined standard deviation is
// reported as missing. The sample is copied unmodified.
func Aggregate(values []float64, ddof uint8) Summary {
	sd, err := StandardDeviation(values, ddof)
	if err != nil {
		sd = Missing()
	}
	sample := make([]float64, len(values))
	copy(sample, values)
	return Summary{
		Mean:              Mean(values),
		StandardDeviation: sd,
		Sample:            sample,
	}
}

// Point returns a summary of a single point estimate.
func Point(v float64) Summary {
	return Summary{Mean: v, StandardDeviation: Missing(), Sample: []float64{v}}
}

// Map applies f to every sample value and aggregates the result.
func (s Summary) Map(f func(float64) float64, ddof uint8) Summary {
	values := make([]float64, len(s.Sample))
	for i, v := range s.Sample {
		values[i] = f(v)
	}
	return Aggregate(values, ddof)
}

// nullable converts the missing marker to nil for JSON.
func nullable(v float64) *float64 {
	if IsMissing(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// MarshalJSON renders missing values as null.
func (s Summary) MarshalJSON() ([]byte, error) {
	sample := make([]*float64, len(s.Sample))
	for i, v := range s.Sample {
		sample[i] = nullable(v)
	}
	return json.Marshal(struct {
		Mean              *float64   `json:"mean"`
		StandardDeviation *float64   `json:"standardDeviation"`
		Sample            []*float64 `json:"sample"`
	}{nullable(s.Mean), nullable(s.StandardDeviation), sample})
}

// UnmarshalJSON reads null as missing.
func (s *Summary) UnmarshalJSON(data []byte) error {
	var raw struct {
		Mean              *float64   `json:"mean"`
		StandardDeviation *float64   `json:"standardDeviation"`
		Sample            []*float64 `json:"sample"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	value := func(p *float64) float64 {
		if p == nil {
			return Missing()
		}
		return *p
	}
	s.Mean = value(raw.Mean)
	s.StandardDeviation = value(raw.StandardDeviation)
	s.Sample = make([]float64, len(raw.Sample))
	for i, p := range raw.Sample {
		s.Sample[i] = value(p)
	}
	return nil
}
