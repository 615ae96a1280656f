package domain

import (
	"math"
	"math/rand/v2"
)

// trendNoise is the half-width of the uniform noise band added to trending series.
const trendNoise = 0.05

// Rand is the random source used by the generators. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// NewRand returns a randomly seeded source for production use.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewSeededRand returns a deterministic source: equal seeds yield equal sequences.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SeriesSpec bounds and shapes a generated series.
type SeriesSpec struct {
	Min       float64
	Max       float64
	Trend     bool // ramp from Min toward Max instead of independent draws
	Precision int  // decimal places kept in each value
}

// GenerateSeries synthesizes dayCount consecutive daily points ending at
// anchor. Every value lies in [spec.Min, spec.Max]. A non-positive dayCount
// yields an empty series.
func GenerateSeries(rng Rand, dayCount int, spec SeriesSpec, anchor Date) Series {
	if dayCount <= 0 {
		return Series{}
	}

	span := spec.Max - spec.Min
	out := make(Series, dayCount)
	for i := range dayCount {
		var v float64
		if spec.Trend {
			v = spec.Min + span*(float64(i)/float64(dayCount)) + rng.Float64()*2*trendNoise - trendNoise
		} else {
			v = spec.Min + rng.Float64()*span
		}
		out[i] = TimeSeriesPoint{
			Date:  anchor.AddDays(-(dayCount - i - 1)),
			Value: clamp(Round(v, spec.Precision), spec.Min, spec.Max),
		}
	}
	return out
}

// Uniform draws a value in [base, base+spread] rounded to precision places.
func Uniform(rng Rand, base, spread float64, precision int) float64 {
	return clamp(Round(base+rng.Float64()*spread, precision), base, base+spread)
}

// Round rounds v to the given number of decimal places, half away from zero.
func Round(v float64, precision int) float64 {
	if precision < 0 {
		return v
	}
	p := math.Pow10(precision)
	return math.Round(v*p) / p
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
