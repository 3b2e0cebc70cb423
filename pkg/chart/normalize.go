package chart

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/crimescope/pkg/dataset"
)

// Policy selects how raw values become plotted magnitudes.
type Policy int

const (
	// PolicyRaw plots values unchanged.
	PolicyRaw Policy = iota
	// PolicyRelative divides each value by the sum over all keys in its
	// period, rounded to three decimals.
	PolicyRelative
	// PolicyRatio divides each value by the table's external total for the
	// period.
	PolicyRatio
)

func (p Policy) String() string {
	switch p {
	case PolicyRaw:
		return "raw"
	case PolicyRelative:
		return "relative"
	case PolicyRatio:
		return "ratio"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// relativePrecision is the number of decimals kept by PolicyRelative.
const relativePrecision = 3

// Round rounds x to n decimals.
func Round(x float64, n int) float64 {
	pow := math.Pow(10, float64(n))
	return math.Round(x*pow) / pow
}

// RelativeFrequency returns values[i] / sum(values) rounded to three
// decimals. A zero or negative total yields all zeros.
func RelativeFrequency(values []float64) []float64 {
	out := make([]float64, len(values))
	total := floats.Sum(values)
	if total <= 0 {
		return out
	}
	for i, v := range values {
		out[i] = Round(v/total, relativePrecision)
	}
	return out
}

// Ratio returns value / total, or 0 when total is zero, negative or NaN.
func Ratio(value, total float64) float64 {
	if !(total > 0) {
		return 0
	}
	return value / total
}

// Normalize returns a new table of magnitudes for keys under policy.
// A nil keys list means every key of t. Counts and external totals are
// carried over; periods with a zero total are kept with zero magnitudes.
func Normalize(t *dataset.Table, keys []string, policy Policy) *dataset.Table {
	if keys == nil {
		keys = t.Keys()
	}
	out := dataset.NewTable()

	for _, p := range t.Periods() {
		out.AddPeriod(p)
		total, hasTotal := t.Total(p)
		if hasTotal {
			out.SetTotal(p, total)
		}

		values := make([]float64, len(keys))
		for i, k := range keys {
			values[i] = t.Value(p, k)
		}

		var mags []float64
		switch policy {
		case PolicyRelative:
			mags = RelativeFrequency(values)
		case PolicyRatio:
			mags = make([]float64, len(values))
			for i, v := range values {
				mags[i] = Ratio(v, total)
			}
		default:
			mags = values
		}

		for i, k := range keys {
			count := dataset.NoCount
			if c, ok := t.Count(p, k); ok {
				count = c
			}
			out.Add(dataset.Row{Period: p, Key: k, Value: mags[i], Count: count})
		}
	}
	return out
}

// PeriodSum returns the sum of magnitudes of keys at period p.
func PeriodSum(t *dataset.Table, keys []string, p int) float64 {
	values := make([]float64, len(keys))
	for i, k := range keys {
		values[i] = t.Value(p, k)
	}
	return floats.Sum(values)
}
