package chart

import (
	"github.com/aclements/go-moremath/scale"
)

// Linear is an affine map from the domain [D0, D1] to the range [R0, R1].
// A zero-width domain maps every input to R0.
type Linear struct {
	D0, D1 float64
	R0, R1 float64
}

// Degenerate reports whether the domain has zero width.
func (s Linear) Degenerate() bool { return s.D0 == s.D1 }

// Map converts a domain value to the range.
func (s Linear) Map(x float64) float64 {
	if s.Degenerate() {
		return s.R0
	}
	return s.R0 + (x-s.D0)/(s.D1-s.D0)*(s.R1-s.R0)
}

// Invert converts a range value back to the domain.
func (s Linear) Invert(y float64) float64 {
	if s.R0 == s.R1 || s.Degenerate() {
		return s.D0
	}
	return s.D0 + (y-s.R0)/(s.R1-s.R0)*(s.D1-s.D0)
}

// Ticks returns up to n evenly spaced domain values. Integral forces
// integer ticks, used for periods.
func (s Linear) Ticks(n int, integral bool) []float64 {
	if s.Degenerate() {
		return []float64{s.D0}
	}
	lo, hi := s.D0, s.D1
	if lo > hi {
		lo, hi = hi, lo
	}
	opts := scale.TickOptions{Max: n}
	if integral {
		opts.MinLevel, opts.MaxLevel = 0, 1000
	}
	ls := scale.Linear{Min: lo, Max: hi, Base: 10}
	major, _ := ls.Ticks(opts)
	return major
}

// PeriodScale maps [first period | forced start, last period] onto
// [0, width]. A nil start uses the first period.
func PeriodScale(periods []int, start *int, width float64) Linear {
	if len(periods) == 0 {
		return Linear{R0: 0, R1: width}
	}
	lo, hi := periods[0], periods[len(periods)-1]
	if start != nil {
		lo = *start
	}
	return Linear{D0: float64(lo), D1: float64(hi), R0: 0, R1: width}
}

// ValueScale maps [0, max] onto [height, 0]. When unit is set the domain
// is [0, 1] regardless of max.
func ValueScale(max float64, unit bool, height float64) Linear {
	if unit {
		max = 1
	}
	return Linear{D0: 0, D1: max, R0: height, R1: 0}
}
