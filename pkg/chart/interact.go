package chart

import (
	"fmt"
	"math"
)

// LowSampleThreshold is the backing count below which a magnitude is
// flagged as low confidence.
const LowSampleThreshold = 10

// LowSampleWarning is appended to tooltips of low-sample marks.
const LowSampleWarning = "Warning: Low case count, proportions may be distorted"

// IsLowSample reports whether a known count is under LowSampleThreshold.
func IsLowSample(count int, known bool) bool {
	return known && count < LowSampleThreshold
}

// NearestIndex returns the index of the period closest to v. Ties go to the
// earlier period. periods must be ascending.
func NearestIndex(periods []int, v float64) (int, bool) {
	if len(periods) == 0 || math.IsNaN(v) {
		return 0, false
	}
	best, bestDist := 0, math.Abs(float64(periods[0])-v)
	for i := 1; i < len(periods); i++ {
		d := math.Abs(float64(periods[i]) - v)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, true
}

// NearestPeriod returns the period closest to v, ties to the earlier one.
func NearestPeriod(periods []int, v float64) (int, bool) {
	i, ok := NearestIndex(periods, v)
	if !ok {
		return 0, false
	}
	return periods[i], true
}

// ValueFormat formats magnitudes for tooltips and axes.
type ValueFormat struct {
	Percent  bool `json:"percent"`
	Decimals int  `json:"decimals"`
}

// Common formats.
var (
	FormatPercent1 = ValueFormat{Percent: true, Decimals: 1}
	FormatPercent2 = ValueFormat{Percent: true, Decimals: 2}
	FormatCount    = ValueFormat{}
)

// Format renders v: a percentage with fixed decimals, or an integer count.
func (f ValueFormat) Format(v float64) string {
	if f.Percent {
		return fmt.Sprintf("%.*f%%", f.Decimals, v*100)
	}
	if f.Decimals == 0 {
		return fmt.Sprintf("%d", int64(math.Round(v)))
	}
	return fmt.Sprintf("%.*f", f.Decimals, v)
}

// Axis renders an axis tick label.
func (f ValueFormat) Axis(v float64) string {
	if f.Percent {
		return fmt.Sprintf("%.0f%%", v*100)
	}
	return fmt.Sprintf("%g", v)
}

// Hover is the lookup table behind period-resolved tooltips on area marks.
// Tips[key][i] holds the tooltip for Periods[i]; a nil entry suppresses the
// tooltip. The inline script performs the same resolution in the browser.
type Hover struct {
	Periods []int                 `json:"periods"`
	X       Linear                `json:"x"`
	Tips    map[string][][]string `json:"tips"`
}

// Resolve inverts the pointer x through the period scale, picks the
// nearest period and returns the tooltip of key there.
func (h *Hover) Resolve(px float64, key string) ([]string, bool) {
	if h == nil {
		return nil, false
	}
	tips, ok := h.Tips[key]
	if !ok {
		return nil, false
	}
	i, ok := NearestIndex(h.Periods, h.X.Invert(px))
	if !ok || i >= len(tips) || len(tips[i]) == 0 {
		return nil, false
	}
	return tips[i], true
}

// Tooltip describes how default tooltips read.
type Tooltip struct {
	// KeyLabel prefixes the key line ("Category: theft"). Empty puts the
	// bare key on the first line.
	KeyLabel string
	// ValueLabel prefixes the value line ("Frequency: 12.5%").
	ValueLabel string
	// AllKeys lists every key at the period instead of the hovered one.
	AllKeys bool
}

// Lines builds the default tooltip of key at period.
func (t Tooltip) Lines(key string, period int, value float64, f ValueFormat) []string {
	valueLabel := t.ValueLabel
	if valueLabel == "" {
		valueLabel = "Value"
	}
	if t.KeyLabel == "" {
		return []string{key, fmt.Sprintf("Year: %d", period), valueLabel + ": " + f.Format(value)}
	}
	return []string{
		fmt.Sprintf("Year: %d", period),
		t.KeyLabel + ": " + key,
		valueLabel + ": " + f.Format(value),
	}
}

// lowSampleLines returns the warning appended for a low count.
func lowSampleLines(count int) []string {
	return []string{fmt.Sprintf("Total cases: %d", count), LowSampleWarning}
}
