package chart

import (
	"slices"

	"github.com/matzehuels/crimescope/pkg/dataset"
)

// Segment is one key's interval at one period.
type Segment struct {
	Period   int     `json:"period"`
	Baseline float64 `json:"baseline"`
	Top      float64 `json:"top"`
}

// Magnitude returns Top - Baseline.
func (s Segment) Magnitude() float64 { return s.Top - s.Baseline }

// Layer is a key's segments over every period of the table.
type Layer struct {
	Key      string    `json:"key"`
	Segments []Segment `json:"segments"`
}

// At returns the segment at period p.
func (l Layer) At(p int) (Segment, bool) {
	i, ok := slices.BinarySearchFunc(l.Segments, p, func(s Segment, p int) int {
		return s.Period - p
	})
	if !ok {
		return Segment{}, false
	}
	return l.Segments[i], true
}

// Stack computes cumulative layers for keys over every period of t. The key
// order is copied once and fixed for the call; a key missing at a period
// contributes zero.
func Stack(keys []string, t *dataset.Table) []Layer {
	order := slices.Clone(keys)
	periods := t.Periods()

	layers := make([]Layer, len(order))
	for i, k := range order {
		layers[i] = Layer{Key: k, Segments: make([]Segment, len(periods))}
	}
	for j, p := range periods {
		base := 0.0
		for i, k := range order {
			top := base + t.Value(p, k)
			layers[i].Segments[j] = Segment{Period: p, Baseline: base, Top: top}
			base = top
		}
	}
	return layers
}

// Flat returns one layer per key with a zero baseline, for line charts.
func Flat(keys []string, t *dataset.Table) []Layer {
	periods := t.Periods()
	layers := make([]Layer, len(keys))
	for i, k := range keys {
		segs := make([]Segment, len(periods))
		for j, p := range periods {
			segs[j] = Segment{Period: p, Top: t.Value(p, k)}
		}
		layers[i] = Layer{Key: k, Segments: segs}
	}
	return layers
}

// MaxTop returns the largest top over all layers, or 0.
func MaxTop(layers []Layer) float64 {
	m := 0.0
	for _, l := range layers {
		for _, s := range l.Segments {
			if s.Top > m {
				m = s.Top
			}
		}
	}
	return m
}
