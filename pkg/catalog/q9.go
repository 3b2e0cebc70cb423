package catalog

import (
	"sort"

	"github.com/matzehuels/crimescope/pkg/chart"
	"github.com/matzehuels/crimescope/pkg/dataset"
)

// ResQ9 is the technology crime resource.
const ResQ9 = "q9_tech_crimes_and_time.json"

type q9Record struct {
	Year        float64 `json:"year"`
	Technology  string  `json:"technology_related_crimes"`
	Subcategory string  `json:"offence_subcategory"`
	Count       float64 `json:"count"`
	Total       float64 `json:"total"`
	Proportion  float64 `json:"proportion"`
}

type q9Period struct {
	Label          string       `json:"label"`
	HighlightStart int          `json:"highlight_start"`
	HighlightEnd   int          `json:"highlight_end"`
	Milestones     []yearMarker `json:"milestones"`
}

// Q9 shows offences tied to a technology over time, with the period the
// technology spread and its milestones.
func Q9() *Definition {
	d := &Definition{
		ID:          "q9",
		Title:       "Technology and crime over time",
		Description: "Technology related offences per year around key inventions",
		Modes: []Option{
			{Value: "count", Label: "Count"},
			{Value: "proportion", Label: "Proportion"},
		},
		Controls: []Control{ControlMode, ControlKeys, ControlFilter},
	}
	d.Resources = func(chart.Selection) []string { return []string{ResQ9} }
	d.Build = func(in Input) (*View, error) { return buildQ9(d, in) }
	return d
}

func buildQ9(d *Definition, in Input) (*View, error) {
	data, err := in.resource(ResQ9)
	if err != nil {
		return nil, err
	}
	var res struct {
		Data        []q9Record          `json:"data"`
		TechPeriods map[string]q9Period `json:"tech_periods"`
	}
	if err := dataset.Decode(ResQ9, data, &res); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var techs []string
	for _, r := range res.Data {
		if !seen[r.Technology] {
			seen[r.Technology] = true
			techs = append(techs, r.Technology)
		}
	}
	sort.Strings(techs)

	sel := in.Selection
	if len(techs) > 0 && !seen[sel.Filter()] {
		sel = sel.WithFilter(techs[0])
	}
	tech := sel.Filter()
	proportion := sel.Mode() == "proportion"

	tbl := dataset.NewTable()
	for _, r := range res.Data {
		if r.Technology != tech {
			continue
		}
		v := r.Count
		if proportion {
			v = r.Proportion
		}
		tbl.Add(dataset.Row{Period: int(r.Year), Key: r.Subcategory, Value: v, Count: dataset.NoCount})
	}
	keys := tbl.Keys()

	spec := chart.PanelSpec{
		ID:        "tech",
		Title:     tech,
		Geometry:  chart.GeomArea,
		Table:     tbl,
		Keys:      sel.Resolve(keys),
		KnownKeys: keys,
		Tooltip:   chart.Tooltip{KeyLabel: "Crime", ValueLabel: "Value"},
		Format:    chart.FormatCount,
		Margin:    chart.Margin{Top: 60, Right: 180, Bottom: 50, Left: 60},
	}
	if proportion {
		spec.Format = chart.FormatPercent2
	}
	if p, ok := res.TechPeriods[tech]; ok {
		spec.Annotations = []dataset.Annotation{{
			Label:   p.Label,
			Start:   p.HighlightStart,
			End:     p.HighlightEnd,
			Markers: markers(p.Milestones),
			Kind:    dataset.KindHighlight,
		}}
	}

	return &View{
		State:   state(in, d, sel, spec),
		Keys:    keys,
		Filters: options(techs...),
	}, nil
}
