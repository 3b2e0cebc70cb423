package catalog

import (
	"fmt"
	"sort"

	"github.com/matzehuels/crimescope/pkg/chart"
	"github.com/matzehuels/crimescope/pkg/dataset"
)

// ResQ5 is the property crime resource.
const ResQ5 = "q5_property_crime_trends.json"

const q5AllKey = "all"

var (
	q5Categories = []string{"theft", "deception", "damage", "violentTheft"}
	q5Keys       = append([]string{q5AllKey}, q5Categories...)
	q5Colors     = map[string]string{
		"all":          "#000000",
		"theft":        "#1f77b4",
		"deception":    "#ff7f0e",
		"damage":       "#2ca02c",
		"violentTheft": "#d62728",
	}
	q5BandColors = []string{"#ffdddd", "#ddffdd", "#ddddff", "#ffffdd", "#ffddff"}
)

type q5Period struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
}

type q5Resource struct {
	YearlyRates     map[string]map[string]float64            `json:"yearly_rates"`
	EconomicPeriods []q5Period                               `json:"economic_periods"`
	Proportions     map[string]map[string]map[string]float64 `json:"category_proportions"`
}

// Q5 is property crime as a share of all crime per year, against periods
// of economic hardship. Focusing a period adds a pie of its category mix.
func Q5() *Definition {
	d := &Definition{
		ID:          "q5",
		Title:       "Property crime during economic hardship",
		Description: "Property offences as a share of all offences, with crisis periods",
		Controls:    []Control{ControlKeys, ControlFocus},
		DefaultKeys: []string{q5AllKey},
	}
	d.Resources = func(chart.Selection) []string { return []string{ResQ5} }
	d.Build = func(in Input) (*View, error) { return buildQ5(d, in) }
	return d
}

func buildQ5(d *Definition, in Input) (*View, error) {
	data, err := in.resource(ResQ5)
	if err != nil {
		return nil, err
	}
	var res q5Resource
	if err := dataset.Decode(ResQ5, data, &res); err != nil {
		return nil, err
	}

	tbl := dataset.NewTable()
	for y, counts := range res.YearlyRates {
		p, err := dataset.ParsePeriod(y)
		if err != nil {
			return nil, err
		}
		total := counts["total_all"]
		if total <= 0 {
			total = 1
		}
		tbl.SetTotal(p, total)
		sum := 0.0
		for _, c := range q5Categories {
			sum += counts[c]
			tbl.Add(dataset.Row{Period: p, Key: c, Value: counts[c], Count: dataset.NoCount})
		}
		tbl.Add(dataset.Row{Period: p, Key: q5AllKey, Value: sum, Count: dataset.NoCount})
	}

	ymax := 0.0
	for _, p := range tbl.Periods() {
		total, _ := tbl.Total(p)
		for _, k := range q5Keys {
			ymax = max(ymax, chart.Ratio(tbl.Value(p, k), total))
		}
	}

	annotations := make([]dataset.Annotation, 0, len(res.EconomicPeriods))
	labels := make(map[string]string)
	for _, ep := range res.EconomicPeriods {
		annotations = append(annotations, dataset.Annotation{
			Label: ep.Label, Start: ep.Start, End: ep.End, Kind: dataset.KindPeriod,
		})
		labels[fmt.Sprintf("%d-%d", ep.Start, ep.End)] = ep.Label
	}

	sel := in.Selection
	lines := chart.PanelSpec{
		ID:          "trends",
		Geometry:    chart.GeomLine,
		Table:       tbl,
		Policy:      chart.PolicyRatio,
		Keys:        sel.Resolve(q5Keys),
		KnownKeys:   q5Keys,
		Colors:      q5Colors,
		Points:      true,
		Ghost:       true,
		YMax:        ymax,
		Format:      chart.FormatPercent1,
		Annotations: annotations,
		BandColors:  q5BandColors,
		BandOpacity: 0.5,
		TooltipFunc: func(key string, period int, v float64) []string {
			return []string{fmt.Sprintf("Year: %d", period), key + ": " + chart.FormatPercent1.Format(v)}
		},
	}
	panels := []chart.PanelSpec{lines}

	focus := q5Focus(res.Proportions, labels)
	if f := sel.Focus(); f != "" {
		panels = append(panels, q5Pie(res.Proportions, f, labels))
	}

	return &View{
		State: state(in, d, sel, panels...),
		Keys:  q5Keys,
		Focus: focus,
	}, nil
}

func q5Focus(props map[string]map[string]map[string]float64, labels map[string]string) []Option {
	var out []Option
	for _, group := range []string{"crisis", "non_crisis"} {
		keys := make([]string, 0, len(props[group]))
		for k := range props[group] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, Option{Value: k, Label: periodLabel(k, labels)})
		}
	}
	return out
}

func periodLabel(key string, labels map[string]string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return "Non-crisis period"
}

func q5Pie(props map[string]map[string]map[string]float64, key string, labels map[string]string) chart.PanelSpec {
	mix, ok := props["crisis"][key]
	if !ok {
		mix = props["non_crisis"][key]
	}
	cats := make([]string, 0, len(mix))
	for c := range mix {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	items := make([]chart.Item, 0, len(cats))
	for _, c := range cats {
		items = append(items, chart.Item{Label: c, Values: []float64{mix[c]}, Count: dataset.NoCount})
	}
	return chart.PanelSpec{
		ID:       "period-mix",
		Title:    fmt.Sprintf("%s (%s)", key, periodLabel(key, labels)),
		Geometry: chart.GeomPie,
		Items:    items,
		Colors:   q5Colors,
		ItemTooltip: func(it chart.Item, _ int) []string {
			return []string{it.Label + ": " + chart.FormatPercent1.Format(it.Value(0))}
		},
		EmptyMessage: "No data for period " + key,
	}
}
