package catalog

import (
	"fmt"
	"sort"

	"github.com/matzehuels/crimescope/pkg/chart"
	"github.com/matzehuels/crimescope/pkg/dataset"
)

// ResQ10 is the alcohol crime resource.
const ResQ10 = "q10_alcohol_crime_trends.json"

const (
	q10All       = "all"
	q10FirstYear = 1720
)

type q10Year struct {
	Proportion  float64            `json:"proportion"`
	Composition map[string]float64 `json:"composition"`
}

type q10Resource struct {
	PolicyPeriods []struct {
		Label   string       `json:"label"`
		Start   int          `json:"start"`
		End     int          `json:"end"`
		Markers []yearMarker `json:"markers"`
	} `json:"policy_periods"`
	Total      map[string]q10Year            `json:"total"`
	Categories map[string]map[string]q10Year `json:"categories"`
}

// Q10 is the share of alcohol related offences against periods of
// alcohol policy. The breakdown stacks the share by category, or by
// subcategory when a category is filtered.
func Q10() *Definition {
	d := &Definition{
		ID:          "q10",
		Title:       "Alcohol related crime and policy",
		Description: "Share of alcohol related offences across alcohol policy periods",
		Controls:    []Control{ControlKeys, ControlFilter, ControlBreakdown},
	}
	d.Resources = func(chart.Selection) []string { return []string{ResQ10} }
	d.Build = func(in Input) (*View, error) { return buildQ10(d, in) }
	return d
}

func buildQ10(d *Definition, in Input) (*View, error) {
	data, err := in.resource(ResQ10)
	if err != nil {
		return nil, err
	}
	var res q10Resource
	if err := dataset.Decode(ResQ10, data, &res); err != nil {
		return nil, err
	}

	cats := make([]string, 0, len(res.Categories))
	for c := range res.Categories {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	filters := options(append([]string{q10All}, cats...)...)

	sel := in.Selection
	if _, ok := res.Categories[sel.Filter()]; !ok {
		sel = sel.WithFilter(q10All)
	}
	filter := sel.Filter()
	years := res.Total
	if filter != q10All {
		years = res.Categories[filter]
	}
	yearly, err := q10Years(years)
	if err != nil {
		return nil, err
	}

	policies := make([]dataset.Annotation, 0, len(res.PolicyPeriods))
	for _, p := range res.PolicyPeriods {
		policies = append(policies, dataset.Annotation{
			Label: p.Label, Start: p.Start, End: p.End, Markers: markers(p.Markers), Kind: dataset.KindPeriod,
		})
	}

	spec := chart.PanelSpec{
		ID:          "alcohol",
		Table:       dataset.NewTable(),
		ForceStart:  intPtr(q10FirstYear),
		Palette:     chart.Category10,
		Annotations: policies,
		BandColors:  chart.Pastel,
		BandOpacity: 0.3,
		BandLegend:  "Alcohol Policy Periods",
		MarkerLabel: "Policy",
		Format:      chart.FormatPercent2,
		Margin:      chart.Margin{Top: 50, Right: 250, Bottom: 50, Left: 60},
	}

	if !sel.Breakdown() {
		for _, y := range yearly {
			spec.Table.Add(dataset.Row{Period: y.period, Key: filter, Value: y.Proportion, Count: dataset.NoCount})
		}
		spec.Geometry = chart.GeomLine
		spec.Keys = []string{filter}
		spec.KnownKeys = append([]string{q10All}, cats...)
		spec.Labels = map[string]string{filter: "Category: " + filter}
		spec.Points = true
		spec.TooltipFunc = func(_ string, period int, v float64) []string {
			return []string{fmt.Sprintf("Year: %d", period), "Proportion: " + chart.FormatPercent2.Format(v)}
		}
		return &View{State: state(in, d, sel, spec), Filters: filters, Breakdown: true}, nil
	}

	// Keys are the union of the yearly compositions in first-seen order.
	for _, y := range yearly {
		spec.Table.AddPeriod(y.period)
		parts := make([]string, 0, len(y.Composition))
		for k := range y.Composition {
			parts = append(parts, k)
		}
		sort.Strings(parts)
		for _, k := range parts {
			spec.Table.Add(dataset.Row{Period: y.period, Key: k, Value: y.Composition[k] * y.Proportion, Count: dataset.NoCount})
		}
	}
	keys := spec.Table.Keys()
	spec.Geometry = chart.GeomArea
	spec.Keys = sel.Resolve(keys)
	spec.KnownKeys = keys
	spec.Tooltip = chart.Tooltip{KeyLabel: "Category", ValueLabel: "Proportion"}

	return &View{State: state(in, d, sel, spec), Keys: keys, Filters: filters, Breakdown: true}, nil
}

type q10Point struct {
	period int
	q10Year
}

// q10Years returns the years from q10FirstYear on, ascending.
func q10Years(m map[string]q10Year) ([]q10Point, error) {
	out := make([]q10Point, 0, len(m))
	for k, v := range m {
		p, err := dataset.ParsePeriod(k)
		if err != nil {
			return nil, err
		}
		if p < q10FirstYear {
			continue
		}
		out = append(out, q10Point{period: p, q10Year: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].period < out[j].period })
	return out, nil
}
