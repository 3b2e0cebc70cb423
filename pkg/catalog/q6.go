package catalog

import (
	"fmt"

	"github.com/matzehuels/crimescope/pkg/chart"
	"github.com/matzehuels/crimescope/pkg/dataset"
)

// minJuvenileShare drops offences too rare to show as a bar.
const minJuvenileShare = 0.0005

var (
	q6Series = []string{"Original", "Predicted"}
	q6Colors = map[string]string{"Original": "#69b3a2", "Predicted": "#f28e2b"}
)

// Q6Resource names the juvenile offence resource of a mode and source.
func Q6Resource(mode, source string) string {
	return fmt.Sprintf("q6_offence_%s_under18_%s.json", mode, source)
}

type q6Record struct {
	Category    string  `json:"offence_category"`
	Subcategory string  `json:"offence_subcategory"`
	Count       int     `json:"count"`
	Proportion  float64 `json:"proportion"`
}

func (r q6Record) label() string {
	if r.Subcategory != "" {
		return r.Subcategory
	}
	return r.Category
}

// Q6 compares the offences of defendants under 18, with recorded ages
// against ages predicted for defendants without one.
func Q6() *Definition {
	d := &Definition{
		ID:          "q6",
		Title:       "Juvenile crime by offence type",
		Description: "Offence mix of defendants under 18, original and predicted ages",
		Modes: []Option{
			{Value: "category", Label: "Offence category"},
			{Value: "subcategory", Label: "Offence subcategory"},
		},
		Controls: []Control{ControlMode},
	}
	d.Resources = func(sel chart.Selection) []string {
		mode := sel.Mode()
		if mode == "" {
			mode = "category"
		}
		return []string{Q6Resource(mode, "original"), Q6Resource(mode, "predicted")}
	}
	d.Build = func(in Input) (*View, error) { return buildQ6(d, in) }
	return d
}

func buildQ6(d *Definition, in Input) (*View, error) {
	sel := in.Selection
	var (
		labels []string
		values = make(map[string][]float64)
		counts = make(map[string]int)
	)
	for s, name := range d.Resources(sel) {
		data, err := in.resource(name)
		if err != nil {
			return nil, err
		}
		var rs []q6Record
		if err := dataset.Decode(name, data, &rs); err != nil {
			return nil, err
		}
		for _, r := range rs {
			l := r.label()
			v, ok := values[l]
			if !ok {
				v = make([]float64, len(q6Series))
				labels = append(labels, l)
			}
			v[s] = r.Proportion
			values[l] = v
			counts[l] += r.Count
		}
	}

	items := make([]chart.Item, 0, len(labels))
	for _, l := range labels {
		v := values[l]
		if v[0] <= minJuvenileShare && v[1] <= minJuvenileShare {
			continue
		}
		items = append(items, chart.Item{Label: l, Values: v, Count: counts[l]})
	}

	bars := chart.PanelSpec{
		ID:       "juvenile",
		Geometry: chart.GeomBar,
		Items:    items,
		Series:   q6Series,
		Grouped:  true,
		Colors:   q6Colors,
		Format:   chart.FormatPercent2,
		ItemTooltip: func(it chart.Item, s int) []string {
			return []string{it.Label, fmt.Sprintf("Proportion (%s): %s", q6Series[s], chart.FormatPercent2.Format(it.Value(s)))}
		},
		Margin: chart.Margin{Top: 30, Right: 40, Bottom: 10, Left: 160},
	}
	return &View{State: state(in, d, sel, bars)}, nil
}
