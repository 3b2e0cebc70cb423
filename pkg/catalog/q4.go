package catalog

import (
	"sort"

	"github.com/matzehuels/crimescope/pkg/chart"
	"github.com/matzehuels/crimescope/pkg/dataset"
)

// Resource names of the conviction rate chart.
const (
	ResQ4Category    = "q4_conviction_by_offence_category.json"
	ResQ4Subcategory = "q4_conviction_by_offence_subcategory.json"
)

type q4Record struct {
	Category       string  `json:"offence_category"`
	Subcategory    string  `json:"offence_subcategory"`
	Total          int     `json:"total"`
	Guilty         float64 `json:"guilty"`
	GuiltyCategory float64 `json:"guilty_category"`
	ConvictionRate float64 `json:"conviction_rate"`
}

func (r q4Record) label() string {
	if r.Subcategory == "" {
		return r.Category
	}
	return r.Category + " - " + r.Subcategory
}

// Q4 ranks offences by conviction rate. Focusing a category adds a pie of
// how its convictions split over subcategories.
func Q4() *Definition {
	d := &Definition{
		ID:          "q4",
		Title:       "Conviction rates by crime category",
		Description: "Share of guilty verdicts per offence, ranked",
		Modes: []Option{
			{Value: "category", Label: "Offence category"},
			{Value: "subcategory", Label: "Offence subcategory"},
		},
		Controls: []Control{ControlMode, ControlFocus},
	}
	d.Resources = func(sel chart.Selection) []string {
		if sel.Mode() == "subcategory" {
			return []string{ResQ4Subcategory}
		}
		if sel.Focus() != "" {
			return []string{ResQ4Category, ResQ4Subcategory}
		}
		return []string{ResQ4Category}
	}
	d.Build = func(in Input) (*View, error) { return buildQ4(d, in) }
	return d
}

func decodeQ4(in Input, name string) ([]q4Record, error) {
	data, err := in.resource(name)
	if err != nil {
		return nil, err
	}
	var rs []q4Record
	if err := dataset.Decode(name, data, &rs); err != nil {
		return nil, err
	}
	return rs, nil
}

func buildQ4(d *Definition, in Input) (*View, error) {
	sel := in.Selection
	name := ResQ4Category
	if sel.Mode() == "subcategory" {
		name = ResQ4Subcategory
	}
	records, err := decodeQ4(in, name)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ConvictionRate > records[j].ConvictionRate
	})

	items := make([]chart.Item, 0, len(records))
	var focus []Option
	for _, r := range records {
		it := chart.Item{
			Label:  r.label(),
			Values: []float64{r.ConvictionRate},
			Count:  r.Total,
			Color:  chart.Sequential(r.ConvictionRate),
		}
		if sel.Mode() != "subcategory" {
			it.Focus = r.Category
			focus = append(focus, Option{Value: r.Category, Label: r.Category})
		}
		items = append(items, it)
	}

	bars := chart.PanelSpec{
		ID:         "rates",
		Geometry:   chart.GeomBar,
		Items:      items,
		UnitDomain: true,
		Format:     chart.FormatPercent1,
		ItemTooltip: func(it chart.Item, _ int) []string {
			return []string{it.Label, "conviction rate: " + chart.FormatPercent1.Format(it.Value(0))}
		},
		Margin: chart.Margin{Top: 30, Right: 40, Bottom: 10, Left: 260},
	}
	panels := []chart.PanelSpec{bars}

	if sel.Mode() != "subcategory" && sel.Focus() != "" {
		subs, err := decodeQ4(in, ResQ4Subcategory)
		if err != nil {
			return nil, err
		}
		panels = append(panels, convictionPie(subs, sel.Focus()))
	}

	return &View{
		State: state(in, d, sel, panels...),
		Focus: focus,
	}, nil
}

// convictionPie splits a category's convictions over its subcategories.
func convictionPie(records []q4Record, category string) chart.PanelSpec {
	var items []chart.Item
	share := make(map[string]float64)
	for _, r := range records {
		if r.Category != category {
			continue
		}
		items = append(items, chart.Item{Label: r.Subcategory, Values: []float64{r.Guilty}, Count: r.Total})
		share[r.Subcategory] = chart.Ratio(r.Guilty, r.GuiltyCategory)
	}
	return chart.PanelSpec{
		ID:           "subcategories",
		Title:        "Percentage of convictions for " + category + " subcategory",
		Geometry:     chart.GeomPie,
		Items:        items,
		Palette:      chart.Category10,
		EmptyMessage: "No visible subcategory data",
		ItemTooltip: func(it chart.Item, _ int) []string {
			return []string{
				"subcategory: " + it.Label,
				"accounts for: " + chart.FormatPercent1.Format(share[it.Label]),
			}
		},
	}
}
