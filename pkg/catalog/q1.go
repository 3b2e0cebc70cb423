package catalog

import (
	"github.com/matzehuels/crimescope/pkg/chart"
	"github.com/matzehuels/crimescope/pkg/dataset"
)

// Resource names of the crime frequency chart.
const (
	ResQ1Category    = "q1_offence_category.json"
	ResQ1Subcategory = "q1_offence_subcategory.json"
	ResQ1Map         = "q1_offence_map.json"
)

// Q1 is the relative frequency of offence categories or subcategories per
// year, as a normalized stacked area.
func Q1() *Definition {
	d := &Definition{
		ID:          "q1",
		Title:       "Frequency of crime types over time",
		Description: "Relative frequency of offence categories per year",
		Modes: []Option{
			{Value: "category", Label: "Offence category"},
			{Value: "subcategory", Label: "Offence subcategory"},
		},
		Controls: []Control{ControlMode, ControlKeys, ControlGroups},
	}
	d.Resources = func(sel chart.Selection) []string {
		if sel.Mode() == "subcategory" {
			return []string{ResQ1Subcategory, ResQ1Map}
		}
		return []string{ResQ1Category}
	}
	d.Build = func(in Input) (*View, error) { return buildQ1(d, in) }
	return d
}

func buildQ1(d *Definition, in Input) (*View, error) {
	sel := in.Selection
	name := ResQ1Category
	if sel.Mode() == "subcategory" {
		name = ResQ1Subcategory
	}
	data, err := in.resource(name)
	if err != nil {
		return nil, err
	}
	tbl, err := dataset.DecodeWide(name, data, "year")
	if err != nil {
		return nil, err
	}

	var tax *dataset.Taxonomy
	if sel.Mode() == "subcategory" {
		raw, err := in.resource(ResQ1Map)
		if err != nil {
			return nil, err
		}
		if tax, err = dataset.DecodeTaxonomy(ResQ1Map, raw); err != nil {
			return nil, err
		}
		for _, g := range in.Groups {
			sel = sel.SetGroup(tax.Children(g), true)
		}
	}

	known := tbl.SortedKeys()
	panel := chart.PanelSpec{
		ID:         "frequency",
		Geometry:   chart.GeomArea,
		Table:      tbl,
		Policy:     chart.PolicyRelative,
		Keys:       sel.Resolve(known),
		KnownKeys:  known,
		Palette:    chart.Tableau10,
		UnitDomain: true,
		Format:     chart.FormatPercent1,
		Tooltip:    chart.Tooltip{ValueLabel: "Frequency"},
		Margin:     chart.Margin{Top: 40, Right: 160, Bottom: 30, Left: 50},
	}
	return &View{
		State:    state(in, d, sel, panel),
		Keys:     known,
		Taxonomy: tax,
	}, nil
}
