package catalog

import (
	"strings"

	"github.com/matzehuels/crimescope/pkg/chart"
	"github.com/matzehuels/crimescope/pkg/dataset"
)

// Resource names of the violent versus non-violent chart.
const (
	ResQ2Shares = "q2_violent_vs_nonviolent.json"
	ResQ2Info   = "q2_category_info.json"
)

var q2Keys = []string{"violent", "non-violent", "unknown"}

var q2Colors = map[string]string{
	"violent":     "#d62728",
	"non-violent": "#1f77b4",
	"unknown":     "#ff7f0e",
}

type q2Group struct {
	Categories    []string `json:"categories"`
	Miscellaneous []string `json:"subcategories_miscellaneous"`
}

// Q2 is the share of violent, non-violent and unknown offences per year.
func Q2() *Definition {
	d := &Definition{
		ID:          "q2",
		Title:       "Violent vs non-violent crimes over time",
		Description: "Yearly share of violent, non-violent and unclassified offences",
		Controls:    []Control{ControlKeys},
	}
	d.Resources = func(chart.Selection) []string { return []string{ResQ2Shares, ResQ2Info} }
	d.Build = func(in Input) (*View, error) { return buildQ2(d, in) }
	return d
}

func buildQ2(d *Definition, in Input) (*View, error) {
	data, err := in.resource(ResQ2Shares)
	if err != nil {
		return nil, err
	}
	tbl, err := dataset.DecodeWide(ResQ2Shares, data, "year")
	if err != nil {
		return nil, err
	}
	raw, err := in.resource(ResQ2Info)
	if err != nil {
		return nil, err
	}
	var info map[string]q2Group
	if err := dataset.Decode(ResQ2Info, raw, &info); err != nil {
		return nil, err
	}

	var notes []string
	if g, ok := info["violent"]; ok {
		notes = append(notes, groupNote("Violent", g))
	}
	if g, ok := info["nonViolent"]; ok {
		notes = append(notes, groupNote("Non-violent", g))
	}

	panel := chart.PanelSpec{
		ID:         "shares",
		Geometry:   chart.GeomArea,
		Table:      tbl,
		Policy:     chart.PolicyRelative,
		Keys:       in.Selection.Resolve(q2Keys),
		KnownKeys:  q2Keys,
		Colors:     q2Colors,
		UnitDomain: true,
		Format:     chart.FormatPercent1,
		Tooltip:    chart.Tooltip{AllKeys: true},
		Notes:      notes,
		Margin:     chart.Margin{Top: 40, Right: 160, Bottom: 70, Left: 50},
	}
	return &View{
		State: state(in, d, in.Selection, panel),
		Keys:  q2Keys,
	}, nil
}

func groupNote(name string, g q2Group) string {
	return name + " crimes include: " + strings.Join(g.Categories, ", ") +
		" | Miscellaneous Subcategories: " + strings.Join(g.Miscellaneous, ", ")
}
