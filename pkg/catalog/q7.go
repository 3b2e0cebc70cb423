package catalog

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/matzehuels/crimescope/pkg/chart"
	"github.com/matzehuels/crimescope/pkg/dataset"
)

// ResQ7 is the industrialisation resource.
const ResQ7 = "q7_industrial_crime_trends.json"

var q7StageColors = []string{"#e0f7fa", "#ffe0b2", "#c8e6c9", "#f8bbd0"}

type q7Resource struct {
	Stages []struct {
		Name  string `json:"name"`
		Start int    `json:"start"`
		End   int    `json:"end"`
	} `json:"industrial_stages"`
	TotalTrend []struct {
		Year  float64 `json:"year"`
		Count float64 `json:"count"`
	} `json:"total_trend"`
	CategoryTrend   []map[string]json.RawMessage `json:"category_trend"`
	StructureByYear []map[string]json.RawMessage `json:"structure_by_year"`
	AgeStructure    []map[string]json.RawMessage `json:"age_structure"`
}

// Q7 follows crime through the stages of industrialisation: the total
// count (optionally broken down by category), the offence structure and
// the age structure of defendants.
func Q7() *Definition {
	d := &Definition{
		ID:          "q7",
		Title:       "Crime during industrialisation",
		Description: "Crime counts and structure across industrial stages",
		Modes: []Option{
			{Value: "total_trend", Label: "Total crime trend"},
			{Value: "crime_structure", Label: "Crime structure"},
			{Value: "age_structure", Label: "Age structure"},
		},
		Controls: []Control{ControlMode, ControlKeys, ControlBreakdown},
	}
	d.Resources = func(chart.Selection) []string { return []string{ResQ7} }
	d.Build = func(in Input) (*View, error) { return buildQ7(d, in) }
	return d
}

func buildQ7(d *Definition, in Input) (*View, error) {
	data, err := in.resource(ResQ7)
	if err != nil {
		return nil, err
	}
	var res q7Resource
	if err := dataset.Decode(ResQ7, data, &res); err != nil {
		return nil, err
	}

	stages := make([]dataset.Annotation, 0, len(res.Stages))
	for _, s := range res.Stages {
		stages = append(stages, dataset.Annotation{
			Label: s.Name, Start: s.Start, End: s.End, EndInclusive: true, Kind: dataset.KindPeriod,
		})
	}

	sel := in.Selection
	mode := sel.Mode()
	if mode == "" {
		mode = d.DefaultMode()
	}
	spec := chart.PanelSpec{
		ID:          mode,
		Annotations: stages,
		BandColors:  q7StageColors,
		BandOpacity: 0.4,
		Format:      chart.FormatCount,
		Height:      400,
		Margin:      chart.Margin{Top: 40, Right: 160, Bottom: 40, Left: 50},
	}

	var (
		records  []map[string]json.RawMessage
		keyLabel string
	)
	switch {
	case mode == "total_trend" && !sel.Breakdown():
		tbl := dataset.NewTable()
		for _, r := range res.TotalTrend {
			tbl.Add(dataset.Row{Period: int(r.Year), Key: "count", Value: r.Count, Count: dataset.NoCount})
		}
		spec.Geometry = chart.GeomLine
		spec.Table = tbl
		spec.Keys = []string{"count"}
		spec.Colors = map[string]string{"count": chart.ColorPrimary}
		spec.Labels = map[string]string{"count": "Total"}
		spec.Points = true
		spec.TooltipFunc = func(_ string, period int, v float64) []string {
			return []string{fmt.Sprintf("Year: %d", period), "Count: " + chart.FormatCount.Format(v)}
		}
		return &View{State: state(in, d, sel, spec), Breakdown: true}, nil
	case mode == "total_trend":
		records, keyLabel = res.CategoryTrend, "Category"
	case mode == "crime_structure":
		records, keyLabel = res.StructureByYear, "Type"
	default:
		records, keyLabel = res.AgeStructure, "Group"
	}

	tbl, err := dataset.WideTable(ResQ7, records, "year")
	if err != nil {
		return nil, err
	}
	keys := tbl.Keys()
	spec.Geometry = chart.GeomArea
	spec.Table = tbl
	spec.Keys = sel.Resolve(keys)
	spec.KnownKeys = keys
	spec.Tooltip = chart.Tooltip{KeyLabel: keyLabel, ValueLabel: "Count"}

	return &View{State: state(in, d, sel, spec), Keys: keys, Breakdown: mode == "total_trend"}, nil
}
