package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/crimescope/pkg/chart"
	"github.com/matzehuels/crimescope/pkg/dataset"
)

// Resource names of the capital punishment chart.
const (
	ResQ3Original  = "q3_capital_crimes.json"
	ResQ3Predicted = "q3_capital_crimes_predicted.json"
	ResQ3Missing   = "q3_missing_rates_original.json"
)

const q3All = "All"

var q3Series = []string{"Original", "Predicted"}

type q3Record struct {
	Year        float64 `json:"year"`
	Category    string  `json:"category"`
	Total       int     `json:"total"`
	Capital     float64 `json:"capital"`
	CapitalRate float64 `json:"capital_rate"`
	Source      string  `json:"source"`
	TooltipInfo string  `json:"tooltip_info"`
}

type q3Missing struct {
	Year     float64 `json:"year"`
	Category string  `json:"category"`
	Total    int     `json:"total"`
	Missing  int     `json:"missing"`
}

// Q3 is the yearly share of death sentences, original against predicted
// sentences, with the rate of missing sentences below.
func Q3() *Definition {
	d := &Definition{
		ID:          "q3",
		Title:       "Capital punishment rate over time",
		Description: "Share of death sentences per year with missing-sentence rates",
		Controls:    []Control{ControlKeys, ControlFilter},
	}
	d.Resources = func(chart.Selection) []string {
		return []string{ResQ3Original, ResQ3Predicted, ResQ3Missing}
	}
	d.Build = func(in Input) (*View, error) { return buildQ3(d, in) }
	return d
}

func buildQ3(d *Definition, in Input) (*View, error) {
	var records []q3Record
	for _, name := range []string{ResQ3Original, ResQ3Predicted} {
		data, err := in.resource(name)
		if err != nil {
			return nil, err
		}
		var rs []q3Record
		if err := dataset.Decode(name, data, &rs); err != nil {
			return nil, err
		}
		records = append(records, rs...)
	}
	data, err := in.resource(ResQ3Missing)
	if err != nil {
		return nil, err
	}
	var missing []q3Missing
	if err := dataset.Decode(ResQ3Missing, data, &missing); err != nil {
		return nil, err
	}

	seen := map[string]bool{q3All: true}
	var cats []string
	for _, r := range records {
		if !seen[r.Category] {
			seen[r.Category] = true
			cats = append(cats, r.Category)
		}
	}
	sort.Strings(cats)
	filters := options(append([]string{q3All}, cats...)...)

	sel := in.Selection
	if sel.Filter() == "" || !seen[sel.Filter()] {
		sel = sel.WithFilter(q3All)
	}
	filter := sel.Filter()

	tbl := dataset.NewTable()
	tips := make(map[string][]string)
	for _, r := range records {
		if r.Category != filter {
			continue
		}
		year := int(r.Year)
		tbl.Add(dataset.Row{Period: year, Key: r.Source, Value: r.CapitalRate, Count: r.Total})
		if r.TooltipInfo != "" {
			tips[r.Source+"@"+strconv.Itoa(year)] = splitTooltip(r.TooltipInfo)
		}
	}

	rates := chart.PanelSpec{
		ID:         "capital",
		Title:      "Capital crime rate",
		Geometry:   chart.GeomLine,
		Table:      tbl,
		Keys:       sel.Resolve(q3Series),
		KnownKeys:  q3Series,
		Colors:     map[string]string{"Original": chart.ColorPrimary, "Predicted": chart.ColorSecondary},
		Points:     true,
		LowSample:  true,
		UnitDomain: true,
		Format:     chart.FormatPercent1,
		TooltipFunc: func(key string, period int, _ float64) []string {
			if lines, ok := tips[key+"@"+strconv.Itoa(period)]; ok {
				return lines
			}
			return []string{fmt.Sprintf("Year: %d", period)}
		},
		Legend: []chart.LegendEntry{
			{Label: fmt.Sprintf("Annual cases < %d", chart.LowSampleThreshold), Color: chart.ColorLowSample, Shape: chart.ShapeCircle},
		},
		Height: 400,
	}

	return &View{
		State:   state(in, d, sel, rates, missingPanel(missing, filter)),
		Keys:    q3Series,
		Filters: filters,
	}, nil
}

// missingPanel shows the missing-sentence rate per year. The All filter
// sums every category of a year.
func missingPanel(records []q3Missing, filter string) chart.PanelSpec {
	type agg struct{ total, missing int }
	byYear := make(map[int]*agg)
	for _, r := range records {
		if filter != q3All && r.Category != filter {
			continue
		}
		y := int(r.Year)
		a, ok := byYear[y]
		if !ok {
			a = &agg{}
			byYear[y] = a
		}
		a.total += r.Total
		a.missing += r.Missing
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	items := make([]chart.Item, 0, len(years))
	for _, y := range years {
		a := byYear[y]
		items = append(items, chart.Item{
			Label:  strconv.Itoa(y),
			Values: []float64{chart.Ratio(float64(a.missing), float64(a.total))},
			Count:  a.total,
		})
	}

	return chart.PanelSpec{
		ID:       "missing",
		Title:    "Missing sentence rate",
		Geometry: chart.GeomColumn,
		Items:    items,
		Palette:  []string{chart.ColorPrimary},
		Format:   chart.FormatPercent1,
		ItemTooltip: func(it chart.Item, _ int) []string {
			a := byYear[mustAtoi(it.Label)]
			return []string{
				"Year: " + it.Label,
				"Missing Rate: " + chart.FormatPercent1.Format(it.Value(0)),
				fmt.Sprintf("Missing Cases: %d", a.missing),
				fmt.Sprintf("Total Cases: %d", a.total),
			}
		},
		Height: 250,
	}
}

func splitTooltip(s string) []string {
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
