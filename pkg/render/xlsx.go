package render

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/crimescope/pkg/chart"
	"github.com/matzehuels/crimescope/pkg/errors"
)

const (
	summarySheet = "Chart"
	maxSheetName = 31
)

// XLSX renders m as a workbook: a summary sheet with the chart and its
// selection, then one sheet per non-empty panel with the plotted
// magnitudes.
func XLSX(m *chart.Model) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, xlsxErr(err, m)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, xlsxErr(err, m)
	}

	summary := [][]any{
		{"Chart", m.ChartID},
		{"Title", m.Title},
		{"Mode", m.Selection.Mode},
		{"Filter", m.Selection.Filter},
		{"Focus", m.Selection.Focus},
		{"Breakdown", m.Selection.Breakdown},
	}
	for _, k := range m.Selection.Active {
		summary = append(summary, []any{"Active", k})
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return nil, xlsxErr(err, m)
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return nil, xlsxErr(err, m)
	}

	used := map[string]bool{summarySheet: true}
	for i, p := range m.Panels {
		if p.Empty {
			continue
		}
		name := sheetName(p, i, used)
		if _, err := f.NewSheet(name); err != nil {
			return nil, xlsxErr(err, m)
		}
		rows := panelRows(p)
		if err := writeRows(f, name, rows); err != nil {
			return nil, xlsxErr(err, m)
		}
		if len(rows) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(rows[0]), 1)
			if err := f.SetCellStyle(name, "A1", last, bold); err != nil {
				return nil, xlsxErr(err, m)
			}
		}
		if err := f.SetColWidth(name, "A", "A", 28); err != nil {
			return nil, xlsxErr(err, m)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, xlsxErr(err, m)
	}
	return buf.Bytes(), nil
}

func panelRows(p chart.Panel) [][]any {
	switch p.Geometry {
	case chart.GeomArea, chart.GeomLine:
		header := []any{"Period"}
		for _, l := range p.Layers {
			header = append(header, l.Key)
		}
		rows := [][]any{header}
		if len(p.Layers) == 0 {
			return rows
		}
		for i, seg := range p.Layers[0].Segments {
			row := []any{seg.Period}
			for _, l := range p.Layers {
				row = append(row, l.Segments[i].Magnitude())
			}
			rows = append(rows, row)
		}
		return rows
	}

	series := p.Series
	if len(series) == 0 {
		series = []string{"Value"}
	}
	header := []any{"Label"}
	for _, s := range series {
		header = append(header, s)
	}
	rows := [][]any{header}
	for _, it := range p.Items {
		row := []any{it.Label}
		for j := range series {
			row = append(row, it.Value(j))
		}
		rows = append(rows, row)
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// sheetName derives a unique worksheet name within Excel's limits.
func sheetName(p chart.Panel, i int, used map[string]bool) string {
	base := p.ID
	if base == "" {
		base = fmt.Sprintf("Panel %d", i+1)
	}
	base = sanitizeSheet(base)
	name := base
	for n := 2; used[name]; n++ {
		suffix := fmt.Sprintf(" %d", n)
		name = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	used[name] = true
	return name
}

func sanitizeSheet(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			r = '_'
		}
		out = append(out, r)
	}
	return truncateRunes(string(out), maxSheetName)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

func xlsxErr(err error, m *chart.Model) error {
	return errors.Wrap(errors.ErrCodeInternal, err, "write workbook for %s", m.ChartID)
}
