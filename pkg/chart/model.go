package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/crimescope/pkg/dataset"
)

// Geometry selects how a panel is drawn.
type Geometry int

const (
	// GeomArea stacks one filled area per key over the periods.
	GeomArea Geometry = iota
	// GeomLine draws one line per key with a zero baseline.
	GeomLine
	// GeomBar draws horizontal bars, one group per item.
	GeomBar
	// GeomColumn draws vertical columns, one per item.
	GeomColumn
	// GeomPie draws one slice per item.
	GeomPie
)

var geometryNames = [...]string{"area", "line", "bar", "column", "pie"}

func (g Geometry) String() string {
	if int(g) < len(geometryNames) {
		return geometryNames[g]
	}
	return "unknown"
}

// MarshalText encodes the geometry by name.
func (g Geometry) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

// Margin is the space around a panel's plot area.
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

func (m Margin) zero() bool { return m == Margin{} }

// Default layout.
const (
	DefaultWidth     = 900
	DefaultHeight    = 500
	DefaultBarHeight = 20
	DefaultPieSize   = 400
	PointRadius      = 4
	legendLabelMax   = 25
)

var (
	timeMargin = Margin{Top: 40, Right: 180, Bottom: 40, Left: 60}
	barMargin  = Margin{Top: 30, Right: 40, Bottom: 10, Left: 160}
	pieMargin  = Margin{Top: 40, Right: 200, Bottom: 20, Left: 20}
)

// DefaultEmptyMessage is shown by panels with nothing to draw.
const DefaultEmptyMessage = "No data for the current selection"

// Item is one category of a bar, column or pie panel.
type Item struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
	Count  int       `json:"count"`
	Color  string    `json:"color,omitempty"`
	Focus  string    `json:"focus,omitempty"`
}

// Value returns the i-th series value or 0.
func (it Item) Value(i int) float64 {
	if i < len(it.Values) {
		return it.Values[i]
	}
	return 0
}

// PanelSpec declares what one panel shows. Catalog builders produce specs
// from datasets and the current selection; Compute turns them into marks.
type PanelSpec struct {
	ID       string
	Title    string
	Geometry Geometry

	// Time-series panels.
	Table      *dataset.Table
	Policy     Policy
	Keys       []string // drawn keys in stacking order; nil draws all
	KnownKeys  []string // colour assignment order; nil uses Keys
	Points     bool     // point marks on lines
	Ghost      bool     // points are invisible hover targets
	ForceStart *int     // x domain start; earlier periods are dropped

	// Categorical panels.
	Items   []Item
	Series  []string
	Grouped bool

	Colors      map[string]string
	Palette     []string
	Labels      map[string]string
	Annotations []dataset.Annotation
	BandColors  []string
	BandOpacity float64
	BandLegend  string // header above band legend entries
	MarkerLabel string

	UnitDomain bool
	YMax       float64
	Format     ValueFormat
	Tooltip    Tooltip
	LowSample  bool

	// TooltipFunc replaces the default tooltip of key at period; nil
	// lines suppress the tooltip.
	TooltipFunc func(key string, period int, value float64) []string
	// ItemTooltip replaces the default tooltip of a categorical mark.
	ItemTooltip func(it Item, series int) []string

	Legend       []LegendEntry
	Notes        []string
	EmptyMessage string

	Width, Height float64
	Margin        Margin
	BarHeight     float64
}

// State is everything Compute needs: the chart, its selection and the
// panels derived from them.
type State struct {
	ChartID   string
	Title     string
	Selection Selection
	Panels    []PanelSpec
	Width     float64
	Height    float64
}

// SelectionView is the serializable form of a Selection.
type SelectionView struct {
	Mode      string   `json:"mode,omitempty"`
	Filter    string   `json:"filter,omitempty"`
	Focus     string   `json:"focus,omitempty"`
	Breakdown bool     `json:"breakdown,omitempty"`
	Active    []string `json:"active"`
}

// Model is the computed, render-ready chart.
type Model struct {
	ChartID   string        `json:"chart"`
	Title     string        `json:"title"`
	Selection SelectionView `json:"selection"`
	Width     float64       `json:"width"`
	Height    float64       `json:"height"`
	Panels    []Panel       `json:"panels"`
}

// MarkCount returns the number of marks over all panels.
func (m *Model) MarkCount() int {
	n := 0
	for _, p := range m.Panels {
		n += len(p.Marks)
	}
	return n
}

// Tick is an axis tick at Pos with Label.
type Tick struct {
	Value float64 `json:"value"`
	Pos   float64 `json:"pos"`
	Label string  `json:"label"`
}

// MarkKind identifies a mark's shape.
type MarkKind string

const (
	MarkArea  MarkKind = "area"
	MarkLine  MarkKind = "line"
	MarkPoint MarkKind = "point"
	MarkBar   MarkKind = "bar"
	MarkSlice MarkKind = "slice"
)

// Mark is one drawable element in plot coordinates.
type Mark struct {
	Kind      MarkKind `json:"kind"`
	Key       string   `json:"key"`
	Series    string   `json:"series,omitempty"`
	Path      string   `json:"path,omitempty"`
	X         float64  `json:"x,omitempty"`
	Y         float64  `json:"y,omitempty"`
	W         float64  `json:"w,omitempty"`
	H         float64  `json:"h,omitempty"`
	R         float64  `json:"r,omitempty"`
	Color     string   `json:"color"`
	Ghost     bool     `json:"ghost,omitempty"`
	LowSample bool     `json:"low_sample,omitempty"`
	Tooltip   []string `json:"tooltip,omitempty"`
	Focus     string   `json:"focus,omitempty"`
}

// MarkerLine is a vertical rule at a marker period.
type MarkerLine struct {
	Period  int      `json:"period"`
	X       float64  `json:"x"`
	Text    string   `json:"text,omitempty"`
	TextY   float64  `json:"text_y,omitempty"`
	Tooltip []string `json:"tooltip,omitempty"`
}

// Band is an annotation mapped onto the plot.
type Band struct {
	Label   string                 `json:"label"`
	Kind    dataset.AnnotationKind `json:"kind"`
	X0      float64                `json:"x0"`
	X1      float64                `json:"x1"`
	Color   string                 `json:"color"`
	Opacity float64                `json:"opacity"`
	Markers []MarkerLine           `json:"markers,omitempty"`
}

// LegendShape is how a legend swatch is drawn.
type LegendShape string

const (
	ShapeRect   LegendShape = "rect"
	ShapeLine   LegendShape = "line"
	ShapeCircle LegendShape = "circle"
	ShapeBand   LegendShape = "band"
	ShapeHeader LegendShape = "header"
)

// LegendEntry is one legend row.
type LegendEntry struct {
	Key     string      `json:"key,omitempty"`
	Label   string      `json:"label"`
	Color   string      `json:"color,omitempty"`
	Shape   LegendShape `json:"shape"`
	Opacity float64     `json:"opacity,omitempty"`
}

// Panel is one computed plot.
type Panel struct {
	ID         string        `json:"id"`
	Title      string        `json:"title,omitempty"`
	Geometry   Geometry      `json:"geometry"`
	Offset     float64       `json:"offset"`
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	Margin     Margin        `json:"margin"`
	PlotWidth  float64       `json:"plot_width"`
	PlotHeight float64       `json:"plot_height"`
	X          Linear        `json:"x"`
	Y          Linear        `json:"y"`
	XTicks     []Tick        `json:"x_ticks,omitempty"`
	YTicks     []Tick        `json:"y_ticks,omitempty"`
	Categories []Tick        `json:"categories,omitempty"`
	Format     ValueFormat   `json:"format"`
	Keys       []string      `json:"keys,omitempty"`
	Layers     []Layer       `json:"layers,omitempty"`
	Items      []Item        `json:"items,omitempty"`
	Series     []string      `json:"series,omitempty"`
	Bands      []Band        `json:"bands,omitempty"`
	Marks      []Mark        `json:"marks"`
	Legend     []LegendEntry `json:"legend,omitempty"`
	Hover      *Hover        `json:"hover,omitempty"`
	Notes      []string      `json:"notes,omitempty"`
	Empty      bool          `json:"empty,omitempty"`
	Message    string        `json:"message,omitempty"`
}

// Compute derives the render model from s. It is pure: equal states give
// equal models.
func Compute(s State) *Model {
	w, h := s.Width, s.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	m := &Model{
		ChartID: s.ChartID,
		Title:   s.Title,
		Selection: SelectionView{
			Mode:      s.Selection.Mode(),
			Filter:    s.Selection.Filter(),
			Focus:     s.Selection.Focus(),
			Breakdown: s.Selection.Breakdown(),
			Active:    s.Selection.Active(),
		},
		Width:  w,
		Panels: make([]Panel, 0, len(s.Panels)),
	}

	offset := 0.0
	for _, spec := range s.Panels {
		var p Panel
		switch spec.Geometry {
		case GeomArea, GeomLine:
			p = timePanel(spec, w, h)
		case GeomBar:
			p = barPanel(spec, w)
		case GeomColumn:
			p = columnPanel(spec, w, h)
		case GeomPie:
			p = piePanel(spec)
		}
		p.Offset = offset
		offset += p.Height
		if p.Width > m.Width {
			m.Width = p.Width
		}
		m.Panels = append(m.Panels, p)
	}
	m.Height = offset
	return m
}

func newPanel(spec PanelSpec, w, h float64, def Margin) Panel {
	if spec.Width > 0 {
		w = spec.Width
	}
	if spec.Height > 0 {
		h = spec.Height
	}
	mg := spec.Margin
	if mg.zero() {
		mg = def
	}
	msg := spec.EmptyMessage
	if msg == "" {
		msg = DefaultEmptyMessage
	}
	return Panel{
		ID:         spec.ID,
		Title:      spec.Title,
		Geometry:   spec.Geometry,
		Width:      w,
		Height:     h,
		Margin:     mg,
		PlotWidth:  math.Max(0, w-mg.Left-mg.Right),
		PlotHeight: math.Max(0, h-mg.Top-mg.Bottom),
		Format:     spec.Format,
		Notes:      spec.Notes,
		Message:    msg,
		Marks:      []Mark{},
	}
}

func (p *Panel) markEmpty() {
	p.Empty = true
	p.Marks = []Mark{}
}

// =============================================================================
// Time-series panels
// =============================================================================

func timePanel(spec PanelSpec, w, h float64) Panel {
	p := newPanel(spec, w, h, timeMargin)
	t := spec.Table
	if t != nil && spec.ForceStart != nil {
		if _, hi, ok := t.Extent(); ok {
			t = t.Select(*spec.ForceStart, hi)
		}
	}
	if t == nil || t.Len() == 0 || t.Empty() {
		p.markEmpty()
		return p
	}
	keys := spec.Keys
	if keys == nil {
		keys = t.Keys()
	}
	if len(keys) == 0 {
		p.markEmpty()
		return p
	}
	known := spec.KnownKeys
	if known == nil {
		known = keys
	}

	data := Normalize(t, nil, spec.Policy)
	var layers []Layer
	if spec.Geometry == GeomArea {
		layers = Stack(keys, data)
	} else {
		layers = Flat(keys, data)
	}
	periods := data.Periods()

	p.Keys = keys
	p.Layers = layers
	p.X = PeriodScale(periods, spec.ForceStart, p.PlotWidth)
	ymax := spec.YMax
	if ymax <= 0 {
		ymax = MaxTop(layers)
	}
	p.Y = ValueScale(ymax, spec.UnitDomain, p.PlotHeight)
	p.XTicks = ticks(p.X, 10, true, func(v float64) string { return strconv.Itoa(int(v)) })
	p.YTicks = ticks(p.Y, 8, false, spec.Format.Axis)
	p.Bands = bands(spec, p.X, p.PlotWidth)

	hover := &Hover{Periods: periods, X: p.X, Tips: make(map[string][][]string, len(layers))}
	for _, l := range layers {
		color := ColorFor(l.Key, known, spec.Colors, spec.Palette)
		tips := make([][]string, len(l.Segments))
		for i, seg := range l.Segments {
			tips[i] = segmentTooltip(spec, t, layers, l.Key, seg)
		}
		hover.Tips[l.Key] = tips

		if spec.Geometry == GeomArea {
			p.Marks = append(p.Marks, Mark{
				Kind:  MarkArea,
				Key:   l.Key,
				Path:  areaPath(l, p.X, p.Y),
				Color: color,
			})
			continue
		}
		p.Marks = append(p.Marks, Mark{
			Kind:  MarkLine,
			Key:   l.Key,
			Path:  linePath(l, p.X, p.Y),
			Color: color,
		})
		if !spec.Points {
			continue
		}
		for i, seg := range l.Segments {
			mk := Mark{
				Kind:    MarkPoint,
				Key:     l.Key,
				X:       p.X.Map(float64(seg.Period)),
				Y:       p.Y.Map(seg.Top),
				R:       PointRadius,
				Color:   color,
				Ghost:   spec.Ghost,
				Tooltip: tips[i],
			}
			if count, ok := t.Count(seg.Period, l.Key); spec.LowSample && IsLowSample(count, ok) {
				mk.LowSample = true
				mk.Color = ColorLowSample
			}
			p.Marks = append(p.Marks, mk)
		}
	}
	p.Hover = hover

	shape := ShapeRect
	if spec.Geometry == GeomLine {
		shape = ShapeLine
	}
	p.Legend = bandLegend(spec, p.Bands)
	for _, k := range keys {
		p.Legend = append(p.Legend, LegendEntry{
			Key:   k,
			Label: label(spec.Labels, k),
			Color: ColorFor(k, known, spec.Colors, spec.Palette),
			Shape: shape,
		})
	}
	p.Legend = append(p.Legend, spec.Legend...)
	return p
}

func segmentTooltip(spec PanelSpec, t *dataset.Table, layers []Layer, key string, seg Segment) []string {
	v := seg.Magnitude()
	var lines []string
	switch {
	case spec.TooltipFunc != nil:
		lines = spec.TooltipFunc(key, seg.Period, v)
	case spec.Tooltip.AllKeys:
		lines = []string{fmt.Sprintf("Year: %d", seg.Period)}
		for _, l := range layers {
			s, _ := l.At(seg.Period)
			lines = append(lines, label(spec.Labels, l.Key)+": "+spec.Format.Format(s.Magnitude()))
		}
	default:
		lines = spec.Tooltip.Lines(label(spec.Labels, key), seg.Period, v, spec.Format)
	}
	if lines == nil {
		return nil
	}
	if count, ok := t.Count(seg.Period, key); spec.LowSample && IsLowSample(count, ok) {
		lines = append(lines, lowSampleLines(count)...)
	}
	return lines
}

func bands(spec PanelSpec, x Linear, width float64) []Band {
	if len(spec.Annotations) == 0 {
		return nil
	}
	colors := spec.BandColors
	if len(colors) == 0 {
		colors = Pastel
	}
	opacity := spec.BandOpacity
	if opacity == 0 {
		opacity = 0.4
	}
	markerLabel := spec.MarkerLabel
	if markerLabel == "" {
		markerLabel = "Event"
	}
	var out []Band
	for i, a := range spec.Annotations {
		x0 := clamp(x.Map(float64(a.Start)), 0, width)
		x1 := clamp(x.Map(float64(a.DrawEnd())), 0, width)
		if x1 <= x0 && len(a.Markers) == 0 {
			continue
		}
		b := Band{
			Label:   a.Label,
			Kind:    a.Kind,
			X0:      x0,
			X1:      x1,
			Color:   colors[i%len(colors)],
			Opacity: opacity,
		}
		if a.Kind == dataset.KindHighlight {
			b.Color = ColorHighlight
		}
		for j, mk := range a.Markers {
			mx := x.Map(float64(mk.Period))
			if mx < 0 || mx > width {
				continue
			}
			line := MarkerLine{Period: mk.Period, X: mx}
			if a.Kind == dataset.KindHighlight {
				line.Text = fmt.Sprintf("%d: %s", mk.Period, mk.Label)
				line.TextY = staggerOffset(j)
			} else {
				line.Tooltip = []string{fmt.Sprintf("Year: %d", mk.Period), markerLabel + ": " + mk.Label}
			}
			b.Markers = append(b.Markers, line)
		}
		out = append(out, b)
	}
	return out
}

// staggerOffset spaces marker labels so neighbours do not overlap.
func staggerOffset(i int) float64 {
	base := -15.0
	if i%2 == 1 {
		base = -30
	}
	return base - float64(i/2)*5
}

func bandLegend(spec PanelSpec, bs []Band) []LegendEntry {
	var out []LegendEntry
	for _, b := range bs {
		if b.Kind != dataset.KindPeriod {
			continue
		}
		if out == nil && spec.BandLegend != "" {
			out = append(out, LegendEntry{Label: spec.BandLegend, Shape: ShapeHeader})
		}
		out = append(out, LegendEntry{
			Label:   truncate(b.Label, legendLabelMax),
			Color:   b.Color,
			Shape:   ShapeBand,
			Opacity: b.Opacity,
		})
	}
	return out
}

// =============================================================================
// Categorical panels
// =============================================================================

func barPanel(spec PanelSpec, w float64) Panel {
	series := spec.Series
	if len(series) == 0 {
		series = []string{""}
	}
	rowH := spec.BarHeight
	if rowH <= 0 {
		rowH = DefaultBarHeight
	}
	group := rowH * float64(len(series))
	if spec.Grouped {
		group += 10
	}
	mg := spec.Margin
	if mg.zero() {
		mg = barMargin
	}
	plotH := group * float64(len(spec.Items))
	if len(spec.Items) == 0 {
		plotH = 60
	}
	spec.Height = plotH + mg.Top + mg.Bottom
	p := newPanel(spec, w, 0, barMargin)
	if len(spec.Items) == 0 {
		p.markEmpty()
		return p
	}
	p.Items = spec.Items
	p.Series = spec.Series

	xmax := spec.YMax
	if xmax <= 0 {
		for _, it := range spec.Items {
			for _, v := range it.Values {
				xmax = math.Max(xmax, v)
			}
		}
	}
	if spec.UnitDomain {
		xmax = 1
	}
	p.X = Linear{D0: 0, D1: xmax, R0: 0, R1: p.PlotWidth}
	p.XTicks = ticks(p.X, 8, false, spec.Format.Axis)

	inset := 0.0
	if spec.Grouped {
		inset = 5
	}
	for i, it := range spec.Items {
		top := float64(i) * group
		p.Categories = append(p.Categories, Tick{Pos: top + group/2, Label: it.Label})
		for s, name := range series {
			v := it.Value(s)
			color := it.Color
			if color == "" {
				color = ColorFor(name, series, spec.Colors, spec.Palette)
			}
			p.Marks = append(p.Marks, Mark{
				Kind:      MarkBar,
				Key:       it.Label,
				Series:    name,
				X:         0,
				Y:         top + inset + float64(s)*rowH + rowH*0.05,
				W:         p.X.Map(v),
				H:         rowH * 0.9,
				Color:     color,
				LowSample: spec.LowSample && IsLowSample(it.Count, it.Count != dataset.NoCount),
				Tooltip:   itemTooltip(spec, it, s, name),
				Focus:     it.Focus,
			})
		}
	}
	if len(series) > 1 {
		for _, name := range series {
			p.Legend = append(p.Legend, LegendEntry{
				Key:   name,
				Label: label(spec.Labels, name),
				Color: ColorFor(name, series, spec.Colors, spec.Palette),
				Shape: ShapeRect,
			})
		}
	}
	p.Legend = append(p.Legend, spec.Legend...)
	return p
}

func columnPanel(spec PanelSpec, w, h float64) Panel {
	p := newPanel(spec, w, h, Margin{Top: 50, Right: 180, Bottom: 40, Left: 60})
	if len(spec.Items) == 0 {
		p.markEmpty()
		return p
	}
	p.Items = spec.Items
	ymax := spec.YMax
	if ymax <= 0 {
		for _, it := range spec.Items {
			ymax = math.Max(ymax, it.Value(0))
		}
	}
	p.Y = ValueScale(ymax, spec.UnitDomain, p.PlotHeight)
	p.YTicks = ticks(p.Y, 5, false, spec.Format.Axis)

	n := len(spec.Items)
	step := p.PlotWidth / float64(n)
	p.X = Linear{D0: 0, D1: float64(n), R0: 0, R1: p.PlotWidth}
	every := int(math.Ceil(float64(n) / 15))
	for i, it := range spec.Items {
		if i%every == 0 {
			p.XTicks = append(p.XTicks, Tick{Value: float64(i), Pos: (float64(i) + 0.5) * step, Label: it.Label})
		}
		v := it.Value(0)
		y := p.Y.Map(v)
		color := it.Color
		if color == "" {
			color = ColorFor(it.Label, nil, spec.Colors, spec.Palette)
		}
		p.Marks = append(p.Marks, Mark{
			Kind:      MarkBar,
			Key:       it.Label,
			X:         float64(i)*step + step*0.1,
			Y:         y,
			W:         step * 0.8,
			H:         p.PlotHeight - y,
			Color:     color,
			LowSample: spec.LowSample && IsLowSample(it.Count, it.Count != dataset.NoCount),
			Tooltip:   itemTooltip(spec, it, 0, ""),
			Focus:     it.Focus,
		})
	}
	p.Legend = append(p.Legend, spec.Legend...)
	return p
}

func piePanel(spec PanelSpec) Panel {
	p := newPanel(spec, DefaultPieSize+pieMargin.Left+pieMargin.Right, DefaultPieSize, pieMargin)
	total := 0.0
	labels := make([]string, 0, len(spec.Items))
	for _, it := range spec.Items {
		if v := it.Value(0); v > 0 {
			total += v
		}
		labels = append(labels, it.Label)
	}
	if total <= 0 {
		p.markEmpty()
		return p
	}
	p.Items = spec.Items
	pal := spec.Palette
	if pal == nil {
		pal = Category10
	}

	r := math.Min(p.PlotWidth, p.PlotHeight) / 2
	cx, cy := p.PlotWidth/2, p.PlotHeight/2
	if p.PlotWidth > p.PlotHeight {
		cx = r
	}
	angle := -math.Pi / 2
	for _, it := range spec.Items {
		v := it.Value(0)
		if v <= 0 {
			continue
		}
		frac := v / total
		next := angle + frac*2*math.Pi
		color := it.Color
		if color == "" {
			color = ColorFor(it.Label, labels, spec.Colors, pal)
		}
		tip := []string{it.Label + ": " + FormatPercent1.Format(frac)}
		if spec.ItemTooltip != nil {
			tip = spec.ItemTooltip(it, 0)
		}
		p.Marks = append(p.Marks, Mark{
			Kind:    MarkSlice,
			Key:     it.Label,
			Path:    slicePath(cx, cy, r, angle, next, frac),
			Color:   color,
			Tooltip: tip,
			Focus:   it.Focus,
		})
		p.Legend = append(p.Legend, LegendEntry{
			Key:   it.Label,
			Label: truncate(it.Label, legendLabelMax),
			Color: color,
			Shape: ShapeRect,
		})
		angle = next
	}
	p.Legend = append(p.Legend, spec.Legend...)
	return p
}

func itemTooltip(spec PanelSpec, it Item, s int, series string) []string {
	if spec.ItemTooltip != nil {
		return spec.ItemTooltip(it, s)
	}
	name := spec.Tooltip.ValueLabel
	if series != "" {
		name = label(spec.Labels, series)
	}
	if name == "" {
		name = "Value"
	}
	return []string{it.Label, name + ": " + spec.Format.Format(it.Value(s))}
}

// =============================================================================
// Geometry helpers
// =============================================================================

func ticks(s Linear, n int, integral bool, format func(float64) string) []Tick {
	vals := s.Ticks(n, integral)
	out := make([]Tick, 0, len(vals))
	for _, v := range vals {
		out = append(out, Tick{Value: v, Pos: s.Map(v), Label: format(v)})
	}
	return out
}

func areaPath(l Layer, x, y Linear) string {
	if len(l.Segments) == 0 {
		return ""
	}
	var b strings.Builder
	for i, s := range l.Segments {
		if i == 0 {
			b.WriteString("M")
		} else {
			b.WriteString("L")
		}
		writePoint(&b, x.Map(float64(s.Period)), y.Map(s.Top))
	}
	for i := len(l.Segments) - 1; i >= 0; i-- {
		s := l.Segments[i]
		b.WriteString("L")
		writePoint(&b, x.Map(float64(s.Period)), y.Map(s.Baseline))
	}
	b.WriteString("Z")
	return b.String()
}

func linePath(l Layer, x, y Linear) string {
	var b strings.Builder
	for i, s := range l.Segments {
		if i == 0 {
			b.WriteString("M")
		} else {
			b.WriteString("L")
		}
		writePoint(&b, x.Map(float64(s.Period)), y.Map(s.Top))
	}
	return b.String()
}

func slicePath(cx, cy, r, a0, a1, frac float64) string {
	if frac >= 1-1e-9 {
		return fmt.Sprintf("M%s,%sA%s,%s 0 1,1 %s,%sA%s,%s 0 1,1 %s,%sZ",
			Num(cx), Num(cy-r), Num(r), Num(r), Num(cx), Num(cy+r),
			Num(r), Num(r), Num(cx), Num(cy-r))
	}
	large := 0
	if a1-a0 > math.Pi {
		large = 1
	}
	x0, y0 := cx+r*math.Cos(a0), cy+r*math.Sin(a0)
	x1, y1 := cx+r*math.Cos(a1), cy+r*math.Sin(a1)
	return fmt.Sprintf("M%s,%sL%s,%sA%s,%s 0 %d,1 %s,%sZ",
		Num(cx), Num(cy), Num(x0), Num(y0), Num(r), Num(r), large, Num(x1), Num(y1))
}

func writePoint(b *strings.Builder, x, y float64) {
	b.WriteString(Num(x))
	b.WriteByte(',')
	b.WriteString(Num(y))
}

// Num formats a coordinate with at most two decimals.
func Num(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	s := strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
	if s == "-0" {
		return "0"
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func label(labels map[string]string, key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return key
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
