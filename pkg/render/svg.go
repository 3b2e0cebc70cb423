package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	svg "github.com/ajstarks/svgo/float"
	"github.com/goccy/go-json"

	"github.com/matzehuels/crimescope/pkg/chart"
	"github.com/matzehuels/crimescope/pkg/dataset"
)

const titleHeight = 32

const chartCSS = `
    svg.crimescope { font-family: sans-serif; font-size: 12px; }
    .chart-title { font-size: 16px; font-weight: bold; }
    .panel-title { font-size: 14px; font-weight: bold; }
    .axis line, .axis path { stroke: #333; }
    .axis text { fill: #333; font-size: 11px; }
    .mark { transition: opacity 0.15s ease; }
    .mark-area { stroke: none; opacity: 0.85; }
    .mark-line { fill: none; stroke-width: 2; }
    .mark.active { opacity: 1; stroke: #222; stroke-width: 1.5; }
    .mark-line.active { stroke-width: 3; }
    .mark.ghost { opacity: 0; }
    .mark.low-sample { stroke: #d62728; stroke-width: 2; }
    .mark[data-focus] { cursor: pointer; }
    .marker { stroke: #666; stroke-dasharray: 4 2; }
    .marker-highlight { stroke: #333; stroke-dasharray: 3 3; }
    .band-label { font-size: 11px; text-anchor: middle; fill: #333; }
    .legend text { font-size: 11px; fill: #333; }
    .legend .header { font-weight: bold; }
    .empty { font-size: 14px; fill: #888; text-anchor: middle; }
    .note { font-size: 11px; fill: #555; }
    .tooltip { pointer-events: none; }
    .tooltip rect { fill: #fff; stroke: #999; opacity: 0.95; }
    .tooltip text { font-size: 11px; fill: #222; }`

const chartJS = `
    (function () {
      const svg = document.currentScript ? document.currentScript.closest('svg') : document.querySelector('svg.crimescope');
      if (!svg) return;
      const tip = svg.querySelector('.tooltip');
      const tipText = tip.querySelector('text');
      const tipBox = tip.querySelector('rect');
      const vb = svg.viewBox.baseVal;
      function local(g, evt) {
        const p = svg.createSVGPoint();
        p.x = evt.clientX; p.y = evt.clientY;
        return p.matrixTransform(g.getScreenCTM().inverse());
      }
      function nearest(periods, v) {
        let best = 0, dist = Math.abs(periods[0] - v);
        for (let i = 1; i < periods.length; i++) {
          const d = Math.abs(periods[i] - v);
          if (d < dist) { best = i; dist = d; }
        }
        return best;
      }
      function invert(s, px) {
        if (s.R0 === s.R1 || s.D0 === s.D1) return s.D0;
        return s.D0 + (px - s.R0) / (s.R1 - s.R0) * (s.D1 - s.D0);
      }
      function show(lines, evt) {
        while (tipText.firstChild) tipText.removeChild(tipText.firstChild);
        lines.forEach((line, i) => {
          const span = document.createElementNS('http://www.w3.org/2000/svg', 'tspan');
          span.setAttribute('x', 8);
          span.setAttribute('dy', i === 0 ? '1.2em' : '1.3em');
          if (i === 0) span.setAttribute('font-weight', 'bold');
          span.textContent = line;
          tipText.appendChild(span);
        });
        tip.setAttribute('visibility', 'visible');
        const box = tipText.getBBox();
        tipBox.setAttribute('width', box.width + 16);
        tipBox.setAttribute('height', box.height + 10);
        const p = local(svg, evt);
        let x = p.x + 12, y = p.y + 12;
        if (x + box.width + 16 > vb.x + vb.width) x = p.x - box.width - 28;
        if (y + box.height + 10 > vb.y + vb.height) y = p.y - box.height - 22;
        tip.setAttribute('transform', 'translate(' + x.toFixed(1) + ',' + y.toFixed(1) + ')');
      }
      function hide() { tip.setAttribute('visibility', 'hidden'); }
      svg.querySelectorAll('.panel').forEach(panel => {
        const hover = panel.dataset.hover ? JSON.parse(panel.dataset.hover) : null;
        const plot = panel.querySelector('.plot');
        panel.querySelectorAll('.mark, .marker').forEach(el => {
          el.addEventListener('mousemove', evt => {
            let lines = el.dataset.tip ? JSON.parse(el.dataset.tip) : null;
            if (!lines && hover && hover.tips && hover.tips[el.dataset.key]) {
              const v = invert(hover.x, local(plot, evt).x);
              lines = hover.tips[el.dataset.key][nearest(hover.periods, v)];
            }
            el.classList.add('active');
            if (lines && lines.length) show(lines, evt); else hide();
          });
          el.addEventListener('mouseleave', () => { el.classList.remove('active'); hide(); });
          if (el.dataset.focus) {
            el.addEventListener('click', () => svg.dispatchEvent(
              new CustomEvent('crimescope:focus', { detail: el.dataset.focus, bubbles: true })));
          }
        });
      });
    })();`

// SVGOption configures [SVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	script bool
	title  bool
}

// WithoutScript omits the interaction script, for static exports.
func WithoutScript() SVGOption { return func(r *svgRenderer) { r.script = false } }

// WithoutTitle omits the chart title line.
func WithoutTitle() SVGOption { return func(r *svgRenderer) { r.title = false } }

// SVG renders m as a standalone SVG document.
func SVG(m *chart.Model, opts ...SVGOption) []byte {
	r := svgRenderer{script: true, title: true}
	for _, opt := range opts {
		opt(&r)
	}

	top := 0.0
	if r.title && m.Title != "" {
		top = titleHeight
	}
	w, h := m.Width, m.Height+top

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(w, h,
		fmt.Sprintf(`viewBox="0 0 %s %s"`, chart.Num(w), chart.Num(h)),
		`class="crimescope"`,
		attr("data-chart", m.ChartID),
	)
	canvas.Title(m.Title)
	canvas.Style("text/css", chartCSS)
	canvas.Rect(0, 0, w, h, "fill:#fff")

	if top > 0 {
		canvas.Text(w/2, 22, m.Title, `class="chart-title"`, `text-anchor="middle"`)
	}
	for _, p := range m.Panels {
		renderPanel(canvas, p, top)
	}

	canvas.Group(`class="tooltip"`, `visibility="hidden"`)
	canvas.Rect(0, 0, 0, 0, `rx="4"`)
	canvas.Text(0, 0, "")
	canvas.Gend()

	if r.script {
		canvas.Script("text/javascript", chartJS)
	}
	canvas.End()
	return buf.Bytes()
}

func renderPanel(canvas *svg.SVG, p chart.Panel, top float64) {
	attrs := []string{
		attr("id", "panel-"+p.ID),
		`class="panel"`,
		attr("data-geometry", p.Geometry.String()),
		fmt.Sprintf(`transform="translate(0,%s)"`, chart.Num(p.Offset+top)),
	}
	if p.Hover != nil {
		attrs = append(attrs, attr("data-hover", mustJSON(p.Hover)))
	}
	canvas.Group(attrs...)
	if p.Title != "" {
		canvas.Text(p.Margin.Left, p.Margin.Top-18, p.Title, `class="panel-title"`)
	}

	canvas.Group(`class="plot"`, fmt.Sprintf(`transform="translate(%s,%s)"`, chart.Num(p.Margin.Left), chart.Num(p.Margin.Top)))
	if p.Empty {
		canvas.Text(p.PlotWidth/2, p.PlotHeight/2, p.Message, `class="empty"`)
		canvas.Gend()
		renderNotes(canvas, p)
		canvas.Gend()
		return
	}

	renderBands(canvas, p)
	renderAxes(canvas, p)
	for _, mk := range p.Marks {
		renderMark(canvas, mk)
	}
	renderMarkers(canvas, p)
	canvas.Gend()

	renderLegend(canvas, p)
	renderNotes(canvas, p)
	canvas.Gend()
}

func renderBands(canvas *svg.SVG, p chart.Panel) {
	for _, b := range p.Bands {
		if b.X1 <= b.X0 {
			continue
		}
		canvas.Rect(b.X0, 0, b.X1-b.X0, p.PlotHeight,
			fmt.Sprintf("fill:%s;opacity:%s", b.Color, chart.Num(b.Opacity)),
			`class="band"`, attr("data-label", b.Label))
		if b.Kind == dataset.KindHighlight {
			canvas.Text((b.X0+b.X1)/2, 14, b.Label, `class="band-label"`)
		}
	}
}

func renderMarkers(canvas *svg.SVG, p chart.Panel) {
	for _, b := range p.Bands {
		for _, mk := range b.Markers {
			class := "marker"
			if mk.Text != "" {
				class = "marker marker-highlight"
			}
			attrs := []string{attr("class", class), "stroke-width:1.5"}
			if len(mk.Tooltip) > 0 {
				attrs = append(attrs, attr("data-tip", mustJSON(mk.Tooltip)))
			}
			canvas.Line(mk.X, 0, mk.X, p.PlotHeight, attrs...)
			if mk.Text != "" {
				canvas.Text(mk.X, mk.TextY+p.PlotHeight/2, mk.Text, `class="band-label"`)
			}
		}
	}
}

func renderMark(canvas *svg.SVG, mk chart.Mark) {
	classes := []string{"mark", "mark-" + string(mk.Kind)}
	if mk.Ghost {
		classes = append(classes, "ghost")
	}
	if mk.LowSample {
		classes = append(classes, "low-sample")
	}
	attrs := []string{
		attr("class", strings.Join(classes, " ")),
		attr("data-key", mk.Key),
	}
	if mk.Series != "" {
		attrs = append(attrs, attr("data-series", mk.Series))
	}
	if len(mk.Tooltip) > 0 {
		attrs = append(attrs, attr("data-tip", mustJSON(mk.Tooltip)))
	}
	if mk.Focus != "" {
		attrs = append(attrs, attr("data-focus", mk.Focus))
	}

	switch mk.Kind {
	case chart.MarkArea, chart.MarkSlice:
		canvas.Path(mk.Path, append(attrs, "fill:"+mk.Color)...)
	case chart.MarkLine:
		canvas.Path(mk.Path, append(attrs, "stroke:"+mk.Color)...)
	case chart.MarkPoint:
		canvas.Circle(mk.X, mk.Y, mk.R, append(attrs, "fill:"+mk.Color)...)
	case chart.MarkBar:
		canvas.Rect(mk.X, mk.Y, mk.W, mk.H, append(attrs, "fill:"+mk.Color)...)
	}
}

func renderAxes(canvas *svg.SVG, p chart.Panel) {
	switch p.Geometry {
	case chart.GeomPie:
		return
	case chart.GeomBar:
		canvas.Group(`class="axis axis-x"`)
		canvas.Line(0, 0, p.PlotWidth, 0)
		for _, t := range p.XTicks {
			canvas.Line(t.Pos, 0, t.Pos, -6)
			canvas.Text(t.Pos, -9, t.Label, `text-anchor="middle"`)
		}
		canvas.Gend()
		canvas.Group(`class="axis axis-y"`)
		canvas.Line(0, 0, 0, p.PlotHeight)
		for _, c := range p.Categories {
			canvas.Text(-6, c.Pos, c.Label, `text-anchor="end"`, `dominant-baseline="middle"`)
		}
		canvas.Gend()
		return
	}

	canvas.Group(`class="axis axis-x"`, fmt.Sprintf(`transform="translate(0,%s)"`, chart.Num(p.PlotHeight)))
	canvas.Line(0, 0, p.PlotWidth, 0)
	for _, t := range p.XTicks {
		canvas.Line(t.Pos, 0, t.Pos, 6)
		canvas.Text(t.Pos, 18, t.Label, `text-anchor="middle"`)
	}
	canvas.Gend()

	canvas.Group(`class="axis axis-y"`)
	canvas.Line(0, 0, 0, p.PlotHeight)
	for _, t := range p.YTicks {
		canvas.Line(-6, t.Pos, 0, t.Pos)
		canvas.Text(-9, t.Pos, t.Label, `text-anchor="end"`, `dominant-baseline="middle"`)
	}
	canvas.Gend()
}

func renderLegend(canvas *svg.SVG, p chart.Panel) {
	if len(p.Legend) == 0 {
		return
	}
	x := p.Margin.Left + p.PlotWidth + 20
	canvas.Group(`class="legend"`, fmt.Sprintf(`transform="translate(%s,%s)"`, chart.Num(x), chart.Num(p.Margin.Top)))
	for i, e := range p.Legend {
		y := float64(i) * 20
		key := attr("data-key", e.Key)
		switch e.Shape {
		case chart.ShapeHeader:
			canvas.Text(0, y+10, e.Label, `class="header"`)
			continue
		case chart.ShapeLine:
			canvas.Line(0, y+6, 14, y+6, fmt.Sprintf("stroke:%s;stroke-width:2", e.Color), key)
		case chart.ShapeCircle:
			canvas.Circle(7, y+6, 5, "fill:"+e.Color, key)
		case chart.ShapeBand:
			canvas.Rect(0, y, 14, 12, fmt.Sprintf("fill:%s;opacity:%s", e.Color, chart.Num(e.Opacity)), key)
		default:
			canvas.Rect(0, y, 14, 12, "fill:"+e.Color, key)
		}
		canvas.Text(20, y+10, e.Label)
	}
	canvas.Gend()
}

func renderNotes(canvas *svg.SVG, p chart.Panel) {
	for i, n := range p.Notes {
		y := p.Height - float64(len(p.Notes)-i)*14 + 4
		canvas.Text(p.Margin.Left, y, n, `class="note"`)
	}
}

func attr(name, value string) string {
	return name + `="` + html.EscapeString(value) + `"`
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}
