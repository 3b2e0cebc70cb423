package catalog

import (
	"slices"

	"github.com/matzehuels/crimescope/pkg/chart"
	"github.com/matzehuels/crimescope/pkg/dataset"
	"github.com/matzehuels/crimescope/pkg/errors"
)

// Control names a UI control a chart accepts.
type Control string

const (
	ControlMode      Control = "mode"
	ControlKeys      Control = "key"
	ControlGroups    Control = "group"
	ControlFilter    Control = "filter"
	ControlFocus     Control = "focus"
	ControlBreakdown Control = "breakdown"
)

// Option is one choice of a single-choice control.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Input is what a Build function receives.
type Input struct {
	Selection chart.Selection
	// Groups lists taxonomy parents whose children are switched on.
	Groups    []string
	Resources map[string][]byte
	Width     float64
	Height    float64
}

func (in Input) resource(name string) ([]byte, error) {
	data, ok := in.Resources[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeDatasetNotFound, "resource %s not loaded", name)
	}
	return data, nil
}

// View is a built chart: the state to compute plus the data-dependent
// control choices front ends offer.
type View struct {
	State     chart.State
	Keys      []string
	Taxonomy  *dataset.Taxonomy
	Filters   []Option
	Focus     []Option
	Breakdown bool
}

// Definition describes one chart.
type Definition struct {
	ID          string
	Title       string
	Description string
	Modes       []Option
	Controls    []Control
	DefaultKeys []string

	// Resources lists the dataset resources needed for sel.
	Resources func(sel chart.Selection) []string
	// Build shapes loaded resources into a view.
	Build func(in Input) (*View, error)
}

// Supports reports whether the chart accepts control c.
func (d *Definition) Supports(c Control) bool {
	return slices.Contains(d.Controls, c)
}

// DefaultMode returns the first mode, or "".
func (d *Definition) DefaultMode() string {
	if len(d.Modes) == 0 {
		return ""
	}
	return d.Modes[0].Value
}

// DefaultSelection returns the selection a chart opens with.
func (d *Definition) DefaultSelection() chart.Selection {
	return chart.NewSelection(d.DefaultMode(), d.DefaultKeys...)
}

// CheckSelection validates sel against the chart's modes and keys. An
// empty mode is replaced by the default.
func (d *Definition) CheckSelection(sel chart.Selection) (chart.Selection, error) {
	if sel.Mode() == "" {
		sel = sel.WithMode(d.DefaultMode()).With(sel.Active()...).WithFocus(sel.Focus())
	}
	if len(d.Modes) > 0 && !slices.ContainsFunc(d.Modes, func(o Option) bool { return o.Value == sel.Mode() }) {
		return sel, errors.New(errors.ErrCodeInvalidMode, "chart %s has no mode %q", d.ID, sel.Mode())
	}
	if len(d.Modes) == 0 && sel.Mode() != "" {
		return sel, errors.New(errors.ErrCodeInvalidMode, "chart %s has no modes", d.ID)
	}
	for _, k := range sel.Active() {
		if err := errors.ValidateKey(k); err != nil {
			return sel, err
		}
	}
	return sel, nil
}

// Catalog is an ordered registry of chart definitions.
type Catalog struct {
	defs  map[string]*Definition
	order []string
}

// New returns a catalog holding defs in order.
func New(defs ...*Definition) *Catalog {
	c := &Catalog{defs: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		if _, dup := c.defs[d.ID]; !dup {
			c.order = append(c.order, d.ID)
		}
		c.defs[d.ID] = d
	}
	return c
}

// Default returns the catalog of built-in charts.
func Default() *Catalog {
	return New(Q1(), Q2(), Q3(), Q4(), Q5(), Q6(), Q7(), Q9(), Q10())
}

// Get returns the definition for id.
func (c *Catalog) Get(id string) (*Definition, error) {
	if err := errors.ValidateChartID(id); err != nil {
		return nil, err
	}
	d, ok := c.defs[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeChartNotFound, "unknown chart %q", id)
	}
	return d, nil
}

// List returns the definitions in registration order.
func (c *Catalog) List() []*Definition {
	out := make([]*Definition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.defs[id])
	}
	return out
}

// IDs returns the chart IDs in registration order.
func (c *Catalog) IDs() []string { return slices.Clone(c.order) }

func options(values ...string) []Option {
	out := make([]Option, len(values))
	for i, v := range values {
		out[i] = Option{Value: v, Label: v}
	}
	return out
}

func state(in Input, def *Definition, sel chart.Selection, panels ...chart.PanelSpec) chart.State {
	return chart.State{
		ChartID:   def.ID,
		Title:     def.Title,
		Selection: sel,
		Panels:    panels,
		Width:     in.Width,
		Height:    in.Height,
	}
}

func intPtr(v int) *int { return &v }

// yearMarker is the {year, label} shape events take in resources.
type yearMarker struct {
	Year  int    `json:"year"`
	Label string `json:"label"`
}

func markers(ms []yearMarker) []dataset.Marker {
	if len(ms) == 0 {
		return nil
	}
	out := make([]dataset.Marker, len(ms))
	for i, m := range ms {
		out[i] = dataset.Marker{Period: m.Year, Label: m.Label}
	}
	return out
}
