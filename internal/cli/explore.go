package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/crimescope/pkg/catalog"
	"github.com/matzehuels/crimescope/pkg/chart"
	"github.com/matzehuels/crimescope/pkg/errors"
	"github.com/matzehuels/crimescope/pkg/pipeline"
	"github.com/matzehuels/crimescope/pkg/render"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listSectionStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	fallbackStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorRed).Padding(0, 1)
)

type exploreOpts struct {
	mode    string
	noCache bool
	data    dataOverrides
}

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var opts exploreOpts

	cmd := &cobra.Command{
		Use:   "explore <chart>",
		Short: "Explore a chart's controls interactively",
		Long: `Explore opens a terminal view of one chart. Toggle series, groups, modes,
filters, focus and breakdown; the chart recomputes after every change and
"s" saves the current view as SVG.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeChartIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", "", "initial mode")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	addDataFlags(cmd, &opts.data)

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, chartID string, opts *exploreOpts) error {
	runner, cleanup, err := c.newRunner(ctx, opts.data, opts.noCache)
	if err != nil {
		return err
	}
	defer cleanup()

	def, err := runner.Catalog.Get(chartID)
	if err != nil {
		return err
	}
	initial := def.DefaultSelection()
	if opts.mode != "" {
		initial = initial.WithMode(opts.mode)
	}

	m := newExploreModel(ctx, runner, def, initial)
	m.noCache = opts.noCache
	m.size = [2]float64{c.cfg.Render.Width, c.cfg.Render.Height}

	// Logs would tear the alt screen; keep only errors while the TUI runs.
	level := c.Logger.GetLevel()
	c.SetLogLevel(LogError)
	defer c.SetLogLevel(level)

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if em, ok := final.(*exploreModel); ok && em.saved != "" {
		printSuccess("Saved %s", em.saved)
	}
	return nil
}

// =============================================================================
// exploreModel - Interactive chart controls
// =============================================================================

type itemKind int

const (
	itemMode itemKind = iota
	itemGroup
	itemKey
	itemFilter
	itemFocus
	itemBreakdown
)

// exploreItem is one selectable row of the control list.
type exploreItem struct {
	kind  itemKind
	value string
	label string
}

// resultMsg delivers a finished pipeline run tagged with its ticket.
type resultMsg struct {
	ticket chart.Ticket
	res    *pipeline.Result
	err    error
}

// exploreModel is the bubbletea model for `crimescope explore`. Every
// selection change starts a pipeline run under a new session ticket;
// results for superseded tickets are dropped.
type exploreModel struct {
	ctx     context.Context
	runner  *pipeline.Runner
	def     *catalog.Definition
	ctl     *chart.Controller
	session *chart.Session
	noCache bool
	size    [2]float64

	items   []exploreItem
	cursor  int
	changed bool
	loading bool

	view  *catalog.View
	model *chart.Model
	err   error
	saved string
}

func newExploreModel(ctx context.Context, runner *pipeline.Runner, def *catalog.Definition, initial chart.Selection) *exploreModel {
	m := &exploreModel{
		ctx:     ctx,
		runner:  runner,
		def:     def,
		ctl:     chart.NewController(initial),
		session: &chart.Session{},
	}
	m.ctl.Subscribe(func(chart.Selection) { m.changed = true })
	m.items = m.buildItems()
	return m
}

func (m *exploreModel) Init() tea.Cmd {
	return m.fetch()
}

// fetch starts a run for the current selection.
func (m *exploreModel) fetch() tea.Cmd {
	sel := m.ctl.Selection()
	ticket := m.session.Begin(sel)
	m.loading = true
	opts := pipeline.Options{
		Chart:     m.def.ID,
		Mode:      sel.Mode(),
		Keys:      sel.Active(),
		Filter:    sel.Filter(),
		Focus:     sel.Focus(),
		Breakdown: sel.Breakdown(),
		Formats:   []string{string(render.FormatJSON)},
		Width:     m.size[0],
		Height:    m.size[1],
		NoCache:   m.noCache,
	}
	ctx, runner := m.ctx, m.runner
	return func() tea.Msg {
		res, err := runner.Execute(ctx, opts)
		return resultMsg{ticket: ticket, res: res, err: err}
	}
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		if !m.session.Accept(msg.ticket) {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.view, m.model = msg.res.View, msg.res.Model
			m.ctl.SetTaxonomy(m.view.Taxonomy)
		}
		m.items = m.buildItems()
		if m.cursor >= len(m.items) {
			m.cursor = max(len(m.items)-1, 0)
		}
		return m, nil

	case tea.KeyMsg:
		m.changed = false
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case " ", "enter":
			if m.cursor < len(m.items) {
				m.activate(m.items[m.cursor])
			}
		case "a":
			if m.view != nil {
				m.ctl.SetAll(m.view.Keys)
			}
		case "c":
			m.ctl.Clear()
		case "s":
			m.save()
		}
		if m.changed {
			return m, m.fetch()
		}
	}
	return m, nil
}

// activate applies the control under the cursor.
func (m *exploreModel) activate(it exploreItem) {
	sel := m.ctl.Selection()
	switch it.kind {
	case itemMode:
		if it.value != sel.Mode() {
			m.ctl.SetMode(it.value)
		}
	case itemGroup:
		m.ctl.ToggleGroup(it.value)
	case itemKey:
		m.ctl.Toggle(it.value)
	case itemFilter:
		m.ctl.SetFilter(it.value)
	case itemFocus:
		if sel.Focus() == it.value {
			m.ctl.SetFocus("")
		} else {
			m.ctl.SetFocus(it.value)
		}
	case itemBreakdown:
		m.ctl.SetBreakdown(!sel.Breakdown())
	}
}

// save writes the current chart as <chart>.svg.
func (m *exploreModel) save() {
	if m.model == nil {
		return
	}
	path := m.def.ID + ".svg"
	if err := os.WriteFile(path, render.SVG(m.model), 0o644); err != nil {
		m.err = errors.Wrap(errors.ErrCodeInternal, err, "save %s", path)
		return
	}
	m.saved = path
}

// buildItems lists the controls the chart and its current view offer.
func (m *exploreModel) buildItems() []exploreItem {
	var items []exploreItem
	if len(m.def.Modes) > 1 {
		for _, o := range m.def.Modes {
			items = append(items, exploreItem{kind: itemMode, value: o.Value, label: o.Label})
		}
	}
	v := m.view
	if v == nil {
		return items
	}
	if v.Taxonomy != nil && m.def.Supports(catalog.ControlGroups) {
		for _, p := range v.Taxonomy.Parents() {
			items = append(items, exploreItem{kind: itemGroup, value: p, label: p})
		}
	}
	if m.def.Supports(catalog.ControlKeys) || m.def.Supports(catalog.ControlGroups) {
		for _, k := range v.Keys {
			items = append(items, exploreItem{kind: itemKey, value: k, label: k})
		}
	}
	for _, o := range v.Filters {
		items = append(items, exploreItem{kind: itemFilter, value: o.Value, label: o.Label})
	}
	for _, o := range v.Focus {
		items = append(items, exploreItem{kind: itemFocus, value: o.Value, label: o.Label})
	}
	if v.Breakdown {
		items = append(items, exploreItem{kind: itemBreakdown, label: "Show breakdown"})
	}
	return items
}

// checked reports whether it is on in the current selection.
func (m *exploreModel) checked(it exploreItem) bool {
	sel := m.ctl.Selection()
	switch it.kind {
	case itemMode:
		return sel.Mode() == it.value
	case itemGroup:
		return m.view != nil && m.view.Taxonomy != nil && sel.GroupState(m.view.Taxonomy.Children(it.value))
	case itemKey:
		return sel.IsActive(it.value)
	case itemFilter:
		return sel.Filter() == it.value
	case itemFocus:
		return sel.Focus() == it.value
	case itemBreakdown:
		return sel.Breakdown()
	}
	return false
}

var sectionNames = map[itemKind]string{
	itemMode:      "Mode",
	itemGroup:     "Groups",
	itemKey:       "Series",
	itemFilter:    "Filter",
	itemFocus:     "Focus",
	itemBreakdown: "Breakdown",
}

func (m *exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.def.ID + ": " + m.def.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  c clear  s save svg  q quit"))
	b.WriteString("\n\n")

	section := itemKind(-1)
	for i, it := range m.items {
		if it.kind != section {
			section = it.kind
			b.WriteString(listSectionStyle.Render(sectionNames[section]))
			b.WriteString("\n")
		}
		cursor := "  "
		style := listNormalStyle
		if i == m.cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		box := "[ ]"
		if m.checked(it) {
			box = "[x]"
		}
		b.WriteString(cursor + style.Render(box+" "+it.label) + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(fallbackStyle.Render(fmt.Sprintf("Chart unavailable (%d)\n%s",
			errors.HTTPStatus(m.err), errors.UserMessage(m.err))))
	case m.model != nil:
		b.WriteString(summarizeModel(m.model))
	}
	if m.loading {
		b.WriteString("\n" + listDimStyle.Render("computing..."))
	}
	if m.saved != "" {
		b.WriteString("\n" + StyleDim.Render("saved "+m.saved))
	}
	return b.String()
}

// summarizeModel describes each panel of m: its legend, mark count and
// notes.
func summarizeModel(m *chart.Model) string {
	var b strings.Builder
	for _, p := range m.Panels {
		title := p.Title
		if title == "" {
			title = p.ID
		}
		b.WriteString(StyleHighlight.Render(title))
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s · %d marks", p.Geometry, len(p.Marks))))
		b.WriteString("\n")
		if p.Empty {
			b.WriteString("  " + StyleWarning.Render(p.Message) + "\n")
			continue
		}
		for _, e := range p.Legend {
			if e.Shape == chart.ShapeHeader {
				b.WriteString("  " + listSectionStyle.Render(e.Label) + "\n")
				continue
			}
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color)).Render("■")
			b.WriteString("  " + swatch + " " + e.Label + "\n")
		}
		for _, n := range p.Notes {
			b.WriteString("  " + listDimStyle.Render(n) + "\n")
		}
	}
	return b.String()
}
