package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/crimescope/pkg/chart"
	"github.com/matzehuels/crimescope/pkg/dataset"
	"github.com/matzehuels/crimescope/pkg/errors"
)

// TaxonomyOptions configures taxonomy diagrams.
type TaxonomyOptions struct {
	// Root labels the top node. Empty omits it and leaves parents as roots.
	Root string
	// Highlight lists children drawn filled, typically the active keys.
	Highlight []string
}

// TaxonomyDOT converts a taxonomy to Graphviz DOT. Parents are coloured
// with the categorical palette and their children inherit the colour.
func TaxonomyDOT(t *dataset.Taxonomy, opts TaxonomyOptions) string {
	active := make(map[string]bool, len(opts.Highlight))
	for _, k := range opts.Highlight {
		active[k] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph taxonomy {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.15;\n")
	buf.WriteString("\n")

	if opts.Root != "" {
		fmt.Fprintf(&buf, "  %q [label=%q, shape=plaintext, style=\"\", fontsize=14];\n", "root", opts.Root)
	}
	parents := t.Parents()
	for i, p := range parents {
		color := chart.Tableau10[i%len(chart.Tableau10)]
		fmt.Fprintf(&buf, "  %q [label=%q, color=%q, penwidth=2];\n", nodeID("p", p), p, color)
		if opts.Root != "" {
			fmt.Fprintf(&buf, "  %q -> %q;\n", "root", nodeID("p", p))
		}
		for _, c := range t.Children(p) {
			attrs := fmt.Sprintf("label=%q, color=%q", c, color)
			if active[c] {
				attrs += fmt.Sprintf(", fillcolor=%q, fontcolor=white", color)
			}
			fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(p, c), attrs)
			fmt.Fprintf(&buf, "  %q -> %q [color=%q];\n", nodeID("p", p), nodeID(p, c), color)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// nodeID keeps subcategories that appear under several parents distinct.
func nodeID(scope, name string) string { return scope + "/" + name }

// TaxonomySVG renders DOT source to SVG using Graphviz.
func TaxonomySVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render taxonomy")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with a
// pixel-sized one anchored at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
