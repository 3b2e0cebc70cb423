// Package chart is the pure chart engine: normalization, selection state,
// stack layout, scales, hover resolution and the render model.
//
// Every UI event produces a new immutable [State]; [Compute] turns a state
// into a [Model] holding the panels, layers, scales, annotations, legend and
// precomputed tooltips. Nothing in this package performs I/O, so the model
// can be rendered to SVG, JSON or a spreadsheet by package render and tested
// directly.
//
//	tbl := dataset.FromRows(rows)
//	norm := chart.Normalize(tbl, nil, chart.PolicyRelative)
//	layers := chart.Stack(norm.SortedKeys(), norm)
//
// Interactive front ends (the explorer and the server page) keep a
// [Controller] over the [Selection] and tag dataset fetches with a
// [Session] ticket so a late response for a superseded selection is
// discarded.
package chart
