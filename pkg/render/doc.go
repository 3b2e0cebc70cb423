// Package render turns a computed [chart.Model] into output artifacts.
//
// # Formats
//
//   - [SVG]: a standalone interactive document with inline CSS and a small
//     script that resolves tooltips from precomputed data attributes
//   - [JSON]: the model itself, for clients that draw on their own
//   - [XLSX]: one worksheet per panel with the plotted magnitudes
//
// Renderers are pure functions of the model: rendering the same model twice
// produces byte-identical output.
//
//	model := chart.Compute(state)
//	svg := render.SVG(model)
//	data, err := render.XLSX(model)
//
// # Taxonomy Diagrams
//
// [TaxonomyDOT] and [TaxonomySVG] draw a category taxonomy as a Graphviz
// tree using [github.com/goccy/go-graphviz].
//
// [chart.Model]: github.com/matzehuels/crimescope/pkg/chart.Model
package render
