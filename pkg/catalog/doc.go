// Package catalog defines the crime charts crimescope can draw.
//
// Each [Definition] names the dataset resources a selection needs and a
// Build function that shapes those resources into a [chart.State]. Build
// functions are pure: loading, caching and rendering live in package
// pipeline, so every chart can be tested with in-memory fixtures.
//
//	cat := catalog.Default()
//	def, err := cat.Get("q1")
//	sel := def.DefaultSelection()
//	names := def.Resources(sel)
//	view, err := def.Build(catalog.Input{Selection: sel, Resources: res})
//	model := chart.Compute(view.State)
//
// [chart.State]: github.com/matzehuels/crimescope/pkg/chart.State
package catalog
