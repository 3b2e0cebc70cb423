// Package pkg provides the core libraries for crimescope, an interactive
// chart engine over Old Bailey crime statistics.
//
// # Overview
//
// The pkg directory is organized by pipeline stage:
//
//  1. [dataset] - Resource sources (file, HTTP, MongoDB), the memoizing
//     loader, tables, annotations and the offence taxonomy
//  2. [chart] - Selections, normalization, stack layout, scales and the
//     render model
//  3. [catalog] - The chart definitions q1 ... q10
//  4. [render] - SVG, JSON and XLSX artifacts plus taxonomy diagrams
//  5. [pipeline] - Orchestration (load → build → compute → render) with
//     artifact caching
//  6. [server] - HTTP pages and artifact endpoints
//
// Supporting packages: [cache] (memory, file and Redis backends), [config],
// [errors], [observability] and [buildinfo].
//
// # Architecture
//
//	dataset resources (JSON / YAML)
//	         ↓
//	    [dataset.Loader] (memoized, concurrent fetch)
//	         ↓
//	    [catalog.Definition] Build (resources + selection → chart.State)
//	         ↓
//	    [chart.Compute] (normalize → stack → scale → marks)
//	         ↓
//	    [render] SVG / JSON / XLSX
//
// # Quick Start
//
//	loader := dataset.NewLoader(dataset.NewFileSource("static/data"))
//	runner := pipeline.NewRunner(catalog.Default(), loader, cache.NewMemoryCache(), nil, nil)
//
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Chart:   "q1",
//	    Mode:    "subcategory",
//	    Groups:  []string{"theft"},
//	    Formats: []string{"svg", "json"},
//	})
//	os.WriteFile("q1.svg", res.Artifacts[render.FormatSVG], 0o644)
package pkg
