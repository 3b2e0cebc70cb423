package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/crimescope/pkg/cache"
	"github.com/matzehuels/crimescope/pkg/catalog"
	"github.com/matzehuels/crimescope/pkg/chart"
	"github.com/matzehuels/crimescope/pkg/dataset"
	"github.com/matzehuels/crimescope/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the server and the explorer all run charts through it.
//
// The Runner is stateless except for its collaborators; multiple
// goroutines can use the same Runner with different options.
type Runner struct {
	Catalog *catalog.Catalog
	Loader  *dataset.Loader
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
}

// NewRunner creates a runner.
// A nil catalog uses the built-in charts and a nil loader reads the
// working directory. A nil cache disables artifact caching.
func NewRunner(cat *catalog.Catalog, loader *dataset.Loader, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if cat == nil {
		cat = catalog.Default()
	}
	if loader == nil {
		loader = dataset.NewLoader(dataset.NewFileSource("."), dataset.WithLogger(logger))
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Catalog: cat,
		Loader:  loader,
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
	}
}

// Execute runs the complete load → build → compute → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	def, err := r.Catalog.Get(opts.Chart)
	if err != nil {
		return nil, err
	}
	sel, err := def.CheckSelection(opts.Selection())
	if err != nil {
		return nil, err
	}
	result := &Result{Chart: def}

	// Stage 1: Load
	loadStart := time.Now()
	resources, err := r.Load(ctx, def, sel)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.DataHash = DataHash(resources)
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Resources = len(resources)

	r.Logger.Info("loaded datasets",
		"chart", def.ID,
		"resources", len(resources),
		"duration", result.Stats.LoadTime)

	// Stage 2: Build and compute
	computeStart := time.Now()
	view, model, err := r.Compute(ctx, def, sel, resources, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.View = view
	result.Model = model
	result.ModelKey = r.Keyer.ModelKey(def.ID, result.DataHash, opts.ModelKeyOpts(view.State.Selection))
	result.Stats.ComputeTime = time.Since(computeStart)
	result.Stats.Marks = model.MarkCount()

	r.Logger.Info("computed chart",
		"chart", def.ID,
		"panels", len(model.Panels),
		"marks", result.Stats.Marks,
		"duration", result.Stats.ComputeTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, model, result.ModelKey, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load fetches the resources def needs for sel.
func (r *Runner) Load(ctx context.Context, def *catalog.Definition, sel chart.Selection) (map[string][]byte, error) {
	names := def.Resources(sel)
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, def.ID, names)
	start := time.Now()
	resources, err := r.Loader.FetchAll(ctx, names)
	hooks.OnLoadComplete(ctx, def.ID, time.Since(start), err)
	return resources, err
}

// Compute builds the view for the loaded resources and computes its model.
func (r *Runner) Compute(ctx context.Context, def *catalog.Definition, sel chart.Selection, resources map[string][]byte, opts Options) (*catalog.View, *chart.Model, error) {
	hooks := observability.Pipeline()
	hooks.OnComputeStart(ctx, def.ID, sel.Mode())
	start := time.Now()

	view, err := def.Build(catalog.Input{
		Selection: sel,
		Groups:    opts.Groups,
		Resources: resources,
		Width:     opts.Width,
		Height:    opts.Height,
	})
	if err != nil {
		hooks.OnComputeComplete(ctx, def.ID, 0, time.Since(start), err)
		return nil, nil, err
	}
	model := chart.Compute(view.State)
	hooks.OnComputeComplete(ctx, def.ID, model.MarkCount(), time.Since(start), nil)
	return view, model, nil
}

// DataHash hashes resources independent of map order.
func DataHash(resources map[string][]byte) string {
	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	sort.Strings(names)
	var buf []byte
	for _, name := range names {
		buf = append(buf, name...)
		buf = append(buf, 0)
		buf = append(buf, cache.Hash(resources[name])...)
		buf = append(buf, 0)
	}
	return cache.Hash(buf)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
