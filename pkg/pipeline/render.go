package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/crimescope/pkg/cache"
	"github.com/matzehuels/crimescope/pkg/chart"
	"github.com/matzehuels/crimescope/pkg/observability"
	"github.com/matzehuels/crimescope/pkg/render"
)

// Render generates output artifacts in the requested formats.
func Render(m *chart.Model, formats []render.Format) (map[render.Format][]byte, error) {
	artifacts := make(map[render.Format][]byte, len(formats))
	for _, f := range formats {
		data, err := render.Artifact(m, f)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", f, err)
		}
		artifacts[f] = data
	}
	return artifacts, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info. The hit is true only when every format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, m *chart.Model, modelKey string, opts Options) (map[render.Format][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	formats := opts.formats

	if !opts.NoCache {
		artifacts := make(map[render.Format][]byte, len(formats))
		for _, f := range formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(modelKey, opts.ArtifactKeyOpts(f)))
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				break
			}
			artifacts[f] = data
		}
		if len(artifacts) == len(formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
	}

	hooks := observability.Pipeline()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	hooks.OnRenderStart(ctx, m.ChartID, names)
	start := time.Now()
	rendered, err := Render(m, formats)
	hooks.OnRenderComplete(ctx, m.ChartID, names, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if !opts.NoCache {
		for f, data := range rendered {
			ttl := cache.TTLArtifact
			if f == render.FormatJSON {
				ttl = cache.TTLModel
			}
			if err := r.Cache.Set(ctx, r.Keyer.ArtifactKey(modelKey, opts.ArtifactKeyOpts(f)), data, ttl); err != nil {
				r.Logger.Warn("cache artifact", "format", f, "error", err)
				continue
			}
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return rendered, false, nil
}
