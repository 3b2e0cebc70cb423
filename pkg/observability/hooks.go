// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries (the dataset loader, the cache-backed runner and the render
// step) emit events through the registered hooks; the defaults do nothing.
// Binaries register concrete hooks at startup, e.g. `crimescope serve`
// installs hooks that log every fetch and render.
//
//	observability.SetDatasetHooks(myHooks)
//	...
//	observability.Dataset().OnFetchStart(ctx, "file", "q5_property_crime_trends.json")
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the load → compute → render pipeline.
type PipelineHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, chartID string, resources []string)
	OnLoadComplete(ctx context.Context, chartID string, duration time.Duration, err error)

	// Compute events
	OnComputeStart(ctx context.Context, chartID, mode string)
	OnComputeComplete(ctx context.Context, chartID string, marks int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, chartID string, formats []string)
	OnRenderComplete(ctx context.Context, chartID string, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Dataset Hooks
// =============================================================================

// DatasetHooks receives events from dataset sources.
type DatasetHooks interface {
	// OnFetchStart records the start of a resource fetch.
	OnFetchStart(ctx context.Context, source, name string)

	// OnFetchComplete records the end of a fetch with the payload size.
	OnFetchComplete(ctx context.Context, source, name string, size int, duration time.Duration, err error)

	// OnInvalidate records a memo invalidation (e.g. a data file changed).
	OnInvalidate(ctx context.Context, name string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string, []string)                {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, time.Duration, error) {}
func (NoopPipelineHooks) OnComputeStart(context.Context, string, string)               {}
func (NoopPipelineHooks) OnComputeComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnRenderStart(context.Context, string, []string) {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, []string, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopDatasetHooks is a no-op implementation of DatasetHooks.
type NoopDatasetHooks struct{}

func (NoopDatasetHooks) OnFetchStart(context.Context, string, string) {}
func (NoopDatasetHooks) OnFetchComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopDatasetHooks) OnInvalidate(context.Context, string) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	datasetHooks  DatasetHooks  = NoopDatasetHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetDatasetHooks registers dataset hooks. Nil is ignored.
func SetDatasetHooks(h DatasetHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		datasetHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Dataset returns the registered dataset hooks.
func Dataset() DatasetHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return datasetHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	datasetHooks = NoopDatasetHooks{}
}
