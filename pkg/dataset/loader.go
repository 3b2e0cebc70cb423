package dataset

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/crimescope/pkg/cache"
	"github.com/matzehuels/crimescope/pkg/errors"
	"github.com/matzehuels/crimescope/pkg/observability"
)

// fetchConcurrency bounds parallel fetches in FetchAll.
const fetchConcurrency = 8

// Loader fetches resources from a Source and memoizes them.
// It is safe for concurrent use.
type Loader struct {
	source Source
	memo   cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger

	group    singleflight.Group
	mu       sync.RWMutex
	gen      uint64
	versions map[string]uint64
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithMemo sets the memo cache. The default is an in-process MemoryCache.
func WithMemo(c cache.Cache) LoaderOption {
	return func(l *Loader) {
		if c != nil {
			l.memo = c
		}
	}
}

// WithKeyer sets the key generator.
func WithKeyer(k cache.Keyer) LoaderOption {
	return func(l *Loader) {
		if k != nil {
			l.keyer = k
		}
	}
}

// WithTTL sets how long memoized resources live.
func WithTTL(ttl time.Duration) LoaderOption {
	return func(l *Loader) { l.ttl = ttl }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a Loader over src.
func NewLoader(src Source, opts ...LoaderOption) *Loader {
	l := &Loader{
		source: src,
		memo:   cache.NewMemoryCache(),
		keyer:  cache.NewDefaultKeyer(),
		ttl:    cache.TTLDataset,
		logger: log.NewWithOptions(io.Discard, log.Options{}),

		versions: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Source returns the underlying source.
func (l *Loader) Source() Source { return l.source }

// Generation returns the memo generation. It increases on every full
// invalidation.
func (l *Loader) Generation() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.gen
}

// version returns the per-name invalidation counter.
func (l *Loader) version(name string) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.versions[name]
}

func (l *Loader) key(name string) string {
	return fmt.Sprintf("%s@%d", l.keyer.DatasetKey(l.source.Name(), name), l.Generation())
}

// Fetch returns the named resource, from the memo when present.
// Concurrent fetches of the same name share one source call.
func (l *Loader) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := errors.ValidateResourceName(name); err != nil {
		return nil, err
	}
	key := l.key(name)

	if data, hit, err := l.memo.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "dataset")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "dataset")

	v, err, _ := l.group.Do(key, func() (any, error) {
		version := l.version(name)
		start := time.Now()
		observability.Dataset().OnFetchStart(ctx, l.source.Name(), name)
		data, err := l.source.Fetch(ctx, name)
		observability.Dataset().OnFetchComplete(ctx, l.source.Name(), name, len(data), time.Since(start), err)
		if err != nil {
			return nil, err
		}

		l.logger.Debug("fetched dataset",
			"source", l.source.Name(),
			"name", name,
			"bytes", len(data),
			"duration", time.Since(start))

		// An Invalidate during the source call makes data stale.
		if l.version(name) != version {
			l.logger.Debug("dataset invalidated during fetch", "name", name)
			return data, nil
		}
		if err := l.memo.Set(ctx, key, data, l.ttl); err == nil {
			observability.Cache().OnCacheSet(ctx, "dataset", len(data))
		} else {
			l.logger.Warn("memoize dataset", "name", name, "error", err)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// FetchAll fetches names concurrently. It fails with the first error.
func (l *Loader) FetchAll(ctx context.Context, names []string) (map[string][]byte, error) {
	results := make([][]byte, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, name := range names {
		g.Go(func() error {
			data, err := l.Fetch(gctx, name)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", name, err)
			}
			results[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(names))
	for i, name := range names {
		out[name] = results[i]
	}
	return out, nil
}

// Invalidate drops memoized resources. With no names, every entry is
// dropped by advancing the generation. Fetches already running for a
// name are not memoized, and later callers do not join them.
func (l *Loader) Invalidate(ctx context.Context, names ...string) {
	if len(names) == 0 {
		l.mu.Lock()
		l.gen++
		l.mu.Unlock()
		observability.Dataset().OnInvalidate(ctx, "*")
		return
	}
	for _, name := range names {
		key := l.key(name)
		l.mu.Lock()
		l.versions[name]++
		l.mu.Unlock()
		l.group.Forget(key)
		_ = l.memo.Delete(ctx, key)
		observability.Dataset().OnInvalidate(ctx, name)
	}
}
