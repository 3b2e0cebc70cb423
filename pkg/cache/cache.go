// Package cache provides the byte-level cache shared by the dataset loader
// and the render pipeline.
//
// Four backends implement [Cache]:
//   - [NullCache]: caching disabled
//   - [MemoryCache]: in-process map, used as the dataset loader memo
//   - [FileCache]: JSON entries under a directory, used by the CLI
//   - [RedisCache]: shared cache for `crimescope serve` deployments
//
// Keys are produced by a [Keyer] so that the CLI and the server agree on
// naming. Values are opaque bytes; callers own serialization.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional time to live.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Default TTLs per cached artifact kind.
const (
	// TTLDataset applies to fetched dataset resources.
	TTLDataset = 24 * time.Hour
	// TTLModel applies to computed render models.
	TTLModel = 7 * 24 * time.Hour
	// TTLArtifact applies to rendered SVG, JSON and XLSX outputs.
	TTLArtifact = 7 * 24 * time.Hour
)

// ModelKeyOpts are the inputs that determine a computed render model.
type ModelKeyOpts struct {
	Mode      string   `json:"mode,omitempty"`
	Keys      []string `json:"keys,omitempty"`
	Groups    []string `json:"groups,omitempty"`
	Filter    string   `json:"filter,omitempty"`
	Focus     string   `json:"focus,omitempty"`
	Breakdown bool     `json:"breakdown,omitempty"`
	Width     int      `json:"width,omitempty"`
	Height    int      `json:"height,omitempty"`
}

// ArtifactKeyOpts are the inputs that determine a rendered output.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// Keyer generates cache keys.
type Keyer interface {
	// DatasetKey names a raw dataset resource from a given source.
	DatasetKey(source, name string) string
	// ModelKey names the render model of a chart for one selection state.
	ModelKey(chartID, dataHash string, opts ModelKeyOpts) string
	// ArtifactKey names one rendered format of a model.
	ArtifactKey(modelHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DatasetKey returns "dataset:<source>:<name>".
func (DefaultKeyer) DatasetKey(source, name string) string {
	return "dataset:" + source + ":" + name
}

// ModelKey hashes the chart ID, the data hash and the selection options.
func (DefaultKeyer) ModelKey(chartID, dataHash string, opts ModelKeyOpts) string {
	return hashKey("model", chartID, dataHash, opts)
}

// ArtifactKey hashes the model hash and the output format.
func (DefaultKeyer) ArtifactKey(modelHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", modelHash, opts)
}

// ScopedKeyer prefixes every key of an inner Keyer. The server uses it to
// keep caches from different data sources apart when they share a Redis
// instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) DatasetKey(source, name string) string {
	return k.prefix + k.inner.DatasetKey(source, name)
}

func (k *ScopedKeyer) ModelKey(chartID, dataHash string, opts ModelKeyOpts) string {
	return k.prefix + k.inner.ModelKey(chartID, dataHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(modelHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(modelHash, opts)
}
