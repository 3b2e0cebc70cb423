// Package pipeline provides the chart pipeline shared by the CLI, the
// server and the explorer.
//
// # Architecture
//
// A run has four stages:
//
//  1. Load: fetch the dataset resources the chart needs for the selection
//  2. Build: shape the resources into panel specs (catalog)
//  3. Compute: derive the render model (chart.Compute)
//  4. Render: produce SVG, JSON or XLSX artifacts
//
// Loading is memoized by the dataset loader; rendered artifacts are cached
// under a key derived from the chart, the data hash and the selection.
//
// # Usage
//
//	runner := pipeline.NewRunner(catalog.Default(), loader, cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Chart:   "q1",
//	    Mode:    "subcategory",
//	    Groups:  []string{"theft"},
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts[render.FormatSVG]
package pipeline

import (
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/crimescope/pkg/cache"
	"github.com/matzehuels/crimescope/pkg/catalog"
	"github.com/matzehuels/crimescope/pkg/chart"
	"github.com/matzehuels/crimescope/pkg/errors"
	"github.com/matzehuels/crimescope/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, Server and Explorer
// =============================================================================

const (
	// DefaultWidth is the default chart width in pixels.
	DefaultWidth = chart.DefaultWidth

	// DefaultHeight is the default height of a time-series panel.
	DefaultHeight = chart.DefaultHeight

	// MaxDimension bounds requested widths and heights.
	MaxDimension = 4000.0
)

// DefaultFormats is used when no format is requested.
var DefaultFormats = []string{string(render.FormatSVG)}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options is one chart request. It supports JSON for server requests.
type Options struct {
	Chart     string   `json:"chart"`
	Mode      string   `json:"mode,omitempty"`
	Keys      []string `json:"keys,omitempty"`
	Groups    []string `json:"groups,omitempty"`
	Filter    string   `json:"filter,omitempty"`
	Focus     string   `json:"focus,omitempty"`
	Breakdown bool     `json:"breakdown,omitempty"`

	Formats []string `json:"formats,omitempty"`
	Width   float64  `json:"width,omitempty"`
	Height  float64  `json:"height,omitempty"`

	// NoCache skips the artifact cache on read and write.
	NoCache bool `json:"no_cache,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	formats   []render.Format
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Chart is the definition that was run.
	Chart *catalog.Definition

	// View carries the built state and the data-dependent control choices.
	View *catalog.View

	// Model is the computed render model.
	Model *chart.Model

	// DataHash is the content hash of the loaded resources.
	DataHash string

	// ModelKey is the cache key of the model; artifacts are keyed off it.
	ModelKey string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[render.Format][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Resources   int
	Marks       int
	LoadTime    time.Duration
	ComputeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the request and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidateChartID(o.Chart); err != nil {
		return err
	}
	for _, k := range append(append([]string{}, o.Keys...), o.Groups...) {
		if err := errors.ValidateKey(k); err != nil {
			return err
		}
	}
	if err := o.validateSize(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = DefaultFormats
	}
	formats, err := render.ParseFormats(strings.Join(o.Formats, ","))
	if err != nil {
		return err
	}
	o.formats = formats
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

func (o *Options) validateSize() error {
	for _, v := range []float64{o.Width, o.Height} {
		if v < 0 || v > MaxDimension || math.IsNaN(v) {
			return errors.New(errors.ErrCodeInvalidInput, "chart size must be between 0 and %g", MaxDimension)
		}
	}
	return nil
}

// Selection returns the chart selection the options describe.
func (o *Options) Selection() chart.Selection {
	return chart.NewSelection(o.Mode, o.Keys...).
		WithFilter(o.Filter).
		WithFocus(o.Focus).
		WithBreakdown(o.Breakdown)
}

// ModelKeyOpts returns cache key options for the render model.
func (o *Options) ModelKeyOpts(sel chart.Selection) cache.ModelKeyOpts {
	return cache.ModelKeyOpts{
		Mode:      sel.Mode(),
		Keys:      sel.Active(),
		Groups:    o.Groups,
		Filter:    sel.Filter(),
		Focus:     sel.Focus(),
		Breakdown: sel.Breakdown(),
		Width:     int(o.Width),
		Height:    int(o.Height),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(f render.Format) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: string(f)}
}

// RenderFormats returns the parsed formats in request order. It is empty
// until ValidateAndSetDefaults succeeds.
func (o *Options) RenderFormats() []render.Format {
	return o.formats
}
