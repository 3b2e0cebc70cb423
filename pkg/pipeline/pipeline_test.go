package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/crimescope/pkg/cache"
	"github.com/matzehuels/crimescope/pkg/catalog"
	"github.com/matzehuels/crimescope/pkg/dataset"
	"github.com/matzehuels/crimescope/pkg/errors"
	"github.com/matzehuels/crimescope/pkg/observability"
	"github.com/matzehuels/crimescope/pkg/render"
)

const fixtures = "../catalog/testdata"

func fixtureSource(t *testing.T) *dataset.MemorySource {
	t.Helper()
	entries, err := os.ReadDir(fixtures)
	if err != nil {
		t.Fatal(err)
	}
	m := make(map[string][]byte, len(entries))
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(fixtures, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		m[e.Name()] = data
	}
	return dataset.NewMemorySource(m)
}

func newTestRunner(t *testing.T, src dataset.Source) *Runner {
	t.Helper()
	logger := log.NewWithOptions(&bytes.Buffer{}, log.Options{})
	loader := dataset.NewLoader(src, dataset.WithLogger(logger))
	return NewRunner(catalog.Default(), loader, cache.NewMemoryCache(), nil, logger)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr errors.Code
	}{
		{"minimal", Options{Chart: "q1"}, ""},
		{"formats", Options{Chart: "q1", Formats: []string{"svg", "xlsx"}}, ""},
		{"missing chart", Options{}, errors.ErrCodeInvalidChart},
		{"bad chart", Options{Chart: "../q1"}, errors.ErrCodeInvalidChart},
		{"bad format", Options{Chart: "q1", Formats: []string{"png"}}, errors.ErrCodeInvalidFormat},
		{"bad key", Options{Chart: "q1", Keys: []string{"a\x00"}}, errors.ErrCodeInvalidInput},
		{"negative width", Options{Chart: "q1", Width: -1}, errors.ErrCodeInvalidInput},
		{"huge height", Options{Chart: "q1", Height: 1e6}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %s", err, tt.wantErr)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Chart: "q5"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if len(opts.formats) != 1 || opts.formats[0] != render.FormatSVG {
		t.Errorf("formats = %v, want [svg]", opts.formats)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}
}

func TestOptionsSelection(t *testing.T) {
	opts := Options{Mode: "subcategory", Keys: []string{"fraud"}, Filter: "theft", Focus: "x", Breakdown: true}
	sel := opts.Selection()
	if sel.Mode() != "subcategory" || !sel.IsActive("fraud") || sel.Filter() != "theft" || sel.Focus() != "x" || !sel.Breakdown() {
		t.Errorf("Selection() = %+v", sel)
	}
}

func TestExecute(t *testing.T) {
	r := newTestRunner(t, fixtureSource(t))
	ctx := context.Background()

	opts := Options{Chart: "q2", Formats: []string{"svg", "json", "xlsx"}}
	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, f := range []render.Format{render.FormatSVG, render.FormatJSON, render.FormatXLSX} {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	if res.CacheInfo.RenderHit {
		t.Error("first run hit the cache")
	}
	if res.Stats.Marks == 0 || res.Stats.Resources != 2 {
		t.Errorf("stats = %+v", res.Stats)
	}

	again, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.RenderHit {
		t.Error("second run missed the cache")
	}
	if !bytes.Equal(again.Artifacts[render.FormatSVG], res.Artifacts[render.FormatSVG]) {
		t.Error("cached svg differs")
	}

	opts.NoCache = true
	fresh, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CacheInfo.RenderHit {
		t.Error("NoCache run hit the cache")
	}
}

func TestExecuteModelKey(t *testing.T) {
	r := newTestRunner(t, fixtureSource(t))
	ctx := context.Background()

	a, err := r.Execute(ctx, Options{Chart: "q1"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Execute(ctx, Options{Chart: "q1", Keys: []string{"theft"}})
	if err != nil {
		t.Fatal(err)
	}
	if a.ModelKey == b.ModelKey {
		t.Error("different selections share a model key")
	}
	if a.DataHash != b.DataHash {
		t.Error("same resources hash differently")
	}
	// The empty mode is defaulted before keying.
	c, err := r.Execute(ctx, Options{Chart: "q1", Mode: "category"})
	if err != nil {
		t.Fatal(err)
	}
	if a.ModelKey != c.ModelKey {
		t.Error("defaulted mode changed the model key")
	}
}

func TestExecuteErrors(t *testing.T) {
	r := newTestRunner(t, dataset.NewMemorySource(nil))
	ctx := context.Background()

	tests := []struct {
		name string
		opts Options
		want errors.Code
	}{
		{"unknown chart", Options{Chart: "q8"}, errors.ErrCodeChartNotFound},
		{"unknown mode", Options{Chart: "q1", Mode: "weekly"}, errors.ErrCodeInvalidMode},
		{"missing data", Options{Chart: "q1"}, errors.ErrCodeDatasetNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(ctx, tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestDataHash(t *testing.T) {
	a := map[string][]byte{"x.json": []byte("1"), "y.json": []byte("2")}
	b := map[string][]byte{"y.json": []byte("2"), "x.json": []byte("1")}
	if DataHash(a) != DataHash(b) {
		t.Error("hash depends on map order")
	}
	c := map[string][]byte{"x.json": []byte("2"), "y.json": []byte("1")}
	if DataHash(a) == DataHash(c) {
		t.Error("swapped contents hash equal")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	h.events = append(h.events, e)
	h.mu.Unlock()
}

func (h *recordingHooks) OnLoadStart(context.Context, string, []string) { h.record("load") }
func (h *recordingHooks) OnComputeComplete(context.Context, string, int, time.Duration, error) {
	h.record("compute")
}
func (h *recordingHooks) OnRenderComplete(context.Context, string, []string, time.Duration, error) {
	h.record("render")
}

func TestExecuteHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	r := newTestRunner(t, fixtureSource(t))
	if _, err := r.Execute(context.Background(), Options{Chart: "q6", NoCache: true}); err != nil {
		t.Fatal(err)
	}
	want := []string{"load", "compute", "render"}
	if len(hooks.events) != len(want) {
		t.Fatalf("events = %v, want %v", hooks.events, want)
	}
	for i := range want {
		if hooks.events[i] != want[i] {
			t.Errorf("events = %v, want %v", hooks.events, want)
		}
	}
}
