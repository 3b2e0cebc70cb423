package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/crimescope/pkg/catalog"
	"github.com/matzehuels/crimescope/pkg/config"
	"github.com/matzehuels/crimescope/pkg/render"
)

const fixtures = "../../pkg/catalog/testdata"

func TestRootCommand(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"render", "serve", "explore", "charts", "taxonomy", "cache", "completion"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("root command missing %q (have %v)", want, names)
		}
	}
	for _, flag := range []string{"config", "verbose"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing global flag --%s", flag)
		}
	}
}

func TestRenderCommand(t *testing.T) {
	out := t.TempDir()
	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{
		"render", "q1",
		"--data", fixtures,
		"--mode", "subcategory",
		"--group", "theft",
		"-f", "svg,json",
		"-o", filepath.Join(out, "frequency"),
		"--no-cache",
	})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("render: %v", err)
	}

	svg, err := os.ReadFile(filepath.Join(out, "frequency.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(svg), []byte("<?xml")) && !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("frequency.svg is not SVG")
	}
	js, err := os.ReadFile(filepath.Join(out, "frequency.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(js), `"mode": "subcategory"`) {
		t.Errorf("json artifact lacks the mode: %s", js[:min(len(js), 200)])
	}
}

func TestRenderCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown chart", []string{"render", "q8", "--data", fixtures, "--no-cache"}, "CHART_NOT_FOUND"},
		{"bad format", []string{"render", "q1", "--data", fixtures, "-f", "png", "--no-cache"}, "INVALID_FORMAT"},
		{"bad mode", []string{"render", "q1", "--data", fixtures, "--mode", "weekly", "--no-cache", "-o", filepath.Join(t.TempDir(), "x.svg")}, "INVALID_MODE"},
		{"missing data", []string{"render", "q2", "--data", t.TempDir(), "--no-cache"}, "DATASET_NOT_FOUND"},
		{"missing config", []string{"--config", "nope.toml", "charts"}, "INVALID_CONFIG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := New(&bytes.Buffer{}, LogInfo).RootCommand()
			root.SetArgs(tt.args)
			root.SetErr(&bytes.Buffer{})
			err := root.ExecuteContext(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		formats []render.Format
		want    map[render.Format]string
	}{
		{
			name:    "default",
			formats: []render.Format{render.FormatSVG},
			want:    map[render.Format]string{render.FormatSVG: "q4.svg"},
		},
		{
			name:    "single explicit",
			output:  "out/chart.svg",
			formats: []render.Format{render.FormatSVG},
			want:    map[render.Format]string{render.FormatSVG: "out/chart.svg"},
		},
		{
			name:    "multiple strip extension",
			output:  "out/chart.svg",
			formats: []render.Format{render.FormatSVG, render.FormatXLSX},
			want: map[render.Format]string{
				render.FormatSVG:  "out/chart.svg",
				render.FormatXLSX: "out/chart.xlsx",
			},
		},
		{
			name:    "multiple base path",
			output:  "out/conviction",
			formats: []render.Format{render.FormatJSON, render.FormatXLSX},
			want: map[render.Format]string{
				render.FormatJSON: "out/conviction.json",
				render.FormatXLSX: "out/conviction.xlsx",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPaths(tt.output, "q4", tt.formats); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("outputPaths() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDataOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.Data.MongoURI = "mongodb://localhost"
	dataOverrides{dir: "fixtures"}.apply(&cfg)
	if cfg.Data.Dir != "fixtures" || cfg.Data.MongoURI != "" {
		t.Errorf("--data override = %+v", cfg.Data)
	}

	cfg = config.Default()
	dataOverrides{dir: "ignored", url: "https://example.org/data"}.apply(&cfg)
	if cfg.Data.BaseURL != "https://example.org/data" {
		t.Errorf("--data-url override = %+v", cfg.Data)
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")
	if got, want := cacheDir(config.Default()), filepath.Join("/tmp/custom-cache", appName); got != want {
		t.Errorf("cacheDir() = %q, want %q", got, want)
	}

	cfg := config.Default()
	cfg.Cache.Dir = "/var/cache/charts"
	if got := cacheDir(cfg); got != "/var/cache/charts" {
		t.Errorf("cacheDir() = %q, want configured dir", got)
	}
}

func TestCacheClear(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "ab"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ab", "entry.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(&bytes.Buffer{}, LogInfo)
	c.cfg.Cache.Dir = dir
	if err := c.runCacheClear(context.Background()); err != nil {
		t.Fatalf("runCacheClear: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "ab", "entry.json")); !os.IsNotExist(err) {
		t.Error("cache entry still present after clear")
	}
}

func TestChartsTable(t *testing.T) {
	out := chartsTable(catalog.Default())
	for _, id := range catalog.Default().IDs() {
		if !strings.Contains(out, id) {
			t.Errorf("charts table missing %s", id)
		}
	}
	if !strings.Contains(out, "subcategory") {
		t.Error("charts table missing modes")
	}
}

func TestDisplayURL(t *testing.T) {
	tests := map[string]string{
		":8080":          "http://localhost:8080",
		"127.0.0.1:9000": "http://127.0.0.1:9000",
	}
	for addr, want := range tests {
		if got := displayURL(addr); got != want {
			t.Errorf("displayURL(%q) = %q, want %q", addr, got, want)
		}
	}
}

func TestVerboseFlag(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"-v", "charts"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}
}

func TestCompletion(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"completion", "bash"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "crimescope") {
		t.Error("bash completion does not mention crimescope")
	}
}
