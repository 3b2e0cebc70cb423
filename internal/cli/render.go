package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crimescope/pkg/catalog"
	"github.com/matzehuels/crimescope/pkg/pipeline"
	"github.com/matzehuels/crimescope/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string   // output file (one format) or base path (several)
	formats   string   // comma-separated: svg, json, xlsx
	mode      string   // chart mode
	keys      []string // active series keys
	groups    []string // taxonomy parents to switch on
	filter    string   // filter value, e.g. a technology
	focus     string   // drill-down target
	breakdown bool     // breakdown toggle
	width     float64  // chart width in pixels
	height    float64  // chart height in pixels
	noCache   bool     // bypass the artifact cache
	data      dataOverrides
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <chart>",
		Short: "Render a chart to SVG, JSON or XLSX",
		Long: `Render computes a chart from its datasets and writes one file per format.

Examples:
  crimescope render q1 --mode subcategory --group theft
  crimescope render q4 --focus theft -f svg,xlsx -o out/conviction
  crimescope render q10 --filter theft --breakdown -f json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeChartIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "svg", "output format(s): svg, json, xlsx (comma-separated)")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "chart mode (default: the chart's first mode)")
	cmd.Flags().StringSliceVar(&opts.keys, "key", nil, "active series key (repeatable)")
	cmd.Flags().StringSliceVar(&opts.groups, "group", nil, "taxonomy group to switch on (repeatable)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "filter value")
	cmd.Flags().StringVar(&opts.focus, "focus", "", "drill-down focus")
	cmd.Flags().BoolVar(&opts.breakdown, "breakdown", false, "show the breakdown view")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "chart width (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "chart height (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	addDataFlags(cmd, &opts.data)

	return cmd
}

// addDataFlags registers --data and --data-url.
func addDataFlags(cmd *cobra.Command, d *dataOverrides) {
	cmd.Flags().StringVar(&d.dir, "data", "", "dataset directory (overrides config)")
	cmd.Flags().StringVar(&d.url, "data-url", "", "dataset base URL (overrides config)")
}

func (c *CLI) runRender(ctx context.Context, chartID string, opts *renderOpts) error {
	runner, cleanup, err := c.newRunner(ctx, opts.data, opts.noCache)
	if err != nil {
		return err
	}
	defer cleanup()

	popts := pipeline.Options{
		Chart:     chartID,
		Mode:      opts.mode,
		Keys:      opts.keys,
		Groups:    opts.groups,
		Filter:    opts.filter,
		Focus:     opts.focus,
		Breakdown: opts.breakdown,
		Formats:   strings.Split(opts.formats, ","),
		Width:     firstPositive(opts.width, c.cfg.Render.Width),
		Height:    firstPositive(opts.height, c.cfg.Render.Height),
		NoCache:   opts.noCache,
		Logger:    c.Logger,
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Rendering "+chartID+"...")
	spinner.Start()
	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, popts)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Render %s failed", chartID))
		return err
	}
	spinner.Stop()

	formats := popts.RenderFormats()
	paths := outputPaths(opts.output, chartID, formats)
	for _, f := range formats {
		if err := writeArtifact(paths[f], res.Artifacts[f]); err != nil {
			return err
		}
	}
	prog.done("Rendered " + chartID)

	printSuccess("%s: %s", res.Chart.ID, res.Chart.Title)
	printStats(res.Stats.Resources, res.Stats.Marks, res.CacheInfo.RenderHit)
	for _, f := range formats {
		printFile(paths[f])
	}
	return nil
}

func firstPositive(vs ...float64) float64 {
	for _, v := range vs {
		if v > 0 {
			return v
		}
	}
	return 0
}

// outputPaths maps each format to its output file. A single format writes
// to output as given; several formats share output as a base path with the
// format extension appended. An empty output uses the chart ID.
func outputPaths(output, chartID string, formats []render.Format) map[render.Format]string {
	paths := make(map[render.Format]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, chartID)
	for _, f := range formats {
		paths[f] = base + "." + string(f)
	}
	return paths
}

// basePath strips a known format extension from output, falling back to
// fallback when output is empty.
func basePath(output, fallback string) string {
	if output == "" {
		return fallback
	}
	ext := strings.ToLower(filepath.Ext(output))
	switch render.Format(strings.TrimPrefix(ext, ".")) {
	case render.FormatSVG, render.FormatJSON, render.FormatXLSX:
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	return output
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// completeChartIDs completes the chart argument from the catalog.
func completeChartIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, d := range catalog.Default().List() {
		out = append(out, d.ID+"\t"+d.Title)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
