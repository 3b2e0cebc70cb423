package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crimescope/pkg/catalog"
	"github.com/matzehuels/crimescope/pkg/dataset"
	"github.com/matzehuels/crimescope/pkg/render"
)

type taxonomyOpts struct {
	output    string
	dot       bool
	highlight []string
	data      dataOverrides
}

// taxonomyCommand creates the taxonomy command, which draws the offence
// category → subcategory tree with graphviz.
func (c *CLI) taxonomyCommand() *cobra.Command {
	var opts taxonomyOpts

	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Draw the offence taxonomy as SVG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTaxonomy(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "taxonomy.svg", "output file")
	cmd.Flags().BoolVar(&opts.dot, "dot", false, "write graphviz DOT source instead of SVG")
	cmd.Flags().StringSliceVar(&opts.highlight, "highlight", nil, "subcategory to highlight (repeatable)")
	addDataFlags(cmd, &opts.data)

	return cmd
}

func (c *CLI) runTaxonomy(ctx context.Context, opts *taxonomyOpts) error {
	runner, cleanup, err := c.newRunner(ctx, opts.data, true)
	if err != nil {
		return err
	}
	defer cleanup()

	raw, err := runner.Loader.Fetch(ctx, catalog.ResQ1Map)
	if err != nil {
		return err
	}
	tax, err := dataset.DecodeTaxonomy(catalog.ResQ1Map, raw)
	if err != nil {
		return err
	}

	dot := render.TaxonomyDOT(tax, render.TaxonomyOptions{Highlight: opts.highlight})
	out := []byte(dot)
	if !opts.dot {
		if out, err = render.TaxonomySVG(ctx, dot); err != nil {
			return err
		}
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}

	printSuccess("Offence taxonomy: %d categories", len(tax.Parents()))
	printFile(opts.output)
	return nil
}
