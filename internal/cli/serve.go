package cli

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/crimescope/pkg/config"
	"github.com/matzehuels/crimescope/pkg/dataset"
	"github.com/matzehuels/crimescope/pkg/server"
)

type serveOpts struct {
	addr    string
	watch   bool
	noCache bool
	data    dataOverrides
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve chart pages and artifacts over HTTP",
		Long: `Serve renders charts on request. Pages live at /q1 ... /q10, artifacts at
/charts/{id}.svg|.json|.xlsx and raw datasets at /datasets/{name}.

With --watch, edits to files in the data directory invalidate the
memoized datasets so the next request sees them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				opts.addr = c.cfg.Server.Addr
			}
			if !cmd.Flags().Changed("watch") {
				opts.watch = c.cfg.Server.Watch
			}
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload datasets when files in the data directory change")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	addDataFlags(cmd, &opts.data)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	runner, cleanup, err := c.newRunner(ctx, opts.data, opts.noCache)
	if err != nil {
		return err
	}
	defer cleanup()

	installLogHooks(c.Logger)

	srv := server.New(runner,
		server.WithLogger(c.Logger),
		server.WithSize(c.cfg.Render.Width, c.cfg.Render.Height))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx, opts.addr)
	})

	if opts.watch {
		dir := c.cfg.Data.Dir
		if opts.data.dir != "" {
			dir = opts.data.dir
		}
		if runner.Loader.Source().Name() != "file" {
			printWarning("--watch needs a file source; %s data is not watched", runner.Loader.Source().Name())
		} else {
			g.Go(func() error {
				return dataset.Watch(ctx, dir, runner.Loader, loggerFromContext(ctx))
			})
			printDetail("Watching %s", dir)
		}
	}

	printSuccess("Serving %d charts on %s", len(runner.Catalog.IDs()), StyleLink.Render(displayURL(opts.addr)))
	printKeyValue("source", runner.Loader.Source().Name())
	printKeyValue("cache", cacheLabel(c.cfg.Cache.Backend, opts.noCache))
	return g.Wait()
}

func cacheLabel(backend string, noCache bool) string {
	switch {
	case noCache:
		return config.BackendNone
	case backend == "":
		return config.BackendFile
	}
	return backend
}

// displayURL turns a listen address into a clickable URL.
func displayURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
