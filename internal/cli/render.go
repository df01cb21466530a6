package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/flowpane/flowpane/pkg/cache"
	"github.com/flowpane/flowpane/pkg/config"
	"github.com/flowpane/flowpane/pkg/errors"
	"github.com/flowpane/flowpane/pkg/layout"
	"github.com/flowpane/flowpane/pkg/observability"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output string // output file path, derived from the input when empty
	config string // config file path, selects the cache backend
}

// newRenderCmd creates the render command for one-shot SVG generation.
func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Lay out a flow document and write the SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (defaults to input with .svg)")
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "config file (TOML)")

	return cmd
}

// cacheCounter counts hits through the observability hooks so the command
// can report whether the layout came from the cache.
type cacheCounter struct {
	observability.NoopCacheHooks
	hits atomic.Int64
}

func (c *cacheCounter) OnCacheHit(ctx context.Context, key string) {
	c.hits.Add(1)
}

func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	data, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", input)
	}

	cfg, err := config.Load(opts.config)
	if err != nil {
		return err
	}
	store, err := cfg.Cache.Open(ctx)
	if err != nil {
		return err
	}

	counter := &cacheCounter{}
	observability.SetCacheHooks(counter)
	defer observability.Reset()

	engine := layout.NewCached(layout.NewGraphviz(), store, cache.NewDefaultKeyer())
	// Closing the engine closes the cache backend with it.
	defer engine.Close()

	p := newProgress(logger)
	result, err := engine.Layout(ctx, string(data))
	if err != nil {
		printError("render failed: %s", errors.UserMessage(err))
		return err
	}
	p.done("Layout computed")

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".svg"
	}
	if err := os.WriteFile(output, result.SVG, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", output)
	}

	printSuccess("Rendered %s", input)
	printFile(output)
	printStats(len(result.Nodes), counter.hits.Load() > 0)
	return nil
}
