package cli

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/flowpane/flowpane/pkg/cache"
	"github.com/flowpane/flowpane/pkg/config"
	"github.com/flowpane/flowpane/pkg/errors"
	"github.com/flowpane/flowpane/pkg/flow"
	"github.com/flowpane/flowpane/pkg/host"
	"github.com/flowpane/flowpane/pkg/layout"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	config  string // config file path
	addr    string // listen address, overrides the config file
	editor  string // editor command for openTaskDefinition, empty logs instead
	noWatch bool   // disable the file watcher
}

// newServeCmd creates the serve command. It loads a DOT document, watches
// it for changes, and hosts attached views over WebSocket.
func newServeCmd() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve a flow document to attached views",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := ""
			if len(args) == 1 {
				doc = args[0]
			}
			return runServe(cmd.Context(), doc, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "config file (TOML)")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&opts.editor, "editor", "", "editor command for opening task definitions")
	cmd.Flags().BoolVar(&opts.noWatch, "no-watch", false, "do not watch the document for changes")

	return cmd
}

func runServe(ctx context.Context, doc string, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(opts.config)
	if err != nil {
		return err
	}
	if doc == "" {
		doc = cfg.Document
	}
	if doc == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "no document: pass a file or set document in the config")
	}
	addr := cfg.Server.Addr
	if opts.addr != "" {
		addr = opts.addr
	}

	store, err := cfg.Cache.Open(ctx)
	if err != nil {
		return err
	}
	engine := layout.NewCached(layout.NewGraphviz(), store, cache.NewDefaultKeyer())
	// Closing the engine closes the cache backend with it.
	defer engine.Close()

	var nav host.Navigator
	if opts.editor != "" {
		nav = &editorNavigator{editor: opts.editor, logger: logger}
	}

	h := host.New(doc, nav, logger)

	p := newProgress(logger)
	if err := h.Load(ctx); err != nil {
		return err
	}
	p.done(fmt.Sprintf("Loaded %s: %d tasks", doc, h.Registry().Len()))

	if !opts.noWatch {
		go func() {
			if err := h.Watch(ctx, cfg.Watch.Debounce()); err != nil && ctx.Err() == nil {
				logger.Error("watcher stopped", "err", err)
			}
		}()
	}

	return host.NewServer(h, engine).ListenAndServe(ctx, addr)
}

// editorNavigator opens task definitions in an external editor. The
// "+line file" form is understood by vi, vim, nano, and emacs.
type editorNavigator struct {
	editor string
	logger *log.Logger
}

func (n *editorNavigator) OpenDefinition(ctx context.Context, task flow.Task) error {
	cmd := exec.CommandContext(ctx, n.editor,
		fmt.Sprintf("+%d", task.Location.Line), task.Location.Path)
	if err := cmd.Start(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "launch %s", n.editor)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			n.logger.Warn("editor exited with error", "editor", n.editor, "err", err)
		}
	}()
	n.logger.Info("opened task definition", "task", task.Name, "line", task.Location.Line)
	return nil
}

func (n *editorNavigator) ShowDetails(ctx context.Context, task flow.Task) {
	n.logger.Info("task selected", "task", task.Name, "path", task.Location.Path, "line", task.Location.Line)
}

func (n *editorNavigator) NotFound(ctx context.Context, name string) {
	n.logger.Warn("task not in document", "task", name)
}
