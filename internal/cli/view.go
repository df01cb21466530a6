package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/flowpane/flowpane/pkg/layout"
	"github.com/flowpane/flowpane/pkg/msg/wschan"
	"github.com/flowpane/flowpane/pkg/view"
)

// viewOpts holds the command-line flags for the view command.
type viewOpts struct {
	url string // host WebSocket endpoint
}

// newViewCmd creates the view command. It attaches an interactive
// terminal view to a running host.
func newViewCmd() *cobra.Command {
	var opts viewOpts

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Attach an interactive terminal view to a running host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "ws://127.0.0.1:7878/ws", "host WebSocket endpoint")

	return cmd
}

func runView(ctx context.Context, opts *viewOpts) error {
	logger := loggerFromContext(ctx)

	conn, err := wschan.Dial(ctx, opts.url, logger)
	if err != nil {
		return err
	}
	defer conn.Close()
	logger.Debug("connected", "url", opts.url)

	v := view.New(layout.NewGraphviz(), conn, logger)

	program := tea.NewProgram(newFlowModel(v), tea.WithAltScreen(), tea.WithContext(ctx))
	v.SetOnRender(func() {
		program.Send(renderedMsg{})
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan error, 1)
	go func() {
		err := v.Run(runCtx)
		loopDone <- err
		// The host going away ends the TUI too.
		program.Send(disconnectedMsg{})
	}()

	_, err = program.Run()
	cancel()
	conn.Close()
	<-loopDone

	// A SIGINT/SIGTERM shutdown is a clean exit, not a TUI failure.
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
