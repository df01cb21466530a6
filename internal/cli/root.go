package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/flowpane/flowpane/pkg/buildinfo"
)

// Execute runs the flowpane CLI and returns an error if any command fails.
//
// The function sets up the root command with all subcommands (serve, view,
// render, cache), configures logging based on the --verbose flag, and
// executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "flowpane",
		Short:        "Flowpane serves interactive flow-graph views",
		Long:         `Flowpane hosts a DOT flow document for interactive viewing: it watches the file for changes, pushes updates to attached views, and answers their navigation requests.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newServeCmd())
	root.AddCommand(newViewCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newCacheCmd())

	return root.ExecuteContext(ctx)
}
