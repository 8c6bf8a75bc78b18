// Package cli implements the rigview command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the build information shown by --version. main passes
// values injected with ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the rigview command tree.
func NewRootCommand() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:   "rigview",
		Short: "Inspect, pick and render PMD skeletons",
		Long: `rigview loads a PMD model or a JSON joint list, builds its bone
hierarchy with forward kinematics, and lets you inspect bones, pick them
with rays, render previews and explore the pose interactively.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			logger := newLogger(cmd.ErrOrStderr(), level)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, logger))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("rigview %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("RIGVIEW_CONFIG"), "TOML config file")

	root.AddCommand(newInfoCmd(&configPath))
	root.AddCommand(newPickCmd(&configPath))
	root.AddCommand(newRenderCmd(&configPath))
	root.AddCommand(newTreeCmd(&configPath))
	root.AddCommand(newExploreCmd(&configPath))

	return root
}
