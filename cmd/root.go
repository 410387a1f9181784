// Package cmd implements the sidediff command line.
package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var version = "dev"

// skipSetup marks commands that run without loading configuration.
const skipSetup = "skip-setup"

// newRootCmd builds the command tree with fresh state. The caller runs
// a.teardown once the command returns, whether or not it failed.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "sidediff",
		Short: "Side-by-side text diffs with intra-line highlighting",
		Long: `sidediff aligns two texts line by line and reports, for every aligned row,
what is on the left and right and how they differ within the line.

Results are written as JSON or YAML. The same engine is available as a
batch processor, a file watcher and an HTTP API.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipSetup] != "" {
				return nil
			}
			return a.setup()
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: .sidediff/config.yaml, then ~/.config/sidediff/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false,
		"enable debug logging (to $SIDEDIFF_LOG, or stderr)")

	root.AddCommand(
		newComputeCmd(a),
		newMethodsCmd(a),
		newWatchCmd(a),
		newBatchCmd(a),
		newServeCmd(a),
		newConfigInitCmd(a),
		newConfigDiffCmd(a),
		newConfigFlagCmd(a),
	)
	return root, a
}

// Execute runs the root command
func Execute() error {
	root, a := newRootCmd()
	err := root.Execute()
	return errors.Join(err, a.teardown())
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
}
