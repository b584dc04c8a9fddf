// Package commands implements the iterbench CLI.
package commands

import (
	"github.com/spf13/cobra"
)

// EnvPrefix is the prefix of environment variables that override config
// values, e.g. ITERBENCH_PREFETCH_DEPTH=16.
const EnvPrefix = "ITERBENCH_"

// NewRootCmd builds the command tree. A fresh tree per call keeps flag
// state out of package globals.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "iterbench",
		Short: "Drive a synthetic dataset through prefetch and split",
		Long: `iterbench builds a synthetic replayable dataset, prefetches it on a
background worker, optionally splits it into partitions sharing one cursor,
and drains every partition for a number of epochs. Each batch encodes its
position, so loss, duplication and reordering are detected.

Configuration is read from config.yml (see --config) and may be overridden
with ITERBENCH_<SECTION>_<KEY> environment variables or flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: search ./cmd/iterbench, ./config, .)")

	root.AddCommand(newRunCmd(&cfgFile))
	root.AddCommand(newVersionCmd())
	root.CompletionOptions.DisableDefaultCmd = true
	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}
