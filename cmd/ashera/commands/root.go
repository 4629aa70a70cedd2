// Package commands wires cobra subcommands onto the ashera package's
// Repository methods, one file per verb group, grounded on
// jra3-linear-fuse's cmd/linear-fuse root/subcommand layout.
package commands

import (
	"github.com/asheraflow/ashera/internal/vcslog"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "ashera",
	Short: "A content-addressable version control engine",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cobra.OnInitialize(func() {
		level := vcslog.InfoLevel
		if verbose {
			level = vcslog.DebugLevel
		}
		vcslog.Init(vcslog.Config{Level: level})
	})
}
