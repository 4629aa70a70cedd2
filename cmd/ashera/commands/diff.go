package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var diffCached bool

var diffCmd = &cobra.Command{
	Use:   "diff [path]...",
	Short: "Show changes between commits, the index, and the working tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		out, err := r.Diff(diffCached, args...)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	diffCmd.Flags().BoolVar(&diffCached, "cached", false, "compare the index against HEAD instead of the working tree")
	rootCmd.AddCommand(diffCmd)
}
