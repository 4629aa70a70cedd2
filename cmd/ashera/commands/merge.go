package commands

import (
	"errors"
	"fmt"

	"github.com/asheraflow/ashera/plumbing"
	"github.com/spf13/cobra"
)

var (
	mergeContinue bool
	mergeAbort    bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge [<committish>]",
	Short: "Join two branch histories",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		switch {
		case mergeContinue:
			c, err := r.MergeContinue()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", c.Hash)
			return nil
		case mergeAbort:
			return r.MergeAbort()
		}
		if len(args) != 1 {
			return fmt.Errorf("merge: a committish is required")
		}
		c, conflict, err := r.Merge(args[0])
		if errors.Is(err, plumbing.ErrAlreadyUpToDate) {
			fmt.Fprintln(cmd.OutOrStdout(), "Already up to date.")
			return nil
		}
		if conflict {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", c.Hash)
		return nil
	},
}

func init() {
	mergeCmd.Flags().BoolVar(&mergeContinue, "continue", false, "complete a merge after resolving conflicts")
	mergeCmd.Flags().BoolVar(&mergeAbort, "abort", false, "abandon an in-progress merge")
	rootCmd.AddCommand(mergeCmd)
}
