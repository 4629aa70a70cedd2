package commands

import (
	"fmt"

	"github.com/asheraflow/ashera/opstate"
	"github.com/spf13/cobra"
)

var (
	revertContinue bool
	revertAbort    bool
)

var revertCmd = &cobra.Command{
	Use:   "revert <committish>",
	Short: "Apply the inverse of a commit",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		switch {
		case revertContinue:
			c, err := r.SequenceContinue(opstate.Revert)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", c.Hash)
			return nil
		case revertAbort:
			return r.SequenceAbort(opstate.Revert)
		}
		if len(args) != 1 {
			return fmt.Errorf("revert: a committish is required")
		}
		c, conflict, err := r.Revert(args[0])
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
	revertCmd.Flags().BoolVar(&revertContinue, "continue", false, "complete a revert after resolving conflicts")
	revertCmd.Flags().BoolVar(&revertAbort, "abort", false, "abandon an in-progress revert")
	rootCmd.AddCommand(revertCmd)
}
