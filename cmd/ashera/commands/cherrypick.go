package commands

import (
	"fmt"

	"github.com/asheraflow/ashera/opstate"
	"github.com/spf13/cobra"
)

var (
	cherryPickContinue bool
	cherryPickAbort    bool
)

var cherryPickCmd = &cobra.Command{
	Use:   "cherry-pick <committish>",
	Short: "Apply the changes of an existing commit",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		switch {
		case cherryPickContinue:
			c, err := r.SequenceContinue(opstate.CherryPick)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", c.Hash)
			return nil
		case cherryPickAbort:
			return r.SequenceAbort(opstate.CherryPick)
		}
		if len(args) != 1 {
			return fmt.Errorf("cherry-pick: a committish is required")
		}
		c, conflict, err := r.CherryPick(args[0])
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
	cherryPickCmd.Flags().BoolVar(&cherryPickContinue, "continue", false, "complete a cherry-pick after resolving conflicts")
	cherryPickCmd.Flags().BoolVar(&cherryPickAbort, "abort", false, "abandon an in-progress cherry-pick")
	rootCmd.AddCommand(cherryPickCmd)
}
