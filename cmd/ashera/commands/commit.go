package commands

import (
	"fmt"

	"github.com/asheraflow/ashera"
	"github.com/spf13/cobra"
)

var (
	commitMessage string
	commitAmend   bool
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Record staged changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		if commitAmend {
			h, err := r.Amend(ashera.AmendOptions{Message: commitMessage})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", h)
			return nil
		}
		if commitMessage == "" {
			return fmt.Errorf("commit: -m is required")
		}
		h, err := r.Commit(commitMessage)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", h)
		return nil
	},
}

func init() {
	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit message")
	commitCmd.Flags().BoolVar(&commitAmend, "amend", false, "replace HEAD instead of creating a new commit")
	rootCmd.AddCommand(commitCmd)
}
