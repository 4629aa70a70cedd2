package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var branchDelete string

var branchCmd = &cobra.Command{
	Use:   "branch [<name> [<start-point>]]",
	Short: "List, create, or delete branches",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		if branchDelete != "" {
			return r.DeleteBranch(branchDelete)
		}
		if len(args) == 0 {
			branches, err := r.Branches()
			if err != nil {
				return err
			}
			for _, b := range branches {
				marker := "  "
				if b.Current {
					marker = "* "
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", marker, b.Name)
			}
			return nil
		}
		startPoint := ""
		if len(args) == 2 {
			startPoint = args[1]
		}
		return r.CreateBranch(args[0], startPoint)
	},
}

func init() {
	branchCmd.Flags().StringVarP(&branchDelete, "delete", "d", "", "delete a branch")
	rootCmd.AddCommand(branchCmd)
}
