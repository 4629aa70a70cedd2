package commands

import (
	"github.com/spf13/cobra"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout <ref> [-- <path>...]",
	Short: "Switch branches/commits, or restore working-tree files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		dashIdx := cmd.ArgsLenAtDash()
		if dashIdx == 0 {
			return r.CheckoutPaths(args...)
		}
		if dashIdx > 0 {
			return r.CheckoutPaths(args[dashIdx:]...)
		}
		return r.Checkout(args[0])
	},
}

func init() {
	rootCmd.AddCommand(checkoutCmd)
}
