package commands

import (
	"fmt"

	"github.com/asheraflow/ashera"
	"github.com/spf13/cobra"
)

var (
	resetSoft  bool
	resetHard  bool
	resetMixed bool
)

var resetCmd = &cobra.Command{
	Use:   "reset [<committish>] [-- <path>...]",
	Short: "Move HEAD, and optionally the index and working tree, to a commit",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}

		dashIdx := cmd.ArgsLenAtDash()
		if dashIdx >= 0 {
			target := "HEAD"
			if dashIdx > 0 {
				target = args[0]
			}
			return r.ResetPaths(target, args[dashIdx:]...)
		}

		target := "HEAD"
		if len(args) > 0 {
			target = args[0]
		}

		mode := ashera.ResetMixed
		switch {
		case resetSoft:
			mode = ashera.ResetSoft
		case resetHard:
			mode = ashera.ResetHard
		case resetMixed:
			mode = ashera.ResetMixed
		}
		if resetSoft && resetHard {
			return fmt.Errorf("reset: --soft and --hard are mutually exclusive")
		}
		return r.Reset(target, mode)
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetSoft, "soft", false, "move HEAD only")
	resetCmd.Flags().BoolVar(&resetMixed, "mixed", false, "move HEAD and reset the index (default)")
	resetCmd.Flags().BoolVar(&resetHard, "hard", false, "move HEAD, reset the index, and overwrite the working tree")
	rootCmd.AddCommand(resetCmd)
}
