package commands

import (
	"github.com/asheraflow/ashera"
	"github.com/spf13/cobra"
)

var (
	rmCached bool
	rmForce  bool
)

var rmCmd = &cobra.Command{
	Use:   "rm <path>...",
	Short: "Remove files from the working tree and the index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		return r.Rm(ashera.RmOptions{Cached: rmCached, Force: rmForce}, args...)
	},
}

func init() {
	rmCmd.Flags().BoolVar(&rmCached, "cached", false, "remove from the index only")
	rmCmd.Flags().BoolVarP(&rmForce, "force", "f", false, "remove even if the path has unstaged changes")
	rootCmd.AddCommand(rmCmd)
}
