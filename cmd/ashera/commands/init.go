package commands

import (
	"fmt"
	"os"

	"github.com/asheraflow/ashera"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a new repository",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := ashera.Init(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "initialized repository at %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func openRepo() (*ashera.Repository, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return ashera.Open(wd)
}
