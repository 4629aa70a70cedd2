package commands

import (
	"fmt"

	"github.com/asheraflow/ashera"
	"github.com/spf13/cobra"
)

var (
	logMaxCount int
	logOneline  bool
	logDecorate bool
	logPretty   string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show commit history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		lines, err := r.Log(ashera.LogOptions{
			MaxCount: logMaxCount,
			Oneline:  logOneline,
			Decorate: logDecorate,
			Pretty:   logPretty,
		})
		if err != nil {
			return err
		}
		for _, l := range lines {
			fmt.Fprintln(cmd.OutOrStdout(), l)
		}
		return nil
	},
}

func init() {
	logCmd.Flags().IntVarP(&logMaxCount, "max-count", "n", 0, "limit the number of commits shown")
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "one line per commit")
	logCmd.Flags().BoolVar(&logDecorate, "decorate", false, "annotate commits with the branches that point at them")
	logCmd.Flags().StringVar(&logPretty, "pretty", "", "custom format string")
	rootCmd.AddCommand(logCmd)
}
