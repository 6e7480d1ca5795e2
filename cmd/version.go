package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	programName = "Github Release Fetcher"
	version     = "1.1.0"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the grf version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", programName, version)
	},
}
