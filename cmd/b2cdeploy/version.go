package main

import (
	"fmt"

	"github.com/reglet-dev/b2cdeploy/internal/version"
	"github.com/spf13/cobra"
)

// versionCmd implements the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of b2cdeploy",
	Run: func(cmd *cobra.Command, _ []string) {
		info := version.Get()
		fmt.Fprintf(cmd.OutOrStdout(), "b2cdeploy version %s\n", info.Full())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
