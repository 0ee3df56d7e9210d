package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

// version is overridden at build time with -ldflags "-X ...cmd.version=..."
var version = "v0.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of satonic-admin",
	Run: func(cmd *cobra.Command, args []string) {
		printf(cmd, "satonic-admin %s\n", version)
	},
}
