package cmd

import (
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the quiv version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		logPlain("quiv %s", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
