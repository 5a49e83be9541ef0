// Package cmd provides CLI commands for the edge diagnostics tool.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Show the tool version, build time, git commit, Go version and platform.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(GetVersionInfo())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
