// Package cli holds the reminor command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "reminor",
	Short: "Journal memory and retrieval engine",
	Long:  "Reminor stores dated journal entries as plain text files and keeps entity, keyword and semantic indexes over them, so past days can be recalled by name, topic or time.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statsCmd)
}
