package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use: "doc-scanner",
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(migrateCmd)
}
