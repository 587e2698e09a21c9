package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "engine",
	Short:         "Adaptive practice and grading engine",
	Long:          "engine serves adaptive question selection over HTTP and runs grading and calibration jobs.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(gradeWrapperCmd)
	rootCmd.AddCommand(regradeCoreCmd)
	rootCmd.AddCommand(recalibrateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
