package main

import (
	"github.com/spf13/cobra"
)

var sortCmd = &cobra.Command{
	Use:   "sort",
	Short: "Re-run the rank-sort pass on the existing log",
	Long:  "Load every persisted record, stable-sort by score descending, and rewrite the log atomically.",
	RunE:  runSort,
}

func init() {
	rootCmd.AddCommand(sortCmd)
}

func runSort(_ *cobra.Command, _ []string) error {
	application, err := buildApp()
	if err != nil {
		return err
	}
	return application.SortLog()
}
