// Package main provides the entry point for the ddscanner CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ddscanner/internal/app"
	"ddscanner/internal/config"
	"ddscanner/internal/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ddscanner",
	Short: "Reddit due-diligence signal scanner",
	Long:  "ddscanner sweeps subreddit feeds, scores posts with a heuristic rule table, enriches qualifying ones through a local model, and keeps a rank-ordered signal log.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
}

// buildApp loads and validates configuration, then wires the application.
// Configuration problems are fatal before any sweep begins.
func buildApp() (*app.Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, logging.New(cfg.Logging.Level)), nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
