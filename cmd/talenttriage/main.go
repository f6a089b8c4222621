// Package main provides the entry point for the TalentTriage CLI: the intake
// server, the pipeline workers, and operational helpers.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "talenttriage",
	Short: "Resume triage pipeline",
	Long:  "TalentTriage ingests resumes, extracts and embeds their content, and scores candidates against job descriptions.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
