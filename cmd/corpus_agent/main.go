// Package main provides the entry point for the corpus insights CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "corpus_agent",
	Short: "Corpus Insights pipeline",
	Long:  "Corpus Insights stages a public article corpus, runs a managed topic-modelling job over it, and produces per-article summaries via a hosted LLM.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
