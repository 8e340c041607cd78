package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "finsift",
	Short: "Financial document extraction and semantic search",
	Long: `Finsift ingests financial documents (invoices, pay stubs, bank
statements, IDs), recovers their text with OCR, classifies them,
extracts structured fields with confidence scores, and builds a
semantic index so the corpus can be searched in natural language.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".finsift.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
