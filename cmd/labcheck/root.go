package main

import (
	"github.com/spf13/cobra"

	"github.com/medextract/labcheck/version"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "labcheck",
	Short: "Validation pipeline for VLM-extracted lab reports",
	Long: `Labcheck validates and normalizes the JSON a vision-language model
produces when reading a lab report image.

The pipeline includes:
  - Patient metadata validation (gender, dates, age cross-checks)
  - Deterministic normal/abnormal recomputation against reference ranges
  - Column-misalignment detection on extracted table rows
  - Placeholder cleanup and duplicate test merging across pages
  - Correction-prompt generation for failed extractions`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./labcheck.yaml or ~/.labcheck/labcheck.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "json", "output format: json or yaml",
	)

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}
