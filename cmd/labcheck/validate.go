package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/medextract/labcheck/internal/config"
	"github.com/medextract/labcheck/internal/pipeline"
	"github.com/medextract/labcheck/internal/types"
)

var (
	includeReport bool
	strictExit    bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a raw extraction JSON payload",
	Long: `Validate reads a raw VLM extraction (from a file, or stdin when no
file is given), runs the full validation pipeline, and prints the
cleaned record. Markdown code fences and surrounding prose around the
JSON are tolerated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := readInput(args)
		if err != nil {
			return err
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		pipe := pipeline.New(cfg, logger)

		record, report, err := pipe.ProcessJSON(string(input))
		if err != nil {
			return fmt.Errorf("failed to process extraction: %w", err)
		}

		if includeReport {
			err = writeOutput(cmd.OutOrStdout(), struct {
				Record types.ExtractionRecord  `json:"record" yaml:"record"`
				Report *types.ValidationReport `json:"report" yaml:"report"`
			}{record, report})
		} else {
			err = writeOutput(cmd.OutOrStdout(), record)
		}
		if err != nil {
			return err
		}

		if strictExit && !report.IsValid {
			return fmt.Errorf("extraction is invalid: %s", report.Reason)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&includeReport, "report", false, "include the validation report in the output")
	validateCmd.Flags().BoolVar(&strictExit, "strict", false, "exit non-zero when the extraction fails validation")
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return data, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return data, nil
}

func writeOutput(w io.Writer, data any) error {
	switch outputFormat {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
}
