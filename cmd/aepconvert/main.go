package main

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/aeptools/aep/internal/adapters/factory"
	"github.com/aeptools/aep/internal/application"
	"github.com/aeptools/aep/internal/ports"

	// Add blank imports for all dialect adapter packages so their
	// init() functions run and register their decoder/encoder with
	// the factory.
	_ "github.com/aeptools/aep/internal/adapters/binary"
	_ "github.com/aeptools/aep/internal/adapters/json"
)

var (
	inputPath    string
	inputFormat  string
	outputPath   string
	outputFormat string
)

func main() {
	// --- Composition Root: Initialize Adapters and Core Logic ---
	registry := factory.NewRegistry()
	convertService := application.NewConvertService(registry)
	// --- End Composition Root ---

	var rootCmd = &cobra.Command{
		Use:   "aepconvert",
		Short: "Converts an AEP project between its x86, x64, and JSON dialects.",
		Long: `aepconvert reads an AEP project file in one dialect (x86 binary, x64
binary, or JSON) and writes it back out in another, losslessly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return fmt.Errorf("--input is required")
			}
			if outputPath == "" {
				return fmt.Errorf("--output is required")
			}
			if err := validateFormat(inputFormat); err != nil {
				return fmt.Errorf("--input-format: %w", err)
			}
			if err := validateFormat(outputFormat); err != nil {
				return fmt.Errorf("--output-format: %w", err)
			}

			s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			s.Prefix = fmt.Sprintf("Converting %s (%s -> %s)... ", inputPath, inputFormat, outputFormat)
			s.Start()

			err := convertService.Convert(inputPath, ports.Format(inputFormat), outputPath, ports.Format(outputFormat))
			s.Stop()
			if err != nil {
				return fmt.Errorf("conversion failed: %w", err)
			}

			fmt.Printf("Successfully converted %s (%s) to %s (%s)\n", inputPath, inputFormat, outputPath, outputFormat)
			return nil
		},
	}

	rootCmd.Flags().StringVar(&inputPath, "input", "", "Path to the input project file (required)")
	rootCmd.Flags().StringVar(&inputFormat, "input-format", "", "Input dialect: x86, x64, or json (required)")
	rootCmd.Flags().StringVar(&outputPath, "output", "", "Path to the output project file (required)")
	rootCmd.Flags().StringVar(&outputFormat, "output-format", "", "Output dialect: x86, x64, or json (required)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func validateFormat(f string) error {
	switch ports.Format(f) {
	case ports.FormatX86, ports.FormatX64, ports.FormatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported format %q (want x86, x64, or json)", f)
	}
}
