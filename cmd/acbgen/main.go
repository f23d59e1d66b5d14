// Package main provides the CLI entry point for acbgen.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/giangph58/Automated-ACB/generator"
)

var (
	templatePath    string
	iconDir         string
	outputDir       string
	sheet           string
	continueOnError bool
	verbose         bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "acbgen [forecast.xlsx]",
		Short: "Generate per-district forecast decks from a weekly forecast spreadsheet",
		Long: `acbgen reads a weekly weather-forecast spreadsheet and writes one
PowerPoint deck per forecast location, each with the ten-day table,
weather icons, district header, and forecast period filled in.`,
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	rootCmd.Flags().StringVarP(&templatePath, "template", "t", "data/input/template.pptx", "Presentation template to populate")
	rootCmd.Flags().StringVarP(&iconDir, "icons", "i", "data/input/images", "Directory holding the weather icon images")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "data/output", "Directory the decks are written into")
	rootCmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet name (default: first sheet)")
	rootCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Keep generating remaining locations after one fails")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}
	if _, err := os.Stat(templatePath); os.IsNotExist(err) {
		return fmt.Errorf("template not found: %s", templatePath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	gen := generator.New(generator.Options{
		Sheet:           sheet,
		ContinueOnError: continueOnError,
		Logger:          logger,
	})

	paths, err := gen.Generate(cmd.Context(), inputPath, outputDir, templatePath, iconDir)
	for _, p := range paths {
		fmt.Println(p)
	}
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	return nil
}
