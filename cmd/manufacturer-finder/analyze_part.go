// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/manufacturer-finder/internal/finder"
	"github.com/pdiddy/manufacturer-finder/internal/httputil"
	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

var analyzePartCmd = &cobra.Command{
	Use:   "analyze-part",
	Short: "Find credible manufacturers for a single part",
	Long: `Analyze-part sends one part to the completion service and prints the
structured result. No spreadsheet is read or written.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd, aiFlags); err != nil {
			return err
		}
		return bindFlags(cmd, map[string]string{
			"max-manufacturers": keyMaxManufacturers,
			"timeout":           keyCallTimeout,
		})
	},
	RunE: runAnalyzePart,
}

func init() {
	addAIFlags(analyzePartCmd)
	analyzePartCmd.Flags().String("mpn", "", "manufacturing part number (required)")
	analyzePartCmd.Flags().String("description", "", "model or product description (required)")
	analyzePartCmd.Flags().Int("quantity", 1, "quantity required")
	analyzePartCmd.Flags().IntP("max-manufacturers", "m", 5, "maximum manufacturers to find")
	analyzePartCmd.Flags().Duration("timeout", types.DefaultFinderConfig().CallTimeout, "timeout for the service call")
	analyzePartCmd.Flags().String("format", "yaml", "output format: yaml or json")
	_ = analyzePartCmd.MarkFlagRequired("mpn")
	_ = analyzePartCmd.MarkFlagRequired("description")

	rootCmd.AddCommand(analyzePartCmd)
}

func runAnalyzePart(cmd *cobra.Command, args []string) error {
	mpn, _ := cmd.Flags().GetString("mpn")
	description, _ := cmd.Flags().GetString("description")
	quantity, _ := cmd.Flags().GetInt("quantity")
	format, _ := cmd.Flags().GetString("format")
	if format != "yaml" && format != "json" {
		return fmt.Errorf("unknown format %q: use yaml or json", format)
	}

	cfg := loadConfig()
	if err := resolveAPIKey(&cfg); err != nil {
		return err
	}

	ctx := context.Background()
	backend, err := finder.NewBackend(ctx, cfg.AI, httputil.NewClient(cfg.AI.HTTPConfig))
	if err != nil {
		return err
	}
	f, err := finder.New(backend, cfg.Finder, logger)
	if err != nil {
		return err
	}

	result, err := f.AnalyzeSinglePart(ctx, mpn, description, quantity)
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", mpn, err)
	}
	return writeResult(os.Stdout, result, format)
}

func writeResult(w io.Writer, result types.AnalysisResult, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}
