// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/manufacturer-finder/internal/export"
	"github.com/pdiddy/manufacturer-finder/internal/finder"
	"github.com/pdiddy/manufacturer-finder/internal/httputil"
	"github.com/pdiddy/manufacturer-finder/internal/loader"
	"github.com/pdiddy/manufacturer-finder/internal/metrics"
	"github.com/pdiddy/manufacturer-finder/internal/report"
	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

const cliFrontend = "cli"

var analyzeCmd = &cobra.Command{
	Use:   "analyze <spreadsheet>",
	Short: "Analyze every part in a spreadsheet and write the results workbook",
	Long: `Analyze loads parts from an .xlsx spreadsheet, asks the completion service
for credible manufacturers of each part, and writes a workbook with a
"Detailed Analysis" sheet and a "Summary" sheet.

Columns are matched by name (MPN / part number, model / description /
product, quantity / qty / amount). Parts are analyzed one at a time; a
failed part is recorded in the output and never stops the run.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd, aiFlags); err != nil {
			return err
		}
		return bindFlags(cmd, map[string]string{
			"max-manufacturers": keyMaxManufacturers,
			"sheet":             keySheet,
			"delay":             keyDelay,
			"timeout":           keyCallTimeout,
			"output-dir":        keyOutputDir,
		})
	},
	RunE: runAnalyze,
}

func init() {
	addAIFlags(analyzeCmd)
	analyzeCmd.Flags().StringP("output", "o", "", "output workbook path (default: manufacturer_analysis_<timestamp>.xlsx)")
	analyzeCmd.Flags().String("output-dir", ".", "directory for the auto-named output workbook")
	analyzeCmd.Flags().IntP("max-manufacturers", "m", 5, "maximum manufacturers to find per part")
	analyzeCmd.Flags().String("sheet", "", "worksheet to read (default: first sheet)")
	analyzeCmd.Flags().Duration("delay", types.DefaultFinderConfig().Delay, "fixed delay between service calls")
	analyzeCmd.Flags().Duration("timeout", types.DefaultFinderConfig().CallTimeout, "timeout for a single service call")
	analyzeCmd.Flags().String("summary-format", report.FormatTable, "summary output: table, yaml or json")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) (err error) {
	defer func() { metrics.RecordRun(cliFrontend, err) }()

	format, _ := cmd.Flags().GetString("summary-format")
	if format != report.FormatTable && format != report.FormatYAML && format != report.FormatJSON {
		return fmt.Errorf("unknown summary format %q: use table, yaml or json", format)
	}
	output, _ := cmd.Flags().GetString("output")

	cfg := loadConfig()
	if cfg.Finder.MaxManufacturers < 1 {
		return fmt.Errorf("--max-manufacturers must be at least 1, got %d", cfg.Finder.MaxManufacturers)
	}
	if err := resolveAPIKey(&cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	parts, err := loader.New(cfg.Loader, logger).Load(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Loaded %d parts from %s\n", len(parts), args[0])

	backend, err := finder.NewBackend(ctx, cfg.AI, httputil.NewClient(cfg.AI.HTTPConfig))
	if err != nil {
		return err
	}
	f, err := finder.New(backend, cfg.Finder, logger)
	if err != nil {
		return err
	}

	outcomes := f.AnalyzeAll(ctx, parts, cfg.Finder.MaxManufacturers, progressPrinter(os.Stderr))
	analyzed := finder.Parts(outcomes)

	path, err := export.New(cfg.Export, logger).Export(analyzed, output)
	if err != nil {
		return fmt.Errorf("exporting results: %w", err)
	}
	logger.Info("run complete", zap.String("output", path), zap.Int("parts", len(analyzed)))

	if err := report.Write(os.Stdout, report.Summarize(analyzed), format); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\nResults saved to: %s\n", path)
	return nil
}

// progressPrinter reports one line per analyzed part.
func progressPrinter(w io.Writer) finder.ProgressFunc {
	return func(done, total int, o finder.Outcome) {
		status := "ok"
		if !o.OK() {
			status = "FAILED: " + o.Err.Error()
		}
		fmt.Fprintf(w, "[%d/%d] %s -> %s (%s)\n",
			done, total, o.Request.PartNumber, o.Result.TopManufacturer, status)
	}
}
