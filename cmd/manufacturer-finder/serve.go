// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/manufacturer-finder/internal/dashboard"
	"github.com/pdiddy/manufacturer-finder/internal/finder"
	"github.com/pdiddy/manufacturer-finder/internal/httputil"
	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the browser dashboard",
	Long: `Serve starts the dashboard: upload a spreadsheet, watch progress, filter
and search the results, view summary analytics and download the workbook.

An API key configured for the CLI becomes the dashboard default; users can
also supply one with each upload.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd, aiFlags); err != nil {
			return err
		}
		return bindFlags(cmd, map[string]string{
			"host":  keyDashboardHost,
			"port":  keyDashboardPort,
			"delay": keyDelay,
		})
	},
	RunE: runServe,
}

func init() {
	addAIFlags(serveCmd)
	serveCmd.Flags().String("host", "localhost", "listen host")
	serveCmd.Flags().Int("port", 8501, "listen port")
	serveCmd.Flags().Duration("delay", types.DefaultFinderConfig().Delay, "fixed delay between service calls")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if err := optionalAPIKey(&cfg); err != nil {
		return err
	}

	client := httputil.NewClient(cfg.AI.HTTPConfig)
	factory := func(ctx context.Context, apiKey string) (finder.Backend, error) {
		ai := cfg.AI
		ai.APIKey = apiKey
		return finder.NewBackend(ctx, ai, client)
	}

	srv, err := dashboard.NewServer(cfg, factory, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("dashboard shutdown", zap.Error(err))
		return err
	}
	return nil
}
