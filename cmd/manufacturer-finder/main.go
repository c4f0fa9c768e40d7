// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the manufacturer-finder CLI.
// Subcommands cover batch spreadsheet analysis, single-part lookups and the
// browser dashboard.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/manufacturer-finder/internal/logging"
	"github.com/pdiddy/manufacturer-finder/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is built from configuration before any subcommand runs.
var logger = zap.NewNop()

// rootCmd is the base command for the manufacturer-finder CLI.
var rootCmd = &cobra.Command{
	Use:   "manufacturer-finder",
	Short: "Find credible manufacturers for the parts in a spreadsheet",
	Long: `manufacturer-finder reads a spreadsheet of parts (part number, description,
quantity), asks a language model service for the most credible manufacturers
of each part, and writes a styled two-sheet workbook with the results.

Use analyze for a spreadsheet, analyze-part for a single part, and serve for
the browser dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secrets.DefaultDir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}

		l, err := logging.New(logConfig())
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./manufacturer-finder.yaml or ~/.config/manufacturer-finder/manufacturer-finder.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log encoding: json or console")
	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this file")

	_ = viper.BindPFlag(keyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(keyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag(keyLogFile, rootCmd.PersistentFlags().Lookup("log-file"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("manufacturer-finder")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "manufacturer-finder"))
		}
	}

	viper.SetEnvPrefix("MANUFACTURER_FINDER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
