// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/manufacturer-finder/internal/httputil"
	"github.com/pdiddy/manufacturer-finder/internal/secrets"
	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

// Configuration keys. Each maps to a YAML path in manufacturer-finder.yaml
// and to MANUFACTURER_FINDER_<KEY> with dots replaced by underscores.
const (
	keyProvider         = "ai.provider"
	keyModel            = "ai.model"
	keyAPIKey           = "ai.api_key"
	keyBaseURL          = "ai.base_url"
	keyHTTPTimeout      = "ai.timeout"
	keyUserAgent        = "ai.user_agent"
	keySheet            = "loader.sheet"
	keyMaxManufacturers = "finder.max_manufacturers"
	keyDelay            = "finder.delay"
	keyCallTimeout      = "finder.call_timeout"
	keyTemperature      = "finder.temperature"
	keyMaxTokens        = "finder.max_tokens"
	keyOutputDir        = "export.output_dir"
	keyDashboardHost    = "dashboard.host"
	keyDashboardPort    = "dashboard.port"
	keyMaxUpload        = "dashboard.max_upload_bytes"
	keyLogLevel         = "log.level"
	keyLogFormat        = "log.format"
	keyLogOutputs       = "log.output_paths"
	keyLogFile          = "log.file"
	keyLogDevelopment   = "log.development"
)

func setDefaults(v *viper.Viper) {
	def := types.DefaultFinderConfig()
	v.SetDefault(keyProvider, string(types.ProviderOpenAI))
	v.SetDefault(keyUserAgent, httputil.DefaultUserAgent+"/"+version)
	v.SetDefault(keyMaxManufacturers, def.MaxManufacturers)
	v.SetDefault(keyDelay, def.Delay)
	v.SetDefault(keyCallTimeout, def.CallTimeout)
	v.SetDefault(keyTemperature, def.Temperature)
	v.SetDefault(keyMaxTokens, def.MaxTokens)
	v.SetDefault(keyOutputDir, ".")
	v.SetDefault(keyDashboardHost, "localhost")
	v.SetDefault(keyDashboardPort, 8501)
	v.SetDefault(keyMaxUpload, int64(10<<20))
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "console")
}

// loadConfig assembles the run configuration from flags, environment and
// the config file, in that order of precedence.
func loadConfig() types.Config {
	return types.Config{
		AI: types.AIConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration(keyHTTPTimeout),
				UserAgent: viper.GetString(keyUserAgent),
			},
			Provider: types.Provider(viper.GetString(keyProvider)),
			Model:    viper.GetString(keyModel),
			APIKey:   viper.GetString(keyAPIKey),
			BaseURL:  viper.GetString(keyBaseURL),
		},
		Loader: types.LoaderConfig{
			Sheet: viper.GetString(keySheet),
		},
		Finder: types.FinderConfig{
			MaxManufacturers: viper.GetInt(keyMaxManufacturers),
			Delay:            viper.GetDuration(keyDelay),
			CallTimeout:      viper.GetDuration(keyCallTimeout),
			Temperature:      viper.GetFloat64(keyTemperature),
			MaxTokens:        viper.GetInt(keyMaxTokens),
		},
		Export: types.ExportConfig{
			OutputDir: viper.GetString(keyOutputDir),
		},
		Dashboard: types.DashboardConfig{
			Host:           viper.GetString(keyDashboardHost),
			Port:           viper.GetInt(keyDashboardPort),
			MaxUploadBytes: viper.GetInt64(keyMaxUpload),
		},
		Log: logConfig(),
	}
}

func logConfig() types.LogConfig {
	cfg := types.LogConfig{
		Level:       viper.GetString(keyLogLevel),
		Format:      viper.GetString(keyLogFormat),
		OutputPaths: viper.GetStringSlice(keyLogOutputs),
		Development: viper.GetBool(keyLogDevelopment),
	}
	if f := viper.GetString(keyLogFile); f != "" {
		if len(cfg.OutputPaths) == 0 {
			cfg.OutputPaths = []string{"stderr"}
		}
		cfg.OutputPaths = append(cfg.OutputPaths, f)
	}
	return cfg
}

// bindFlags binds the named flags of cmd to configuration keys. It runs in
// PreRunE so that only the executing command's flags are bound.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

// aiFlags are shared by every command that talks to the completion service.
var aiFlags = map[string]string{
	"api-key":  keyAPIKey,
	"provider": keyProvider,
	"model":    keyModel,
	"base-url": keyBaseURL,
}

func addAIFlags(cmd *cobra.Command) {
	cmd.Flags().String("api-key", "", "API key for the completion service (default: provider environment variable or .secrets/)")
	cmd.Flags().String("provider", "", "completion service: openai or gemini")
	cmd.Flags().String("model", "", "model identifier (default depends on provider)")
	cmd.Flags().String("base-url", "", "override the provider endpoint")
}

// resolveAPIKey fills cfg.AI.APIKey from the configured value, the
// provider's environment variable or .secrets/.
func resolveAPIKey(cfg *types.Config) error {
	key, err := secrets.Resolve(cfg.AI.Provider, cfg.AI.APIKey, loadedSecrets)
	if err != nil {
		return err
	}
	cfg.AI.APIKey = key
	return nil
}

// optionalAPIKey is resolveAPIKey for front ends that can take the key later.
func optionalAPIKey(cfg *types.Config) error {
	err := resolveAPIKey(cfg)
	if errors.Is(err, secrets.ErrMissingCredential) {
		return nil
	}
	return err
}
