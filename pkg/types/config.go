package types

import "time"

// Provider identifies the completion service behind the finder.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// HTTPConfig holds shared HTTP settings used by the completion backends.
type HTTPConfig struct {
	// Timeout bounds a whole HTTP exchange. Zero leaves the client without a deadline.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "manufacturer-finder/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds settings for the completion service.
type AIConfig struct {
	HTTPConfig `yaml:",inline"`

	// Provider selects the backend: openai or gemini.
	Provider Provider `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey is the credential passed to the service.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint. Empty uses the provider default.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// LoaderConfig holds settings for reading the input spreadsheet.
type LoaderConfig struct {
	// Sheet names the worksheet to read. Empty reads the first sheet.
	Sheet string `json:"sheet,omitempty" yaml:"sheet,omitempty"`
}

// FinderConfig holds settings for the per-part analysis loop.
type FinderConfig struct {
	// MaxManufacturers is the number of candidates requested per part (default 5).
	MaxManufacturers int `json:"max_manufacturers" yaml:"max_manufacturers"`

	// Delay is the fixed spacing between consecutive service calls (default 500ms).
	Delay time.Duration `json:"delay" yaml:"delay"`

	// CallTimeout bounds a single service call (default 60s).
	CallTimeout time.Duration `json:"call_timeout" yaml:"call_timeout"`

	// Temperature is the sampling temperature (default 0.7).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens is the output token ceiling (default 1500).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// DefaultFinderConfig returns the finder settings used when nothing is configured.
func DefaultFinderConfig() FinderConfig {
	return FinderConfig{
		MaxManufacturers: 5,
		Delay:            500 * time.Millisecond,
		CallTimeout:      60 * time.Second,
		Temperature:      0.7,
		MaxTokens:        1500,
	}
}

// ExportConfig holds settings for the workbook writer.
type ExportConfig struct {
	// OutputDir is where auto-named workbooks are written (default ".").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// DashboardConfig holds settings for the browser dashboard.
type DashboardConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`

	// MaxUploadBytes caps the size of an uploaded spreadsheet (default 10 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is "json" or "console".
	Format string `json:"format" yaml:"format"`

	// OutputPaths lists log sinks (e.g. "stderr", "manufacturer_finder.log").
	OutputPaths []string `json:"output_paths,omitempty" yaml:"output_paths,omitempty"`

	// Development enables zap's development config.
	Development bool `json:"development" yaml:"development"`
}

// Config groups all settings for a run.
type Config struct {
	AI        AIConfig        `json:"ai" yaml:"ai"`
	Loader    LoaderConfig    `json:"loader" yaml:"loader"`
	Finder    FinderConfig    `json:"finder" yaml:"finder"`
	Export    ExportConfig    `json:"export" yaml:"export"`
	Dashboard DashboardConfig `json:"dashboard" yaml:"dashboard"`
	Log       LogConfig       `json:"log" yaml:"log"`
}
