// Package config provides configuration types and defaults for automator.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/automator/internal/extract"
	"github.com/zjrosen/automator/internal/log"
	"github.com/zjrosen/automator/internal/tracing"
)

// Config holds all configuration options for automator.
type Config struct {
	Extractor ExtractorConfig `mapstructure:"extractor"`
	UI        UIConfig        `mapstructure:"ui"`
	Tracing   tracing.Config  `mapstructure:"tracing"`
	Flags     map[string]bool `mapstructure:"flags"`
}

// ExtractorConfig selects the language service used to build automations.
type ExtractorConfig struct {
	Provider  string        `mapstructure:"provider"`    // "gemini" (default) or "openai"
	Model     string        `mapstructure:"model"`       // provider model name
	APIKey    string        `mapstructure:"api_key"`     // inline key, takes precedence over api_key_env
	APIKeyEnv string        `mapstructure:"api_key_env"` // environment variable holding the key
	BaseURL   string        `mapstructure:"base_url"`    // override for proxies and compatible services
	Timeout   time.Duration `mapstructure:"timeout"`     // per-request timeout
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default) or "light"
	ShowExamples  bool   `mapstructure:"show_examples"`  // show example prompts under the input
}

// ResolveAPIKey returns the inline key, or the value of the configured
// environment variable.
func (e ExtractorConfig) ResolveAPIKey() string {
	if e.APIKey != "" {
		return e.APIKey
	}
	name := e.APIKeyEnv
	if name == "" {
		name = DefaultAPIKeyEnv
	}
	return os.Getenv(name)
}

// ExtractConfig converts the settings into an extract.Config.
func (e ExtractorConfig) ExtractConfig() extract.Config {
	return extract.Config{
		Provider: e.Provider,
		Model:    e.Model,
		APIKey:   e.ResolveAPIKey(),
		BaseURL:  e.BaseURL,
		Timeout:  e.Timeout,
	}
}

// DefaultAPIKeyEnv is read when no key is configured inline.
const DefaultAPIKeyEnv = "API_KEY"

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tc := tracing.DefaultConfig()
	tc.FilePath = DefaultTracesFilePath()
	return Config{
		Extractor: ExtractorConfig{
			Provider:  extract.ProviderGemini,
			Model:     "gemini-2.5-flash",
			APIKeyEnv: DefaultAPIKeyEnv,
			Timeout:   extract.DefaultTimeout,
		},
		UI: UIConfig{
			MarkdownStyle: "dark",
			ShowExamples:  true,
		},
		Tracing: tc,
	}
}

// DefaultTracesFilePath returns ~/.config/automator/traces/traces.jsonl, or
// an empty string if the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "automator", "traces", "traces.jsonl")
}

// Validate checks every section and returns the first problem found.
func Validate(c Config) error {
	if err := ValidateExtractor(c.Extractor); err != nil {
		return err
	}
	if err := ValidateUI(c.UI); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidateExtractor checks extractor configuration. Empty values use defaults.
func ValidateExtractor(e ExtractorConfig) error {
	switch e.Provider {
	case "", extract.ProviderGemini, extract.ProviderOpenAI:
	default:
		return fmt.Errorf("extractor.provider must be \"gemini\" or \"openai\", got %q", e.Provider)
	}
	if e.Timeout < 0 {
		return fmt.Errorf("extractor.timeout must not be negative, got %s", e.Timeout)
	}
	return nil
}

// ValidateUI checks UI configuration.
func ValidateUI(ui UIConfig) error {
	switch ui.MarkdownStyle {
	case "", "dark", "light":
		return nil
	default:
		return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", ui.MarkdownStyle)
	}
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	switch tc.Exporter {
	case "", tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tc.Exporter)
	}

	if tc.Enabled {
		if tc.Exporter == tracing.ExporterFile && tc.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tc.Exporter == tracing.ExporterOTLP && tc.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Automator Configuration

# Language service that turns requests into automations
extractor:
  provider: gemini          # "gemini" (default) or "openai" (any OpenAI-compatible API)
  model: gemini-2.5-flash
  api_key_env: API_KEY      # environment variable holding the API key
  # api_key: ""             # or set the key inline (takes precedence)
  # base_url: ""            # override the service endpoint
  timeout: 60s

# UI settings
ui:
  # markdown_style: dark    # Help rendering style: "dark" (default) or "light"
  show_examples: true       # Show example requests under the input

# Feature flags
# flags:
#   draft-diff: true        # Show a diff of unsaved edits in the editor

# Distributed tracing of extraction requests
# tracing:
#   enabled: false
#   exporter: file          # "none", "file", "stdout", or "otlp"
#   file_path: ~/.config/automator/traces/traces.jsonl
#
# Example: Send traces to Jaeger via OTLP
# tracing:
#   enabled: true
#   exporter: otlp
#   otlp_endpoint: jaeger.internal:4317
#   sample_rate: 0.1        # Sample 10% of traces
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
