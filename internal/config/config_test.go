package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/automator/internal/tracing"
)

func TestDefaults_AreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, Validate(cfg))
	require.Equal(t, "gemini", cfg.Extractor.Provider)
	require.Equal(t, "gemini-2.5-flash", cfg.Extractor.Model)
	require.Equal(t, 60*time.Second, cfg.Extractor.Timeout)
	require.True(t, cfg.UI.ShowExamples)
	require.False(t, cfg.Tracing.Enabled)
}

func TestValidateExtractor(t *testing.T) {
	require.NoError(t, ValidateExtractor(ExtractorConfig{}))
	require.NoError(t, ValidateExtractor(ExtractorConfig{Provider: "openai"}))

	err := ValidateExtractor(ExtractorConfig{Provider: "claude"})
	require.ErrorContains(t, err, "extractor.provider")

	err = ValidateExtractor(ExtractorConfig{Timeout: -time.Second})
	require.ErrorContains(t, err, "extractor.timeout")
}

func TestValidateUI(t *testing.T) {
	require.NoError(t, ValidateUI(UIConfig{MarkdownStyle: "light"}))
	require.ErrorContains(t, ValidateUI(UIConfig{MarkdownStyle: "neon"}), "ui.markdown_style")
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name    string
		cfg     tracing.Config
		wantErr string
	}{
		{"defaults", tracing.DefaultConfig(), ""},
		{"sample rate too high", tracing.Config{SampleRate: 1.5}, "sample_rate"},
		{"sample rate negative", tracing.Config{SampleRate: -0.1}, "sample_rate"},
		{"bad exporter", tracing.Config{Exporter: "zipkin"}, "tracing.exporter"},
		{"file without path", tracing.Config{Enabled: true, Exporter: "file"}, "file_path"},
		{"otlp without endpoint", tracing.Config{Enabled: true, Exporter: "otlp"}, "otlp_endpoint"},
		{"disabled file without path", tracing.Config{Exporter: "file"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracing(tt.cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "from-default-env")
	t.Setenv("MY_GEMINI_KEY", "from-custom-env")

	require.Equal(t, "inline", ExtractorConfig{APIKey: "inline", APIKeyEnv: "MY_GEMINI_KEY"}.ResolveAPIKey())
	require.Equal(t, "from-custom-env", ExtractorConfig{APIKeyEnv: "MY_GEMINI_KEY"}.ResolveAPIKey())
	require.Equal(t, "from-default-env", ExtractorConfig{}.ResolveAPIKey())
}

func TestExtractConfig(t *testing.T) {
	e := ExtractorConfig{Provider: "openai", Model: "m", APIKey: "k", BaseURL: "http://localhost", Timeout: time.Second}
	got := e.ExtractConfig()
	require.Equal(t, "openai", got.Provider)
	require.Equal(t, "m", got.Model)
	require.Equal(t, "k", got.APIKey)
	require.Equal(t, "http://localhost", got.BaseURL)
	require.Equal(t, time.Second, got.Timeout)
}

func TestDefaultConfigTemplate_ParsesToDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(DefaultConfigTemplate())))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	defaults := Defaults()
	require.Equal(t, defaults.Extractor.Provider, cfg.Extractor.Provider)
	require.Equal(t, defaults.Extractor.Model, cfg.Extractor.Model)
	require.Equal(t, defaults.Extractor.APIKeyEnv, cfg.Extractor.APIKeyEnv)
	require.Equal(t, defaults.Extractor.Timeout, cfg.Extractor.Timeout)
	require.Equal(t, defaults.UI.ShowExamples, cfg.UI.ShowExamples)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".automator", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))
}
