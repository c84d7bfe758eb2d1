package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestSaveValue_CreatesNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SaveValue(path, "extractor.model", "gemini-2.5-pro"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "extractor:\n  model: gemini-2.5-pro\n", string(data))
}

func TestSaveValue_PreservesCommentsAndOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	require.NoError(t, SaveValue(path, "extractor.model", "gemini-2.5-pro"))
	require.NoError(t, SaveValue(path, "flags.draft-diff", "false"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.Contains(t, text, "# Automator Configuration")
	require.Contains(t, text, "environment variable holding the API key")

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	require.Equal(t, "gemini-2.5-pro", cfg.Extractor.Model)
	require.Equal(t, "gemini", cfg.Extractor.Provider)
	require.Equal(t, map[string]bool{"draft-diff": false}, cfg.Flags)
}

func TestSaveValue_RejectsBadKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("extractor: gemini\n"), 0o600))

	require.ErrorContains(t, SaveValue(path, "extractor.model", "x"), "not a section")
	require.ErrorContains(t, SaveValue(path, "ui..style", "x"), "invalid config key")
	require.ErrorContains(t, SaveValue(path, "", "x"), "invalid config key")
}
