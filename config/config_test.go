package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"LANGUAGE", "DPI", "PSM", "TESSDATA_PREFIX", "PASSWORD", "VALIDATE", "TIMEOUT", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(envPrefix+key, "")
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Check())
	require.Equal(t, "jpn", cfg.Language)
	require.Equal(t, 300.0, cfg.DPI)
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "pdfocr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
language: eng
dpi: 150
page_seg_mode: 6
validate: true
timeout: 45s
log:
  level: info
  format: json
`), 0o644))
	t.Setenv("PDFOCR_DPI", "200")
	t.Setenv("PDFOCR_PASSWORD", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "eng", cfg.Language)
	require.Equal(t, 200.0, cfg.DPI)
	require.Equal(t, 6, cfg.PageSegMode)
	require.True(t, cfg.Validate)
	require.Equal(t, 45*time.Second, cfg.Timeout)
	require.Equal(t, "secret", cfg.Password)
	require.Equal(t, LogConfig{Level: "info", Format: "json"}, cfg.Log)
}

func TestLoadWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PDFOCR_LANGUAGE", "ja")
	t.Setenv("PDFOCR_TIMEOUT", "2m")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "ja", cfg.Language)
	require.Equal(t, 2*time.Minute, cfg.Timeout)
	require.NoError(t, cfg.Check())
	require.Equal(t, "jpn", cfg.Language)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "read config")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("dpi: [1, 2"), 0o644))
	_, err = Load(bad)
	require.ErrorContains(t, err, "parse config")

	t.Setenv("PDFOCR_DPI", "high")
	_, err = Load("")
	require.ErrorContains(t, err, "PDFOCR_DPI")
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	require.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PDFOCR_PSM=11\n"), 0o644))
	// An empty value counts as set for godotenv, so unset it first.
	require.NoError(t, os.Unsetenv("PDFOCR_PSM"))
	require.NoError(t, LoadEnvFile(path))

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 11, cfg.PageSegMode)
}

func TestCheckRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"empty language": func(c *Config) { c.Language = " " },
		"zero dpi":       func(c *Config) { c.DPI = 0 },
		"huge dpi":       func(c *Config) { c.DPI = 5000 },
		"psm":            func(c *Config) { c.PageSegMode = 14 },
		"timeout":        func(c *Config) { c.Timeout = -time.Second },
		"log level":      func(c *Config) { c.Log.Level = "chatty" },
		"log format":     func(c *Config) { c.Log.Format = "xml" },
		"language":       func(c *Config) { c.Language = "klingon-x" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			require.Error(t, cfg.Check())
		})
	}
}
