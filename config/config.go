// Package config loads pdfocr settings from defaults, an optional YAML file,
// a .env file and PDFOCR_* environment variables. Command-line flags are
// applied on top by the caller.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const envPrefix = "PDFOCR_"

// Config holds every tunable of the tool.
type Config struct {
	// Language is the OCR language: Tesseract codes joined by "+" or BCP-47 tags.
	Language string `yaml:"language"`
	// DPI is the resolution pages are rendered at before OCR.
	DPI float64 `yaml:"dpi"`
	// PageSegMode is the Tesseract page segmentation mode.
	PageSegMode int `yaml:"page_seg_mode"`
	// TessdataPrefix overrides the directory Tesseract loads traineddata from.
	TessdataPrefix string `yaml:"tessdata_prefix"`
	// Password unlocks encrypted documents.
	Password string `yaml:"password"`
	// Validate runs structural validation before extraction.
	Validate bool `yaml:"validate"`
	// Timeout bounds a whole extraction; zero means no limit.
	Timeout time.Duration `yaml:"timeout"`
	Log     LogConfig     `yaml:"log"`
}

// LogConfig selects diagnostic output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Language:    "jpn",
		DPI:         300,
		PageSegMode: 3,
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load starts from Default, overlays the YAML file at path (if path is not
// empty) and then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, eris.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, eris.Wrapf(err, "parse config %s", path)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnvFile exports the variables in a .env file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return eris.Wrapf(err, "load env file %s", path)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookup("LANGUAGE"); ok {
		c.Language = v
	}
	if v, ok := lookup("DPI"); ok {
		dpi, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return eris.Wrapf(err, "%sDPI", envPrefix)
		}
		c.DPI = dpi
	}
	if v, ok := lookup("PSM"); ok {
		psm, err := strconv.Atoi(v)
		if err != nil {
			return eris.Wrapf(err, "%sPSM", envPrefix)
		}
		c.PageSegMode = psm
	}
	if v, ok := lookup("TESSDATA_PREFIX"); ok {
		c.TessdataPrefix = v
	}
	if v, ok := lookup("PASSWORD"); ok {
		c.Password = v
	}
	if v, ok := lookup("VALIDATE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return eris.Wrapf(err, "%sVALIDATE", envPrefix)
		}
		c.Validate = b
	}
	if v, ok := lookup("TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return eris.Wrapf(err, "%sTIMEOUT", envPrefix)
		}
		c.Timeout = d
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Check checks ranges and normalizes Language to Tesseract codes.
func (c *Config) Check() error {
	lang, err := NormalizeLanguage(c.Language)
	if err != nil {
		return err
	}
	c.Language = lang
	if c.DPI <= 0 || c.DPI > 1200 {
		return eris.Errorf("dpi must be in (0, 1200], got %v", c.DPI)
	}
	if c.PageSegMode < 0 || c.PageSegMode > 13 {
		return eris.Errorf("page segmentation mode must be in [0, 13], got %d", c.PageSegMode)
	}
	if c.Timeout < 0 {
		return eris.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return eris.Wrapf(err, "log level")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return eris.Errorf("log format must be console or json, got %q", c.Log.Format)
	}
	return nil
}
