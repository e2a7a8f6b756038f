// Package config loads the application configuration: built-in defaults,
// then an optional YAML file, then GOLDPREDICT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix of every environment override. Leaf fields carry
// no envconfig tag so that envconfig never falls back to unprefixed names
// such as PATH.
const EnvPrefix = "GOLDPREDICT"

// Config represents the complete application configuration
type Config struct {
	Title   string        `yaml:"title" split_words:"true" validate:"required"`
	Dataset DatasetConfig `yaml:"dataset" envconfig:"DATASET"`
	Model   ModelConfig   `yaml:"model" envconfig:"MODEL"`
	HTTP    HTTPConfig    `yaml:"http" envconfig:"HTTP"`
	Log     LogConfig     `yaml:"log" envconfig:"LOG"`
	Watch   WatchConfig   `yaml:"watch" envconfig:"WATCH"`
}

// DatasetConfig locates the historical price table
type DatasetConfig struct {
	Path            string   `yaml:"path" split_words:"true" validate:"required"`
	Format          string   `yaml:"format" split_words:"true" validate:"oneof=auto csv tsv xlsx sqlite"`
	Delimiter       string   `yaml:"delimiter" split_words:"true"`
	Encoding        string   `yaml:"encoding" split_words:"true" validate:"required"`
	Sheet           string   `yaml:"sheet" split_words:"true"`
	Table           string   `yaml:"table" split_words:"true" validate:"required"`
	RequiredColumns []string `yaml:"required_columns" split_words:"true" validate:"min=1,dive,required"`
	PreviewRows     int      `yaml:"preview_rows" split_words:"true" validate:"gte=0"`
}

// ModelConfig locates the serialized model
type ModelConfig struct {
	Path      string `yaml:"path" split_words:"true" validate:"required"`
	Type      string `yaml:"type" split_words:"true" validate:"oneof=auto linear svr tree"`
	CacheSize int    `yaml:"cache_size" split_words:"true" validate:"gte=0"`
}

// HTTPConfig contains HTTP server configuration
type HTTPConfig struct {
	Port           int           `yaml:"port" split_words:"true" validate:"min=1,max=65535"`
	Timeout        time.Duration `yaml:"timeout" split_words:"true" validate:"gt=0"`
	AllowedOrigins []string      `yaml:"allowed_origins" split_words:"true"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level      string `yaml:"level" split_words:"true" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" split_words:"true" validate:"oneof=console json"`
	File       string `yaml:"file" split_words:"true"`
	MaxSizeMB  int    `yaml:"max_size_mb" split_words:"true" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" split_words:"true" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" split_words:"true" validate:"gte=0"`
	Compress   bool   `yaml:"compress" split_words:"true"`
}

// WatchConfig toggles the artifact change watcher
type WatchConfig struct {
	Enabled bool `yaml:"enabled" split_words:"true"`
}

func Default() *Config {
	return &Config{
		Title: "Gold Price Prediction",
		Dataset: DatasetConfig{
			Path:            "Gold_Price.csv",
			Format:          "auto",
			Delimiter:       ",",
			Encoding:        "utf-8",
			Table:           "prices",
			RequiredColumns: []string{"Open", "High", "Low"},
			PreviewRows:     4,
		},
		Model: ModelConfig{
			Path:      "svm_model.json",
			Type:      "auto",
			CacheSize: 256,
		},
		HTTP: HTTPConfig{
			Port:           8080,
			Timeout:        30 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load applies the YAML file at path (if it exists) and the environment
// on top of Default, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

var configValidator = validator.New()

func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}
	if _, err := c.Dataset.DelimiterRune(); err != nil {
		return err
	}
	return nil
}

// DelimiterRune accepts a single character, or "\t" / "tab" for tab.
func (d DatasetConfig) DelimiterRune() (rune, error) {
	switch strings.ToLower(d.Delimiter) {
	case "":
		return ',', nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(d.Delimiter) != 1 {
		return 0, errors.New("dataset delimiter must be a single character")
	}
	r, _ := utf8.DecodeRuneInString(d.Delimiter)
	if r == '\n' || r == '\r' || r == '"' || r == utf8.RuneError {
		return 0, fmt.Errorf("dataset delimiter %q is not allowed", d.Delimiter)
	}
	return r, nil
}

// Addr is the listen address for the HTTP server.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", h.Port)
}
