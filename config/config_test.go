package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dataset.Path != "Gold_Price.csv" || cfg.Model.Path != "svm_model.json" {
		t.Fatalf("unexpected paths: %+v %+v", cfg.Dataset, cfg.Model)
	}
	if !reflect.DeepEqual(cfg.Dataset.RequiredColumns, []string{"Open", "High", "Low"}) {
		t.Fatalf("unexpected required columns: %v", cfg.Dataset.RequiredColumns)
	}
	if cfg.Dataset.PreviewRows != 4 {
		t.Fatalf("expected 4 preview rows, got %d", cfg.Dataset.PreviewRows)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
title: Gold
dataset:
  path: data/gold.xlsx
  required_columns: [Open, High, Low, Close]
model:
  path: models/tree.json
  type: tree
http:
  port: 9090
  timeout: 5s
log:
  level: debug
`)
	t.Setenv("GOLDPREDICT_MODEL_PATH", "/srv/models/svr.json")
	t.Setenv("GOLDPREDICT_MODEL_TYPE", "svr")
	t.Setenv("GOLDPREDICT_DATASET_REQUIRED_COLUMNS", "Open,High,Low")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Title != "Gold" || cfg.Dataset.Path != "data/gold.xlsx" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Model.Path != "/srv/models/svr.json" || cfg.Model.Type != "svr" {
		t.Fatalf("env overrides not applied: %+v", cfg.Model)
	}
	if !reflect.DeepEqual(cfg.Dataset.RequiredColumns, []string{"Open", "High", "Low"}) {
		t.Fatalf("unexpected required columns: %v", cfg.Dataset.RequiredColumns)
	}
	if cfg.HTTP.Port != 9090 || cfg.HTTP.Timeout != 5*time.Second {
		t.Fatalf("unexpected http config: %+v", cfg.HTTP)
	}
	if cfg.Dataset.Encoding != "utf-8" || cfg.Model.CacheSize != 256 {
		t.Fatalf("defaults lost for unset keys: %+v %+v", cfg.Dataset, cfg.Model)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad yaml", content: "dataset: [unterminated"},
		{name: "empty model path", content: "model:\n  path: \"\"\n"},
		{name: "unknown model type", content: "model:\n  type: lstm\n"},
		{name: "no required columns", content: "dataset:\n  required_columns: []\n"},
		{name: "bad port", content: "http:\n  port: 70000\n"},
		{name: "long delimiter", content: "dataset:\n  delimiter: \";;\"\n"},
		{name: "bad log level", content: "log:\n  level: verbose\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestDelimiterRune(t *testing.T) {
	tests := []struct {
		in   string
		want rune
	}{
		{in: "", want: ','},
		{in: ";", want: ';'},
		{in: "tab", want: '\t'},
		{in: `\t`, want: '\t'},
		{in: "|", want: '|'},
	}
	for _, tt := range tests {
		got, err := DatasetConfig{Delimiter: tt.in}.DelimiterRune()
		if err != nil {
			t.Fatalf("DelimiterRune(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("DelimiterRune(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if _, err := (DatasetConfig{Delimiter: `"`}).DelimiterRune(); err == nil {
		t.Fatalf("expected quote delimiter to be rejected")
	}
}
