package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var keys = []string{
	"TRANSACTIONS_SOURCE", "SOURCE_FILE", "SETTINGS_FILE", "REPORTS_DIR", "REPORTS_BUCKET",
	"BQ_PROJECT", "BQ_DATASET", "BQ_TABLE", "CBR_BASE_URL", "YAHOO_BASE_URL",
	"QUOTE_CACHE_TTL", "QUOTE_RATE_LIMIT", "REPORT_SCHEDULE", "WORKER_COUNT",
	"PORT", "LOG_LEVEL", "LOG_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TransactionsSource != SourceFile {
		t.Errorf("TransactionsSource = %q, want file", cfg.TransactionsSource)
	}
	if cfg.SettingsFile != "user_settings.json" {
		t.Errorf("SettingsFile = %q", cfg.SettingsFile)
	}
	if cfg.ReportsDir != "reports" {
		t.Errorf("ReportsDir = %q", cfg.ReportsDir)
	}
	if cfg.QuoteCacheTTL != time.Hour {
		t.Errorf("QuoteCacheTTL = %v, want 1h", cfg.QuoteCacheTTL)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("WorkerCount = %d, want 5", cfg.WorkerCount)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	for _, k := range keys {
		os.Unsetenv(k)
	}

	path := filepath.Join(t.TempDir(), ".env")
	content := "TRANSACTIONS_SOURCE=bigquery\nBQ_PROJECT=demo-project\nQUOTE_CACHE_TTL=15m\nWORKER_COUNT=2\nPORT=9090\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TransactionsSource != SourceBigQuery || cfg.BigQueryProject != "demo-project" {
		t.Errorf("source = %q project = %q", cfg.TransactionsSource, cfg.BigQueryProject)
	}
	if cfg.QuoteCacheTTL != 15*time.Minute {
		t.Errorf("QuoteCacheTTL = %v, want 15m", cfg.QuoteCacheTTL)
	}
	if cfg.WorkerCount != 2 || cfg.Port != "9090" {
		t.Errorf("WorkerCount = %d Port = %q", cfg.WorkerCount, cfg.Port)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad duration", env: map[string]string{"QUOTE_CACHE_TTL": "soon"}},
		{name: "bad worker count", env: map[string]string{"WORKER_COUNT": "many"}},
		{name: "zero workers", env: map[string]string{"WORKER_COUNT": "0"}},
		{name: "unknown source", env: map[string]string{"TRANSACTIONS_SOURCE": "ftp"}},
		{name: "bigquery without project", env: map[string]string{"TRANSACTIONS_SOURCE": "bigquery"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Error("expected error")
			}
		})
	}
}
