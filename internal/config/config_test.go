package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	// Check default values
	if cfg.LogLevel != "info" {
		t.Errorf("Expected LogLevel 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.ETL.IntervalMinutes != 60 {
		t.Errorf("Expected ETL.IntervalMinutes 60, got %d", cfg.ETL.IntervalMinutes)
	}
	if len(cfg.ETL.Sources) != 1 || cfg.ETL.Sources[0] != SourceCSV {
		t.Errorf("Expected ETL.Sources [csv], got %v", cfg.ETL.Sources)
	}
	if cfg.ETL.FullRefresh {
		t.Error("Expected ETL.FullRefresh false")
	}
	if cfg.ETL.BatchSize != 10000 {
		t.Errorf("Expected ETL.BatchSize 10000, got %d", cfg.ETL.BatchSize)
	}
	if cfg.ETL.BulkTimeoutSeconds != 600 {
		t.Errorf("Expected ETL.BulkTimeoutSeconds 600, got %d", cfg.ETL.BulkTimeoutSeconds)
	}

	// Seed defaults
	if cfg.Seed.Customers != 500 {
		t.Errorf("Expected Seed.Customers 500, got %d", cfg.Seed.Customers)
	}
	if cfg.Seed.Products != 200 {
		t.Errorf("Expected Seed.Products 200, got %d", cfg.Seed.Products)
	}
	if cfg.Seed.Orders != 2000 {
		t.Errorf("Expected Seed.Orders 2000, got %d", cfg.Seed.Orders)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	content := `
connection: "postgres://localhost/warehouse"
staging_connection: "postgres://localhost/staging"
log_level: debug
etl:
  interval_minutes: 15
  csv_path: /data/source
  sources:
    - csv
    - api
  full_refresh: true
  batch_size: 500
api:
  base_url: http://source.example/api
  key: secret
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Connection != "postgres://localhost/warehouse" {
		t.Errorf("Unexpected connection: %s", cfg.Connection)
	}
	if cfg.StagingConnection != "postgres://localhost/staging" {
		t.Errorf("Unexpected staging connection: %s", cfg.StagingConnection)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level 'debug', got '%s'", cfg.LogLevel)
	}
	if cfg.ETL.IntervalMinutes != 15 {
		t.Errorf("Expected interval 15, got %d", cfg.ETL.IntervalMinutes)
	}
	if len(cfg.ETL.Sources) != 2 {
		t.Errorf("Expected 2 sources, got %v", cfg.ETL.Sources)
	}
	if !cfg.ETL.FullRefresh {
		t.Error("Expected full_refresh true")
	}
	if cfg.ETL.BatchSize != 500 {
		t.Errorf("Expected batch_size 500, got %d", cfg.ETL.BatchSize)
	}
	if cfg.API.BaseURL != "http://source.example/api" || cfg.API.Key != "secret" {
		t.Errorf("Unexpected API config: %+v", cfg.API)
	}

	// Unset keys keep their defaults
	if cfg.ETL.BulkTimeoutSeconds != 600 {
		t.Errorf("Expected default bulk timeout, got %d", cfg.ETL.BulkTimeoutSeconds)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ETL.IntervalMinutes != 60 {
		t.Errorf("Expected defaults without config file, got interval %d", cfg.ETL.IntervalMinutes)
	}
}

func TestStagingConn(t *testing.T) {
	cfg := &Config{Connection: "postgres://warehouse"}
	if got := cfg.StagingConn(); got != "postgres://warehouse" {
		t.Errorf("Expected fallback to warehouse connection, got '%s'", got)
	}

	cfg.StagingConnection = "postgres://staging"
	if got := cfg.StagingConn(); got != "postgres://staging" {
		t.Errorf("Expected staging connection, got '%s'", got)
	}
}

func TestValidateRun(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Connection = "postgres://localhost/db"
		cfg.ETL.CSVPath = "/data"
		return cfg
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
	}{
		{
			name:   "valid csv config",
			mutate: func(c *Config) {},
		},
		{
			name:      "missing connection",
			mutate:    func(c *Config) { c.Connection = "" },
			wantError: true,
		},
		{
			name:      "zero interval",
			mutate:    func(c *Config) { c.ETL.IntervalMinutes = 0 },
			wantError: true,
		},
		{
			name:      "zero batch size",
			mutate:    func(c *Config) { c.ETL.BatchSize = 0 },
			wantError: true,
		},
		{
			name:      "no sources",
			mutate:    func(c *Config) { c.ETL.Sources = nil },
			wantError: true,
		},
		{
			name:      "csv source without path",
			mutate:    func(c *Config) { c.ETL.CSVPath = "" },
			wantError: true,
		},
		{
			name: "api source without base url",
			mutate: func(c *Config) {
				c.ETL.Sources = []string{SourceAPI}
			},
			wantError: true,
		},
		{
			name: "api source with base url",
			mutate: func(c *Config) {
				c.ETL.Sources = []string{SourceAPI}
				c.API.BaseURL = "http://source.example"
			},
		},
		{
			name:      "unknown source kind",
			mutate:    func(c *Config) { c.ETL.Sources = []string{"ftp"} },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.ValidateRun()
			if tt.wantError && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestValidateSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ETL.CSVPath = "/data"
	if err := cfg.ValidateSeed(); err != nil {
		t.Errorf("Expected defaults to validate, got: %v", err)
	}

	cfg.ETL.CSVPath = ""
	if err := cfg.ValidateSeed(); err == nil {
		t.Error("Expected error without csv_path")
	}

	cfg.ETL.CSVPath = "/data"
	cfg.Seed.Customers = 0
	if err := cfg.ValidateSeed(); err == nil {
		t.Error("Expected error for zero customers")
	}

	cfg.Seed.Customers = 10
	cfg.Seed.InvalidRate = 1.5
	if err := cfg.ValidateSeed(); err == nil {
		t.Error("Expected error for invalid_rate above 1")
	}
}
