//-------------------------------------------------------------------------
//
// dwhetl - Sales & Inventory Warehouse ETL
//
//-------------------------------------------------------------------------

// Package config handles configuration management for dwhetl.
// Configuration is loaded from config files and CLI flags (no environment
// variables). CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Source kinds accepted in ETL.Sources.
const (
	SourceCSV = "csv"
	SourceAPI = "api"
)

// Config holds all configuration for dwhetl.
type Config struct {
	// Connection is the PostgreSQL connection string for the warehouse.
	Connection string `mapstructure:"connection"`

	// StagingConnection is an optional separate connection string for the
	// staging database. Defaults to Connection when empty.
	StagingConnection string `mapstructure:"staging_connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// ETL holds configuration for the ETL cycle.
	ETL ETLConfig `mapstructure:"etl"`

	// API holds configuration for the REST source extractor.
	API APIConfig `mapstructure:"api"`

	// Seed holds configuration for the seed subcommand.
	Seed SeedConfig `mapstructure:"seed"`
}

// ETLConfig holds configuration for the ETL cycle.
type ETLConfig struct {
	// IntervalMinutes is the wait between ETL cycles.
	IntervalMinutes int `mapstructure:"interval_minutes"`

	// CSVPath is the directory containing the source CSV files.
	CSVPath string `mapstructure:"csv_path"`

	// Sources lists the enabled raw source kinds (csv, api).
	Sources []string `mapstructure:"sources"`

	// FullRefresh deletes warehouse and staging data at the start of
	// every cycle, rebuilding the warehouse from scratch.
	FullRefresh bool `mapstructure:"full_refresh"`

	// BatchSize caps the number of fact rows per bulk append.
	BatchSize int `mapstructure:"batch_size"`

	// BulkTimeoutSeconds bounds a single bulk operation.
	BulkTimeoutSeconds int `mapstructure:"bulk_timeout_seconds"`
}

// APIConfig holds configuration for the REST source extractor.
type APIConfig struct {
	// BaseURL is the root URL of the source API.
	BaseURL string `mapstructure:"base_url"`

	// Key is sent as the X-API-Key header when non-empty.
	Key string `mapstructure:"key"`
}

// SeedConfig holds configuration for sample data generation.
type SeedConfig struct {
	// Customers is the number of customer rows to generate.
	Customers int `mapstructure:"customers"`

	// Products is the number of product rows to generate.
	Products int `mapstructure:"products"`

	// Orders is the number of order headers to generate.
	Orders int `mapstructure:"orders"`

	// InvalidRate is the fraction of rows made deliberately invalid so
	// the validation path gets exercised (0.0 - 1.0).
	InvalidRate float64 `mapstructure:"invalid_rate"`

	// RandomSeed makes generation reproducible when non-zero.
	RandomSeed uint64 `mapstructure:"random_seed"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		ETL: ETLConfig{
			IntervalMinutes:    60,
			Sources:            []string{SourceCSV},
			FullRefresh:        false,
			BatchSize:          10000,
			BulkTimeoutSeconds: 600,
		},
		Seed: SeedConfig{
			Customers:   500,
			Products:    200,
			Orders:      2000,
			InvalidRate: 0.02,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./dwhetl.yaml
// 3. ~/.config/dwhetl/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("dwhetl")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "dwhetl"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// StagingConn returns the staging connection string, falling back to the
// warehouse connection when no separate staging database is configured.
func (c *Config) StagingConn() string {
	if c.StagingConnection != "" {
		return c.StagingConnection
	}
	return c.Connection
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	return nil
}

// ValidateRun checks configuration required for the run and once commands.
func (c *Config) ValidateRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ETL.IntervalMinutes < 1 {
		return fmt.Errorf("etl interval must be at least 1 minute")
	}
	if c.ETL.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1")
	}
	if c.ETL.BulkTimeoutSeconds < 1 {
		return fmt.Errorf("bulk_timeout_seconds must be at least 1")
	}
	if len(c.ETL.Sources) == 0 {
		return fmt.Errorf("at least one source kind is required")
	}
	for _, s := range c.ETL.Sources {
		switch s {
		case SourceCSV:
			if c.ETL.CSVPath == "" {
				return fmt.Errorf("csv_path is required for the csv source")
			}
		case SourceAPI:
			if c.API.BaseURL == "" {
				return fmt.Errorf("api.base_url is required for the api source")
			}
		default:
			return fmt.Errorf("unknown source kind: %s", s)
		}
	}
	return nil
}

// ValidateSeed checks configuration required for the seed command.
func (c *Config) ValidateSeed() error {
	if c.ETL.CSVPath == "" {
		return fmt.Errorf("csv_path is required for seed")
	}
	if c.Seed.Customers < 1 || c.Seed.Products < 1 || c.Seed.Orders < 1 {
		return fmt.Errorf("seed counts must be at least 1")
	}
	if c.Seed.InvalidRate < 0 || c.Seed.InvalidRate > 1 {
		return fmt.Errorf("invalid_rate must be between 0 and 1")
	}
	return nil
}
