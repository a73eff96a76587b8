//-------------------------------------------------------------------------
//
// dwforge - star schema warehouse builder
//
// Copyright (c) 2025 - 2026, the dwforge authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for dwforge.
// Configuration is loaded from config files and CLI flags (no environment
// variables). CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for dwforge.
type Config struct {
	// Source is the connection string for the cleaned operational dataset.
	Source string `mapstructure:"source"`

	// Warehouse is the connection string for the target star schema.
	Warehouse string `mapstructure:"warehouse"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Transform holds configuration for the transform subcommand.
	Transform TransformConfig `mapstructure:"transform"`

	// Seed holds configuration for the seed subcommand.
	Seed SeedConfig `mapstructure:"seed"`
}

// TransformConfig holds configuration for the star schema transform.
type TransformConfig struct {
	// CalendarMarginYears is the margin added on both sides of the
	// observed order date range when generating the date dimension.
	CalendarMarginYears int `mapstructure:"calendar_margin_years"`

	// RegionMapFile optionally overrides the built-in state-to-region
	// lookup with a YAML mapping file.
	RegionMapFile string `mapstructure:"region_map_file"`

	// AllowViolations makes referential-integrity violations non-fatal
	// for the process exit code. The violations are always reported in
	// the run summary either way.
	AllowViolations bool `mapstructure:"allow_violations"`
}

// SeedConfig holds configuration for synthetic source data generation.
type SeedConfig struct {
	// Orders is the number of order headers to generate.
	Orders int `mapstructure:"orders"`

	// RandomSeed makes generation reproducible when non-zero.
	RandomSeed uint64 `mapstructure:"random_seed"`

	// DropExisting drops the source schema before seeding.
	DropExisting bool `mapstructure:"drop_existing"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Transform: TransformConfig{
			CalendarMarginYears: 1,
		},
		Seed: SeedConfig{
			Orders: 10000,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./dwforge.yaml
// 3. ~/.config/dwforge/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("dwforge")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "dwforge"))
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

// LoadRegionMap reads a state-to-region mapping from a YAML file.
func LoadRegionMap(path string) (map[string]string, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading region map file: %w", err)
	}

	// Viper lowercases keys; state codes are matched uppercase.
	regions := make(map[string]string)
	for _, key := range v.AllKeys() {
		regions[strings.ToUpper(key)] = v.GetString(key)
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("region map file %s contains no entries", path)
	}

	return regions, nil
}

// ValidateTransform checks configuration required for the transform command.
func (c *Config) ValidateTransform() error {
	if c.Source == "" {
		return fmt.Errorf("source connection string is required")
	}
	if c.Warehouse == "" {
		return fmt.Errorf("warehouse connection string is required")
	}
	if c.Transform.CalendarMarginYears < 0 {
		return fmt.Errorf("calendar_margin_years must be non-negative")
	}
	return nil
}

// ValidateVerify checks configuration required for the verify command.
func (c *Config) ValidateVerify() error {
	if c.Warehouse == "" {
		return fmt.Errorf("warehouse connection string is required")
	}
	return nil
}

// ValidateSeed checks configuration required for the seed command.
func (c *Config) ValidateSeed() error {
	if c.Source == "" {
		return fmt.Errorf("source connection string is required")
	}
	if c.Seed.Orders < 1 {
		return fmt.Errorf("seed orders must be at least 1")
	}
	return nil
}
