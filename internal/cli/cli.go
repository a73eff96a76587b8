//-------------------------------------------------------------------------
//
// dwforge - star schema warehouse builder
//
// Copyright (c) 2025 - 2026, the dwforge authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for dwforge.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/dwforge/dwforge/internal/config"
	"github.com/dwforge/dwforge/internal/logging"
	"github.com/dwforge/dwforge/pkg/version"
)

var (
	// Global flags
	cfgFile       string
	sourceFlag    string
	warehouseFlag string
	logLevel      string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "dwforge",
		Short: "Star schema warehouse builder for e-commerce order data",
		Long: `dwforge reads a cleaned operational e-commerce dataset from PostgreSQL,
builds a dimensional star schema (customer, product, seller and date
dimensions around an order-line-grain fact table), and loads it into a
target warehouse database atomically.

Each transform run truncates and reloads the warehouse, verifies row
counts against what the builders produced, and anti-joins the fact table
against every dimension to report referential integrity violations.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./dwforge.yaml)")
	rootCmd.PersistentFlags().StringVar(&sourceFlag, "source", "",
		"PostgreSQL connection string for the source dataset")
	rootCmd.PersistentFlags().StringVar(&warehouseFlag, "warehouse", "",
		"PostgreSQL connection string for the target warehouse")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(seedCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if sourceFlag != "" {
		cfg.Source = sourceFlag
	}
	if warehouseFlag != "" {
		cfg.Warehouse = warehouseFlag
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
