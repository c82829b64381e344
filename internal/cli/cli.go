//-------------------------------------------------------------------------
//
// dwhetl - Sales & Inventory Warehouse ETL
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for dwhetl.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/salesinsight/dwhetl/internal/config"
	"github.com/salesinsight/dwhetl/internal/logging"
	"github.com/salesinsight/dwhetl/pkg/version"
)

var (
	// Global flags
	cfgFile     string
	connection  string
	stagingConn string
	logLevel    string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "dwhetl",
		Short: "Sales and inventory warehouse ETL engine",
		Long: `dwhetl extracts raw customer, product and order data from CSV files
or a REST API, validates and normalizes it into staging tables, and loads
it into a PostgreSQL star-schema warehouse.

Customer and product dimensions are versioned: attribute changes close the
current row and insert a new version, so the warehouse keeps full history.
Sales facts are appended in bulk against the active dimension rows.`,
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
		"config file (default: ./dwhetl.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string for the warehouse")
	rootCmd.PersistentFlags().StringVar(&stagingConn, "staging-connection", "",
		"PostgreSQL connection string for staging (default: warehouse connection)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(onceCmd)
	rootCmd.AddCommand(seedCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if stagingConn != "" {
		cfg.StagingConnection = stagingConn
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
