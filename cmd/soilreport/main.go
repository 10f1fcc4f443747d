// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vitorsmc/analise-solo-app/internal/config"
)

var (
	// Global flags
	verbose    bool
	configPath string
	idDigits   int

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "soilreport",
	Short: "Interpret soil laboratory reports",
	Long: `soilreport reads one page of a soil laboratory report (its text and
extracted tables), finds the sample registry numbers and depth classes,
decodes the results table and compares every nutrient with the reference
targets for the sample's depth.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Reference catalog and label dictionary (default: built-in)")
	rootCmd.PersistentFlags().IntVar(&idDigits, "id-digits", -1, "Exact sample id length, 0 for any digit run (default: from config)")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig applies the --config and --id-digits flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	if idDigits >= 0 {
		return cfg.WithIDDigits(idDigits)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
