package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/fairmapf/internal/logging"
)

var (
	logLevel  string
	logFormat string
	logFile   string

	logger   *slog.Logger
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "fairmapf",
	Short: "Fairness-aware multi-agent path finding",
	Long: `fairmapf plans collision-free paths for agents on a 4-connected grid
using Conflict-Based Search, with three objectives:

  standard  - minimize sum of costs
  weighted  - minimize sum of costs + beta * max stretch
  bounded   - minimize sum of costs with max stretch <= K

Available commands:
  solve     - solve one instance and print its metrics
  sweep     - run an experiment grid from a YAML config into a CSV file
  check     - verify a saved plan against its instance
  simulate  - solve and replay the plan step by step`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, closeLog, err = logging.New(logging.Options{
			Level:  logLevel,
			Format: logFormat,
			File:   logFile,
		})
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto", "Log format (auto, text, json)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to a rotated file instead of stderr")

	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(simulateCmd)
}
