package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/fairmapf/internal/config"
	"github.com/elektrokombinacija/fairmapf/internal/logging"
	"github.com/elektrokombinacija/fairmapf/internal/report"
	"github.com/elektrokombinacija/fairmapf/internal/sweep"
)

var (
	sweepConfigPath string
	sweepWorkers    int
	sweepOutput     string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run an experiment grid and write results as CSV",
	Long: `Runs every configured experiment on every instance file. The config
file comes from --config or the FAIRMAPF_CONFIG environment variable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			cfg *config.Config
			err error
		)
		if sweepConfigPath != "" {
			cfg, err = config.LoadFile(sweepConfigPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = sweepWorkers
		}
		if sweepOutput != "" {
			cfg.Output = sweepOutput
		}

		// Config file logging applies unless overridden on the command line.
		if cfg.Log.File != "" && !cmd.Flags().Changed("log-file") {
			closeLog()
			logger, closeLog, err = logging.New(logging.Options{
				Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File,
			})
			if err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		instances, err := sweep.LoadInstances(cfg.Instances, logger)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(cfg.Output), 0o755); err != nil {
			return err
		}
		f, err := os.Create(cfg.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		w := report.NewWriter(f)

		out := cmd.OutOrStdout()
		total := len(instances) * len(cfg.Experiments)
		fmt.Fprintf(out, "Host: %s\n", report.CollectSysInfo())
		fmt.Fprintf(out, "Running experiments: %d instances x %d experiments = %d runs\n",
			len(instances), len(cfg.Experiments), total)

		done := 0
		records, err := sweep.Run(ctx, cfg, instances,
			sweep.WithLogger(logger),
			sweep.WithRecordHook(func(r report.Record) error {
				done++
				mark := "[OK]"
				if !r.Success {
					mark = "[FAIL]"
				}
				fmt.Fprintf(out, "[%d/%d] %s / %s %s\n", done, total, r.Instance, r.Solver, mark)
				return w.Write(r)
			}))
		if err != nil {
			return err
		}

		fmt.Fprintln(out)
		report.PrintSummary(out, records)
		fmt.Fprintf(out, "\nResults saved to %s\n", cfg.Output)
		return nil
	},
}

func init() {
	sweepCmd.Flags().StringVarP(&sweepConfigPath, "config", "c", "", "Sweep config file (default $FAIRMAPF_CONFIG)")
	sweepCmd.Flags().IntVarP(&sweepWorkers, "workers", "j", 0, "Concurrent solver invocations (0 = one per CPU)")
	sweepCmd.Flags().StringVarP(&sweepOutput, "output", "o", "", "CSV output path (overrides the config)")
}
