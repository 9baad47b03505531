package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/elektrokombinacija/fairmapf/internal/algo"
	"github.com/elektrokombinacija/fairmapf/internal/config"
	"github.com/elektrokombinacija/fairmapf/internal/core"
	"github.com/elektrokombinacija/fairmapf/internal/report"
)

var (
	solveMode          string
	solveBeta          float64
	solveBound         float64
	solveBudget        time.Duration
	solveMaxExpansions int
	solvePlanOut       string
	solveTrace         bool
	solvePrioritized   bool
	solveCompare       bool
	solveShowPaths     bool
)

var solveCmd = &cobra.Command{
	Use:   "solve <instance-file>",
	Short: "Solve one instance and print its metrics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := core.LoadInstance(args[0])
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Instance: %s, %dx%d grid, %d agents\n",
			inst.Name, inst.Grid.Rows(), inst.Grid.Cols(), len(inst.Agents))

		if solveCompare {
			return compareSolvers(ctx, cmd, inst)
		}

		solver, err := buildSolver()
		if err != nil {
			return err
		}
		res, err := solver.Solve(ctx, inst)
		if err != nil {
			return err
		}
		printResult(cmd, res)

		if res.Success() && solveShowPaths {
			for i, p := range res.Solution.Paths {
				fmt.Fprintf(out, "  agent %d (stretch %.3f): %s\n", i, res.Solution.Stretches[i], formatPath(p))
			}
		}
		if res.Success() && solvePlanOut != "" {
			if err := writePlan(solvePlanOut, inst, res); err != nil {
				return err
			}
			fmt.Fprintf(out, "Plan written to %s (%s)\n", solvePlanOut, report.Fingerprint(res.Solution.Paths))
		}
		return nil
	},
}

func init() {
	addSolverFlags(solveCmd.Flags())
	solveCmd.Flags().StringVar(&solvePlanOut, "plan-out", "", "Write the plan as CBOR to this file")
	solveCmd.Flags().BoolVar(&solveCompare, "compare", false, "Run the default experiment set and compare")
	solveCmd.Flags().BoolVar(&solveShowPaths, "paths", false, "Print every agent's path")
}

// addSolverFlags binds the solver selection flags shared by solve and
// simulate.
func addSolverFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&solveMode, "mode", "m", "standard", "Objective mode (standard, weighted, bounded)")
	fs.Float64Var(&solveBeta, "beta", 10, "Weighted mode: penalty on max stretch")
	fs.Float64VarP(&solveBound, "bound", "k", 1.5, "Bounded mode: max stretch ceiling")
	fs.DurationVar(&solveBudget, "budget", time.Minute, "Time budget (0 = none)")
	fs.IntVar(&solveMaxExpansions, "max-expansions", 0, "High-level expansion limit (0 = none)")
	fs.BoolVar(&solveTrace, "trace", false, "Log every high-level expansion at debug level")
	fs.BoolVar(&solvePrioritized, "prioritized", false, "Use prioritized planning instead of CBS")
}

func buildSolver() (algo.Solver, error) {
	if solvePrioritized {
		return algo.NewPrioritized(solveBudget), nil
	}
	mode, err := algo.ParseMode(solveMode)
	if err != nil {
		return nil, err
	}
	cfg := algo.Config{
		Mode:          mode,
		Beta:          solveBeta,
		Bound:         solveBound,
		TimeBudget:    solveBudget,
		MaxExpansions: solveMaxExpansions,
		Logger:        logger,
	}
	if solveTrace {
		cfg.Observer = algo.NewLogObserver(logger)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return algo.NewCBS(cfg), nil
}

func compareSolvers(ctx context.Context, cmd *cobra.Command, inst *core.Instance) error {
	cfg := config.Default()
	cfg.TimeBudget = solveBudget
	cfg.MaxExpansions = solveMaxExpansions
	for _, exp := range cfg.Experiments {
		solver, err := cfg.NewSolver(exp, logger)
		if err != nil {
			return err
		}
		res, err := solver.Solve(ctx, inst)
		if err != nil {
			return err
		}
		printResult(cmd, res)
	}
	return nil
}

func printResult(cmd *cobra.Command, res *algo.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n  %s: ", res.Solver)
	if !res.Success() {
		fmt.Fprintf(out, "%s after %v (expanded=%d)\n", res.Reason, res.Elapsed.Round(time.Microsecond), res.Stats.Expanded)
		return
	}
	sol := res.Solution
	fmt.Fprintf(out, "SOC=%d, Makespan=%d, MaxStretch=%.3f, AvgStretch=%.3f, Time=%v, expanded=%d, generated=%d, pruned=%d\n",
		sol.SOC, sol.Makespan, sol.MaxStretch, sol.AvgStretch, res.Elapsed.Round(time.Microsecond),
		res.Stats.Expanded, res.Stats.Generated, res.Stats.Pruned)
}

func formatPath(p core.Path) string {
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func writePlan(path string, inst *core.Instance, res *algo.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.EncodePlan(f, report.NewPlan(inst, res.Solver, res.Solution)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
