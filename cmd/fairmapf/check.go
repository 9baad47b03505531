package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/fairmapf/internal/algo"
	"github.com/elektrokombinacija/fairmapf/internal/core"
	"github.com/elektrokombinacija/fairmapf/internal/report"
)

var checkCmd = &cobra.Command{
	Use:   "check <instance-file> <plan-file>",
	Short: "Verify a saved CBOR plan against its instance",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := core.LoadInstance(args[0])
		if err != nil {
			return err
		}
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		plan, err := report.DecodePlan(f)
		if err != nil {
			return err
		}

		paths := plan.CorePaths()
		if err := checkPaths(inst, paths); err != nil {
			return err
		}
		oracle, err := algo.NewOracle(inst)
		if err != nil {
			return err
		}
		sol := algo.Evaluate(paths, oracle.OptimalCosts())
		if sol.SOC != plan.SOC {
			return fmt.Errorf("plan records SOC %d, paths cost %d", plan.SOC, sol.SOC)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "OK: %s by %s, SOC=%d, MaxStretch=%.3f, fingerprint %s\n",
			plan.Instance, plan.Solver, sol.SOC, sol.MaxStretch, report.Fingerprint(paths))
		return nil
	},
}

// checkPaths validates endpoints, moves and conflicts. It runs before
// Evaluate, which panics on costs below optimal.
func checkPaths(inst *core.Instance, paths []core.Path) error {
	if len(paths) != len(inst.Agents) {
		return fmt.Errorf("plan has %d paths for %d agents", len(paths), len(inst.Agents))
	}
	for i, p := range paths {
		a := inst.Agents[i]
		if len(p) == 0 || p[0] != a.Start || p.Goal() != a.Goal {
			return fmt.Errorf("agent %d path does not join %v and %v", i, a.Start, a.Goal)
		}
		for t := 1; t < len(p); t++ {
			if p[t] != p[t-1] && !core.Adjacent(p[t], p[t-1]) {
				return fmt.Errorf("agent %d jumps from %v to %v at t=%d", i, p[t-1], p[t], t)
			}
			if !inst.Grid.Passable(p[t]) {
				return fmt.Errorf("agent %d enters blocked cell %v at t=%d", i, p[t], t)
			}
		}
	}
	if c := algo.FindFirstConflict(paths); c != nil {
		return fmt.Errorf("plan has conflict: %s", c)
	}
	return nil
}
