package algo

import (
	"context"
	"errors"
	"time"

	"github.com/elektrokombinacija/fairmapf/internal/core"
)

// Prioritized implements prioritized planning: agents are planned one at a
// time in ID order, each treating all earlier paths as moving obstacles.
// It is fast and incomplete, and serves as the unfair baseline.
type Prioritized struct {
	TimeBudget time.Duration
}

// NewPrioritized creates a prioritized planning solver.
func NewPrioritized(budget time.Duration) *Prioritized {
	return &Prioritized{TimeBudget: budget}
}

func (p *Prioritized) Name() string { return "Prioritized" }

// Solve implements prioritized planning.
func (p *Prioritized) Solve(ctx context.Context, inst *core.Instance) (*Result, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	started := time.Now()
	res := &Result{Solver: p.Name(), Mode: ModeStandard}
	finish := func(reason Termination) (*Result, error) {
		res.Reason = reason
		res.Elapsed = time.Since(started)
		return res, nil
	}

	oracle, err := NewOracle(inst)
	if err != nil {
		if errors.Is(err, ErrInfeasible) {
			return finish(Infeasible)
		}
		return nil, err
	}

	// Every later agent sees the same reservations, so one table serves all.
	reserved := newConstraintTable()
	paths := make([]core.Path, len(inst.Agents))

	for i, agent := range inst.Agents {
		if ctx.Err() != nil || (p.TimeBudget > 0 && time.Since(started) >= p.TimeBudget) {
			return finish(Timeout)
		}

		path, err := SpaceTimeAStar(inst.Grid, agent, oracle.Table(agent.ID), reserved)
		res.Stats.LowLevelCalls++
		if err != nil {
			return finish(Infeasible)
		}
		paths[i] = path
		reserve(reserved, path)
	}

	sol := Evaluate(paths, oracle.OptimalCosts())
	assertf(FindFirstConflict(paths) == nil, "prioritized plan contains a conflict")
	res.Solution = sol
	return finish(Solved)
}

// reserve turns a planned path into constraints for lower-priority agents:
// its cells, the reverse of each move, and its goal from arrival onward.
func reserve(table *ConstraintTable, path core.Path) {
	for t, c := range path {
		table.Add(Constraint{Time: t, Kind: VertexConstraint, Loc: c})
		if t > 0 && path[t-1] != c {
			table.Add(Constraint{Time: t, Kind: EdgeConstraint, Loc: c, To: path[t-1]})
		}
	}
	table.Add(Constraint{Time: len(path) - 1, Kind: HoldConstraint, Loc: path.Goal()})
}
