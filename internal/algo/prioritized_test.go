package algo

import (
	"context"
	"testing"

	"github.com/elektrokombinacija/fairmapf/internal/core"
)

func TestPrioritized_NoConflict(t *testing.T) {
	inst := core.NewInstance("parallel", createGrid(5),
		[]core.Cell{{Row: 0, Col: 0}, {Row: 4, Col: 0}},
		[]core.Cell{{Row: 0, Col: 4}, {Row: 4, Col: 4}})

	res, err := NewPrioritized(0).Solve(context.Background(), inst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkPlan(t, inst, res)
	if res.Solution.SOC != 8 || res.Solver != "Prioritized" {
		t.Errorf("%s: SOC %d", res.Solver, res.Solution.SOC)
	}
}

func TestPrioritized_FirstAgentOptimal(t *testing.T) {
	inst := bottleneck()
	res, err := NewPrioritized(0).Solve(context.Background(), inst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success() {
		t.Skipf("prioritized order failed: %s", res.Reason)
	}
	checkPlan(t, inst, res)
	if res.Solution.Costs[0] != 8 {
		t.Errorf("Highest priority agent cost %d, want 8", res.Solution.Costs[0])
	}
}

func TestPrioritized_Incomplete(t *testing.T) {
	// Agent 0 takes the corridor first and agent 1 cannot step aside in time.
	res, err := NewPrioritized(0).Solve(context.Background(), pocketCorridor())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Reason != Infeasible {
		t.Errorf("Expected Infeasible, got %s", res.Reason)
	}
}
