package algo

import (
	"errors"
	"reflect"
	"testing"

	"github.com/elektrokombinacija/fairmapf/internal/core"
)

func planOne(t *testing.T, grid *core.Grid, start, goal core.Cell, cons ...Constraint) (core.Path, error) {
	t.Helper()
	agent := &core.Agent{ID: 0, Start: start, Goal: goal}
	return SpaceTimeAStar(grid, agent, NewDistanceTable(grid, goal), NewConstraintTable(0, cons))
}

func TestSpaceTimeAStar_Optimal(t *testing.T) {
	grid := createGrid(5)
	path, err := planOne(t, grid, core.Cell{Row: 0, Col: 0}, core.Cell{Row: 3, Col: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path.Cost() != 7 {
		t.Errorf("Expected cost 7, got %d", path.Cost())
	}
	if path[0] != (core.Cell{Row: 0, Col: 0}) || path.Goal() != (core.Cell{Row: 3, Col: 4}) {
		t.Errorf("Path does not join start and goal: %v", path)
	}
}

func TestSpaceTimeAStar_StartIsGoal(t *testing.T) {
	path, err := planOne(t, createGrid(3), core.Cell{Row: 1, Col: 1}, core.Cell{Row: 1, Col: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(path) != 1 || path.Cost() != 0 {
		t.Errorf("Expected single-cell path, got %v", path)
	}
}

func TestSpaceTimeAStar_VertexConstraint(t *testing.T) {
	// Straight corridor: the only way around (0,1)@1 is to wait.
	grid := core.NewOpenGrid(1, 3)
	cons := Constraint{Time: 1, Kind: VertexConstraint, Loc: core.Cell{Row: 0, Col: 1}}

	path, err := planOne(t, grid, core.Cell{Row: 0, Col: 0}, core.Cell{Row: 0, Col: 2}, cons)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := core.Path{{Row: 0, Col: 0}, {Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}}
	if !reflect.DeepEqual(path, want) {
		t.Errorf("Expected %v, got %v", want, path)
	}
}

func TestSpaceTimeAStar_EdgeConstraint(t *testing.T) {
	grid := createGrid(3)
	cons := Constraint{Time: 1, Kind: EdgeConstraint, Loc: core.Cell{Row: 0, Col: 0}, To: core.Cell{Row: 0, Col: 1}}

	path, err := planOne(t, grid, core.Cell{Row: 0, Col: 0}, core.Cell{Row: 0, Col: 1}, cons)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path.Cost() != 2 {
		t.Errorf("Expected cost 2, got %d (%v)", path.Cost(), path)
	}
	if path[1] == (core.Cell{Row: 0, Col: 1}) {
		t.Errorf("Path uses the forbidden move: %v", path)
	}
	if !NewConstraintTable(0, []Constraint{cons}).Satisfies(path) {
		t.Errorf("Path violates constraints: %v", path)
	}
}

func TestSpaceTimeAStar_GoalNotSafeUntilLastConstraint(t *testing.T) {
	// Goal is forbidden at t=5, so the agent may not settle there earlier.
	grid := createGrid(3)
	cons := Constraint{Time: 5, Kind: VertexConstraint, Loc: core.Cell{Row: 0, Col: 1}}

	path, err := planOne(t, grid, core.Cell{Row: 0, Col: 0}, core.Cell{Row: 0, Col: 1}, cons)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path.Cost() != 6 {
		t.Errorf("Expected cost 6, got %d (%v)", path.Cost(), path)
	}
	if path.At(5) == (core.Cell{Row: 0, Col: 1}) {
		t.Errorf("Agent at goal during constrained timestep: %v", path)
	}
}

func TestSpaceTimeAStar_Unreachable(t *testing.T) {
	grid := core.NewOpenGrid(1, 3).WithBlocked(core.Cell{Row: 0, Col: 1})
	_, err := planOne(t, grid, core.Cell{Row: 0, Col: 0}, core.Cell{Row: 0, Col: 2})
	if !errors.Is(err, ErrInfeasible) {
		t.Errorf("Expected ErrInfeasible, got %v", err)
	}
}

func TestSpaceTimeAStar_HoldOnGoal(t *testing.T) {
	grid := createGrid(3)
	cons := Constraint{Time: 4, Kind: HoldConstraint, Loc: core.Cell{Row: 2, Col: 2}}
	_, err := planOne(t, grid, core.Cell{Row: 0, Col: 0}, core.Cell{Row: 2, Col: 2}, cons)
	if !errors.Is(err, ErrInfeasible) {
		t.Errorf("Expected ErrInfeasible, got %v", err)
	}
}

func TestSpaceTimeAStar_StartConstrained(t *testing.T) {
	grid := createGrid(3)
	cons := Constraint{Time: 0, Kind: VertexConstraint, Loc: core.Cell{Row: 0, Col: 0}}
	_, err := planOne(t, grid, core.Cell{Row: 0, Col: 0}, core.Cell{Row: 2, Col: 2}, cons)
	if !errors.Is(err, ErrInfeasible) {
		t.Errorf("Expected ErrInfeasible, got %v", err)
	}
}

func TestSpaceTimeAStar_Deterministic(t *testing.T) {
	grid := createGrid(6)
	cons := []Constraint{
		{Time: 2, Kind: VertexConstraint, Loc: core.Cell{Row: 1, Col: 1}},
		{Time: 3, Kind: EdgeConstraint, Loc: core.Cell{Row: 2, Col: 1}, To: core.Cell{Row: 2, Col: 2}},
	}
	first, err := planOne(t, grid, core.Cell{Row: 0, Col: 0}, core.Cell{Row: 5, Col: 5}, cons...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _ := planOne(t, grid, core.Cell{Row: 0, Col: 0}, core.Cell{Row: 5, Col: 5}, cons...)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Run %d returned %v, want %v", i, again, first)
		}
	}
}

func TestConstraintTable(t *testing.T) {
	cons := []Constraint{
		{Agent: 0, Time: 2, Kind: VertexConstraint, Loc: core.Cell{Row: 1, Col: 1}},
		{Agent: 0, Time: 3, Kind: EdgeConstraint, Loc: core.Cell{Row: 1, Col: 1}, To: core.Cell{Row: 1, Col: 2}},
		{Agent: 1, Time: 9, Kind: VertexConstraint, Loc: core.Cell{Row: 0, Col: 0}},
	}
	table := NewConstraintTable(0, cons)

	if table.Len() != 2 {
		t.Errorf("Expected 2 constraints for agent 0, got %d", table.Len())
	}
	if table.LatestTime() != 3 {
		t.Errorf("Expected latest time 3, got %d", table.LatestTime())
	}
	if !table.Violates(core.Cell{Row: 1, Col: 0}, core.Cell{Row: 1, Col: 1}, 2) {
		t.Error("Vertex constraint not reported")
	}
	if !table.Violates(core.Cell{Row: 1, Col: 1}, core.Cell{Row: 1, Col: 2}, 3) {
		t.Error("Edge constraint not reported")
	}
	if table.Violates(core.Cell{Row: 1, Col: 2}, core.Cell{Row: 1, Col: 1}, 3) {
		t.Error("Edge constraint must be directional")
	}
	if table.GoalSafe(core.Cell{Row: 1, Col: 1}, 1) {
		t.Error("Goal with later vertex constraint reported safe")
	}
	if !table.GoalSafe(core.Cell{Row: 1, Col: 1}, 3) {
		t.Error("Goal past its last constraint reported unsafe")
	}

	if NewConstraintTable(0, nil).LatestTime() != -1 {
		t.Error("Empty table should have latest time -1")
	}
}
