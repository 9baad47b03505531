package core

import (
	"errors"
	"fmt"
)

// ErrMalformedInstance is returned for grid or agent data that cannot be
// searched. It is always surfaced before any search begins.
var ErrMalformedInstance = errors.New("malformed instance")

// Instance is a MAPF problem: one grid and an ordered agent list.
type Instance struct {
	Name   string
	Grid   *Grid
	Agents []*Agent
}

// NewInstance builds an instance from start/goal pairs. Agent IDs follow
// the order of the slices.
func NewInstance(name string, grid *Grid, starts, goals []Cell) *Instance {
	inst := &Instance{Name: name, Grid: grid}
	for i := range starts {
		var goal Cell
		if i < len(goals) {
			goal = goals[i]
		}
		inst.Agents = append(inst.Agents, &Agent{ID: AgentID(i), Start: starts[i], Goal: goal})
	}
	return inst
}

// Validate checks instance consistency.
func (inst *Instance) Validate() error {
	if inst.Grid == nil || inst.Grid.Size() == 0 {
		return fmt.Errorf("%w: empty grid", ErrMalformedInstance)
	}
	if len(inst.Agents) == 0 {
		return fmt.Errorf("%w: no agents", ErrMalformedInstance)
	}

	starts := make(map[Cell]AgentID, len(inst.Agents))
	goals := make(map[Cell]AgentID, len(inst.Agents))
	for i, a := range inst.Agents {
		if a == nil {
			return fmt.Errorf("%w: agent %d is nil", ErrMalformedInstance, i)
		}
		if a.ID != AgentID(i) {
			return fmt.Errorf("%w: agent at index %d has id %d", ErrMalformedInstance, i, a.ID)
		}
		if !inst.Grid.Passable(a.Start) {
			return fmt.Errorf("%w: agent %d start %v is blocked or out of bounds", ErrMalformedInstance, i, a.Start)
		}
		if !inst.Grid.Passable(a.Goal) {
			return fmt.Errorf("%w: agent %d goal %v is blocked or out of bounds", ErrMalformedInstance, i, a.Goal)
		}
		if other, ok := starts[a.Start]; ok {
			return fmt.Errorf("%w: agents %d and %d share start %v", ErrMalformedInstance, other, i, a.Start)
		}
		if other, ok := goals[a.Goal]; ok {
			return fmt.Errorf("%w: agents %d and %d share goal %v", ErrMalformedInstance, other, i, a.Goal)
		}
		starts[a.Start] = a.ID
		goals[a.Goal] = a.ID
	}
	return nil
}

// AgentByID finds agent by ID.
func (inst *Instance) AgentByID(id AgentID) *Agent {
	if id < 0 || int(id) >= len(inst.Agents) {
		return nil
	}
	return inst.Agents[id]
}
