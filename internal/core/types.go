// Package core defines domain models for fairness-aware MAPF.
package core

import "fmt"

// Cell is a grid coordinate.
type Cell struct {
	Row, Col int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Less orders cells row-major. Used for deterministic tie-breaking.
func (c Cell) Less(o Cell) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}

// Path is a sequence of cells indexed by timestep: Path[t] is the agent's
// location at time t. Path[0] is the start, the last element the goal.
type Path []Cell

// Cost returns the number of actions (moves and waits) in the path.
func (p Path) Cost() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// At returns the location at time t. Before the path starts the agent is at
// its start; after it ends the agent waits at its goal indefinitely.
func (p Path) At(t int) Cell {
	if t < 0 {
		return p[0]
	}
	if t >= len(p) {
		return p[len(p)-1]
	}
	return p[t]
}

// Goal returns the final cell of the path.
func (p Path) Goal() Cell {
	return p[len(p)-1]
}
