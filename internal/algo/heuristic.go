package algo

import (
	"fmt"

	"github.com/elektrokombinacija/fairmapf/internal/core"
)

// DistanceTable holds true shortest distances to one goal, ignoring time
// and other agents. Unreachable cells hold -1.
type DistanceTable struct {
	grid *core.Grid
	dist []int
}

// NewDistanceTable runs a reverse breadth-first sweep from goal.
func NewDistanceTable(grid *core.Grid, goal core.Cell) *DistanceTable {
	d := &DistanceTable{grid: grid, dist: make([]int, grid.Size())}
	for i := range d.dist {
		d.dist[i] = -1
	}
	if !grid.Passable(goal) {
		return d
	}

	queue := []core.Cell{goal}
	d.dist[grid.Index(goal)] = 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		next := d.dist[grid.Index(cur)] + 1
		for _, n := range grid.Neighbors(cur) {
			idx := grid.Index(n)
			if d.dist[idx] < 0 {
				d.dist[idx] = next
				queue = append(queue, n)
			}
		}
	}
	return d
}

// Dist returns the distance from c to the goal, or -1.
func (d *DistanceTable) Dist(c core.Cell) int {
	if !d.grid.InBounds(c) {
		return -1
	}
	return d.dist[d.grid.Index(c)]
}

// Oracle precomputes every agent's heuristic table and optimal cost.
type Oracle struct {
	tables  []*DistanceTable
	optimal []int
}

// NewOracle computes per-agent distance tables. It fails with ErrInfeasible
// if some agent cannot reach its goal even when alone.
func NewOracle(inst *core.Instance) (*Oracle, error) {
	o := &Oracle{
		tables:  make([]*DistanceTable, len(inst.Agents)),
		optimal: make([]int, len(inst.Agents)),
	}
	for i, a := range inst.Agents {
		t := NewDistanceTable(inst.Grid, a.Goal)
		cost := t.Dist(a.Start)
		if cost < 0 {
			return nil, fmt.Errorf("%w: agent %d cannot reach goal %v from %v", ErrInfeasible, a.ID, a.Goal, a.Start)
		}
		o.tables[i] = t
		o.optimal[i] = cost
	}
	return o, nil
}

// Table returns the heuristic table of agent id.
func (o *Oracle) Table(id core.AgentID) *DistanceTable {
	return o.tables[id]
}

// Optimal returns agent id's shortest path cost ignoring other agents.
func (o *Oracle) Optimal(id core.AgentID) int {
	return o.optimal[id]
}

// OptimalCosts returns the optimal cost of every agent, indexed by ID.
func (o *Oracle) OptimalCosts() []int {
	return o.optimal
}

// Annotate writes the optimal costs into inst's agents. Call it once after
// loading, before the instance is shared between goroutines.
func (o *Oracle) Annotate(inst *core.Instance) {
	for i, a := range inst.Agents {
		a.OptimalCost = o.optimal[i]
	}
}
