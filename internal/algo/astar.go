package algo

import (
	"container/heap"
	"fmt"

	"github.com/elektrokombinacija/fairmapf/internal/core"
)

// spaceTimeState is a (cell, time) pair. Times past the last constraint are
// folded into one layer since nothing distinguishes them.
type spaceTimeState struct {
	c core.Cell
	t int
}

// astarNode for priority queue.
type astarNode struct {
	cell   core.Cell
	t      int // Equals g: every action costs one unit
	h      int
	seq    int
	parent *astarNode
	index  int // heap index
}

func (n *astarNode) f() int { return n.t + n.h }

// astarHeap implements heap.Interface. Ties on f prefer smaller h, then
// lower time, then the lexicographically smaller cell, then older entries.
type astarHeap []*astarNode

func (h astarHeap) Len() int { return len(h) }
func (h astarHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.f() != b.f() {
		return a.f() < b.f()
	}
	if a.h != b.h {
		return a.h < b.h
	}
	if a.t != b.t {
		return a.t < b.t
	}
	if a.cell != b.cell {
		return a.cell.Less(b.cell)
	}
	return a.seq < b.seq
}
func (h astarHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *astarHeap) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *astarHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// Horizon returns the search depth limit for a constraint table: past the
// latest constrained timestep any reachable goal is at most FreeCells away.
func Horizon(grid *core.Grid, table *ConstraintTable) int {
	return table.LatestTime() + grid.FreeCells() + 1
}

// SpaceTimeAStar finds a minimum-cost path for agent from start to goal
// that satisfies every constraint in table. The returned path ends at the
// first goal arrival from which waiting forever is allowed. Fails with
// ErrInfeasible when no such path exists within Horizon.
func SpaceTimeAStar(grid *core.Grid, agent *core.Agent, h *DistanceTable, table *ConstraintTable) (core.Path, error) {
	if h.Dist(agent.Start) < 0 {
		return nil, fmt.Errorf("%w: agent %d goal unreachable", ErrInfeasible, agent.ID)
	}
	if table.Violates(agent.Start, agent.Start, 0) {
		return nil, fmt.Errorf("%w: agent %d start constrained at t=0", ErrInfeasible, agent.ID)
	}

	limit := Horizon(grid, table)
	static := table.LatestTime() + 1
	key := func(c core.Cell, t int) spaceTimeState {
		if t > static {
			t = static
		}
		return spaceTimeState{c: c, t: t}
	}

	open := &astarHeap{}
	heap.Init(open)
	seq := 0
	push := func(cell core.Cell, t int, parent *astarNode) {
		heap.Push(open, &astarNode{cell: cell, t: t, h: h.Dist(cell), seq: seq, parent: parent})
		seq++
	}
	push(agent.Start, 0, nil)

	closed := make(map[spaceTimeState]bool)

	for open.Len() > 0 {
		current := heap.Pop(open).(*astarNode)

		k := key(current.cell, current.t)
		if closed[k] {
			continue
		}
		closed[k] = true

		if current.cell == agent.Goal && table.GoalSafe(agent.Goal, current.t) {
			return reconstructPath(current), nil
		}

		if current.t >= limit {
			continue
		}

		nextT := current.t + 1

		// Wait action
		if !table.Violates(current.cell, current.cell, nextT) && !closed[key(current.cell, nextT)] {
			push(current.cell, nextT, current)
		}

		// Move actions
		for _, neighbor := range grid.Neighbors(current.cell) {
			if h.Dist(neighbor) < 0 {
				continue
			}
			if table.Violates(current.cell, neighbor, nextT) {
				continue
			}
			if closed[key(neighbor, nextT)] {
				continue
			}
			push(neighbor, nextT, current)
		}
	}

	return nil, fmt.Errorf("%w: agent %d has no path within horizon %d", ErrInfeasible, agent.ID, limit)
}

func reconstructPath(node *astarNode) core.Path {
	path := make(core.Path, node.t+1)
	for n := node; n != nil; n = n.parent {
		path[n.t] = n.cell
	}
	return path
}
