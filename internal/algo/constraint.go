package algo

import (
	"fmt"

	"github.com/elektrokombinacija/fairmapf/internal/core"
)

// ConstraintKind distinguishes what a constraint forbids.
type ConstraintKind int

const (
	VertexConstraint ConstraintKind = iota // Loc at Time
	EdgeConstraint                         // Move Loc->To arriving at Time
	HoldConstraint                         // Loc at every timestep >= Time
)

func (k ConstraintKind) String() string {
	return [...]string{"vertex", "edge", "hold"}[k]
}

// Constraint prohibits one agent from a location or move at a timestep.
// Constraints are only ever added to a CT branch, never removed.
type Constraint struct {
	Agent core.AgentID
	Time  int
	Kind  ConstraintKind
	Loc   core.Cell
	To    core.Cell // Edge constraints only
}

func (c Constraint) String() string {
	if c.Kind == EdgeConstraint {
		return fmt.Sprintf("agent %d !%v->%v@%d", c.Agent, c.Loc, c.To, c.Time)
	}
	return fmt.Sprintf("agent %d !%s %v@%d", c.Agent, c.Kind, c.Loc, c.Time)
}

type vertexKey struct {
	t int
	c core.Cell
}

type edgeKey struct {
	t        int
	from, to core.Cell
}

// ConstraintTable indexes one agent's constraints by timestep for the
// low-level search.
type ConstraintTable struct {
	vertex     map[vertexKey]struct{}
	edge       map[edgeKey]struct{}
	hold       map[core.Cell]int // Earliest hold time per cell
	lastVertex map[core.Cell]int // Latest vertex constraint time per cell
	latest     int
}

// NewConstraintTable builds a table from the constraints addressed to agent.
func NewConstraintTable(agent core.AgentID, constraints []Constraint) *ConstraintTable {
	t := newConstraintTable()
	for _, c := range constraints {
		if c.Agent == agent {
			t.Add(c)
		}
	}
	return t
}

func newConstraintTable() *ConstraintTable {
	return &ConstraintTable{
		vertex:     make(map[vertexKey]struct{}),
		edge:       make(map[edgeKey]struct{}),
		hold:       make(map[core.Cell]int),
		lastVertex: make(map[core.Cell]int),
		latest:     -1,
	}
}

// Add records c regardless of its Agent field.
func (t *ConstraintTable) Add(c Constraint) {
	switch c.Kind {
	case VertexConstraint:
		t.vertex[vertexKey{c.Time, c.Loc}] = struct{}{}
		if last, ok := t.lastVertex[c.Loc]; !ok || c.Time > last {
			t.lastVertex[c.Loc] = c.Time
		}
	case EdgeConstraint:
		t.edge[edgeKey{c.Time, c.Loc, c.To}] = struct{}{}
	case HoldConstraint:
		if h, ok := t.hold[c.Loc]; !ok || c.Time < h {
			t.hold[c.Loc] = c.Time
		}
	}
	if c.Time > t.latest {
		t.latest = c.Time
	}
}

// Len returns the number of distinct constraints in the table.
func (t *ConstraintTable) Len() int {
	return len(t.vertex) + len(t.edge) + len(t.hold)
}

// LatestTime returns the largest constrained timestep, or -1 when empty.
// From LatestTime()+1 on the constraint picture no longer changes.
func (t *ConstraintTable) LatestTime() int {
	return t.latest
}

// Violates reports whether arriving at to at time t, coming from from,
// breaks a constraint. A wait has from == to.
func (t *ConstraintTable) Violates(from, to core.Cell, at int) bool {
	if _, ok := t.vertex[vertexKey{at, to}]; ok {
		return true
	}
	if from != to {
		if _, ok := t.edge[edgeKey{at, from, to}]; ok {
			return true
		}
	}
	if h, ok := t.hold[to]; ok && at >= h {
		return true
	}
	return false
}

// GoalSafe reports whether the agent may stop at goal from time at onward:
// no vertex constraint forbids goal at any later timestep.
func (t *ConstraintTable) GoalSafe(goal core.Cell, at int) bool {
	if _, ok := t.hold[goal]; ok {
		return false
	}
	if last, ok := t.lastVertex[goal]; ok && last >= at {
		return false
	}
	return true
}

// Satisfies reports whether the whole path, extended by an indefinite wait
// at its end, respects the table.
func (t *ConstraintTable) Satisfies(p core.Path) bool {
	if len(p) == 0 {
		return false
	}
	if t.Violates(p[0], p[0], 0) {
		return false
	}
	for i := 1; i < len(p); i++ {
		if t.Violates(p[i-1], p[i], i) {
			return false
		}
	}
	return t.GoalSafe(p.Goal(), len(p)-1)
}
