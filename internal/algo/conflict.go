package algo

import (
	"fmt"
	"sort"

	"github.com/elektrokombinacija/fairmapf/internal/core"
)

// ConflictKind distinguishes vertex and swap collisions.
type ConflictKind int

const (
	VertexConflict ConflictKind = iota
	EdgeConflict
)

// Conflict represents a collision between two agents. Agent1 < Agent2.
// For edge conflicts Agent1 moves Loc->To and Agent2 moves To->Loc,
// both arriving at Time.
type Conflict struct {
	Agent1, Agent2 core.AgentID
	Time           int
	Kind           ConflictKind
	Loc            core.Cell
	To             core.Cell
}

func (c Conflict) String() string {
	if c.Kind == EdgeConflict {
		return fmt.Sprintf("edge conflict %d/%d %v<->%v@%d", c.Agent1, c.Agent2, c.Loc, c.To, c.Time)
	}
	return fmt.Sprintf("vertex conflict %d/%d %v@%d", c.Agent1, c.Agent2, c.Loc, c.Time)
}

// Split returns the two constraints that resolve c, one per agent.
func Split(c Conflict) [2]Constraint {
	if c.Kind == EdgeConflict {
		return [2]Constraint{
			{Agent: c.Agent1, Time: c.Time, Kind: EdgeConstraint, Loc: c.Loc, To: c.To},
			{Agent: c.Agent2, Time: c.Time, Kind: EdgeConstraint, Loc: c.To, To: c.Loc},
		}
	}
	return [2]Constraint{
		{Agent: c.Agent1, Time: c.Time, Kind: VertexConstraint, Loc: c.Loc},
		{Agent: c.Agent2, Time: c.Time, Kind: VertexConstraint, Loc: c.Loc},
	}
}

// horizon returns the longest path length.
func horizon(paths []core.Path) int {
	h := 0
	for _, p := range paths {
		if len(p) > h {
			h = len(p)
		}
	}
	return h
}

// conflictAt checks agents i and j at timestep t, vertex first.
func conflictAt(paths []core.Path, i, j, t int) (Conflict, bool) {
	p1, p2 := paths[i], paths[j]
	l1, l2 := p1.At(t), p2.At(t)
	if l1 == l2 {
		return Conflict{Agent1: core.AgentID(i), Agent2: core.AgentID(j), Time: t, Kind: VertexConflict, Loc: l1}, true
	}
	if t > 0 {
		prev1, prev2 := p1.At(t-1), p2.At(t-1)
		if prev1 == l2 && prev2 == l1 {
			return Conflict{Agent1: core.AgentID(i), Agent2: core.AgentID(j), Time: t, Kind: EdgeConflict, Loc: prev1, To: l1}, true
		}
	}
	return Conflict{}, false
}

// FindFirstConflict detects the first conflict in a joint plan, each path
// extended by waiting at its goal. Earliest timestep wins; ties go to the
// lowest (Agent1, Agent2) pair, and a vertex conflict precedes an edge one.
// Returns nil when the plan is conflict-free.
func FindFirstConflict(paths []core.Path) *Conflict {
	T := horizon(paths)
	for t := 0; t < T; t++ {
		for i := 0; i < len(paths); i++ {
			for j := i + 1; j < len(paths); j++ {
				if c, ok := conflictAt(paths, i, j, t); ok {
					return &c
				}
			}
		}
	}
	return nil
}

// FindAllConflicts returns every conflict, in FindFirstConflict order.
func FindAllConflicts(paths []core.Path) []Conflict {
	var conflicts []Conflict
	T := horizon(paths)
	for t := 0; t < T; t++ {
		for i := 0; i < len(paths); i++ {
			for j := i + 1; j < len(paths); j++ {
				if c, ok := conflictAt(paths, i, j, t); ok {
					conflicts = append(conflicts, c)
				}
			}
		}
	}
	return conflicts
}

// PairConflicts returns the first conflict of every colliding pair, sorted
// like FindFirstConflict: PairConflicts(p)[0] equals *FindFirstConflict(p).
func PairConflicts(paths []core.Path) []Conflict {
	var conflicts []Conflict
	for i := 0; i < len(paths); i++ {
		for j := i + 1; j < len(paths); j++ {
			T := len(paths[i])
			if len(paths[j]) > T {
				T = len(paths[j])
			}
			for t := 0; t < T; t++ {
				if c, ok := conflictAt(paths, i, j, t); ok {
					conflicts = append(conflicts, c)
					break
				}
			}
		}
	}
	sortConflicts(conflicts)
	return conflicts
}

func sortConflicts(cs []Conflict) {
	// Pairs are generated in ascending order; a stable sort on time keeps it.
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].Time < cs[j].Time
	})
}
