package algo

import (
	"container/heap"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/elektrokombinacija/fairmapf/internal/core"
)

// CBS implements fairness-aware Conflict-Based Search. The objective mode
// decides the open-list key and, in bounded mode, prunes every node whose
// MaxStretch exceeds the bound. Each agent's cost never decreases down a
// branch, so neither does MaxStretch, and a pruned node has no admissible
// descendant.
type CBS struct {
	cfg Config
}

// NewCBS creates a CBS solver. The config is validated by Solve.
func NewCBS(cfg Config) *CBS {
	return &CBS{cfg: cfg}
}

func (c *CBS) Name() string { return c.cfg.Label() }

// Config returns the solver configuration.
func (c *CBS) Config() Config { return c.cfg }

// ctNode is a node in the constraint tree. Nodes live in an arena and
// refer to their parent by index. A node stores only the one constraint it
// added; its full constraint set is the chain up to the root.
type ctNode struct {
	parent     int // -1 for the root
	depth      int
	constraint Constraint // Unset for the root
	paths      []core.Path
	sol        *core.Solution
	conflicts  []Conflict // First conflict of every colliding pair
	key        float64
}

// openEntry orders the open list by key, then by fewer colliding pairs,
// then by creation order.
type openEntry struct {
	node      int
	key       float64
	conflicts int
}

type openList []openEntry

func (h openList) Len() int { return len(h) }
func (h openList) Less(i, j int) bool {
	if h[i].key != h[j].key {
		return h[i].key < h[j].key
	}
	if h[i].conflicts != h[j].conflicts {
		return h[i].conflicts < h[j].conflicts
	}
	return h[i].node < h[j].node
}
func (h openList) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *openList) Push(x any)   { *h = append(*h, x.(openEntry)) }
func (h *openList) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// search holds the state of one Solve invocation. Nothing is shared
// between invocations.
type search struct {
	cfg       Config
	inst      *core.Instance
	oracle    *Oracle
	objective Objective
	logger    *slog.Logger
	observer  Observer
	started   time.Time

	nodes []ctNode
	open  openList
	stats Stats
}

// Solve implements the CBS algorithm.
func (c *CBS) Solve(ctx context.Context, inst *core.Instance) (*Result, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}

	s := &search{
		cfg:       c.cfg,
		inst:      inst,
		objective: c.cfg.Objective(),
		logger:    c.cfg.logger().With("solver", c.Name(), "instance", inst.Name),
		observer:  c.cfg.Observer,
		started:   time.Now(),
	}
	res := &Result{Solver: c.Name(), Mode: c.cfg.Mode, Param: c.cfg.Param()}

	s.logger.Info("search started", "agents", len(inst.Agents),
		"grid", inst.Grid.Rows()*inst.Grid.Cols(), "mode", c.cfg.Mode.String(), "param", res.Param)

	oracle, err := NewOracle(inst)
	if err != nil {
		if !errors.Is(err, ErrInfeasible) {
			return nil, err
		}
		s.logger.Info("root infeasible", "error", err)
		res.Reason = Infeasible
		res.Elapsed = time.Since(s.started)
		return res, nil
	}
	s.oracle = oracle

	res.Reason, res.Solution = s.run(ctx)
	res.Stats = s.stats
	res.Elapsed = time.Since(s.started)

	attrs := []any{"reason", res.Reason.String(), "expanded", s.stats.Expanded,
		"generated", s.stats.Generated, "pruned", s.stats.Pruned, "elapsed", res.Elapsed}
	if res.Solution != nil {
		attrs = append(attrs, "soc", res.Solution.SOC, "max_stretch", res.Solution.MaxStretch)
	}
	s.logger.Info("search finished", attrs...)
	return res, nil
}

func (s *search) run(ctx context.Context) (Termination, *core.Solution) {
	if !s.pushRoot() {
		return Infeasible, nil
	}

	for s.open.Len() > 0 {
		if s.budgetExhausted(ctx) {
			return Timeout, nil
		}

		entry := heap.Pop(&s.open).(openEntry)
		idx := entry.node
		s.stats.Expanded++
		info := s.info(idx)
		if s.observer != nil {
			s.observer.OnNodeExpanded(info)
		}

		node := &s.nodes[idx]
		if len(node.conflicts) == 0 {
			s.verifySolution(node.sol)
			if s.observer != nil {
				s.observer.OnSolutionFound(info)
			}
			return Solved, node.sol
		}

		conflict := node.conflicts[0]
		if s.observer != nil {
			s.observer.OnConflictDetected(info, conflict)
		}
		s.logger.Debug("expand", "node", idx, "depth", info.Depth, "key", info.Key, "conflict", conflict.String())

		for _, con := range Split(conflict) {
			s.spawn(idx, con)
		}

		// Expanded nodes keep only what constraint lookups need.
		s.nodes[idx].paths = nil
		s.nodes[idx].sol = nil
		s.nodes[idx].conflicts = nil
	}

	return Infeasible, nil
}

// budgetExhausted checks cancellation and the time and expansion budgets.
// It runs between expansions only.
func (s *search) budgetExhausted(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	if s.cfg.TimeBudget > 0 && time.Since(s.started) >= s.cfg.TimeBudget {
		return true
	}
	if s.cfg.MaxExpansions > 0 && s.stats.Expanded >= s.cfg.MaxExpansions {
		return true
	}
	return false
}

// pushRoot plans every agent independently. Returns false when the root
// itself cannot be admitted.
func (s *search) pushRoot() bool {
	empty := newConstraintTable()
	paths := make([]core.Path, len(s.inst.Agents))
	for i, agent := range s.inst.Agents {
		path, err := SpaceTimeAStar(s.inst.Grid, agent, s.oracle.Table(agent.ID), empty)
		s.stats.LowLevelCalls++
		assertf(err == nil, "agent %d has an optimal cost but no root path: %v", i, err)
		assertf(path.Cost() == s.oracle.Optimal(agent.ID), "agent %d root cost %d != optimal %d",
			i, path.Cost(), s.oracle.Optimal(agent.ID))
		paths[i] = path
	}

	sol := Evaluate(paths, s.oracle.OptimalCosts())
	if !s.objective.Admits(sol) {
		s.logger.Info("root exceeds fairness bound", "max_stretch", sol.MaxStretch, "bound", s.objective.Bound)
		return false
	}
	s.push(-1, Constraint{}, paths, sol)
	return true
}

// spawn builds the child of parent that adds con, replanning only the
// constrained agent.
func (s *search) spawn(parent int, con Constraint) {
	agent := s.inst.Agents[con.Agent]
	constraints := append(s.constraintsFor(parent, con.Agent), con)
	table := NewConstraintTable(con.Agent, constraints)

	path, err := SpaceTimeAStar(s.inst.Grid, agent, s.oracle.Table(con.Agent), table)
	s.stats.LowLevelCalls++
	if err != nil {
		s.stats.DeadEnds++
		if s.observer != nil {
			s.observer.OnChildDiscarded(s.info(parent), con, DiscardInfeasible)
		}
		return
	}
	assertf(table.Satisfies(path), "replanned path for agent %d violates its constraints", con.Agent)

	p := &s.nodes[parent]
	paths := make([]core.Path, len(p.paths))
	copy(paths, p.paths)
	paths[con.Agent] = path

	sol := Evaluate(paths, s.oracle.OptimalCosts())
	assertf(sol.SOC >= p.sol.SOC, "child SOC %d below parent SOC %d", sol.SOC, p.sol.SOC)

	if !s.objective.Admits(sol) {
		s.stats.Pruned++
		if s.observer != nil {
			s.observer.OnChildDiscarded(s.info(parent), con, DiscardPruned)
		}
		return
	}
	s.push(parent, con, paths, sol)
}

func (s *search) push(parent int, con Constraint, paths []core.Path, sol *core.Solution) {
	depth := 0
	if parent >= 0 {
		depth = s.nodes[parent].depth + 1
	}
	node := ctNode{
		parent:     parent,
		depth:      depth,
		constraint: con,
		paths:      paths,
		sol:        sol,
		conflicts:  PairConflicts(paths),
		key:        s.objective.Key(sol),
	}
	s.nodes = append(s.nodes, node)
	s.stats.Generated++
	heap.Push(&s.open, openEntry{node: len(s.nodes) - 1, key: node.key, conflicts: len(node.conflicts)})
}

// constraintsFor collects agent's constraints along the chain from idx to
// the root.
func (s *search) constraintsFor(idx int, agent core.AgentID) []Constraint {
	var out []Constraint
	for i := idx; i >= 0; i = s.nodes[i].parent {
		n := &s.nodes[i]
		if n.parent >= 0 && n.constraint.Agent == agent {
			out = append(out, n.constraint)
		}
	}
	return out
}

func (s *search) info(idx int) NodeInfo {
	n := &s.nodes[idx]
	info := NodeInfo{
		ID:         idx,
		ParentID:   n.parent,
		Depth:      n.depth,
		SOC:        n.sol.SOC,
		MaxStretch: n.sol.MaxStretch,
		Key:        n.key,
		Conflicts:  len(n.conflicts),
	}
	if n.parent >= 0 {
		c := n.constraint
		info.Constraint = &c
	}
	return info
}

// verifySolution asserts the properties every returned plan must have.
func (s *search) verifySolution(sol *core.Solution) {
	assertf(FindFirstConflict(sol.Paths) == nil, "returned plan contains a conflict")
	assertf(sol.RecomputeSOC() == sol.SOC, "SOC %d does not match path costs %d", sol.SOC, sol.RecomputeSOC())
	assertf(s.objective.Admits(sol), "returned plan exceeds the fairness bound")
	for i, p := range sol.Paths {
		a := s.inst.Agents[i]
		assertf(len(p) > 0 && p[0] == a.Start && p.Goal() == a.Goal, "agent %d path does not join start and goal", i)
		for t := 1; t < len(p); t++ {
			assertf(p[t] == p[t-1] || core.Adjacent(p[t], p[t-1]), "agent %d jumps at t=%d", i, t)
			assertf(s.inst.Grid.Passable(p[t]), "agent %d enters blocked cell %v", i, p[t])
		}
	}
}
