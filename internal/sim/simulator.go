// Package sim replays planned paths timestep by timestep.
//
// The replay is independent of the planner's conflict detector: it keeps
// an occupancy map per step and counts every vertex collision and swap it
// observes, together with per-agent arrival and wait statistics.
package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/elektrokombinacija/fairmapf/internal/algo"
	"github.com/elektrokombinacija/fairmapf/internal/core"
)

// Config configures a simulation run.
type Config struct {
	// Instance to simulate
	Instance *core.Instance

	// Solver to plan with
	Solver algo.Solver

	// StepDelay pauses between timesteps (0 = replay at full speed).
	StepDelay time.Duration

	Logger *slog.Logger
}

// Metrics collects replay statistics.
type Metrics struct {
	// Timing
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	PlanningMs float64   `json:"planning_ms"`

	// Planning
	Solver string `json:"solver"`
	Reason string `json:"reason"`
	SOC    int    `json:"soc"`

	// Execution
	Steps      int   `json:"steps"`
	Arrivals   []int `json:"arrivals"`   // First timestep from which each agent stays at its goal
	WaitSteps  []int `json:"wait_steps"` // Waits before arrival, per agent
	TotalWaits int   `json:"total_waits"`
	Collisions int   `json:"collisions"`
	PeakMoving int   `json:"peak_moving"` // Most agents changing cell in one step
}

// Simulator plans an instance and then executes the plan.
type Simulator struct {
	mu sync.Mutex

	config Config
	logger *slog.Logger

	// State
	t         int
	paths     []core.Path
	positions []core.Cell

	metrics Metrics
}

// NewSimulator creates a simulator with every agent at its start.
func NewSimulator(config Config) *Simulator {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Simulator{config: config, logger: logger}
	if config.Instance != nil {
		for _, a := range config.Instance.Agents {
			s.positions = append(s.positions, a.Start)
		}
	}
	return s
}

// Run plans, then replays the plan until every agent has arrived or ctx
// is done.
func (s *Simulator) Run(ctx context.Context) (*Metrics, error) {
	s.metrics.StartTime = time.Now()

	if err := s.plan(ctx); err != nil {
		return nil, fmt.Errorf("planning failed: %w", err)
	}

	horizon := 0
	for _, p := range s.paths {
		horizon = max(horizon, len(p)-1)
	}
	for s.t < horizon {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.step()
		if s.config.StepDelay > 0 {
			time.Sleep(s.config.StepDelay)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.EndTime = time.Now()
	s.logger.Info("replay finished", "steps", s.metrics.Steps,
		"collisions", s.metrics.Collisions, "total_waits", s.metrics.TotalWaits)
	m := s.metrics
	return &m, nil
}

func (s *Simulator) plan(ctx context.Context) error {
	start := time.Now()
	res, err := s.config.Solver.Solve(ctx, s.config.Instance)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.PlanningMs = float64(time.Since(start).Microseconds()) / 1000.0
	s.metrics.Solver = res.Solver
	s.metrics.Reason = res.Reason.String()
	if !res.Success() {
		return res.Err()
	}
	s.metrics.SOC = res.Solution.SOC
	s.load(res.Solution.Paths)
	return nil
}

// load resets the replay to t=0 with the given plan.
func (s *Simulator) load(paths []core.Path) {
	s.t = 0
	s.paths = paths
	n := len(paths)
	s.positions = make([]core.Cell, n)
	s.metrics.Arrivals = make([]int, n)
	s.metrics.WaitSteps = make([]int, n)
	s.metrics.Steps = 0
	s.metrics.TotalWaits = 0
	s.metrics.Collisions = 0
	s.metrics.PeakMoving = 0
	for i, p := range paths {
		s.positions[i] = p.At(0)
		s.metrics.Arrivals[i] = len(p) - 1
	}
	s.metrics.Collisions += s.countCollisions(nil, s.positions)
}

// step advances the replay by one timestep.
func (s *Simulator) step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.t++
	prev := s.positions
	next := make([]core.Cell, len(s.paths))
	moving := 0
	for i, p := range s.paths {
		next[i] = p.At(s.t)
		switch {
		case next[i] != prev[i]:
			moving++
		case s.t < len(p):
			s.metrics.WaitSteps[i]++
			s.metrics.TotalWaits++
		}
	}

	collisions := s.countCollisions(prev, next)
	if collisions > 0 {
		s.logger.Warn("collision during replay", "t", s.t, "count", collisions)
	}
	s.metrics.Collisions += collisions
	s.metrics.PeakMoving = max(s.metrics.PeakMoving, moving)
	s.metrics.Steps = s.t
	s.positions = next
}

// countCollisions counts agents sharing a cell in next, plus pairs that
// swapped cells between prev and next.
func (s *Simulator) countCollisions(prev, next []core.Cell) int {
	n := 0
	occupied := make(map[core.Cell]int, len(next))
	for i, c := range next {
		if _, ok := occupied[c]; ok {
			n++
		}
		occupied[c] = i
	}
	if prev == nil {
		return n
	}
	for i := range next {
		if prev[i] == next[i] {
			continue
		}
		// j now stands where i was; a swap if j came from where i is.
		if j, ok := occupied[prev[i]]; ok && j > i && prev[j] == next[i] {
			n++
		}
	}
	return n
}

// Positions returns a copy of the current agent positions.
func (s *Simulator) Positions() []core.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Cell(nil), s.positions...)
}

// Metrics returns current simulation metrics.
func (s *Simulator) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// ExportMetrics writes metrics to a JSON file.
func (s *Simulator) ExportMetrics(path string) error {
	s.mu.Lock()
	metrics := s.metrics
	s.mu.Unlock()

	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Replay executes a given plan without planning and returns its metrics.
func Replay(paths []core.Path) Metrics {
	s := NewSimulator(Config{})
	s.load(paths)
	horizon := 0
	for _, p := range paths {
		horizon = max(horizon, len(p)-1)
	}
	for s.t < horizon {
		s.step()
	}
	return s.Metrics()
}
