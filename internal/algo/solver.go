// Package algo implements the fairness-aware MAPF solvers: a space-time A*
// low-level planner nested inside a Conflict-Based Search over a
// constraint tree, plus a prioritized planning baseline.
package algo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/elektrokombinacija/fairmapf/internal/core"
)

var (
	// ErrInfeasible means no plan exists: some agent cannot reach its goal,
	// or the constraint tree was exhausted without a solution.
	ErrInfeasible = errors.New("infeasible")

	// ErrTimeout means the time or expansion budget ran out first. A timed
	// out run might have succeeded given more budget.
	ErrTimeout = errors.New("search budget exhausted")

	// ErrInvalidConfig is returned for out-of-range solver parameters.
	ErrInvalidConfig = errors.New("invalid solver config")
)

// Solver is the interface for MAPF algorithms.
type Solver interface {
	// Solve plans all agents of inst. Malformed input is returned as an
	// error; infeasibility and timeouts are reported through Result.Reason.
	Solve(ctx context.Context, inst *core.Instance) (*Result, error)

	// Name returns the solver label used in reports.
	Name() string
}

// Mode selects the high-level objective.
type Mode int

const (
	ModeStandard Mode = iota // Key = SOC
	ModeWeighted             // Key = SOC + Beta*MaxStretch
	ModeBounded              // Key = SOC, nodes with MaxStretch > Bound rejected
)

func (m Mode) String() string {
	switch m {
	case ModeStandard:
		return "standard"
	case ModeWeighted:
		return "weighted"
	case ModeBounded:
		return "bounded"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return ModeStandard, nil
	case "weighted":
		return ModeWeighted, nil
	case "bounded":
		return ModeBounded, nil
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, s)
}

// Config is the immutable per-run solver configuration.
type Config struct {
	Mode  Mode
	Beta  float64 // Weighted mode penalty on MaxStretch, >= 0
	Bound float64 // Bounded mode ceiling on MaxStretch, >= 1

	// TimeBudget is a wall-clock limit checked between expansions (0 = none).
	TimeBudget time.Duration
	// MaxExpansions limits high-level expansions (0 = none).
	MaxExpansions int

	Logger   *slog.Logger // nil discards
	Observer Observer     // nil disables search hooks
}

// StandardConfig is plain CBS: Beta = 0, Bound = +Inf.
func StandardConfig() Config {
	return Config{Mode: ModeStandard}
}

// WeightedConfig creates a weighted-mode config.
func WeightedConfig(beta float64) Config {
	return Config{Mode: ModeWeighted, Beta: beta}
}

// BoundedConfig creates a bounded-mode config.
func BoundedConfig(bound float64) Config {
	return Config{Mode: ModeBounded, Bound: bound}
}

// Validate checks parameter ranges for the configured mode.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeStandard:
	case ModeWeighted:
		if math.IsNaN(c.Beta) || math.IsInf(c.Beta, 0) || c.Beta < 0 {
			return fmt.Errorf("%w: beta must be a finite value >= 0, got %v", ErrInvalidConfig, c.Beta)
		}
	case ModeBounded:
		if math.IsNaN(c.Bound) || c.Bound < 1 {
			return fmt.Errorf("%w: bound must be >= 1, got %v", ErrInvalidConfig, c.Bound)
		}
	default:
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidConfig, int(c.Mode))
	}
	if c.TimeBudget < 0 {
		return fmt.Errorf("%w: negative time budget", ErrInvalidConfig)
	}
	if c.MaxExpansions < 0 {
		return fmt.Errorf("%w: negative expansion limit", ErrInvalidConfig)
	}
	return nil
}

// Objective returns the fairness objective for this config.
func (c Config) Objective() Objective {
	switch c.Mode {
	case ModeWeighted:
		return Objective{Mode: ModeWeighted, Beta: c.Beta, Bound: math.Inf(1)}
	case ModeBounded:
		return Objective{Mode: ModeBounded, Bound: c.Bound}
	default:
		return Objective{Mode: ModeStandard, Bound: math.Inf(1)}
	}
}

// Param returns the mode parameter actually used: Beta, Bound, or 0.
func (c Config) Param() float64 {
	switch c.Mode {
	case ModeWeighted:
		return c.Beta
	case ModeBounded:
		return c.Bound
	default:
		return 0
	}
}

// Label names the configuration, e.g. CBS_Weighted_10 or CBS_Bounded_1.5.
func (c Config) Label() string {
	switch c.Mode {
	case ModeWeighted:
		return "CBS_Weighted_" + strconv.FormatFloat(c.Beta, 'f', -1, 64)
	case ModeBounded:
		if c.Bound == math.Trunc(c.Bound) {
			return fmt.Sprintf("CBS_Bounded_%.1f", c.Bound)
		}
		return "CBS_Bounded_" + strconv.FormatFloat(c.Bound, 'f', -1, 64)
	default:
		return "CBS_Standard"
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Termination is the reason a search stopped.
type Termination int

const (
	Solved Termination = iota
	Infeasible
	Timeout
)

func (t Termination) String() string {
	return [...]string{"Solved", "Infeasible", "Timeout"}[t]
}

// Stats counts search work.
type Stats struct {
	Generated     int // CT nodes admitted to the open list, root included
	Expanded      int // CT nodes popped
	Pruned        int // Children rejected by the fairness bound
	DeadEnds      int // Children whose replanned agent had no path
	LowLevelCalls int
}

// Result is the outcome of one solver invocation.
type Result struct {
	Solver   string
	Mode     Mode
	Param    float64
	Reason   Termination
	Solution *core.Solution // nil unless Reason == Solved
	Elapsed  time.Duration
	Stats    Stats
}

// Success reports whether a conflict-free plan was found.
func (r *Result) Success() bool {
	return r.Reason == Solved && r.Solution != nil
}

// Err maps the termination reason to ErrInfeasible, ErrTimeout or nil.
func (r *Result) Err() error {
	switch r.Reason {
	case Infeasible:
		return ErrInfeasible
	case Timeout:
		return ErrTimeout
	default:
		return nil
	}
}

// assertf panics on internal invariant violations. These indicate a defect
// in the search, never bad input.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic("algo: invariant violated: " + fmt.Sprintf(format, args...))
	}
}
