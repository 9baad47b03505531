package algo

import (
	"math"

	"github.com/elektrokombinacija/fairmapf/internal/core"
)

// StretchTolerance absorbs floating-point error in bound comparisons.
const StretchTolerance = 1e-9

// Stretch returns cost / optimal with both floored at one unit, so an agent
// that starts on its goal and never leaves has stretch 1.
func Stretch(cost, optimal int) float64 {
	return float64(max(cost, 1)) / float64(max(optimal, 1))
}

// Evaluate computes cost and fairness metrics of a joint plan. optimal is
// indexed like paths.
func Evaluate(paths []core.Path, optimal []int) *core.Solution {
	sol := &core.Solution{
		Paths:     paths,
		Costs:     make([]int, len(paths)),
		Stretches: make([]float64, len(paths)),
	}

	sum := 0.0
	for i, p := range paths {
		cost := p.Cost()
		assertf(cost >= optimal[i], "agent %d cost %d below optimal %d", i, cost, optimal[i])

		s := Stretch(cost, optimal[i])
		assertf(s >= 1-StretchTolerance, "agent %d stretch %v < 1", i, s)

		sol.Costs[i] = cost
		sol.Stretches[i] = s
		sol.SOC += cost
		sum += s
		if cost > sol.Makespan {
			sol.Makespan = cost
		}
		if s > sol.MaxStretch {
			sol.MaxStretch = s
		}
	}
	if len(paths) > 0 {
		sol.AvgStretch = sum / float64(len(paths))
	}
	return sol
}

// Objective turns plan metrics into an open-list key and, in bounded mode,
// a hard admission test.
type Objective struct {
	Mode  Mode
	Beta  float64
	Bound float64
}

// Key returns the priority of a plan; lower is expanded first.
func (o Objective) Key(s *core.Solution) float64 {
	if o.Mode == ModeWeighted {
		return float64(s.SOC) + o.Beta*s.MaxStretch
	}
	return float64(s.SOC)
}

// Admits reports whether a plan may enter the open list. Only bounded mode
// ever rejects.
func (o Objective) Admits(s *core.Solution) bool {
	if o.Mode != ModeBounded || math.IsInf(o.Bound, 1) {
		return true
	}
	return s.MaxStretch <= o.Bound+StretchTolerance
}
