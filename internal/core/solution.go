package core

// Solution is a joint plan together with its cost and fairness metrics.
// Paths is indexed by AgentID.
type Solution struct {
	Paths      []Path
	Costs      []int
	Stretches  []float64
	SOC        int     // Sum of costs
	Makespan   int     // Longest individual cost
	MaxStretch float64 // Fairness score, 1.0 = perfectly fair
	AvgStretch float64
}

// RecomputeSOC sums path costs directly from the paths.
func (s *Solution) RecomputeSOC() int {
	soc := 0
	for _, p := range s.Paths {
		soc += p.Cost()
	}
	return soc
}

// Horizon returns the length of the longest path.
func (s *Solution) Horizon() int {
	h := 0
	for _, p := range s.Paths {
		if len(p) > h {
			h = len(p)
		}
	}
	return h
}
