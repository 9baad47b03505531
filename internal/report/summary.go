package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// SolverSummary aggregates the records of one solver label.
type SolverSummary struct {
	Name          string
	Runs          int
	Successes     int
	Timeouts      int
	TotalSOC      int
	TotalStretch  float64
	WorstStretch  float64
	TotalWallSecs float64
}

// AvgSOC is the mean SOC over successful runs.
func (s *SolverSummary) AvgSOC() float64 {
	if s.Successes == 0 {
		return 0
	}
	return float64(s.TotalSOC) / float64(s.Successes)
}

// AvgMaxStretch is the mean MaxStretch over successful runs.
func (s *SolverSummary) AvgMaxStretch() float64 {
	if s.Successes == 0 {
		return 0
	}
	return s.TotalStretch / float64(s.Successes)
}

// Summarize groups records by solver, sorted by name.
func Summarize(records []Record) []*SolverSummary {
	byName := make(map[string]*SolverSummary)
	for _, r := range records {
		m, ok := byName[r.Solver]
		if !ok {
			m = &SolverSummary{Name: r.Solver}
			byName[r.Solver] = m
		}
		m.Runs++
		m.TotalWallSecs += r.WallTime.Seconds()
		if r.Reason == "Timeout" {
			m.Timeouts++
		}
		if r.Success {
			m.Successes++
			m.TotalSOC += r.SOC
			m.TotalStretch += r.MaxStretch
			if r.MaxStretch > m.WorstStretch {
				m.WorstStretch = r.MaxStretch
			}
		}
	}

	out := make([]*SolverSummary, 0, len(byName))
	for _, m := range byName {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PrintSummary writes a per-solver table.
func PrintSummary(w io.Writer, records []Record) {
	fmt.Fprintln(w, "=== EXPERIMENT SUMMARY ===")
	fmt.Fprintf(w, "%-20s %6s %8s %8s %10s %12s %11s %10s\n",
		"Solver", "Runs", "Success", "Timeout", "Avg SOC", "Avg MaxStr", "Worst Str", "Wall(s)")
	fmt.Fprintln(w, strings.Repeat("-", 92))
	for _, m := range Summarize(records) {
		fmt.Fprintf(w, "%-20s %6d %8d %8d %10.2f %12.3f %11.3f %10.2f\n",
			m.Name, m.Runs, m.Successes, m.Timeouts, m.AvgSOC(), m.AvgMaxStretch(), m.WorstStretch, m.TotalWallSecs)
	}
}
