// Package instgen generates deterministic benchmark instances: random
// obstacle maps and bottleneck maps that force agents through one gap.
package instgen

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/elektrokombinacija/fairmapf/internal/algo"
	"github.com/elektrokombinacija/fairmapf/internal/core"
)

// ErrTooCrowded means the map has fewer than two free cells per agent.
var ErrTooCrowded = errors.New("map is too small or crowded for this many agents")

// maxAttempts bounds redraws of random maps with unreachable goals.
const maxAttempts = 100

// Params defines parameters for instance generation.
type Params struct {
	Seed         int64
	Rows, Cols   int
	Agents       int
	ObstacleProb float64 // Random maps only
	GapWidth     int     // Bottleneck maps only; 0 means 1
}

// RandomMap blocks each cell independently with probability p.
func RandomMap(rng *rand.Rand, rows, cols int, p float64) *core.Grid {
	blocked := make([][]bool, rows)
	for r := range blocked {
		blocked[r] = make([]bool, cols)
		for c := range blocked[r] {
			blocked[r][c] = rng.Float64() < p
		}
	}
	return core.NewGrid(blocked)
}

// BottleneckMap builds an open grid split by a wall in the middle column
// with a centered gap of gapWidth cells.
func BottleneckMap(rows, cols, gapWidth int) *core.Grid {
	if gapWidth < 1 {
		gapWidth = 1
	}
	mid := cols / 2
	startGap := (rows - gapWidth) / 2
	var wall []core.Cell
	for r := 0; r < rows; r++ {
		if r >= startGap && r < startGap+gapWidth {
			continue
		}
		wall = append(wall, core.Cell{Row: r, Col: mid})
	}
	return core.NewOpenGrid(rows, cols).WithBlocked(wall...)
}

// PlaceAgents samples 2n distinct free cells: the first n are starts, the
// rest goals.
func PlaceAgents(rng *rand.Rand, grid *core.Grid, n int) (starts, goals []core.Cell, err error) {
	var free []core.Cell
	for r := 0; r < grid.Rows(); r++ {
		for c := 0; c < grid.Cols(); c++ {
			if cell := (core.Cell{Row: r, Col: c}); grid.Passable(cell) {
				free = append(free, cell)
			}
		}
	}
	if len(free) < 2*n {
		return nil, nil, fmt.Errorf("%w: %d free cells, %d agents", ErrTooCrowded, len(free), n)
	}
	perm := rng.Perm(len(free))
	for i := 0; i < n; i++ {
		starts = append(starts, free[perm[i]])
		goals = append(goals, free[perm[n+i]])
	}
	return starts, goals, nil
}

// Random generates a random-obstacle instance in which every agent can
// reach its goal. Maps or placements that fail are redrawn from the same
// seeded stream.
func Random(p Params) (*core.Instance, error) {
	rng := rand.New(rand.NewSource(p.Seed))
	name := fmt.Sprintf("random_%dx%d_s%d", p.Rows, p.Cols, p.Seed)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		grid := RandomMap(rng, p.Rows, p.Cols, p.ObstacleProb)
		starts, goals, err := PlaceAgents(rng, grid, p.Agents)
		if errors.Is(err, ErrTooCrowded) {
			continue
		}
		inst := core.NewInstance(name, grid, starts, goals)
		if err := inst.Validate(); err != nil {
			return nil, err
		}
		if _, err := algo.NewOracle(inst); err != nil {
			continue
		}
		return inst, nil
	}
	return nil, fmt.Errorf("no solvable %s instance after %d attempts", name, maxAttempts)
}

// Bottleneck generates the crossing scenario: agents start in the first
// column and target the last column in reverse row order, so every agent
// must pass the gap.
func Bottleneck(p Params) (*core.Instance, error) {
	if p.Agents > p.Rows {
		return nil, fmt.Errorf("%w: %d agents on %d rows", ErrTooCrowded, p.Agents, p.Rows)
	}
	if p.Cols < 3 {
		return nil, fmt.Errorf("bottleneck map needs at least 3 columns, got %d", p.Cols)
	}
	grid := BottleneckMap(p.Rows, p.Cols, p.GapWidth)
	starts := make([]core.Cell, p.Agents)
	goals := make([]core.Cell, p.Agents)
	for r := 0; r < p.Agents; r++ {
		starts[r] = core.Cell{Row: r, Col: 0}
		goals[r] = core.Cell{Row: p.Rows - 1 - r, Col: p.Cols - 1}
	}
	inst := core.NewInstance(fmt.Sprintf("bottleneck_%dx%d_a%d", p.Rows, p.Cols, p.Agents), grid, starts, goals)
	return inst, inst.Validate()
}

// Suite returns the standard benchmark set: three random 8x8 maps with 20%
// obstacles and four agents, and three 10x10 bottleneck maps with four
// agents. Seeds derive from seed.
func Suite(seed int64) ([]*core.Instance, error) {
	var out []*core.Instance
	for i := 1; i <= 3; i++ {
		inst, err := Random(Params{Seed: seed + int64(i), Rows: 8, Cols: 8, Agents: 4, ObstacleProb: 0.2})
		if err != nil {
			return nil, err
		}
		inst.Name = fmt.Sprintf("random_8x8_%d", i)
		out = append(out, inst)
	}
	for i := 1; i <= 3; i++ {
		inst, err := Bottleneck(Params{Rows: 10, Cols: 10, Agents: 4, GapWidth: 1})
		if err != nil {
			return nil, err
		}
		inst.Name = fmt.Sprintf("bottleneck_10x10_%d", i)
		out = append(out, inst)
	}
	return out, nil
}
