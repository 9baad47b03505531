package instgen

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/fairmapf/internal/algo"
	"github.com/elektrokombinacija/fairmapf/internal/core"
)

func TestBottleneckMap(t *testing.T) {
	grid := BottleneckMap(10, 10, 1)
	blocked := 0
	for r := 0; r < 10; r++ {
		if !grid.Passable(core.Cell{Row: r, Col: 5}) {
			blocked++
		}
	}
	assert.Equal(t, 9, blocked)
	assert.True(t, grid.Passable(core.Cell{Row: 4, Col: 5}), "gap is centered")
	assert.Equal(t, 91, grid.FreeCells())
}

func TestRandomDeterministic(t *testing.T) {
	p := Params{Seed: 7, Rows: 8, Cols: 8, Agents: 4, ObstacleProb: 0.2}
	a, err := Random(p)
	require.NoError(t, err)
	b, err := Random(p)
	require.NoError(t, err)

	var bufA, bufB bytes.Buffer
	require.NoError(t, core.WriteInstance(&bufA, a))
	require.NoError(t, core.WriteInstance(&bufB, b))
	assert.Equal(t, bufA.String(), bufB.String())

	_, err = algo.NewOracle(a)
	assert.NoError(t, err, "all goals reachable")
}

func TestPlaceAgentsTooCrowded(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, _, err := PlaceAgents(rng, core.NewOpenGrid(2, 2), 3)
	assert.True(t, errors.Is(err, ErrTooCrowded))

	starts, goals, err := PlaceAgents(rng, core.NewOpenGrid(2, 2), 2)
	require.NoError(t, err)
	seen := make(map[core.Cell]bool)
	for _, c := range append(starts, goals...) {
		assert.False(t, seen[c], "cell %v reused", c)
		seen[c] = true
	}
}

func TestBottleneckErrors(t *testing.T) {
	_, err := Bottleneck(Params{Rows: 3, Cols: 5, Agents: 4})
	assert.ErrorIs(t, err, ErrTooCrowded)
	_, err = Bottleneck(Params{Rows: 3, Cols: 2, Agents: 1})
	assert.Error(t, err)
}

// TestBottleneckSmoke runs the crossing scenario through standard and
// bounded search. Queueing at the gap costs someone, so the fair plan can
// only be as cheap as the standard one.
func TestBottleneckSmoke(t *testing.T) {
	inst, err := Bottleneck(Params{Rows: 5, Cols: 5, Agents: 2})
	require.NoError(t, err)

	budget := 10 * time.Second
	std, err := algo.NewCBS(algo.Config{Mode: algo.ModeStandard, TimeBudget: budget}).Solve(context.Background(), inst)
	require.NoError(t, err)
	require.True(t, std.Success())

	cfg := algo.BoundedConfig(1.5)
	cfg.TimeBudget = budget
	fair, err := algo.NewCBS(cfg).Solve(context.Background(), inst)
	require.NoError(t, err)
	if fair.Success() {
		assert.GreaterOrEqual(t, fair.Solution.SOC, std.Solution.SOC)
		assert.LessOrEqual(t, fair.Solution.MaxStretch, 1.5+algo.StretchTolerance)
	}
}

func TestSuite(t *testing.T) {
	insts, err := Suite(42)
	require.NoError(t, err)
	require.Len(t, insts, 6)
	assert.Equal(t, "random_8x8_1", insts[0].Name)
	assert.Equal(t, "bottleneck_10x10_3", insts[5].Name)
	for _, inst := range insts {
		assert.NoError(t, inst.Validate(), inst.Name)
	}
}
