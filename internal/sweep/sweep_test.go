package sweep

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/fairmapf/internal/config"
	"github.com/elektrokombinacija/fairmapf/internal/core"
	"github.com/elektrokombinacija/fairmapf/internal/report"
)

func writeInstances(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	pocket := core.NewInstance("", core.NewOpenGrid(2, 3).WithBlocked(core.Cell{Row: 1, Col: 0}, core.Cell{Row: 1, Col: 2}),
		[]core.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 2}}, []core.Cell{{Row: 0, Col: 2}, {Row: 0, Col: 0}})
	open := core.NewInstance("", core.NewOpenGrid(4, 4),
		[]core.Cell{{Row: 0, Col: 0}, {Row: 3, Col: 0}}, []core.Cell{{Row: 0, Col: 3}, {Row: 3, Col: 3}})

	for name, inst := range map[string]*core.Instance{"a_pocket.txt": pocket, "b_open.txt": open} {
		f, err := os.Create(filepath.Join(dir, name))
		require.NoError(t, err)
		require.NoError(t, core.WriteInstance(f, inst))
		require.NoError(t, f.Close())
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c_broken.txt"), []byte("2 2\n..\n"), 0o644))
	return filepath.Join(dir, "*.txt")
}

func sweepConfig(pattern string) *config.Config {
	cfg := config.Default()
	cfg.Instances = pattern
	cfg.Workers = 2
	cfg.TimeBudget = 10 * time.Second
	cfg.Experiments = []config.Experiment{
		{Solver: config.SolverPrioritized},
		{Mode: "standard"},
		{Mode: "bounded", Bound: 1.5},
	}
	return cfg
}

func TestLoadInstances(t *testing.T) {
	instances, err := LoadInstances(writeInstances(t), testLogger())
	require.NoError(t, err)
	require.Len(t, instances, 2, "broken file is skipped")
	assert.Equal(t, "a_pocket.txt", instances[0].Name)

	_, err = LoadInstances(filepath.Join(t.TempDir(), "*.txt"), testLogger())
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	cfg := sweepConfig(writeInstances(t))
	instances, err := LoadInstances(cfg.Instances, testLogger())
	require.NoError(t, err)

	var streamed []report.Record
	records, err := Run(context.Background(), cfg, instances,
		WithLogger(testLogger()),
		WithRecordHook(func(r report.Record) error {
			streamed = append(streamed, r)
			return nil
		}))
	require.NoError(t, err)
	require.Len(t, records, 6)
	assert.Len(t, streamed, 6)

	byKey := make(map[string]report.Record)
	for _, r := range records {
		byKey[r.Instance+"/"+r.Solver] = r
		assert.Equal(t, records[0].RunID, r.RunID)
	}

	assert.Equal(t, "a_pocket.txt", records[0].Instance)
	assert.Equal(t, "Prioritized", records[0].Solver)

	std := byKey["a_pocket.txt/CBS_Standard"]
	assert.True(t, std.Success)
	assert.Equal(t, 7, std.SOC)
	assert.Equal(t, 2.0, std.MaxStretch)

	assert.False(t, byKey["a_pocket.txt/CBS_Bounded_1.5"].Success)
	assert.False(t, byKey["a_pocket.txt/Prioritized"].Success)

	for _, solver := range []string{"Prioritized", "CBS_Standard", "CBS_Bounded_1.5"} {
		r := byKey["b_open.txt/"+solver]
		assert.True(t, r.Success, solver)
		assert.Equal(t, 6, r.SOC, solver)
	}

	assert.Equal(t, 3, instances[1].Agents[0].OptimalCost, "optimal costs annotated")
}

func TestRunDeterministic(t *testing.T) {
	cfg := sweepConfig(writeInstances(t))
	instances, err := LoadInstances(cfg.Instances, testLogger())
	require.NoError(t, err)

	first, err := Run(context.Background(), cfg, instances)
	require.NoError(t, err)
	second, err := Run(context.Background(), cfg, instances)
	require.NoError(t, err)

	for i := range first {
		assert.Equal(t, first[i].Fingerprint, second[i].Fingerprint, "%s/%s", first[i].Instance, first[i].Solver)
		assert.Equal(t, first[i].Reason, second[i].Reason)
	}
}
