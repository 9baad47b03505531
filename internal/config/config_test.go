package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/fairmapf/internal/algo"
)

const sweepYAML = `
instances: testdata/*.txt
output: out.csv
workers: 2
time_budget: 5s
max_expansions: 1000
log:
  level: debug
experiments:
  - solver: prioritized
  - mode: standard
  - mode: weighted
    beta: 10
  - name: fair
    mode: bounded
    bound: 1.5
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sweepYAML))
	require.NoError(t, err)

	assert.Equal(t, "testdata/*.txt", cfg.Instances)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 5*time.Second, cfg.TimeBudget)
	assert.Equal(t, 1000, cfg.MaxExpansions)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "auto", cfg.Log.Format, "unset fields keep defaults")
	require.Len(t, cfg.Experiments, 4)

	labels := make([]string, len(cfg.Experiments))
	for i, e := range cfg.Experiments {
		labels[i] = e.Label()
	}
	assert.Equal(t, []string{"Prioritized", "CBS_Standard", "CBS_Weighted_10", "fair"}, labels)
}

func TestParseDefaultsExperiments(t *testing.T) {
	cfg, err := Parse([]byte("output: r.csv\n"))
	require.NoError(t, err)
	assert.Len(t, cfg.Experiments, len(Default().Experiments))
	assert.Equal(t, "CBS_Bounded_1.2", cfg.Experiments[len(cfg.Experiments)-1].Label())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative bound", "experiments: [{mode: bounded, bound: 0.5}]"},
		{"negative beta", "experiments: [{mode: weighted, beta: -1}]"},
		{"unknown mode", "experiments: [{mode: greedy}]"},
		{"unknown solver", "experiments: [{solver: ecbs}]"},
		{"duplicate label", "experiments: [{mode: standard}, {mode: standard}]"},
		{"negative workers", "workers: -1"},
		{"empty output", "output: ''"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sweepYAML), 0o644))

	t.Setenv(EnvVar, "")
	_, err := Load()
	assert.ErrorContains(t, err, EnvVar)

	t.Setenv(EnvVar, path)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "out.csv", cfg.Output)
}

func TestNewSolver(t *testing.T) {
	cfg, err := Parse([]byte(sweepYAML))
	require.NoError(t, err)

	s, err := cfg.NewSolver(cfg.Experiments[3], nil)
	require.NoError(t, err)
	cbs, ok := s.(*algo.CBS)
	require.True(t, ok)
	assert.Equal(t, algo.ModeBounded, cbs.Config().Mode)
	assert.Equal(t, 1.5, cbs.Config().Bound)
	assert.Equal(t, 5*time.Second, cbs.Config().TimeBudget)
	assert.Equal(t, 1000, cbs.Config().MaxExpansions)

	s, err = cfg.NewSolver(cfg.Experiments[0], nil)
	require.NoError(t, err)
	assert.Equal(t, "Prioritized", s.Name())
}
