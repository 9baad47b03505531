// Package config loads experiment sweep configuration.
//
// Configuration is loaded from a single YAML file specified by:
//   - FAIRMAPF_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There is no discovery. Fields missing from the file keep the values of
// Default.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/fairmapf/internal/algo"
)

// EnvVar names the environment variable holding the config path.
const EnvVar = "FAIRMAPF_CONFIG"

// Solver kinds an experiment can run.
const (
	SolverCBS         = "cbs"
	SolverPrioritized = "prioritized"
)

// Config describes one experiment sweep: every experiment is run on every
// instance matched by Instances.
type Config struct {
	// Instances is a glob of instance files, e.g. "instances/*.txt".
	Instances string `yaml:"instances"`

	// Output is the CSV results path.
	Output string `yaml:"output"`

	// Workers bounds concurrent solver invocations. 0 means one per CPU.
	Workers int `yaml:"workers"`

	// TimeBudget applies to every invocation, e.g. "60s".
	TimeBudget time.Duration `yaml:"time_budget"`

	// MaxExpansions applies to every CBS invocation (0 = unlimited).
	MaxExpansions int `yaml:"max_expansions"`

	Log LogConfig `yaml:"log"`

	Experiments []Experiment `yaml:"experiments"`
}

// LogConfig configures the sweep logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Experiment is one solver configuration of the grid.
type Experiment struct {
	// Name labels report rows. Defaults to the solver label.
	Name string `yaml:"name"`

	// Solver is "cbs" (default) or "prioritized".
	Solver string `yaml:"solver"`

	// Mode is "standard", "weighted" or "bounded". CBS only.
	Mode string `yaml:"mode"`

	Beta  float64 `yaml:"beta"`
	Bound float64 `yaml:"bound"`
}

// Default returns the default sweep: the unfair baselines, two weighted
// runs and three stretch bounds.
func Default() *Config {
	return &Config{
		Instances:  "instances/*.txt",
		Output:     "experiment_results.csv",
		TimeBudget: 60 * time.Second,
		Log:        LogConfig{Level: "info", Format: "auto"},
		Experiments: []Experiment{
			{Solver: SolverPrioritized},
			{Mode: "standard"},
			{Mode: "weighted", Beta: 10},
			{Mode: "weighted", Beta: 50},
			{Mode: "bounded", Bound: 2.0},
			{Mode: "bounded", Bound: 1.5},
			{Mode: "bounded", Bound: 1.2},
		},
	}
}

// Load loads configuration from the FAIRMAPF_CONFIG environment variable.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of a sweep config file, or use --config flag", EnvVar)
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path and validates it.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over Default and validates the result. An
// experiments list in the file replaces the default list.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	cfg.Experiments = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Experiments == nil {
		cfg.Experiments = Default().Experiments
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Instances == "" {
		errs = append(errs, errors.New("instances is required"))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output is required"))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if c.TimeBudget < 0 {
		errs = append(errs, fmt.Errorf("time_budget must be >= 0, got %v", c.TimeBudget))
	}
	if c.MaxExpansions < 0 {
		errs = append(errs, fmt.Errorf("max_expansions must be >= 0, got %d", c.MaxExpansions))
	}
	if len(c.Experiments) == 0 {
		errs = append(errs, errors.New("at least one experiment is required"))
	}

	names := make(map[string]int)
	for i, e := range c.Experiments {
		if err := e.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("experiments[%d]: %w", i, err))
			continue
		}
		label := e.Label()
		if prev, ok := names[label]; ok {
			errs = append(errs, fmt.Errorf("experiments[%d]: name %q already used by experiments[%d]", i, label, prev))
		}
		names[label] = i
	}

	return errors.Join(errs...)
}

// Validate checks a single experiment.
func (e Experiment) Validate() error {
	switch e.kind() {
	case SolverPrioritized:
		return nil
	case SolverCBS:
		cfg, err := e.AlgoConfig()
		if err != nil {
			return err
		}
		return cfg.Validate()
	default:
		return fmt.Errorf("unknown solver %q", e.Solver)
	}
}

func (e Experiment) kind() string {
	if e.Solver == "" {
		return SolverCBS
	}
	return strings.ToLower(e.Solver)
}

// AlgoConfig converts a CBS experiment into a solver configuration with no
// budget or logger set.
func (e Experiment) AlgoConfig() (algo.Config, error) {
	mode, err := algo.ParseMode(e.Mode)
	if err != nil {
		return algo.Config{}, err
	}
	switch mode {
	case algo.ModeWeighted:
		return algo.WeightedConfig(e.Beta), nil
	case algo.ModeBounded:
		return algo.BoundedConfig(e.Bound), nil
	default:
		return algo.StandardConfig(), nil
	}
}

// Label returns Name, or the solver's own label when Name is empty.
func (e Experiment) Label() string {
	if e.Name != "" {
		return e.Name
	}
	if e.kind() == SolverPrioritized {
		return "Prioritized"
	}
	cfg, err := e.AlgoConfig()
	if err != nil {
		return e.Mode
	}
	return cfg.Label()
}

// NewSolver builds the solver for e. Budgets come from the sweep.
func (c *Config) NewSolver(e Experiment, logger *slog.Logger) (algo.Solver, error) {
	if e.kind() == SolverPrioritized {
		return algo.NewPrioritized(c.TimeBudget), nil
	}
	cfg, err := e.AlgoConfig()
	if err != nil {
		return nil, err
	}
	cfg.TimeBudget = c.TimeBudget
	cfg.MaxExpansions = c.MaxExpansions
	cfg.Logger = logger
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return algo.NewCBS(cfg), nil
}
