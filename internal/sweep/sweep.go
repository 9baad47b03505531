// Package sweep runs experiment grids: every configured experiment on
// every instance, each as an independent solver invocation.
package sweep

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/elektrokombinacija/fairmapf/internal/algo"
	"github.com/elektrokombinacija/fairmapf/internal/config"
	"github.com/elektrokombinacija/fairmapf/internal/core"
	"github.com/elektrokombinacija/fairmapf/internal/report"
)

// Options holds optional sweep settings.
type Options struct {
	Logger   *slog.Logger
	OnRecord func(report.Record) error
}

// Option configures Run.
type Option func(*Options)

// WithLogger sets the logger passed to every solver.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithRecordHook registers fn to receive each record as soon as its run
// finishes. Calls are serialized. An error from fn stops the sweep.
func WithRecordHook(fn func(report.Record) error) Option {
	return func(o *Options) {
		o.OnRecord = fn
	}
}

// LoadInstances loads every instance file matching pattern, in lexical
// order. Malformed files are logged and skipped.
func LoadInstances(pattern string, logger *slog.Logger) ([]*core.Instance, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("instances %q: %w", pattern, err)
	}
	var out []*core.Instance
	for _, f := range files {
		inst, err := core.LoadInstance(f)
		if err != nil {
			logger.Warn("skipping instance", "file", f, "error", err)
			continue
		}
		out = append(out, inst)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no instances found in %s", pattern)
	}
	return out, nil
}

// Run solves every (instance, experiment) pair with at most cfg.Workers
// concurrent invocations. Records come back in instance-major order
// regardless of completion order.
func Run(ctx context.Context, cfg *config.Config, instances []*core.Instance, opts ...Option) ([]report.Record, error) {
	o := &Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(o)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Optimal costs are computed once per instance before any sharing.
	for _, inst := range instances {
		if oracle, err := algo.NewOracle(inst); err == nil {
			oracle.Annotate(inst)
		}
	}

	runID := uuid.New()
	logger := o.Logger.With("run_id", runID.String())
	logger.Info("sweep started", "instances", len(instances),
		"experiments", len(cfg.Experiments), "workers", workers)

	records := make([]report.Record, len(instances)*len(cfg.Experiments))
	var hookMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, inst := range instances {
		for j, exp := range cfg.Experiments {
			slot := i*len(cfg.Experiments) + j
			inst, exp := inst, exp // per-iteration copies (go 1.21 loop semantics)
			g.Go(func() error {
				rec, err := runOne(gctx, cfg, runID, inst, exp, logger)
				if err != nil {
					return err
				}
				records[slot] = rec
				if o.OnRecord != nil {
					hookMu.Lock()
					defer hookMu.Unlock()
					return o.OnRecord(rec)
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Info("sweep finished", "runs", len(records))
	return records, nil
}

func runOne(ctx context.Context, cfg *config.Config, runID uuid.UUID, inst *core.Instance,
	exp config.Experiment, logger *slog.Logger) (report.Record, error) {
	label := exp.Label()
	solver, err := cfg.NewSolver(exp, logger)
	if err != nil {
		return report.Record{}, fmt.Errorf("experiment %s: %w", label, err)
	}

	cpuBefore, cpuErr := report.ProcessCPUTime()
	res, err := solver.Solve(ctx, inst)
	if err != nil {
		return report.Record{}, fmt.Errorf("%s on %s: %w", label, inst.Name, err)
	}

	rec := report.NewRecord(runID, inst, label, res)
	// Process-wide CPU time; only exact with a single worker.
	if cpuErr == nil {
		if cpuAfter, err := report.ProcessCPUTime(); err == nil {
			rec.CPUTime = cpuAfter - cpuBefore
		}
	}

	logger.Info("run finished", "instance", inst.Name, "solver", label,
		"reason", rec.Reason, "soc", rec.SOC, "max_stretch", rec.MaxStretch, "elapsed", rec.WallTime)
	return rec, nil
}
