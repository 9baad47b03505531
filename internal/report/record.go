// Package report turns solver results into experiment records, CSV files,
// summaries and canonical plan encodings.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/elektrokombinacija/fairmapf/internal/algo"
	"github.com/elektrokombinacija/fairmapf/internal/core"
)

// Record stores the outcome of a single solver invocation.
type Record struct {
	RunID       uuid.UUID
	Timestamp   time.Time
	Instance    string
	NumAgents   int
	GridSize    string
	Solver      string
	NaiveWeight float64 // Beta; 0 outside weighted mode
	NovelBound  float64 // K; NaN when unbounded
	Success     bool
	Reason      string
	SOC         int
	Makespan    int
	MaxStretch  float64
	AvgStretch  float64
	WallTime    time.Duration
	CPUTime     time.Duration
	Expanded    int
	Generated   int
	Pruned      int
	Fingerprint string // Empty unless Success
}

// NewRecord builds a record from one result. label names the experiment.
func NewRecord(runID uuid.UUID, inst *core.Instance, label string, res *algo.Result) Record {
	r := Record{
		RunID:      runID,
		Timestamp:  time.Now().UTC(),
		Instance:   inst.Name,
		NumAgents:  len(inst.Agents),
		GridSize:   fmt.Sprintf("%dx%d", inst.Grid.Rows(), inst.Grid.Cols()),
		Solver:     label,
		NovelBound: math.NaN(),
		Success:    res.Success(),
		Reason:     res.Reason.String(),
		WallTime:   res.Elapsed,
		Expanded:   res.Stats.Expanded,
		Generated:  res.Stats.Generated,
		Pruned:     res.Stats.Pruned,
	}
	switch res.Mode {
	case algo.ModeWeighted:
		r.NaiveWeight = res.Param
	case algo.ModeBounded:
		r.NovelBound = res.Param
	}
	if sol := res.Solution; sol != nil {
		r.SOC = sol.SOC
		r.Makespan = sol.Makespan
		r.MaxStretch = sol.MaxStretch
		r.AvgStretch = sol.AvgStretch
		r.Fingerprint = Fingerprint(sol.Paths)
	}
	return r
}

// Header is the CSV column list.
var Header = []string{
	"run_id", "timestamp", "instance", "num_agents", "grid_size", "solver",
	"naive_weight", "novel_bound", "success", "reason",
	"soc", "makespan", "max_stretch", "avg_stretch",
	"wall_time", "cpu_time", "nodes_expanded", "nodes_generated", "nodes_pruned",
	"fingerprint",
}

// Row formats r in Header order. Metrics of failed runs are left empty.
func (r Record) Row() []string {
	bound := ""
	if !math.IsNaN(r.NovelBound) && !math.IsInf(r.NovelBound, 1) {
		bound = formatFloat(r.NovelBound)
	}
	row := []string{
		r.RunID.String(), r.Timestamp.Format(time.RFC3339), r.Instance,
		strconv.Itoa(r.NumAgents), r.GridSize, r.Solver,
		formatFloat(r.NaiveWeight), bound, strconv.FormatBool(r.Success), r.Reason,
		"", "", "", "",
		fmt.Sprintf("%.6f", r.WallTime.Seconds()), fmt.Sprintf("%.6f", r.CPUTime.Seconds()),
		strconv.Itoa(r.Expanded), strconv.Itoa(r.Generated), strconv.Itoa(r.Pruned),
		r.Fingerprint,
	}
	if r.Success {
		row[10] = strconv.Itoa(r.SOC)
		row[11] = strconv.Itoa(r.Makespan)
		row[12] = formatFloat(r.MaxStretch)
		row[13] = formatFloat(r.AvgStretch)
	}
	return row
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Writer streams records as CSV. It is not safe for concurrent use.
type Writer struct {
	csv         *csv.Writer
	wroteHeader bool
}

// NewWriter creates a CSV record writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// Write appends one record, writing the header first if needed, and
// flushes so partial sweeps survive interruption.
func (w *Writer) Write(r Record) error {
	if !w.wroteHeader {
		if err := w.csv.Write(Header); err != nil {
			return err
		}
		w.wroteHeader = true
	}
	if err := w.csv.Write(r.Row()); err != nil {
		return err
	}
	w.csv.Flush()
	return w.csv.Error()
}

// WriteCSV writes all records with a header.
func WriteCSV(out io.Writer, records []Record) error {
	w := NewWriter(out)
	if len(records) == 0 {
		if err := w.csv.Write(Header); err != nil {
			return err
		}
		w.csv.Flush()
		return w.csv.Error()
	}
	for _, r := range records {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}
