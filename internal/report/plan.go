package report

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/elektrokombinacija/fairmapf/internal/core"
)

// encMode uses Core Deterministic Encoding: the same plan always produces
// identical bytes, so fingerprints compare plans across runs and hosts.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("report: CBOR encoder initialization failed: " + err.Error())
	}
}

// Plan is the serialized form of a solution.
type Plan struct {
	Instance   string     `cbor:"1,keyasint"`
	Solver     string     `cbor:"2,keyasint"`
	Rows       int        `cbor:"3,keyasint"`
	Cols       int        `cbor:"4,keyasint"`
	Paths      [][][2]int `cbor:"5,keyasint"` // [agent][t] = {row, col}
	Costs      []int      `cbor:"6,keyasint"`
	SOC        int        `cbor:"7,keyasint"`
	MaxStretch float64    `cbor:"8,keyasint"`
}

// NewPlan captures sol for inst.
func NewPlan(inst *core.Instance, solver string, sol *core.Solution) *Plan {
	return &Plan{
		Instance:   inst.Name,
		Solver:     solver,
		Rows:       inst.Grid.Rows(),
		Cols:       inst.Grid.Cols(),
		Paths:      encodePaths(sol.Paths),
		Costs:      sol.Costs,
		SOC:        sol.SOC,
		MaxStretch: sol.MaxStretch,
	}
}

// CorePaths converts the plan back into core paths.
func (p *Plan) CorePaths() []core.Path {
	out := make([]core.Path, len(p.Paths))
	for i, steps := range p.Paths {
		path := make(core.Path, len(steps))
		for t, rc := range steps {
			path[t] = core.Cell{Row: rc[0], Col: rc[1]}
		}
		out[i] = path
	}
	return out
}

func encodePaths(paths []core.Path) [][][2]int {
	out := make([][][2]int, len(paths))
	for i, p := range paths {
		steps := make([][2]int, len(p))
		for t, c := range p {
			steps[t] = [2]int{c.Row, c.Col}
		}
		out[i] = steps
	}
	return out
}

// EncodePlan writes p as deterministic CBOR.
func EncodePlan(w io.Writer, p *Plan) error {
	data, err := encMode.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// DecodePlan reads one CBOR plan.
func DecodePlan(r io.Reader) (*Plan, error) {
	var p Plan
	if err := cbor.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &p, nil
}

// Fingerprint is the hex BLAKE3-256 digest of the canonical encoding of
// paths. Equal plans have equal fingerprints.
func Fingerprint(paths []core.Path) string {
	data, err := encMode.Marshal(encodePaths(paths))
	if err != nil {
		panic("report: encoding paths failed: " + err.Error())
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
